package main

import "flag"

// Command-line flags selecting the input case, backend, scenario, and the
// optional benchmark, monitoring, and plotting modes.
var (
	// inputFlag points at an FDS case directory containing
	// heat_transfer.fds and result/heat_transfer_devc.csv. Empty runs the
	// built-in demo wall against a synthetic fire curve.
	inputFlag = flag.String("input", "", "FDS case directory (heat_transfer.fds plus result/heat_transfer_devc.csv)")

	// methodFlag selects the execution backend.
	methodFlag = flag.String("method", methodCPU, "solver backend: cpu, gpu_m1, gpu_m2 or gpu_m3")

	// kindFlag selects the boundary scenario.
	kindFlag = flag.String("kind", kindDiabatic, "boundary scenario: diabatic, diabatic_one_side or adiabatic")

	// stepsFlag and dtFlag shape synthetic runs; file-driven runs take both
	// from the device file instead.
	stepsFlag = flag.Int("steps", defaultSteps, "simulation steps for synthetic runs")
	dtFlag    = flag.Float64("dt", defaultTimeStep, "time step in seconds for synthetic runs")

	// elementsFlag duplicates the parsed wall elements up to the given
	// total; zero keeps the parsed count.
	elementsFlag = flag.Int("elements", 0, "duplicate wall elements up to this total count")

	// chunkFlag caps how many elements one GPU dispatch chunk holds;
	// chunkConfigFlag loads the cap from an INI file keyed by bench label.
	chunkFlag       = flag.Int("chunk", 0, "max wall elements per GPU dispatch chunk (0 = default)")
	chunkConfigFlag = flag.String("chunk-config", "", "INI file with `label = n` chunk sizes")

	// benchFlag switches to benchmark mode under the given label.
	benchFlag  = flag.String("bench", "", "run benchmark mode and store results under this label")
	rerunsFlag = flag.Int("reruns", 5, "benchmark repetitions per backend")

	// workersFlag bounds CPU-backend parallelism; zero means one per CPU.
	workersFlag = flag.Int("workers", 0, "CPU solver worker count (0 = one per CPU)")

	// serveFlag streams per-step surface temperatures to websocket clients.
	serveFlag = flag.String("serve", "", "serve live surface temperatures on this address (e.g. :8080)")

	// viewFlag opens the live wall viewer window.
	viewFlag = flag.Bool("view", false, "open the live wall temperature viewer")

	// plotsFlag writes temperature traces (and benchmark charts in
	// benchmark mode) as PNG files.
	plotsFlag = flag.String("plots", "", "write result plots into this directory")

	// profileFlag captures a CPU profile over the whole run.
	profileFlag = flag.String("profile", "", "write a CPU profile to this path")

	// debugFlag enables debug-level logging.
	debugFlag = flag.Bool("debug", false, "enable debug logging")
)
