package main

import (
	"flag"
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

func main() {
	flag.Parse()
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if *debugFlag {
		log.SetLevel(log.DebugLevel)
	}
	if err := run(); err != nil {
		log.WithError(err).Fatal("run failed")
	}
}

func run() error {
	if *profileFlag != "" {
		stop, err := startCPUProfile(*profileFlag)
		if err != nil {
			return fmt.Errorf("starting CPU profile: %w", err)
		}
		defer stop()
	}

	materials, elements, series, err := loadCase()
	if err != nil {
		return err
	}
	if n := *elementsFlag; n > 0 {
		if elements, err = duplicateWallElements(elements, n); err != nil {
			return err
		}
	}

	opts := solverOptions{workers: *workersFlag}
	if *chunkFlag > 0 {
		opts.maxElementsPerChunk = *chunkFlag
	}
	if *chunkConfigFlag != "" {
		label := *benchFlag
		if label == "" {
			label = *kindFlag
		}
		if opts.maxElementsPerChunk, err = loadChunkSize(*chunkConfigFlag, label); err != nil {
			return err
		}
	}

	log.WithFields(log.Fields{
		"kind":     *kindFlag,
		"elements": len(elements),
		"steps":    len(series),
	}).Info("case loaded")

	if *benchFlag != "" {
		results := runBenchmark(allMethods, materials, elements, series, opts, *rerunsFlag)
		if err := writeBenchmarkResults(*benchFlag, results); err != nil {
			return err
		}
		if *plotsFlag != "" {
			return writeBenchmarkPlot(*plotsFlag, *benchFlag, results)
		}
		return nil
	}

	solver, err := newHeatSolver(*methodFlag, materials, elements, opts)
	if err != nil {
		return err
	}
	defer solver.close()

	var hub *monitorHub
	if *serveFlag != "" {
		hub = newMonitorHub()
		hub.serve(*serveFlag)
	}

	sim := newSimulationRun(solver, series, len(elements), true, hub)
	if *viewFlag {
		err = runViewer(sim)
	} else {
		err = sim.run()
	}
	if err != nil {
		return err
	}

	if n := len(sim.trace.time); n > 0 {
		log.WithFields(log.Fields{
			"elapsed": fmt.Sprintf("%.0fs", sim.trace.time[n-1]),
			"front":   fmt.Sprintf("%.1f°C", sim.trace.simFront[n-1]),
			"back":    fmt.Sprintf("%.1f°C", sim.trace.simBack[n-1]),
		}).Info("simulation finished")
	}
	if *plotsFlag != "" {
		return writeTemperaturePlot(*plotsFlag, *kindFlag+"_"+*methodFlag, sim.trace)
	}
	return nil
}

// loadCase builds the materials, wall elements, and boundary series either
// from an FDS case directory or from the built-in demo wall with a
// synthetic fire curve.
func loadCase() ([]material, []wallElement, []boundaryStep, error) {
	if *inputFlag == "" {
		materials, elements := demoWall()
		series, err := syntheticSeries(*kindFlag, *stepsFlag, float32(*dtFlag))
		if err != nil {
			return nil, nil, nil, err
		}
		return materials, elements, series, nil
	}

	model, err := parseScriptFile(filepath.Join(*inputFlag, "heat_transfer.fds"))
	if err != nil {
		return nil, nil, nil, err
	}
	elements, err := buildWallElements(model)
	if err != nil {
		return nil, nil, nil, err
	}
	series, err := loadBoundarySeries(filepath.Join(*inputFlag, "result", "heat_transfer_devc.csv"), *kindFlag)
	if err != nil {
		return nil, nil, nil, err
	}
	return model.materials.materials, elements, series, nil
}

// demoWall is a 2 cm structural steel wall, graded the same way parsed
// layers are.
func demoWall() ([]material, []wallElement) {
	steel := material{
		specificHeat: constantRamp(439.8),
		conductivity: constantRamp(53.3),
		density:      7850.0,
		emissivity:   0.79,
	}
	materials := []material{steel}
	cells := cellsFromLayers(materials, []int{0}, []float32{0.02})
	wallCells := make([]wallCell, len(cells))
	for i, c := range cells {
		wallCells[i] = wallCell{size: c.size, material: c.material, temperature: initialTemperature}
	}
	return materials, []wallElement{{cells: wallCells}}
}
