package main

import (
	"errors"
	"fmt"
	"time"
)

// Failure classes of the backend contract. Wrapped into every error a
// backend returns so callers can classify without string matching.
var (
	errSetup  = errors.New("setup failure")
	errUpdate = errors.New("update failure")
	errConfig = errors.New("configuration error")
)

// heatSolver is the contract all four execution backends satisfy. A solver
// owns its wall-element state from construction until close; the per-step
// slices remain owned by the caller and are never retained.
type heatSolver interface {
	// update advances every wall element by deltaTime. coeffs carries the
	// per-element [front, back] heat-transfer coefficients (or sentinel
	// values), flux the per-element [front, back] incoming flux, and out
	// receives the per-element [front, back] surface temperatures.
	update(deltaTime float32, coeffs, flux [][2]float32, out [][2]float32) error
	// close releases all host and device resources of the solver.
	close()
}

// solverOptions carries the configuration a backend reads at construction.
// Nothing here is consulted again after setup.
type solverOptions struct {
	// maxElementsPerChunk bounds how many wall elements one GPU dispatch
	// chunk may hold.
	maxElementsPerChunk int
	// mapTimeout bounds how long one update waits for device read-back
	// completion before failing.
	mapTimeout time.Duration
	// workers bounds CPU-backend parallelism; zero means one per CPU.
	workers int
}

const (
	defaultMaxElementsPerChunk = 16384
	defaultMapTimeout          = 30 * time.Second
)

// withDefaults fills unset options.
func (o solverOptions) withDefaults() solverOptions {
	if o.maxElementsPerChunk <= 0 {
		o.maxElementsPerChunk = defaultMaxElementsPerChunk
	}
	if o.mapTimeout <= 0 {
		o.mapTimeout = defaultMapTimeout
	}
	return o
}

// Method names accepted by newHeatSolver.
const (
	methodCPU   = "cpu"
	methodGPUM1 = "gpu_m1"
	methodGPUM2 = "gpu_m2"
	methodGPUM3 = "gpu_m3"
)

var allMethods = []string{methodCPU, methodGPUM1, methodGPUM2, methodGPUM3}

// newHeatSolver constructs the backend selected by name. The three GPU
// variants differ only in device memory layout; their external behavior is
// identical to the CPU backend within float tolerance.
func newHeatSolver(method string, materials []material, elements []wallElement, opts solverOptions) (heatSolver, error) {
	opts = opts.withDefaults()
	switch method {
	case methodCPU:
		return newCPUSolver(materials, elements, opts)
	case methodGPUM1:
		return newGPUM1Solver(materials, elements, opts)
	case methodGPUM2:
		return newGPUM2Solver(materials, elements, opts)
	case methodGPUM3:
		return newGPUM3Solver(materials, elements, opts)
	default:
		return nil, fmt.Errorf("%w: unknown method %q (want one of %v)", errConfig, method, allMethods)
	}
}
