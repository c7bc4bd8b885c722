package main

import (
	"fmt"
	"runtime"
	"sync"
)

// cpuSolver advances all wall elements on the host. Elements are mutually
// independent, so a fixed pool of workers processes them in stripes with no
// shared mutable state.
type cpuSolver struct {
	materials []material
	elements  []wallElement

	workerCount   int
	workerMu      sync.Mutex
	workerCond    *sync.Cond
	workerStep    int
	workerPending int

	deltaTime float32
	coeffs    [][2]float32
	flux      [][2]float32
	out       [][2]float32
	closed    bool
}

// newCPUSolver copies the elements so the solver owns their temperatures and
// starts the worker goroutines.
func newCPUSolver(materials []material, elements []wallElement, opts solverOptions) (*cpuSolver, error) {
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: no wall elements", errSetup)
	}
	owned := make([]wallElement, len(elements))
	for i, e := range elements {
		owned[i] = e.clone()
	}
	workers := opts.workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > len(owned) {
		workers = len(owned)
	}
	s := &cpuSolver{
		materials:   materials,
		elements:    owned,
		workerCount: workers,
	}
	s.workerCond = sync.NewCond(&s.workerMu)
	for i := 0; i < s.workerCount; i++ {
		go s.workerLoop(i)
	}
	return s, nil
}

// update runs one time step across all elements and blocks until every
// worker has finished its stripe.
func (s *cpuSolver) update(deltaTime float32, coeffs, flux [][2]float32, out [][2]float32) error {
	if len(coeffs) != len(s.elements) || len(flux) != len(s.elements) || len(out) != len(s.elements) {
		return fmt.Errorf("%w: got %d coefficient, %d flux and %d output slots for %d elements",
			errUpdate, len(coeffs), len(flux), len(out), len(s.elements))
	}
	s.workerMu.Lock()
	s.deltaTime = deltaTime
	s.coeffs = coeffs
	s.flux = flux
	s.out = out
	s.workerPending = s.workerCount
	s.workerStep++
	s.workerCond.Broadcast()
	for s.workerPending > 0 {
		s.workerCond.Wait()
	}
	// Drop the caller's slices; they must not be retained across calls.
	s.coeffs, s.flux, s.out = nil, nil, nil
	s.workerMu.Unlock()
	return nil
}

// workerLoop processes every element whose index is congruent to the worker
// index, reusing one tridiagonal scratch buffer across steps.
func (s *cpuSolver) workerLoop(index int) {
	var scratch []solveRow
	lastStep := 0
	s.workerMu.Lock()
	for {
		for s.workerStep == lastStep && !s.closed {
			s.workerCond.Wait()
		}
		if s.closed {
			s.workerMu.Unlock()
			return
		}
		lastStep = s.workerStep
		deltaTime := s.deltaTime
		coeffs, flux, out := s.coeffs, s.flux, s.out
		s.workerMu.Unlock()

		for i := index; i < len(s.elements); i += s.workerCount {
			scratch = heatTransfer(s.elements[i], s.materials, coeffs[i], flux[i], deltaTime, scratch)
			out[i] = surfaceTemperatures(s.elements[i])
		}

		s.workerMu.Lock()
		s.workerPending--
		if s.workerPending == 0 {
			s.workerCond.Broadcast()
		}
	}
}

// close stops the worker goroutines.
func (s *cpuSolver) close() {
	s.workerMu.Lock()
	s.closed = true
	s.workerCond.Broadcast()
	s.workerMu.Unlock()
}
