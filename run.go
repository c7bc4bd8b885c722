package main

// temperatureTrace collects the per-step surface temperatures of the first
// wall element, with the gas-phase reference when the series carries one.
type temperatureTrace struct {
	time     []float32
	simFront []float32
	simBack  []float32
	refFront []float32
	refBack  []float32
	hasRef   bool
}

// simulationRun steps one solver through a boundary series. All wall
// elements share the boundary conditions of the series; the runner owns the
// per-step slices so backends never see reallocation.
type simulationRun struct {
	solver  heatSolver
	series  []boundaryStep
	coeffs  [][2]float32
	flux    [][2]float32
	out     [][2]float32
	step    int
	elapsed float32
	trace   *temperatureTrace
	hub     *monitorHub
}

func newSimulationRun(solver heatSolver, series []boundaryStep, elements int, collectTrace bool, hub *monitorHub) *simulationRun {
	r := &simulationRun{
		solver: solver,
		series: series,
		coeffs: make([][2]float32, elements),
		flux:   make([][2]float32, elements),
		out:    make([][2]float32, elements),
		hub:    hub,
	}
	if collectTrace {
		r.trace = &temperatureTrace{hasRef: true}
	}
	return r
}

func (r *simulationRun) done() bool { return r.step >= len(r.series) }

// advance runs one boundary step through the solver.
func (r *simulationRun) advance() error {
	s := r.series[r.step]
	for i := range r.coeffs {
		r.coeffs[i] = s.h
		r.flux[i] = s.q
	}
	if err := r.solver.update(s.deltaTime, r.coeffs, r.flux, r.out); err != nil {
		return err
	}
	r.step++
	r.elapsed += s.deltaTime

	if r.trace != nil {
		r.trace.time = append(r.trace.time, r.elapsed)
		r.trace.simFront = append(r.trace.simFront, r.out[0][0])
		r.trace.simBack = append(r.trace.simBack, r.out[0][1])
		r.trace.refFront = append(r.trace.refFront, s.reference[0])
		r.trace.refBack = append(r.trace.refBack, s.reference[1])
		if s.reference == ([2]float32{}) {
			r.trace.hasRef = false
		}
	}
	if r.hub != nil {
		r.hub.broadcast(monitorUpdate{
			Time:  r.elapsed,
			Front: r.out[0][0],
			Back:  r.out[0][1],
		})
	}
	return nil
}

// run drives the series to completion.
func (r *simulationRun) run() error {
	for !r.done() {
		if err := r.advance(); err != nil {
			return err
		}
	}
	return nil
}
