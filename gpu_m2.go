//go:build opencl

package main

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"
)

// gpuGroupSolver is strategy M2: elements are grouped into maximal runs of
// identical structure and every run gets its own specialized program with
// the cell geometry compiled in as constants. Only the temperatures live in
// device memory, so the per-step traffic is minimal; the price is one
// kernel build per distinct structure run.
type gpuGroupSolver struct {
	dev     *openclDevice
	groups  []*groupState
	total   int
	timeout time.Duration
}

// groupState is the device-side footprint of one M2 kernel group.
type groupState struct {
	rng     chunkRange
	program *cl.Program
	kernel  *cl.Kernel

	tempsBuf  *cl.MemObject
	coeffsBuf *cl.MemObject
	fluxBuf   *cl.MemObject
	outBuf    *cl.MemObject

	out    []float32
	global []int
}

func newGPUM2Solver(materials []material, elements []wallElement, opts solverOptions) (heatSolver, error) {
	dev, err := openDevice()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errSetup, err)
	}

	s := &gpuGroupSolver{
		dev:     dev,
		total:   len(elements),
		timeout: opts.mapTimeout,
	}
	for _, plan := range buildKernelGroups(elements, opts.maxElementsPerChunk) {
		group, err := s.setupGroup(plan, materials)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("%w: %w", errSetup, err)
		}
		s.groups = append(s.groups, group)
	}
	return s, nil
}

func (s *gpuGroupSolver) setupGroup(plan kernelGroup, materials []material) (*groupState, error) {
	count := plan.count()
	group := &groupState{
		rng:    plan.chunkRange,
		out:    make([]float32, 2*count),
		global: []int{groupedGlobalSize(count)},
	}

	source := insertGroupData(kernelGroupSource, plan.cellSizes, plan.cellMaterials)
	source = insertMaterialData(source, materials)
	var err error
	if group.program, err = s.dev.buildProgram(source); err != nil {
		return nil, err
	}

	floatSize := int(unsafe.Sizeof(float32(0)))
	ctx := s.dev.context
	if group.tempsBuf, err = ctx.CreateEmptyBuffer(cl.MemReadWrite, len(plan.temperatures)*floatSize); err != nil {
		group.release()
		return nil, fmt.Errorf("allocating temperature buffer: %w", err)
	}
	pairSize := 2 * count * floatSize
	if group.coeffsBuf, err = ctx.CreateEmptyBuffer(cl.MemReadOnly, pairSize); err != nil {
		group.release()
		return nil, fmt.Errorf("allocating coefficient buffer: %w", err)
	}
	if group.fluxBuf, err = ctx.CreateEmptyBuffer(cl.MemReadOnly, pairSize); err != nil {
		group.release()
		return nil, fmt.Errorf("allocating flux buffer: %w", err)
	}
	if group.outBuf, err = ctx.CreateEmptyBuffer(cl.MemWriteOnly, pairSize); err != nil {
		group.release()
		return nil, fmt.Errorf("allocating output buffer: %w", err)
	}

	if _, err = s.dev.queue.EnqueueWriteBufferFloat32(group.tempsBuf, true, 0, plan.temperatures, nil); err != nil {
		group.release()
		return nil, fmt.Errorf("writing temperature buffer: %w", err)
	}

	if group.kernel, err = group.program.CreateKernel("heat_update"); err != nil {
		group.release()
		return nil, fmt.Errorf("creating kernel: %w", err)
	}
	if err = group.kernel.SetArgs(
		int32(count),
		float32(0),
		group.tempsBuf,
		group.coeffsBuf,
		group.fluxBuf,
		group.outBuf,
	); err != nil {
		group.release()
		return nil, fmt.Errorf("setting kernel arguments: %w", err)
	}
	return group, nil
}

func (s *gpuGroupSolver) update(deltaTime float32, coeffs, flux [][2]float32, out [][2]float32) error {
	if len(coeffs) != s.total || len(flux) != s.total || len(out) != s.total {
		return fmt.Errorf("%w: got %d/%d/%d coeff/flux/out rows, want %d",
			errUpdate, len(coeffs), len(flux), len(out), s.total)
	}

	queue := s.dev.queue
	var events []*cl.Event
	for _, group := range s.groups {
		ev, err := queue.EnqueueWriteBufferFloat32(group.coeffsBuf, false, 0, flatPairs(coeffs, group.rng), nil)
		if err != nil {
			return fmt.Errorf("%w: writing coefficient buffer: %w", errUpdate, err)
		}
		events = append(events, ev)
		if ev, err = queue.EnqueueWriteBufferFloat32(group.fluxBuf, false, 0, flatPairs(flux, group.rng), nil); err != nil {
			return fmt.Errorf("%w: writing flux buffer: %w", errUpdate, err)
		}
		events = append(events, ev)
		if err = group.kernel.SetArgFloat32(1, deltaTime); err != nil {
			return fmt.Errorf("%w: setting time step: %w", errUpdate, err)
		}
		if ev, err = queue.EnqueueNDRangeKernel(group.kernel, nil, group.global, nil, nil); err != nil {
			return fmt.Errorf("%w: enqueueing kernel: %w", errUpdate, err)
		}
		events = append(events, ev)
		if ev, err = queue.EnqueueReadBufferFloat32(group.outBuf, false, 0, group.out, nil); err != nil {
			return fmt.Errorf("%w: reading output buffer: %w", errUpdate, err)
		}
		events = append(events, ev)
	}
	if err := queue.Flush(); err != nil {
		return fmt.Errorf("%w: flushing queue: %w", errUpdate, err)
	}
	if err := newFence(events).wait(s.timeout); err != nil {
		return fmt.Errorf("%w: %w", errUpdate, err)
	}

	for _, group := range s.groups {
		for i := group.rng.start; i < group.rng.end; i++ {
			local := i - group.rng.start
			out[i] = [2]float32{group.out[2*local], group.out[2*local+1]}
		}
	}
	return nil
}

func (s *gpuGroupSolver) close() {
	for _, group := range s.groups {
		group.release()
	}
	s.groups = nil
	if s.dev != nil {
		s.dev.close()
		s.dev = nil
	}
}

func (g *groupState) release() {
	for _, buf := range []*cl.MemObject{g.outBuf, g.fluxBuf, g.coeffsBuf, g.tempsBuf} {
		if buf != nil {
			buf.Release()
		}
	}
	g.outBuf, g.fluxBuf, g.coeffsBuf, g.tempsBuf = nil, nil, nil, nil
	if g.kernel != nil {
		g.kernel.Release()
		g.kernel = nil
	}
	if g.program != nil {
		g.program.Release()
		g.program = nil
	}
}
