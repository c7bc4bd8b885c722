//go:build opencl

package main

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"
)

// gpuFlatSolver is strategy M1: all cells of a chunk flattened into one
// device buffer, elements located through cumulative end offsets, and the
// tridiagonal scratch spilled to global buffers. One program serves every
// chunk; mixed wall structures cost nothing beyond the offset indirection.
type gpuFlatSolver struct {
	dev     *openclDevice
	program *cl.Program
	chunks  []*flatChunkState
	total   int
	timeout time.Duration
}

// flatChunkState is the device-side footprint of one M1 chunk.
type flatChunkState struct {
	rng    chunkRange
	kernel *cl.Kernel

	endsBuf   *cl.MemObject
	cellsBuf  *cl.MemObject
	matB      *cl.MemObject
	matD      *cl.MemObject
	matA      *cl.MemObject
	matC      *cl.MemObject
	coeffsBuf *cl.MemObject
	fluxBuf   *cl.MemObject
	outBuf    *cl.MemObject

	out    []float32
	global []int
}

func newGPUM1Solver(materials []material, elements []wallElement, opts solverOptions) (heatSolver, error) {
	dev, err := openDevice()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errSetup, err)
	}
	program, err := dev.buildProgram(insertMaterialData(kernelFlatSource, materials))
	if err != nil {
		dev.close()
		return nil, fmt.Errorf("%w: %w", errSetup, err)
	}

	s := &gpuFlatSolver{
		dev:     dev,
		program: program,
		total:   len(elements),
		timeout: opts.mapTimeout,
	}
	for _, plan := range buildFlatChunks(elements, opts.maxElementsPerChunk) {
		chunk, err := s.setupChunk(plan)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("%w: %w", errSetup, err)
		}
		s.chunks = append(s.chunks, chunk)
	}
	return s, nil
}

func (s *gpuFlatSolver) setupChunk(plan flatChunk) (*flatChunkState, error) {
	count := plan.count()
	chunk := &flatChunkState{
		rng:    plan.chunkRange,
		out:    make([]float32, 2*count),
		global: []int{groupedGlobalSize(count)},
	}

	wordSize := int(unsafe.Sizeof(uint32(0)))
	floatSize := int(unsafe.Sizeof(float32(0)))
	ctx := s.dev.context

	var err error
	if chunk.endsBuf, err = ctx.CreateEmptyBuffer(cl.MemReadOnly, count*wordSize); err != nil {
		return nil, fmt.Errorf("allocating end-offset buffer: %w", err)
	}
	if chunk.cellsBuf, err = ctx.CreateEmptyBuffer(cl.MemReadWrite, len(plan.cells)*wordSize); err != nil {
		chunk.release()
		return nil, fmt.Errorf("allocating cell buffer: %w", err)
	}
	scratchSize := plan.cellCount() * floatSize
	for _, buf := range []**cl.MemObject{&chunk.matB, &chunk.matD, &chunk.matA, &chunk.matC} {
		if *buf, err = ctx.CreateEmptyBuffer(cl.MemReadWrite, scratchSize); err != nil {
			chunk.release()
			return nil, fmt.Errorf("allocating tridiagonal scratch: %w", err)
		}
	}
	pairSize := 2 * count * floatSize
	if chunk.coeffsBuf, err = ctx.CreateEmptyBuffer(cl.MemReadOnly, pairSize); err != nil {
		chunk.release()
		return nil, fmt.Errorf("allocating coefficient buffer: %w", err)
	}
	if chunk.fluxBuf, err = ctx.CreateEmptyBuffer(cl.MemReadOnly, pairSize); err != nil {
		chunk.release()
		return nil, fmt.Errorf("allocating flux buffer: %w", err)
	}
	if chunk.outBuf, err = ctx.CreateEmptyBuffer(cl.MemWriteOnly, pairSize); err != nil {
		chunk.release()
		return nil, fmt.Errorf("allocating output buffer: %w", err)
	}

	queue := s.dev.queue
	if _, err = queue.EnqueueWriteBuffer(chunk.endsBuf, true, 0,
		len(plan.cellEnds)*wordSize, unsafe.Pointer(&plan.cellEnds[0]), nil); err != nil {
		chunk.release()
		return nil, fmt.Errorf("writing end-offset buffer: %w", err)
	}
	if _, err = queue.EnqueueWriteBuffer(chunk.cellsBuf, true, 0,
		len(plan.cells)*wordSize, unsafe.Pointer(&plan.cells[0]), nil); err != nil {
		chunk.release()
		return nil, fmt.Errorf("writing cell buffer: %w", err)
	}

	if chunk.kernel, err = s.program.CreateKernel("heat_update"); err != nil {
		chunk.release()
		return nil, fmt.Errorf("creating kernel: %w", err)
	}
	if err = chunk.kernel.SetArgs(
		int32(count),
		float32(0),
		chunk.endsBuf,
		chunk.cellsBuf,
		chunk.matB,
		chunk.matD,
		chunk.matA,
		chunk.matC,
		chunk.coeffsBuf,
		chunk.fluxBuf,
		chunk.outBuf,
	); err != nil {
		chunk.release()
		return nil, fmt.Errorf("setting kernel arguments: %w", err)
	}
	return chunk, nil
}

func (s *gpuFlatSolver) update(deltaTime float32, coeffs, flux [][2]float32, out [][2]float32) error {
	if len(coeffs) != s.total || len(flux) != s.total || len(out) != s.total {
		return fmt.Errorf("%w: got %d/%d/%d coeff/flux/out rows, want %d",
			errUpdate, len(coeffs), len(flux), len(out), s.total)
	}

	queue := s.dev.queue
	var events []*cl.Event
	for _, chunk := range s.chunks {
		ev, err := queue.EnqueueWriteBufferFloat32(chunk.coeffsBuf, false, 0, flatPairs(coeffs, chunk.rng), nil)
		if err != nil {
			return fmt.Errorf("%w: writing coefficient buffer: %w", errUpdate, err)
		}
		events = append(events, ev)
		if ev, err = queue.EnqueueWriteBufferFloat32(chunk.fluxBuf, false, 0, flatPairs(flux, chunk.rng), nil); err != nil {
			return fmt.Errorf("%w: writing flux buffer: %w", errUpdate, err)
		}
		events = append(events, ev)
		if err = chunk.kernel.SetArgFloat32(1, deltaTime); err != nil {
			return fmt.Errorf("%w: setting time step: %w", errUpdate, err)
		}
		if ev, err = queue.EnqueueNDRangeKernel(chunk.kernel, nil, chunk.global, nil, nil); err != nil {
			return fmt.Errorf("%w: enqueueing kernel: %w", errUpdate, err)
		}
		events = append(events, ev)
		if ev, err = queue.EnqueueReadBufferFloat32(chunk.outBuf, false, 0, chunk.out, nil); err != nil {
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

	for _, chunk := range s.chunks {
		for i := chunk.rng.start; i < chunk.rng.end; i++ {
			local := i - chunk.rng.start
			out[i] = [2]float32{chunk.out[2*local], chunk.out[2*local+1]}
		}
	}
	return nil
}

func (s *gpuFlatSolver) close() {
	for _, chunk := range s.chunks {
		chunk.release()
	}
	s.chunks = nil
	if s.program != nil {
		s.program.Release()
		s.program = nil
	}
	if s.dev != nil {
		s.dev.close()
		s.dev = nil
	}
}

func (c *flatChunkState) release() {
	for _, buf := range []*cl.MemObject{
		c.outBuf, c.fluxBuf, c.coeffsBuf,
		c.matC, c.matA, c.matD, c.matB,
		c.cellsBuf, c.endsBuf,
	} {
		if buf != nil {
			buf.Release()
		}
	}
	c.outBuf, c.fluxBuf, c.coeffsBuf = nil, nil, nil
	c.matC, c.matA, c.matD, c.matB = nil, nil, nil, nil
	c.cellsBuf, c.endsBuf = nil, nil
	if c.kernel != nil {
		c.kernel.Release()
		c.kernel = nil
	}
}
