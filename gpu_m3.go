//go:build opencl

package main

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"
)

// gpuPaddedSolver is strategy M3: every element is stored at a fixed stride
// of one cell-count header word plus the padded cell capacity, so a single
// program covers mixed structures with uniform indexing. Short elements pay
// for the padding in memory and bandwidth.
type gpuPaddedSolver struct {
	dev     *openclDevice
	program *cl.Program
	chunks  []*paddedChunkState
	total   int
	timeout time.Duration
}

// paddedChunkState is the device-side footprint of one M3 chunk.
type paddedChunkState struct {
	rng    chunkRange
	kernel *cl.Kernel

	elementsBuf *cl.MemObject
	coeffsBuf   *cl.MemObject
	fluxBuf     *cl.MemObject
	outBuf      *cl.MemObject

	out    []float32
	global []int
}

func newGPUM3Solver(materials []material, elements []wallElement, opts solverOptions) (heatSolver, error) {
	dev, err := openDevice()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errSetup, err)
	}
	maxCells := maxCellCount(elements)
	source := insertPaddedData(kernelPaddedSource, maxCells)
	program, err := dev.buildProgram(insertMaterialData(source, materials))
	if err != nil {
		dev.close()
		return nil, fmt.Errorf("%w: %w", errSetup, err)
	}

	s := &gpuPaddedSolver{
		dev:     dev,
		program: program,
		total:   len(elements),
		timeout: opts.mapTimeout,
	}
	for _, plan := range buildPaddedChunks(elements, opts.maxElementsPerChunk, maxCells) {
		chunk, err := s.setupChunk(plan)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("%w: %w", errSetup, err)
		}
		s.chunks = append(s.chunks, chunk)
	}
	return s, nil
}

func (s *gpuPaddedSolver) setupChunk(plan paddedChunk) (*paddedChunkState, error) {
	count := plan.count()
	chunk := &paddedChunkState{
		rng:    plan.chunkRange,
		out:    make([]float32, 2*count),
		global: []int{groupedGlobalSize(count)},
	}

	wordSize := int(unsafe.Sizeof(uint32(0)))
	floatSize := int(unsafe.Sizeof(float32(0)))
	ctx := s.dev.context

	var err error
	if chunk.elementsBuf, err = ctx.CreateEmptyBuffer(cl.MemReadWrite, len(plan.words)*wordSize); err != nil {
		return nil, fmt.Errorf("allocating element buffer: %w", err)
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

	if _, err = s.dev.queue.EnqueueWriteBuffer(chunk.elementsBuf, true, 0,
		len(plan.words)*wordSize, unsafe.Pointer(&plan.words[0]), nil); err != nil {
		chunk.release()
		return nil, fmt.Errorf("writing element buffer: %w", err)
	}

	if chunk.kernel, err = s.program.CreateKernel("heat_update"); err != nil {
		chunk.release()
		return nil, fmt.Errorf("creating kernel: %w", err)
	}
	if err = chunk.kernel.SetArgs(
		int32(count),
		float32(0),
		chunk.elementsBuf,
		chunk.coeffsBuf,
		chunk.fluxBuf,
		chunk.outBuf,
	); err != nil {
		chunk.release()
		return nil, fmt.Errorf("setting kernel arguments: %w", err)
	}
	return chunk, nil
}

func (s *gpuPaddedSolver) update(deltaTime float32, coeffs, flux [][2]float32, out [][2]float32) error {
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

func (s *gpuPaddedSolver) close() {
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

func (c *paddedChunkState) release() {
	for _, buf := range []*cl.MemObject{c.outBuf, c.fluxBuf, c.coeffsBuf, c.elementsBuf} {
		if buf != nil {
			buf.Release()
		}
	}
	c.outBuf, c.fluxBuf, c.coeffsBuf, c.elementsBuf = nil, nil, nil, nil
	if c.kernel != nil {
		c.kernel.Release()
		c.kernel = nil
	}
}
