//go:build opencl

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"
)

// flatPairs views one chunk's rows of a [front, back] pair slice as the
// flat float32 sequence the device buffers expect.
func flatPairs(pairs [][2]float32, r chunkRange) []float32 {
	return unsafe.Slice(&pairs[r.start][0], 2*r.count())
}

// groupedGlobalSize rounds a work-item count up to a multiple of the
// grouping granularity so the driver is free to pick any local size up to
// it; kernels guard against the round-up overshoot. The local size itself is
// left to the driver, since a fixed 256 exceeds the kernel workgroup limit
// of some devices the CPU fallback path lands on.
func groupedGlobalSize(count int) int {
	return (count + workgroupGranularity - 1) / workgroupGranularity * workgroupGranularity
}

const workgroupGranularity = 256

// openclDevice bundles the context and in-order command queue the three GPU
// backends share structurally (each backend opens its own).
type openclDevice struct {
	device  *cl.Device
	context *cl.Context
	queue   *cl.CommandQueue
	name    string
}

// openDevice picks the first GPU device of any platform, falling back to a
// CPU device so the backends stay usable on driver-only hosts.
func openDevice() (*openclDevice, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available; ensure a vendor driver is installed and detected by `clinfo`")
	}
	var device *cl.Device
	for _, p := range platforms {
		devices, derr := p.GetDevices(cl.DeviceTypeGPU)
		if derr != nil && derr != cl.ErrDeviceNotFound {
			continue
		}
		if len(devices) > 0 {
			device = devices[0]
			break
		}
	}
	if device == nil {
		for _, p := range platforms {
			devices, derr := p.GetDevices(cl.DeviceTypeCPU)
			if derr != nil && derr != cl.ErrDeviceNotFound {
				continue
			}
			if len(devices) > 0 {
				device = devices[0]
				break
			}
		}
	}
	if device == nil {
		return nil, errors.New("no suitable OpenCL devices found")
	}

	context, err := cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	queue, err := context.CreateCommandQueue(device, 0)
	if err != nil {
		context.Release()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	return &openclDevice{
		device:  device,
		context: context,
		queue:   queue,
		name:    device.Name(),
	}, nil
}

// buildProgram compiles one generated kernel source for the device,
// surfacing the compiler log on failure.
func (d *openclDevice) buildProgram(source string) (*cl.Program, error) {
	program, err := d.context.CreateProgramWithSource([]string{source})
	if err != nil {
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := program.BuildProgram([]*cl.Device{d.device}, ""); err != nil {
		program.Release()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	return program, nil
}

func (d *openclDevice) close() {
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.context != nil {
		d.context.Release()
		d.context = nil
	}
}

// fence resolves once a batch of enqueued commands has completed. It stands
// in for blocking reads so one update can submit every chunk before waiting
// on any of them.
type fence struct {
	done chan error
}

// newFence takes ownership of the events and releases them after completion.
func newFence(events []*cl.Event) *fence {
	f := &fence{done: make(chan error, 1)}
	go func() {
		err := cl.WaitForEvents(events)
		for _, e := range events {
			e.Release()
		}
		f.done <- err
	}()
	return f
}

// wait blocks until completion or timeout. On timeout the watcher goroutine
// keeps draining the events in the background so they are still released.
func (f *fence) wait(timeout time.Duration) error {
	select {
	case err := <-f.done:
		if err != nil {
			return fmt.Errorf("waiting for device completion: %w", err)
		}
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("device did not complete within %v", timeout)
	}
}
