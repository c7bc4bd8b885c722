//go:build opencl

package main

import (
	"testing"
)

// newGPUForTest constructs one GPU backend, skipping the test when no OpenCL
// device is available on the host.
func newGPUForTest(t *testing.T, method string, materials []material, elements []wallElement, opts solverOptions) heatSolver {
	t.Helper()
	solver, err := newHeatSolver(method, materials, elements, opts)
	if err != nil {
		t.Skipf("%s backend unavailable: %v", method, err)
	}
	return solver
}

func TestGroupedGlobalSize(t *testing.T) {
	cases := []struct{ count, want int }{
		{1, 256},
		{256, 256},
		{257, 512},
		{1000, 1024},
	}
	for _, c := range cases {
		if got := groupedGlobalSize(c.count); got != c.want {
			t.Errorf("groupedGlobalSize(%d) = %d, want %d", c.count, got, c.want)
		}
	}
}

func TestGPUBackendsMatchCPU(t *testing.T) {
	materials := steelMaterials()
	series, err := syntheticSeries(kindDiabaticOneSide, 100, 1.0)
	if err != nil {
		t.Fatalf("syntheticSeries: %v", err)
	}

	elements, err := duplicateWallElements(mixedElements(), 8)
	if err != nil {
		t.Fatalf("duplicateWallElements: %v", err)
	}
	cpu, err := newHeatSolver(methodCPU, materials, elements, solverOptions{})
	if err != nil {
		t.Fatalf("newHeatSolver(cpu): %v", err)
	}
	defer cpu.close()
	want := runSeries(t, cpu, series, len(elements))

	for _, method := range []string{methodGPUM1, methodGPUM2, methodGPUM3} {
		t.Run(method, func(t *testing.T) {
			gpu := newGPUForTest(t, method, materials, elements, solverOptions{})
			defer gpu.close()
			got := runSeries(t, gpu, series, len(elements))
			for i := range want {
				for side := 0; side < 2; side++ {
					if d := abs32(got[i][side] - want[i][side]); d > 1e-3 {
						t.Errorf("element %d side %d: gpu %v vs cpu %v (delta %v)",
							i, side, got[i][side], want[i][side], d)
					}
				}
			}
		})
	}
}

func TestGPUChunkSizeInvariance(t *testing.T) {
	materials := steelMaterials()
	series, err := syntheticSeries(kindDiabatic, 50, 1.0)
	if err != nil {
		t.Fatalf("syntheticSeries: %v", err)
	}
	elements, err := duplicateWallElements(mixedElements(), 12)
	if err != nil {
		t.Fatalf("duplicateWallElements: %v", err)
	}

	for _, method := range []string{methodGPUM1, methodGPUM2, methodGPUM3} {
		t.Run(method, func(t *testing.T) {
			whole := newGPUForTest(t, method, materials, elements, solverOptions{})
			defer whole.close()
			want := runSeries(t, whole, series, len(elements))

			split := newGPUForTest(t, method, materials, elements, solverOptions{maxElementsPerChunk: 2})
			defer split.close()
			got := runSeries(t, split, series, len(elements))

			for i := range want {
				if got[i] != want[i] {
					t.Errorf("element %d: chunked %v vs whole %v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestGPUUpdateValidatesSliceLengths(t *testing.T) {
	for _, method := range []string{methodGPUM1, methodGPUM2, methodGPUM3} {
		t.Run(method, func(t *testing.T) {
			solver := newGPUForTest(t, method, steelMaterials(), mixedElements(), solverOptions{})
			defer solver.close()
			full := make([][2]float32, len(mixedElements()))
			short := make([][2]float32, 1)
			if err := solver.update(1.0, short, full, full); err == nil {
				t.Errorf("%s accepted a short coefficient slice", method)
			}
		})
	}
}
