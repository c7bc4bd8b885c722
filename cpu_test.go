package main

import (
	"errors"
	"testing"
)

// runSeries drives one solver over a boundary series and returns the final
// surface temperatures per element.
func runSeries(t *testing.T, solver heatSolver, series []boundaryStep, count int) [][2]float32 {
	t.Helper()
	coeffs := make([][2]float32, count)
	flux := make([][2]float32, count)
	out := make([][2]float32, count)
	for _, step := range series {
		for i := range coeffs {
			coeffs[i] = step.h
			flux[i] = step.q
		}
		if err := solver.update(step.deltaTime, coeffs, flux, out); err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	return out
}

func TestCPUSolverHeatsWall(t *testing.T) {
	materials := steelMaterials()
	elements := []wallElement{uniformElement(8, 20)}
	series, err := syntheticSeries(kindDiabaticOneSide, 100, 1.0)
	if err != nil {
		t.Fatalf("syntheticSeries: %v", err)
	}

	solver, err := newHeatSolver(methodCPU, materials, elements, solverOptions{})
	if err != nil {
		t.Fatalf("newHeatSolver: %v", err)
	}
	defer solver.close()

	out := runSeries(t, solver, series, len(elements))
	front, back := out[0][0], out[0][1]
	if !(front > 20) {
		t.Errorf("front surface = %v, want above the 20 °C initial state", front)
	}
	if front < back {
		t.Errorf("front %v cooler than the adiabatic back %v", front, back)
	}
	if front != front || back != back {
		t.Errorf("NaN surface temperatures: %v %v", front, back)
	}
}

func TestCPUSolverDeterministicAcrossWorkers(t *testing.T) {
	materials := steelMaterials()
	series, err := syntheticSeries(kindDiabaticOneSide, 50, 1.0)
	if err != nil {
		t.Fatalf("syntheticSeries: %v", err)
	}

	results := make([][][2]float32, 0, 2)
	for _, workers := range []int{1, 4} {
		elements, err := duplicateWallElements(mixedElements(), 8)
		if err != nil {
			t.Fatalf("duplicateWallElements: %v", err)
		}
		solver, err := newHeatSolver(methodCPU, materials, elements, solverOptions{workers: workers})
		if err != nil {
			t.Fatalf("newHeatSolver(workers=%d): %v", workers, err)
		}
		out := runSeries(t, solver, series, len(elements))
		solver.close()
		results = append(results, out)
	}

	for i := range results[0] {
		if results[0][i] != results[1][i] {
			t.Errorf("element %d: workers=1 gives %v, workers=4 gives %v", i, results[0][i], results[1][i])
		}
	}
}

func TestCPUSolverIdenticalElementsAgree(t *testing.T) {
	materials := steelMaterials()
	elements, err := duplicateWallElements([]wallElement{uniformElement(6, 20)}, 5)
	if err != nil {
		t.Fatalf("duplicateWallElements: %v", err)
	}
	series, err := syntheticSeries(kindDiabatic, 60, 1.0)
	if err != nil {
		t.Fatalf("syntheticSeries: %v", err)
	}

	solver, err := newHeatSolver(methodCPU, materials, elements, solverOptions{workers: 3})
	if err != nil {
		t.Fatalf("newHeatSolver: %v", err)
	}
	defer solver.close()

	out := runSeries(t, solver, series, len(elements))
	for i := 1; i < len(out); i++ {
		if out[i] != out[0] {
			t.Errorf("element %d diverged: %v vs %v", i, out[i], out[0])
		}
	}
}

func TestCPUSolverValidatesSliceLengths(t *testing.T) {
	solver, err := newHeatSolver(methodCPU, steelMaterials(), mixedElements(), solverOptions{})
	if err != nil {
		t.Fatalf("newHeatSolver: %v", err)
	}
	defer solver.close()

	short := make([][2]float32, 2)
	full := make([][2]float32, len(mixedElements()))
	if err := solver.update(1.0, short, full, full); err == nil {
		t.Error("short coeffs slice accepted")
	} else if !errors.Is(err, errUpdate) {
		t.Errorf("short coeffs: got %v, want errUpdate", err)
	}
	if err := solver.update(1.0, full, full, short); err == nil {
		t.Error("short out slice accepted")
	}
}

func TestNewHeatSolverUnknownMethod(t *testing.T) {
	_, err := newHeatSolver("fpga", steelMaterials(), mixedElements(), solverOptions{})
	if err == nil {
		t.Fatal("unknown method accepted")
	}
	if !errors.Is(err, errConfig) {
		t.Errorf("got %v, want errConfig", err)
	}
}
