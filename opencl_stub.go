//go:build !opencl

package main

import "fmt"

func newGPUM1Solver(materials []material, elements []wallElement, opts solverOptions) (heatSolver, error) {
	return nil, fmt.Errorf("%w: OpenCL support is not enabled; rebuild with -tags opencl", errSetup)
}

func newGPUM2Solver(materials []material, elements []wallElement, opts solverOptions) (heatSolver, error) {
	return nil, fmt.Errorf("%w: OpenCL support is not enabled; rebuild with -tags opencl", errSetup)
}

func newGPUM3Solver(materials []material, elements []wallElement, opts solverOptions) (heatSolver, error) {
	return nil, fmt.Errorf("%w: OpenCL support is not enabled; rebuild with -tags opencl", errSetup)
}
