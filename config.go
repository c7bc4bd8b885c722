package main

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// Scenario configuration constants shared by the boundary-series loaders and
// the synthetic demo runs.
const (
	// deltaTimeSolidFactor is how many gas-phase rows of the device file
	// collapse into one solid-phase step.
	deltaTimeSolidFactor = 2
	// radiativeFluxScale converts the radiative heat flux column from
	// kW/m^2 to W/m^2.
	radiativeFluxScale = 1000.0
	// constTempBoundary is the pinned front temperature of the adiabatic
	// scenario.
	constTempBoundary = 200.0
	// defaultConvectionH is the convective coefficient of synthetic runs.
	defaultConvectionH = 25.0

	defaultTimeStep = 1.0
	defaultSteps    = 3600
)

// Boundary scenario names. They select which device-file columns feed the
// solver and how the far side of the wall is closed.
const (
	kindDiabatic        = "diabatic"
	kindDiabaticOneSide = "diabatic_one_side"
	kindAdiabatic       = "adiabatic"
)

var allKinds = []string{kindDiabatic, kindDiabaticOneSide, kindAdiabatic}

// loadChunkSize reads the dispatch chunk size registered under label from an
// INI file of `label = n` lines. Benchmark sweeps use one file to pin a
// tuned chunk size per case.
func loadChunkSize(path, label string) (int, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return 0, fmt.Errorf("%w: reading %s: %w", errConfig, path, err)
	}
	key, err := cfg.Section("").GetKey(label)
	if err != nil {
		return 0, fmt.Errorf("%w: no chunk size for %q in %s", errConfig, label, path)
	}
	n, err := key.Int()
	if err != nil {
		return 0, fmt.Errorf("%w: chunk size for %q in %s: %w", errConfig, label, path, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: chunk size for %q must be positive, got %d", errConfig, label, n)
	}
	return n, nil
}
