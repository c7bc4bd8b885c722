package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// boundaryStep is one solid-phase time step of a boundary series: the
// per-side heat-transfer coefficients and incoming flux fed to the solver,
// plus the reference surface temperatures recorded by the gas-phase
// simulation, when available.
type boundaryStep struct {
	deltaTime float32
	h         [2]float32
	q         [2]float32
	reference [2]float32
}

// seriesColumns maps a scenario kind to the device-file columns it consumes.
// The Time column always comes first.
func seriesColumns(kind string) ([]string, error) {
	switch kind {
	case kindDiabatic:
		return []string{
			"Time",
			"DEVC_WALL_HEAT_TRANSFER_COEFFICIENT_WEST",
			"DEVC_GAS_TEMPERATURE_WEST",
			"DEVC_WALL_RADIATIVE_HEAT_FLUX_WEST",
			"DEVC_WALL_TEMPERATURE_WEST",
			"DEVC_WALL_HEAT_TRANSFER_COEFFICIENT_EAST",
			"DEVC_GAS_TEMPERATURE_EAST",
			"DEVC_WALL_RADIATIVE_HEAT_FLUX_EAST",
			"DEVC_WALL_TEMPERATURE_EAST",
		}, nil
	case kindDiabaticOneSide:
		return []string{
			"Time",
			"DEVC_WALL_HEAT_TRANSFER_COEFFICIENT_WEST",
			"DEVC_GAS_TEMPERATURE_WEST",
			"DEVC_WALL_RADIATIVE_HEAT_FLUX_WEST",
			"DEVC_WALL_TEMPERATURE_WEST",
			"DEVC_WALL_TEMPERATURE_EAST",
		}, nil
	case kindAdiabatic:
		return []string{"Time", "DEVC_WALL_TEMPERATURE_WEST"}, nil
	default:
		return nil, fmt.Errorf("%w: unknown scenario kind %q (want one of %v)", errConfig, kind, allKinds)
	}
}

// seriesStep converts one selected device row into a boundary step.
// Convective sides combine the gas temperature and the radiative flux into
// the incoming flux channel; the sentinel sides carry their closure instead.
func seriesStep(kind string, deltaTime float32, vals []float32) boundaryStep {
	step := boundaryStep{deltaTime: deltaTime}
	switch kind {
	case kindDiabatic:
		step.h = [2]float32{vals[1], vals[5]}
		step.q = [2]float32{
			vals[1]*vals[2] + vals[3]*radiativeFluxScale,
			vals[5]*vals[6] + vals[7]*radiativeFluxScale,
		}
		step.reference = [2]float32{vals[4], vals[8]}
	case kindDiabaticOneSide:
		step.h = [2]float32{vals[1], adiabaticH}
		step.q = [2]float32{vals[1]*vals[2] + vals[3]*radiativeFluxScale, 0}
		step.reference = [2]float32{vals[4], vals[5]}
	case kindAdiabatic:
		step.h = [2]float32{constTempH, adiabaticH}
		step.q = [2]float32{constTempBoundary, 0}
		step.reference = [2]float32{constTempBoundary, vals[1]}
	}
	return step
}

// parseBoundarySeries reads an FDS device CSV: one units line, one quoted
// header line, then data rows. Every deltaTimeSolidFactor-th gas row becomes
// one solid step; the warm-up step before the series settles is dropped.
func parseBoundarySeries(r io.Reader, kind string) ([]boundaryStep, error) {
	columns, err := seriesColumns(kind)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		return nil, fmt.Errorf("%w: device file is empty", errConfig)
	}
	if !scanner.Scan() {
		return nil, fmt.Errorf("%w: device file has no header row", errConfig)
	}

	header := strings.Split(strings.ReplaceAll(scanner.Text(), "\"", ""), ",")
	indexes := make([]int, len(columns))
	for i, want := range columns {
		indexes[i] = -1
		for j, name := range header {
			if strings.TrimSpace(name) == want {
				indexes[i] = j
				break
			}
		}
		if indexes[i] < 0 {
			return nil, fmt.Errorf("%w: device column %q not found", errConfig, want)
		}
	}

	var steps []boundaryStep
	vals := make([]float32, len(columns))
	lastTime := float32(0)
	rowInGroup := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rowInGroup++
		if rowInGroup < deltaTimeSolidFactor {
			continue
		}
		rowInGroup = 0

		fields := strings.Split(line, ",")
		for i, idx := range indexes {
			if idx >= len(fields) {
				return nil, fmt.Errorf("%w: device row has %d fields, column %q needs index %d", errConfig, len(fields), columns[i], idx)
			}
			v, perr := strconv.ParseFloat(strings.TrimSpace(fields[idx]), 32)
			if perr != nil {
				return nil, fmt.Errorf("%w: parsing device column %q: %w", errConfig, columns[i], perr)
			}
			vals[i] = float32(v)
		}

		deltaTime := vals[0] - lastTime
		lastTime = vals[0]
		steps = append(steps, seriesStep(kind, deltaTime, vals))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading device file: %w", errConfig, err)
	}
	if len(steps) < 2 {
		return nil, fmt.Errorf("%w: device file has too few rows for a %s series", errConfig, kind)
	}
	return steps[1:], nil
}

// loadBoundarySeries reads the boundary series of kind from the device CSV
// at path.
func loadBoundarySeries(path, kind string) ([]boundaryStep, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errConfig, err)
	}
	defer f.Close()
	steps, err := parseBoundarySeries(f, kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return steps, nil
}

// syntheticSeries builds a boundary series without a gas-phase result: the
// convective sides follow the standard cellulosic fire curve with a fixed
// convection coefficient. Unlike a device-file series of the same kind, the
// synthetic flux is convection-only; there is no radiative term to fold in.
func syntheticSeries(kind string, steps int, deltaTime float32) ([]boundaryStep, error) {
	if _, err := seriesColumns(kind); err != nil {
		return nil, err
	}
	series := make([]boundaryStep, steps)
	for i := range series {
		t := float64(i+1) * float64(deltaTime)
		gas := float32(20.0 + 345.0*math.Log10(8.0*t/60.0+1.0))
		step := boundaryStep{deltaTime: deltaTime}
		switch kind {
		case kindDiabatic:
			step.h = [2]float32{defaultConvectionH, defaultConvectionH}
			step.q = [2]float32{defaultConvectionH * gas, defaultConvectionH * gas}
		case kindDiabaticOneSide:
			step.h = [2]float32{defaultConvectionH, adiabaticH}
			step.q = [2]float32{defaultConvectionH * gas, 0}
		case kindAdiabatic:
			step.h = [2]float32{constTempH, adiabaticH}
			step.q = [2]float32{constTempBoundary, 0}
		}
		series[i] = step
	}
	return series, nil
}
