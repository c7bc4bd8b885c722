package main

import (
	"errors"
	"strings"
	"testing"
)

const testDeviceCSV = `s,W/(m2 K),C,kW/m2,C,W/(m2 K),C,kW/m2,C
"Time","DEVC_WALL_HEAT_TRANSFER_COEFFICIENT_WEST","DEVC_GAS_TEMPERATURE_WEST","DEVC_WALL_RADIATIVE_HEAT_FLUX_WEST","DEVC_WALL_TEMPERATURE_WEST","DEVC_WALL_HEAT_TRANSFER_COEFFICIENT_EAST","DEVC_GAS_TEMPERATURE_EAST","DEVC_WALL_RADIATIVE_HEAT_FLUX_EAST","DEVC_WALL_TEMPERATURE_EAST"
0.5, 10.0, 100.0, 1.0, 20.0, 5.0, 50.0, 0.5, 20.0
1.0, 11.0, 110.0, 1.1, 21.0, 5.5, 55.0, 0.6, 20.5
1.5, 12.0, 120.0, 1.2, 22.0, 6.0, 60.0, 0.7, 21.0
2.0, 13.0, 130.0, 1.3, 23.0, 6.5, 65.0, 0.8, 21.5
2.5, 14.0, 140.0, 1.4, 24.0, 7.0, 70.0, 0.9, 22.0
3.0, 15.0, 150.0, 1.5, 25.0, 7.5, 75.0, 1.0, 22.5
`

func TestParseBoundarySeriesDiabatic(t *testing.T) {
	steps, err := parseBoundarySeries(strings.NewReader(testDeviceCSV), kindDiabatic)
	if err != nil {
		t.Fatalf("parseBoundarySeries: %v", err)
	}

	// Six gas rows, every second one selected, warm-up step dropped.
	if len(steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(steps))
	}

	// Second selected row (t=2.0): h from the coefficient columns, the flux
	// combines convection with the radiative term scaled from kW to W.
	first := steps[0]
	if first.deltaTime != 1.0 {
		t.Errorf("deltaTime = %v, want 1.0", first.deltaTime)
	}
	if first.h != [2]float32{13.0, 6.5} {
		t.Errorf("h = %v, want [13 6.5]", first.h)
	}
	wantQ := [2]float32{
		13.0*130.0 + 1.3*radiativeFluxScale,
		6.5*65.0 + 0.8*radiativeFluxScale,
	}
	if first.q != wantQ {
		t.Errorf("q = %v, want %v", first.q, wantQ)
	}
	if first.reference != [2]float32{23.0, 21.5} {
		t.Errorf("reference = %v, want [23 21.5]", first.reference)
	}
}

func TestParseBoundarySeriesOneSide(t *testing.T) {
	steps, err := parseBoundarySeries(strings.NewReader(testDeviceCSV), kindDiabaticOneSide)
	if err != nil {
		t.Fatalf("parseBoundarySeries: %v", err)
	}
	for _, step := range steps {
		if step.h[1] != adiabaticH {
			t.Errorf("back coefficient = %v, want the adiabatic sentinel", step.h[1])
		}
		if step.q[1] != 0 {
			t.Errorf("back flux = %v, want 0", step.q[1])
		}
	}
}

func TestParseBoundarySeriesAdiabatic(t *testing.T) {
	steps, err := parseBoundarySeries(strings.NewReader(testDeviceCSV), kindAdiabatic)
	if err != nil {
		t.Fatalf("parseBoundarySeries: %v", err)
	}
	for _, step := range steps {
		want := boundaryStep{
			deltaTime: step.deltaTime,
			h:         [2]float32{constTempH, adiabaticH},
			q:         [2]float32{constTempBoundary, 0},
			reference: step.reference,
		}
		if step != want {
			t.Errorf("step = %+v, want sentinel boundary %+v", step, want)
		}
	}
}

func TestParseBoundarySeriesMissingColumn(t *testing.T) {
	csv := "s,C\n\"Time\",\"DEVC_WALL_TEMPERATURE_WEST\"\n1.0, 20.0\n2.0, 21.0\n"
	_, err := parseBoundarySeries(strings.NewReader(csv), kindDiabatic)
	if err == nil {
		t.Fatal("device file without coefficient columns accepted")
	}
	if !errors.Is(err, errConfig) {
		t.Errorf("got %v, want errConfig", err)
	}
}

func TestParseBoundarySeriesUnknownKind(t *testing.T) {
	if _, err := parseBoundarySeries(strings.NewReader(testDeviceCSV), "isothermal"); err == nil {
		t.Fatal("unknown kind accepted")
	}
}

func TestParseBoundarySeriesTooShort(t *testing.T) {
	short := strings.Join(strings.SplitAfterN(testDeviceCSV, "\n", 5)[:4], "")
	if _, err := parseBoundarySeries(strings.NewReader(short), kindDiabatic); err == nil {
		t.Fatal("two-row device file accepted; the warm-up drop needs at least two steps")
	}
}

func TestSyntheticSeries(t *testing.T) {
	series, err := syntheticSeries(kindDiabatic, 10, 2.0)
	if err != nil {
		t.Fatalf("syntheticSeries: %v", err)
	}
	if len(series) != 10 {
		t.Fatalf("got %d steps, want 10", len(series))
	}
	for i, step := range series {
		if step.deltaTime != 2.0 {
			t.Fatalf("step %d deltaTime = %v, want 2", i, step.deltaTime)
		}
		if step.h != [2]float32{defaultConvectionH, defaultConvectionH} {
			t.Fatalf("step %d h = %v", i, step.h)
		}
		if i > 0 && step.q[0] <= series[i-1].q[0] {
			t.Fatalf("fire-curve flux not increasing at step %d: %v then %v", i, series[i-1].q[0], step.q[0])
		}
	}

	if _, err := syntheticSeries("isothermal", 10, 1.0); err == nil {
		t.Fatal("unknown kind accepted")
	}
}
