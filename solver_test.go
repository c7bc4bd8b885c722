package main

import (
	"math"
	"testing"
)

func steelMaterials() []material {
	return []material{{
		specificHeat: constantRamp(439.8),
		conductivity: constantRamp(53.3),
		density:      7850.0,
		emissivity:   0.79,
	}}
}

func uniformElement(cells int, temperature float32) wallElement {
	wc := make([]wallCell, cells)
	for i := range wc {
		wc[i] = wallCell{size: 0.005, material: 0, temperature: temperature}
	}
	return wallElement{cells: wc}
}

func TestSubdivisions(t *testing.T) {
	cases := []struct {
		maxDelta float32
		want     int
	}{
		{0, 1},
		{5, 1},
		{9.99, 1},
		{15, 2},
		{25, 4},
		{1000, 4},
		{1e20, 4},
	}
	for _, c := range cases {
		if got := subdivisions(c.maxDelta); got != c.want {
			t.Errorf("subdivisions(%v) = %d, want %d", c.maxDelta, got, c.want)
		}
	}
}

func TestSubdivisionsMonotonic(t *testing.T) {
	prev := 0
	for delta := float32(0); delta < 100; delta += 0.5 {
		got := subdivisions(delta)
		if got < prev {
			t.Fatalf("subdivisions(%v) = %d, below previous %d", delta, got, prev)
		}
		prev = got
	}
}

func TestElementMaxDeltaUniform(t *testing.T) {
	element := uniformElement(5, 20)
	if got := elementMaxDelta(element, steelMaterials(), 1.0); got != 0 {
		t.Errorf("uniform element reports max delta %v, want 0", got)
	}
}

func TestBoundaryCoefficientsSentinels(t *testing.T) {
	element := uniformElement(5, 20)
	materials := steelMaterials()

	bc := boundaryCoefficients(element, materials, [2]float32{adiabaticH, adiabaticH}, [2]float32{0, 0})
	if bc.rfac2Front != 1 || bc.qdxkFront != 0 || bc.rfac2Back != 1 || bc.qdxkBack != 0 {
		t.Errorf("adiabatic closure = %+v, want rfac2 1 and qdxk 0 on both sides", bc)
	}

	bc = boundaryCoefficients(element, materials, [2]float32{constTempH, constTempH}, [2]float32{200, 50})
	if bc.rfac2Front != -1 || bc.qdxkFront != 400 {
		t.Errorf("const-temp front closure = (%v, %v), want (-1, 400)", bc.rfac2Front, bc.qdxkFront)
	}
	if bc.rfac2Back != -1 || bc.qdxkBack != 100 {
		t.Errorf("const-temp back closure = (%v, %v), want (-1, 100)", bc.rfac2Back, bc.qdxkBack)
	}
}

func TestBoundaryCoefficientsConvective(t *testing.T) {
	element := uniformElement(5, 20)
	materials := steelMaterials()
	h := float32(25.0)
	q := float32(500.0)

	bc := boundaryCoefficients(element, materials, [2]float32{h, adiabaticH}, [2]float32{q, 0})

	emissivity := materials[0].emissivity
	tF := float32(20.0)
	rfac := 0.5*h + 2.0*emissivity*sigma*tF*tF*tF
	kdx := materials[0].conductivity.calc(tF) / 0.005
	wantRfac2 := (kdx - rfac) / (kdx + rfac)
	wantQdxk := (q + 3.0*emissivity*sigma*tF*tF*tF*tF) / (kdx + rfac)

	if abs32(bc.rfac2Front-wantRfac2) > 1e-6 {
		t.Errorf("rfac2Front = %v, want %v", bc.rfac2Front, wantRfac2)
	}
	if abs32(bc.qdxkFront-wantQdxk) > 1e-6 {
		t.Errorf("qdxkFront = %v, want %v", bc.qdxkFront, wantQdxk)
	}
}

func TestHeatTransferSteadyState(t *testing.T) {
	materials := steelMaterials()
	cases := []struct {
		name string
		h    [2]float32
		q    [2]float32
	}{
		{"adiabatic", [2]float32{adiabaticH, adiabaticH}, [2]float32{0, 0}},
		{"const-temp", [2]float32{constTempH, constTempH}, [2]float32{20, 20}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			element := uniformElement(6, 20)
			var scratch []solveRow
			for step := 0; step < 100; step++ {
				scratch = heatTransfer(element, materials, c.h, c.q, 1.0, scratch)
			}
			for i, cell := range element.cells {
				if abs32(cell.temperature-20) > 1e-3 {
					t.Fatalf("cell %d drifted to %v from the 20°C equilibrium", i, cell.temperature)
				}
			}
		})
	}
}

func TestHeatTransferMinimalElement(t *testing.T) {
	element := uniformElement(3, 20)
	heatTransfer(element, steelMaterials(), [2]float32{constTempH, constTempH}, [2]float32{20, 20}, 1.0, nil)
	for i, cell := range element.cells {
		if abs32(cell.temperature-20) > 1e-3 {
			t.Fatalf("cell %d = %v, want 20", i, cell.temperature)
		}
	}
}

func TestHeatTransferHeatsFromHotSide(t *testing.T) {
	materials := steelMaterials()
	element := uniformElement(8, 20)

	h := [2]float32{25.0, adiabaticH}
	var scratch []solveRow
	for step := 0; step < 300; step++ {
		gas := float32(500.0)
		q := [2]float32{h[0] * gas, 0}
		scratch = heatTransfer(element, materials, h, q, 1.0, scratch)
	}

	surfaces := surfaceTemperatures(element)
	if !(surfaces[0] > 20) {
		t.Fatalf("front surface = %v, want heated above 20°C", surfaces[0])
	}
	if !(surfaces[0] >= surfaces[1]) {
		t.Errorf("front %v should lead back %v while heating from the front", surfaces[0], surfaces[1])
	}
	for i := 1; i < len(element.cells); i++ {
		if element.cells[i].temperature > element.cells[i-1].temperature+1e-3 {
			t.Errorf("temperature profile not monotone at cell %d: %v > %v",
				i, element.cells[i].temperature, element.cells[i-1].temperature)
		}
	}
	for _, cell := range element.cells {
		if math.IsNaN(float64(cell.temperature)) {
			t.Fatal("temperature is NaN")
		}
	}
}

func TestSurfaceTemperatures(t *testing.T) {
	element := wallElement{cells: []wallCell{
		{size: 1, temperature: 10},
		{size: 1, temperature: 20},
		{size: 1, temperature: 30},
		{size: 1, temperature: 40},
	}}
	got := surfaceTemperatures(element)
	if got[0] != 15 || got[1] != 35 {
		t.Errorf("surfaceTemperatures = %v, want [15 35]", got)
	}
}
