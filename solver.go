package main

import "math"

// Numeric constants of the conduction scheme. The sentinel values are part
// of the external contract and multiplex special boundary behavior through
// the heat-transfer-coefficient channel.
const (
	// maxDeltaTemperature is the largest temperature-flux imbalance between
	// neighboring cells tolerated before the time step is subdivided.
	maxDeltaTemperature = 10.0
	// maxTimeSubdivisions bounds the subdivision factor.
	maxTimeSubdivisions = 4
	// sigma is the Stefan-Boltzmann constant in engineering units.
	sigma = 0.0000000567

	// adiabaticH selects a boundary that exchanges no heat.
	adiabaticH = -100000.0
	// constTempH selects a boundary pinned to a prescribed temperature,
	// which is carried in the flux channel.
	constTempH = -100001.0
)

// elementMaxDelta computes the largest explicit-Euler estimate of the
// temperature change any interior cell would see in one full time step,
// from the flux imbalance of its two neighbor interfaces.
func elementMaxDelta(element wallElement, materials []material, deltaTime float32) float32 {
	cells := element.cells
	n := len(cells)
	var delta float32

	matB := materials[cells[0].material]
	tB := cells[0].temperature
	xB := cells[0].size
	kB := matB.conductivity.calc(tB)

	matC := materials[cells[1].material]
	tC := cells[1].temperature
	xC := cells[1].size
	kC := matC.conductivity.calc(tC)
	cC := matC.specificHeat.calc(tC)
	rhoC := matC.density

	kMB := (kC + kB) / 2.0
	before := kMB * (tC - tB) / ((xC + xB) / 2.0)

	f1 := deltaTime * (rhoC * cC)

	for i := 1; i < n-1; i++ {
		matA := materials[cells[i+1].material]
		tA := cells[i+1].temperature
		xA := cells[i+1].size
		kA := matA.conductivity.calc(tA)
		cA := matA.specificHeat.calc(tA)
		rhoA := matA.density

		kMA := (kC + kA) / 2.0
		after := kMA * (tA - tC) / ((xA + xC) / 2.0)

		if d := abs32(f1 * (after - before) / xC); d > delta {
			delta = d
		}

		xC = xA
		before = after
		f1 = deltaTime * (rhoA * cA)
	}
	return delta
}

// subdivisions returns how many times the time step is split for a given
// maximum temperature delta: powers of two, clamped to maxTimeSubdivisions.
func subdivisions(maxDelta float32) int {
	if maxDelta < maxDeltaTemperature {
		return 1
	}
	p := math.Ceil(math.Log2(float64(maxDelta) / maxDeltaTemperature))
	if p >= 2 {
		return maxTimeSubdivisions
	}
	return 1 << uint(p)
}

// boundaryClosure holds the linear recurrence coefficients of both sides:
// boundary_temperature = rfac2*interior_temperature + qdxk.
type boundaryClosure struct {
	rfac2Front float32
	qdxkFront  float32
	rfac2Back  float32
	qdxkBack   float32
}

// boundaryCoefficients converts the physical boundary conditions of one
// element into recurrence coefficients. Convective boundaries linearize
// radiation about the current boundary-cell average temperature; the two
// sentinel h values bypass that entirely.
func boundaryCoefficients(element wallElement, materials []material, h, q [2]float32) boundaryClosure {
	cells := element.cells
	var bc boundaryClosure

	if hF := h[0]; hF == adiabaticH {
		bc.rfac2Front, bc.qdxkFront = 1.0, 0.0
	} else if hF == constTempH {
		bc.rfac2Front, bc.qdxkFront = -1.0, 2.0*q[0]
	} else {
		tF := (cells[0].temperature + cells[1].temperature) / 2.0
		matF := materials[cells[0].material]
		dxF := cells[0].size

		emissionRfac := 2.0 * matF.emissivity * sigma * tF * tF * tF
		emissionQdxk := 3.0 * matF.emissivity * sigma * tF * tF * tF * tF

		rfac := 0.5*hF + emissionRfac
		kF := matF.conductivity.calc(tF)
		bc.rfac2Front = (kF/dxF - rfac) / (kF/dxF + rfac)
		bc.qdxkFront = (q[0] + emissionQdxk) / (kF/dxF + rfac)
	}

	if hB := h[1]; hB == adiabaticH {
		bc.rfac2Back, bc.qdxkBack = 1.0, 0.0
	} else if hB == constTempH {
		bc.rfac2Back, bc.qdxkBack = -1.0, 2.0*q[1]
	} else {
		n := len(cells)
		tB := (cells[n-1].temperature + cells[n-2].temperature) / 2.0
		matB := materials[cells[n-1].material]
		dxB := cells[n-1].size

		emissionRfac := 2.0 * matB.emissivity * sigma * tB * tB * tB
		emissionQdxk := 3.0 * matB.emissivity * sigma * tB * tB * tB * tB

		rfac := 0.5*hB + emissionRfac
		kB := matB.conductivity.calc(tB)
		bc.rfac2Back = (kB/dxB - rfac) / (kB/dxB + rfac)
		bc.qdxkBack = (q[1] + emissionQdxk) / (kB/dxB + rfac)
	}
	return bc
}

// solveRow is one interior-cell equation: sub-diagonal b, diagonal d,
// super-diagonal a, right-hand side c.
type solveRow struct {
	b, d, a, c float32
}

// assembleMatrix builds the implicit tridiagonal system for the interior
// cells of one element, with averaged interface conductivities and
// temperature-dependent heat capacity evaluated at the current state.
func assembleMatrix(element wallElement, materials []material, deltaTime float32, matrix []solveRow) []solveRow {
	cells := element.cells
	matrix = matrix[:0]

	tD := cells[1].temperature
	matD := materials[cells[1].material]
	dxD := cells[1].size

	f1 := 2.0 * matD.density * matD.specificHeat.calc(tD)

	tB := cells[0].temperature
	matB := materials[cells[0].material]
	dxB := cells[0].size

	kB := (matD.conductivity.calc(tD) + matB.conductivity.calc(tB)) / 2.0
	b := -deltaTime * kB / (f1 * dxD * (dxD + dxB) / 2.0)
	cB := b * (tD - tB)

	for i := 1; i < len(cells)-1; i++ {
		tA := cells[i+1].temperature
		matA := materials[cells[i+1].material]
		dxA := cells[i+1].size

		kA := (matD.conductivity.calc(tD) + matA.conductivity.calc(tA)) / 2.0
		a := -deltaTime * kA / (f1 * dxD * (dxD + dxA) / 2.0)
		cA := a * (tA - tD)

		d := 1.0 - a - b
		c := tD - cA + cB
		matrix = append(matrix, solveRow{b: b, d: d, a: a, c: c})

		f1 = 2.0 * matA.density * matA.specificHeat.calc(tA)
		kB := (matA.conductivity.calc(tA) + matA.conductivity.calc(tD)) / 2.0
		b = -deltaTime * kB / (f1 * dxA * (dxA + dxD) / 2.0)
		cB = b * (tA - tD)

		tD = tA
		matD = matA
		dxD = dxA
	}
	return matrix
}

// solveElement folds the boundary closure into the assembled system, runs
// the Thomas forward elimination and back substitution, writes the interior
// temperatures back, and recomputes the boundary half-cells from the
// recurrence.
func solveElement(element wallElement, materials []material, bc boundaryClosure, deltaTime float32, scratch []solveRow) []solveRow {
	cells := element.cells
	n := len(cells) - 2
	matrix := assembleMatrix(element, materials, deltaTime, scratch)

	matrix[0].c -= matrix[0].b * bc.qdxkFront
	matrix[n-1].c -= matrix[n-1].a * bc.qdxkBack
	matrix[0].d += matrix[0].b * bc.rfac2Front
	matrix[n-1].d += matrix[n-1].a * bc.rfac2Back

	for i := 1; i < n; i++ {
		r := matrix[i].b / matrix[i-1].d
		matrix[i].d -= r * matrix[i-1].a
		matrix[i].c -= r * matrix[i-1].c
	}
	matrix[n-1].c /= matrix[n-1].d
	for i := n - 2; i >= 0; i-- {
		matrix[i].c = (matrix[i].c - matrix[i].a*matrix[i+1].c) / matrix[i].d
	}

	for i := 0; i < n; i++ {
		cells[i+1].temperature = matrix[i].c
	}
	cells[0].temperature = cells[1].temperature*bc.rfac2Front + bc.qdxkFront
	cells[len(cells)-1].temperature = cells[len(cells)-2].temperature*bc.rfac2Back + bc.qdxkBack
	return matrix
}

// heatTransfer advances one wall element by one time step, subdividing the
// step when the stability controller demands it. This is the atomic
// per-element, per-step update both the CPU backend and the generated
// kernels implement.
func heatTransfer(element wallElement, materials []material, h, q [2]float32, deltaTime float32, scratch []solveRow) []solveRow {
	repeats := subdivisions(elementMaxDelta(element, materials, deltaTime))
	subDeltaTime := deltaTime / float32(repeats)
	for r := 0; r < repeats; r++ {
		bc := boundaryCoefficients(element, materials, h, q)
		scratch = solveElement(element, materials, bc, subDeltaTime, scratch)
	}
	return scratch
}

// surfaceTemperatures reports the front and back surface temperatures of an
// element as the average of the two outermost cell pairs.
func surfaceTemperatures(element wallElement) [2]float32 {
	cells := element.cells
	n := len(cells)
	return [2]float32{
		(cells[0].temperature + cells[1].temperature) / 2.0,
		(cells[n-1].temperature + cells[n-2].temperature) / 2.0,
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
