package main

import (
	"fmt"
	"math"
)

// surfaceCell is one discretized slice of a wall layer before a simulation
// temperature is attached to it.
type surfaceCell struct {
	material uint32
	size     float32
}

// surface is the discretized cross-section of one wall construction,
// front-to-back. The outermost two cells are duplicates of their neighbors
// and act as reporting half-cells.
type surface struct {
	cells []surfaceCell
}

// surfaceList keeps parsed surfaces together with their input-file names.
type surfaceList struct {
	names    []string
	surfaces []surface
}

// findIndex returns the position of the surface registered under name.
func (l *surfaceList) findIndex(name string) (int, bool) {
	for i, n := range l.names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// addFromProperties builds a surface from record properties, resolving the
// material names of its layers and expanding each layer thickness into cells.
func (l *surfaceList) addFromProperties(props []property, materials *materialList) error {
	var (
		name        string
		materialIDs []int
		thicknesses []float32
	)
	for _, p := range props {
		switch p.key {
		case "ID":
			name = p.value
		case "MATL_ID":
			for _, part := range splitList(p.value) {
				idx, ok := materials.findIndex(part)
				if !ok {
					return fmt.Errorf("no MATL with ID %q", part)
				}
				materialIDs = append(materialIDs, idx)
			}
		case "THICKNESS":
			for _, part := range splitList(p.value) {
				v, err := parseFloat32(part)
				if err != nil {
					return fmt.Errorf("parsing THICKNESS: %w", err)
				}
				thicknesses = append(thicknesses, v)
			}
		}
	}
	if name == "" || materialIDs == nil || thicknesses == nil {
		return fmt.Errorf("surface record incomplete: ID=%v MATL_ID=%v THICKNESS=%v",
			name != "", materialIDs != nil, thicknesses != nil)
	}
	if len(materialIDs) != len(thicknesses) {
		return fmt.Errorf("surface %q: %d materials but %d thicknesses", name, len(materialIDs), len(thicknesses))
	}
	cells := cellsFromLayers(materials.materials, materialIDs, thicknesses)
	l.names = append(l.names, name)
	l.surfaces = append(l.surfaces, surface{cells: cells})
	return nil
}

// cellsFromLayers expands every layer into graded cells and duplicates the
// outermost cells as reporting half-cells.
func cellsFromLayers(materials []material, materialIDs []int, thicknesses []float32) []surfaceCell {
	var cells []surfaceCell
	for i, id := range materialIDs {
		cells = append(cells, cellsFromLayer(materials[id], uint32(id), thicknesses[i])...)
	}
	cells = append([]surfaceCell{cells[0]}, cells...)
	cells = append(cells, cells[len(cells)-1])
	return cells
}

// cellsFromLayer subdivides a single layer into cells that grow geometrically
// from both layer boundaries toward the middle, sized from a diffusion length
// at the 20 °C reference state.
func cellsFromLayer(mat material, materialID uint32, thickness float32) []surfaceCell {
	const (
		referenceDeltaTime   = 1.0
		referenceTemperature = 20.0
	)
	specificHeat := mat.specificHeat.calc(referenceTemperature)
	conductivity := mat.conductivity.calc(referenceTemperature)
	size := float32(math.Sqrt(float64((conductivity * referenceDeltaTime) / (mat.density * specificHeat))))

	count, startSize := layerCellCount(size, thickness)
	cells := make([]surfaceCell, count)
	for i := 0; i < count; i++ {
		grade := i
		if count-i-1 < grade {
			grade = count - i - 1
		}
		cells[i] = surfaceCell{
			material: materialID,
			size:     startSize * float32(math.Pow(2, float64(grade))),
		}
	}
	return cells
}

// layerCellCount finds the smallest cell count whose graded sizes keep the
// starting cell below the diffusion length, together with that starting size.
func layerCellCount(size, thickness float32) (int, float32) {
	const maxCells = 999
	var sum float32
	for n := 1; n <= maxCells; n++ {
		sum = 0
		for i := 1; i <= n; i++ {
			grade := i - 1
			if n-i < grade {
				grade = n - i
			}
			sum += float32(math.Pow(2, float64(grade)))
		}
		if thickness/sum < size {
			return n, thickness / sum
		}
	}
	return maxCells, thickness / sum
}
