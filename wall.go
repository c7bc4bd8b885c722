package main

import "fmt"

// initialTemperature is the uniform temperature every wall cell starts at.
const initialTemperature = 20.0

// wallCell is one discretized slice of a wall element: thickness, index into
// the material list, and the evolving temperature.
type wallCell struct {
	size        float32
	material    uint32
	temperature float32
}

// wallElement is one independent 1-D wall cross-section, front-to-back. The
// outer two cells are half-cells that only report surface temperature; an
// element therefore always has at least three cells.
type wallElement struct {
	cells []wallCell
}

// clone copies an element so a backend can own its temperatures.
func (e wallElement) clone() wallElement {
	cells := make([]wallCell, len(e.cells))
	copy(cells, e.cells)
	return wallElement{cells: cells}
}

// buildWallElements derives the wall elements of a 1-D run from the parsed
// model, one per META surface reference, all cells at 20 °C. The element
// invariants the solvers rely on are checked here, once.
func buildWallElements(model *scriptModel) ([]wallElement, error) {
	if model.meta.threeDimensional {
		return nil, fmt.Errorf("input declares a 3-D simulation; only 1-D is supported")
	}
	elements := make([]wallElement, 0, len(model.meta.surfaceIDs))
	for _, id := range model.meta.surfaceIDs {
		surf := model.surfaces.surfaces[id]
		cells := make([]wallCell, len(surf.cells))
		for i, c := range surf.cells {
			cells[i] = wallCell{size: c.size, material: c.material, temperature: initialTemperature}
		}
		element := wallElement{cells: cells}
		if err := validateWallElement(element, len(model.materials.materials)); err != nil {
			return nil, fmt.Errorf("surface %q: %w", model.surfaces.names[id], err)
		}
		elements = append(elements, element)
	}
	return elements, nil
}

// validateWallElement checks the invariants established at model
// construction; the numeric core assumes them and never re-checks.
func validateWallElement(e wallElement, materialCount int) error {
	if len(e.cells) < 3 {
		return fmt.Errorf("wall element needs at least 3 cells, got %d", len(e.cells))
	}
	for i, c := range e.cells {
		if c.size <= 0 {
			return fmt.Errorf("cell %d: size must be positive, got %v", i, c.size)
		}
		if int(c.material) >= materialCount {
			return fmt.Errorf("cell %d: material index %d out of range (%d materials)", i, c.material, materialCount)
		}
	}
	return nil
}

// duplicateWallElements replicates each parsed element contiguously until the
// requested count is reached, keeping structurally identical elements
// adjacent so they land in the same kernel group. The count must divide
// evenly across the parsed elements so every wall is scaled by the same
// factor.
func duplicateWallElements(elements []wallElement, count int) ([]wallElement, error) {
	if count%len(elements) != 0 {
		return nil, fmt.Errorf("element count %d must be divisible by the %d parsed wall elements", count, len(elements))
	}
	per := count / len(elements)
	out := make([]wallElement, 0, count)
	for _, e := range elements {
		for i := 0; i < per; i++ {
			out = append(out, e.clone())
		}
	}
	return out, nil
}
