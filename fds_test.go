package main

import (
	"strings"
	"testing"
)

const testScript = `//META WALL; WALL2;

&RAMP ID='STEEL_K', T=0., F=54. /
&RAMP ID='STEEL_K', T=800., F=27. /

&MATL ID='STEEL',
      SPECIFIC_HEAT=0.4398,
      CONDUCTIVITY_RAMP='STEEL_K',
      DENSITY=7850.,
      EMISSIVITY=0.79 /

&MATL ID='INSULATION', SPECIFIC_HEAT=1.0, CONDUCTIVITY=0.12, DENSITY=450., EMISSIVITY=0.9 /

&SURF ID='WALL', MATL_ID='STEEL', THICKNESS=0.02 /
&SURF ID='WALL2', MATL_ID='STEEL','INSULATION', THICKNESS=0.01,0.05 /
`

func TestParseScript(t *testing.T) {
	model, err := parseScript(strings.NewReader(testScript))
	if err != nil {
		t.Fatalf("parseScript: %v", err)
	}

	if model.meta.threeDimensional {
		t.Fatal("parsed as 3-D")
	}
	if len(model.meta.surfaceIDs) != 2 {
		t.Fatalf("got %d surfaces in META, want 2", len(model.meta.surfaceIDs))
	}

	steelIdx, ok := model.materials.findIndex("STEEL")
	if !ok {
		t.Fatal("STEEL not parsed")
	}
	steel := model.materials.materials[steelIdx]
	// Specific heat arrives in kJ/(kg·K) and is stored in J/(kg·K).
	if got := steel.specificHeat.calc(20); abs32(got-439.8) > 1e-2 {
		t.Errorf("steel specific heat = %v, want 439.8", got)
	}
	if got := steel.conductivity.calc(0); got != 54 {
		t.Errorf("steel conductivity at 0°C = %v, want 54", got)
	}
	if got := steel.conductivity.calc(400); abs32(got-40.5) > 1e-3 {
		t.Errorf("steel conductivity at 400°C = %v, want 40.5", got)
	}
	if steel.density != 7850 || steel.emissivity != 0.79 {
		t.Errorf("steel scalars = %v/%v, want 7850/0.79", steel.density, steel.emissivity)
	}
}

func TestParseScriptSurfaceCells(t *testing.T) {
	model, err := parseScript(strings.NewReader(testScript))
	if err != nil {
		t.Fatalf("parseScript: %v", err)
	}

	idx, ok := model.surfaces.findIndex("WALL")
	if !ok {
		t.Fatal("WALL not parsed")
	}
	cells := model.surfaces.surfaces[idx].cells
	if len(cells) < 3 {
		t.Fatalf("surface has %d cells, want at least 3", len(cells))
	}
	// The outermost cells are duplicated reporting half-cells.
	if cells[0] != cells[1] {
		t.Errorf("front half-cell %+v differs from its neighbor %+v", cells[0], cells[1])
	}
	if cells[len(cells)-1] != cells[len(cells)-2] {
		t.Errorf("back half-cell differs from its neighbor")
	}
	var thickness float32
	for _, c := range cells[1 : len(cells)-1] {
		if c.size <= 0 {
			t.Fatalf("cell with non-positive size %v", c.size)
		}
		thickness += c.size
	}
	if abs32(thickness-0.02) > 1e-5 {
		t.Errorf("interior cells sum to %v, want the 0.02 layer thickness", thickness)
	}
}

func TestParseScriptMultiLayer(t *testing.T) {
	model, err := parseScript(strings.NewReader(testScript))
	if err != nil {
		t.Fatalf("parseScript: %v", err)
	}
	idx, ok := model.surfaces.findIndex("WALL2")
	if !ok {
		t.Fatal("WALL2 not parsed")
	}
	cells := model.surfaces.surfaces[idx].cells

	insulation, _ := model.materials.findIndex("INSULATION")
	var sawSteel, sawInsulation bool
	for _, c := range cells {
		if c.material == uint32(insulation) {
			sawInsulation = true
		} else {
			sawSteel = true
		}
	}
	if !sawSteel || !sawInsulation {
		t.Errorf("two-layer surface uses materials steel=%v insulation=%v, want both", sawSteel, sawInsulation)
	}
}

func TestParseScriptRejectsMissingHeader(t *testing.T) {
	if _, err := parseScript(strings.NewReader("&MATL ID='X' /\n")); err == nil {
		t.Fatal("script without //META header parsed")
	}
}

func TestParseScriptThreeDimensional(t *testing.T) {
	script := "//META 8,8,8, WALL;\n" + strings.SplitN(testScript, "\n", 2)[1]
	model, err := parseScript(strings.NewReader(script))
	if err != nil {
		t.Fatalf("parseScript: %v", err)
	}
	if !model.meta.threeDimensional {
		t.Fatal("dimension header not recognized")
	}
	if model.meta.dims != [3]int{8, 8, 8} {
		t.Errorf("dims = %v, want [8 8 8]", model.meta.dims)
	}
	if _, err := buildWallElements(model); err == nil {
		t.Fatal("3-D model accepted by the 1-D wall builder")
	}
}

func TestBuildWallElements(t *testing.T) {
	model, err := parseScript(strings.NewReader(testScript))
	if err != nil {
		t.Fatalf("parseScript: %v", err)
	}
	elements, err := buildWallElements(model)
	if err != nil {
		t.Fatalf("buildWallElements: %v", err)
	}
	if len(elements) != 2 {
		t.Fatalf("got %d elements, want 2", len(elements))
	}
	for _, e := range elements {
		for _, c := range e.cells {
			if c.temperature != initialTemperature {
				t.Fatalf("cell starts at %v, want %v", c.temperature, initialTemperature)
			}
		}
	}
}

func TestDuplicateWallElements(t *testing.T) {
	elements := []wallElement{uniformElement(3, 20), uniformElement(5, 20)}

	duplicated, err := duplicateWallElements(elements, 6)
	if err != nil {
		t.Fatalf("duplicateWallElements: %v", err)
	}
	if len(duplicated) != 6 {
		t.Fatalf("got %d elements, want 6", len(duplicated))
	}

	// Each parsed element is replicated contiguously, not interleaved.
	for i, want := range []int{3, 3, 3, 5, 5, 5} {
		if got := len(duplicated[i].cells); got != want {
			t.Errorf("element %d has %d cells, want %d", i, got, want)
		}
	}

	// Clones own their cells.
	duplicated[0].cells[0].temperature = 99
	if duplicated[2].cells[0].temperature == 99 {
		t.Error("duplicated elements share cell storage")
	}

	if _, err := duplicateWallElements(elements, 5); err == nil {
		t.Fatal("count not divisible by element count accepted")
	}
}
