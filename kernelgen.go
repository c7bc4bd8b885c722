package main

import (
	"fmt"
	"strconv"
	"strings"
)

// The kernel templates in kernels.go carry "//! name" marker lines where
// host-side data is baked into the source before compilation. Each marker
// names what gets spliced in:
//
//	//! specific_heat   per-material switch over piecewise-linear tables
//	//! conductivity    same, for thermal conductivity
//	//! density         per-material constant switch
//	//! emissivity      per-material constant switch
//	//! cell_length     element cell count of one kernel group
//	//! cell_sizes      constant cell-size array of one kernel group
//	//! cell_materials  constant material-index array of one kernel group
//	//! max_cell_count  padded per-element cell capacity

// floatLit renders a float32 as an OpenCL C literal with the shortest
// representation that round-trips the exact value.
func floatLit(v float32) string {
	return strconv.FormatFloat(float64(v), 'e', -1, 32) + "f"
}

// rampBody emits the evaluation of one piecewise-linear table as an
// if/else chain over the local variable "temperature". The chain mirrors
// ramp.calc: first value below, linear segments between, last value above.
func rampBody(r ramp, indent string) string {
	var sb strings.Builder
	points := r.points
	if len(points) == 1 {
		fmt.Fprintf(&sb, "%sreturn %s;\n", indent, floatLit(points[0].value))
		return sb.String()
	}
	fmt.Fprintf(&sb, "%sif (temperature <= %s) {\n", indent, floatLit(points[0].temperature))
	fmt.Fprintf(&sb, "%s\treturn %s;\n", indent, floatLit(points[0].value))
	for i := 1; i < len(points); i++ {
		p0 := points[i-1]
		p1 := points[i]
		fmt.Fprintf(&sb, "%s} else if (temperature <= %s) {\n", indent, floatLit(p1.temperature))
		fmt.Fprintf(&sb, "%s\treturn %s + (%s - %s) / (%s - %s) * (temperature - %s);\n",
			indent,
			floatLit(p0.value), floatLit(p1.value), floatLit(p0.value),
			floatLit(p1.temperature), floatLit(p0.temperature),
			floatLit(p0.temperature))
	}
	fmt.Fprintf(&sb, "%s} else {\n", indent)
	fmt.Fprintf(&sb, "%s\treturn %s;\n", indent, floatLit(points[len(points)-1].value))
	fmt.Fprintf(&sb, "%s}\n", indent)
	return sb.String()
}

// materialSwitch emits a switch over the material index whose case bodies
// are produced by body. Index 0 doubles as the default case so a corrupt
// index degrades to the first material instead of undefined behavior.
func materialSwitch(count int, body func(index int, indent string) string) string {
	var sb strings.Builder
	sb.WriteString("\tswitch (id) {\n")
	for i := 0; i < count; i++ {
		if i == 0 {
			sb.WriteString("\tdefault: {\n")
		} else {
			fmt.Fprintf(&sb, "\tcase %du: {\n", i)
		}
		sb.WriteString(body(i, "\t\t"))
		sb.WriteString("\t}\n")
	}
	sb.WriteString("\t}\n")
	return sb.String()
}

// replaceToken substitutes the single marker line "//! name" with text.
// Markers inside function bodies sit behind one tab, top-level markers at
// column zero.
func replaceToken(src, name, text string) string {
	if marker := "\t//! " + name + "\n"; strings.Contains(src, marker) {
		return strings.Replace(src, marker, text, 1)
	}
	return strings.Replace(src, "//! "+name+"\n", text, 1)
}

// insertMaterialData bakes the material property tables of the wall into a
// kernel template. All three layouts share this step.
func insertMaterialData(src string, materials []material) string {
	src = replaceToken(src, "specific_heat", materialSwitch(len(materials), func(i int, indent string) string {
		return rampBody(materials[i].specificHeat, indent)
	}))
	src = replaceToken(src, "conductivity", materialSwitch(len(materials), func(i int, indent string) string {
		return rampBody(materials[i].conductivity, indent)
	}))
	src = replaceToken(src, "density", materialSwitch(len(materials), func(i int, indent string) string {
		return indent + "return " + floatLit(materials[i].density) + ";\n"
	}))
	src = replaceToken(src, "emissivity", materialSwitch(len(materials), func(i int, indent string) string {
		return indent + "return " + floatLit(materials[i].emissivity) + ";\n"
	}))
	return src
}

// insertGroupData bakes the shared cell geometry of one kernel group into
// the group-specialized template.
func insertGroupData(src string, cellSizes []float32, cellMaterials []uint32) string {
	src = replaceToken(src, "cell_length",
		fmt.Sprintf("#define CELL_LENGTH %du\n#define N %du\n", len(cellSizes), len(cellSizes)-2))

	var sizes strings.Builder
	sizes.WriteString("__constant float cell_sizes[CELL_LENGTH] = {\n")
	for _, s := range cellSizes {
		sizes.WriteString("\t" + floatLit(s) + ",\n")
	}
	sizes.WriteString("};\n")
	src = replaceToken(src, "cell_sizes", sizes.String())

	var mats strings.Builder
	mats.WriteString("__constant uint cell_materials[CELL_LENGTH] = {\n")
	for _, m := range cellMaterials {
		fmt.Fprintf(&mats, "\t%du,\n", m)
	}
	mats.WriteString("};\n")
	return replaceToken(src, "cell_materials", mats.String())
}

// insertPaddedData bakes the fixed per-element capacity into the padded
// template.
func insertPaddedData(src string, maxCells int) string {
	return replaceToken(src, "max_cell_count",
		fmt.Sprintf("#define MAX_CELL_COUNT %du\n#define N %du\n", maxCells, maxCells-2))
}
