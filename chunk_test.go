package main

import (
	"math"
	"testing"
)

func mixedElements() []wallElement {
	small := uniformElement(3, 20)
	big := uniformElement(5, 20)
	return []wallElement{small.clone(), small.clone(), big.clone(), small.clone()}
}

func TestChunkRanges(t *testing.T) {
	ranges := chunkRanges(10, 4)
	want := []chunkRange{{0, 4}, {4, 8}, {8, 10}}
	if len(ranges) != len(want) {
		t.Fatalf("got %d ranges, want %d", len(ranges), len(want))
	}
	for i := range want {
		if ranges[i] != want[i] {
			t.Errorf("range %d = %+v, want %+v", i, ranges[i], want[i])
		}
	}
}

func TestPackCells(t *testing.T) {
	cells := []wallCell{{size: 0.5, material: 3, temperature: 20}}
	words := packCells(cells, nil)
	if len(words) != cellWords {
		t.Fatalf("got %d words, want %d", len(words), cellWords)
	}
	if words[0] != math.Float32bits(0.5) || words[1] != 3 || words[2] != math.Float32bits(20) {
		t.Errorf("packed words = %v", words)
	}
}

func TestBuildFlatChunks(t *testing.T) {
	chunks := buildFlatChunks(mixedElements(), 3)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}

	first := chunks[0]
	if first.start != 0 || first.end != 3 {
		t.Errorf("first chunk range = [%d, %d), want [0, 3)", first.start, first.end)
	}
	wantEnds := []uint32{3, 6, 11}
	for i, end := range wantEnds {
		if first.cellEnds[i] != end {
			t.Errorf("cellEnds[%d] = %d, want %d", i, first.cellEnds[i], end)
		}
	}
	if first.cellCount() != 11 {
		t.Errorf("first chunk cell count = %d, want 11", first.cellCount())
	}

	second := chunks[1]
	if second.count() != 1 || second.cellCount() != 3 {
		t.Errorf("second chunk = %d elements / %d cells, want 1/3", second.count(), second.cellCount())
	}
}

func TestBuildKernelGroupsSplitsOnStructure(t *testing.T) {
	groups := buildKernelGroups(mixedElements(), 16)
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}
	wantRanges := []chunkRange{{0, 2}, {2, 3}, {3, 4}}
	wantCells := []int{3, 5, 3}
	for i, g := range groups {
		if g.chunkRange != wantRanges[i] {
			t.Errorf("group %d range = %+v, want %+v", i, g.chunkRange, wantRanges[i])
		}
		if len(g.cellSizes) != wantCells[i] || len(g.cellMaterials) != wantCells[i] {
			t.Errorf("group %d geometry has %d/%d entries, want %d", i, len(g.cellSizes), len(g.cellMaterials), wantCells[i])
		}
		if len(g.temperatures) != g.count()*wantCells[i] {
			t.Errorf("group %d has %d temperatures, want %d", i, len(g.temperatures), g.count()*wantCells[i])
		}
	}
}

func TestBuildKernelGroupsAfterDuplication(t *testing.T) {
	elements := []wallElement{uniformElement(3, 20), uniformElement(5, 20)}
	duplicated, err := duplicateWallElements(elements, 8)
	if err != nil {
		t.Fatalf("duplicateWallElements: %v", err)
	}

	// Contiguous replication keeps identical structures adjacent, so the
	// duplicated load compiles one kernel per distinct structure.
	groups := buildKernelGroups(duplicated, 16384)
	if len(groups) != len(elements) {
		t.Fatalf("%d elements from %d structures produced %d kernel groups, want %d",
			len(duplicated), len(elements), len(groups), len(elements))
	}
	if groups[0].count() != 4 || groups[1].count() != 4 {
		t.Errorf("group sizes = %d and %d, want 4 and 4", groups[0].count(), groups[1].count())
	}
	if len(groups[0].cellSizes) != 3 || len(groups[1].cellSizes) != 5 {
		t.Errorf("group geometries have %d and %d cells, want 3 and 5",
			len(groups[0].cellSizes), len(groups[1].cellSizes))
	}
}

func TestBuildKernelGroupsSplitsAtChunkBound(t *testing.T) {
	small := uniformElement(3, 20)
	elements := []wallElement{small.clone(), small.clone(), small.clone()}
	groups := buildKernelGroups(elements, 2)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2 (identical structure split at the chunk bound)", len(groups))
	}
	if groups[0].count() != 2 || groups[1].count() != 1 {
		t.Errorf("group sizes = %d and %d, want 2 and 1", groups[0].count(), groups[1].count())
	}
}

func TestSameStructureIgnoresTemperature(t *testing.T) {
	a := uniformElement(4, 20)
	b := uniformElement(4, 500)
	if !sameStructure(a, b) {
		t.Error("elements differing only in temperature should share a kernel")
	}
	c := uniformElement(5, 20)
	if sameStructure(a, c) {
		t.Error("elements with different cell counts must not share a kernel")
	}
	d := uniformElement(4, 20)
	d.cells[1].material = 1
	if sameStructure(a, d) {
		t.Error("elements with different materials must not share a kernel")
	}
}

func TestBuildPaddedChunks(t *testing.T) {
	elements := mixedElements()
	maxCells := maxCellCount(elements)
	if maxCells != 5 {
		t.Fatalf("maxCellCount = %d, want 5", maxCells)
	}

	chunks := buildPaddedChunks(elements, 3, maxCells)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}

	stride := 1 + cellWords*maxCells
	first := chunks[0]
	if len(first.words) != 3*stride {
		t.Fatalf("first chunk has %d words, want %d", len(first.words), 3*stride)
	}
	if first.words[0] != 3 {
		t.Errorf("element 0 header = %d, want 3", first.words[0])
	}
	if first.words[2*stride] != 5 {
		t.Errorf("element 2 header = %d, want 5", first.words[2*stride])
	}
	// Padding cells past the third cell of a short element are zeroed.
	for i := 1 + cellWords*3; i < stride; i++ {
		if first.words[i] != 0 {
			t.Fatalf("padding word %d = %d, want 0", i, first.words[i])
		}
	}
}
