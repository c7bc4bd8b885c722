package main

import "math"

// Host-side chunk planning shared by the three GPU layout strategies. The
// planners are pure so the layouts stay testable without a device; the GPU
// backends only move the resulting word buffers.

// cellWords is the device word footprint of one wall cell:
// [size bits, material index, temperature bits].
const cellWords = 3

// chunkRange is a half-open element range [start, end) of one dispatch chunk.
type chunkRange struct {
	start, end int
}

func (r chunkRange) count() int { return r.end - r.start }

// chunkRanges partitions total elements into ranges of at most maxPerChunk.
func chunkRanges(total, maxPerChunk int) []chunkRange {
	ranges := make([]chunkRange, 0, (total+maxPerChunk-1)/maxPerChunk)
	for start := 0; start < total; start += maxPerChunk {
		end := start + maxPerChunk
		if end > total {
			end = total
		}
		ranges = append(ranges, chunkRange{start: start, end: end})
	}
	return ranges
}

// packCells appends the device words of the given cells to dst.
func packCells(cells []wallCell, dst []uint32) []uint32 {
	for _, c := range cells {
		dst = append(dst, math.Float32bits(c.size), c.material, math.Float32bits(c.temperature))
	}
	return dst
}

// flatChunk is one M1 dispatch chunk: every cell of every element in the
// range flattened into one buffer, plus the cumulative per-element cell end
// offsets a kernel invocation uses to locate its own range.
type flatChunk struct {
	chunkRange
	cellEnds []uint32
	cells    []uint32
}

// cellCount is the number of cells in the chunk.
func (c flatChunk) cellCount() int { return len(c.cells) / cellWords }

// buildFlatChunks lays out heterogeneous elements for strategy M1.
func buildFlatChunks(elements []wallElement, maxPerChunk int) []flatChunk {
	ranges := chunkRanges(len(elements), maxPerChunk)
	chunks := make([]flatChunk, 0, len(ranges))
	for _, r := range ranges {
		chunk := flatChunk{chunkRange: r}
		var end uint32
		for _, e := range elements[r.start:r.end] {
			end += uint32(len(e.cells))
			chunk.cellEnds = append(chunk.cellEnds, end)
			chunk.cells = packCells(e.cells, chunk.cells)
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// sameStructure reports whether two elements can share one specialized M2
// kernel: equal cell count and identical per-cell size and material.
func sameStructure(a, b wallElement) bool {
	if len(a.cells) != len(b.cells) {
		return false
	}
	for i := range a.cells {
		if a.cells[i].size != b.cells[i].size || a.cells[i].material != b.cells[i].material {
			return false
		}
	}
	return true
}

// kernelGroup is one M2 dispatch group: a maximal run of structurally
// identical elements, additionally split at the chunk bound. The cell
// geometry is baked into the generated kernel; only the temperatures travel
// through a buffer.
type kernelGroup struct {
	chunkRange
	cellSizes     []float32
	cellMaterials []uint32
	temperatures  []float32
}

// buildKernelGroups scans the elements in order for strategy M2, starting a
// new group whenever the structure changes or the group hits maxPerChunk.
func buildKernelGroups(elements []wallElement, maxPerChunk int) []kernelGroup {
	var groups []kernelGroup
	start := 0
	for i := 1; i <= len(elements); i++ {
		if i < len(elements) && i-start < maxPerChunk && sameStructure(elements[start], elements[i]) {
			continue
		}
		group := kernelGroup{chunkRange: chunkRange{start: start, end: i}}
		for _, c := range elements[start].cells {
			group.cellSizes = append(group.cellSizes, c.size)
			group.cellMaterials = append(group.cellMaterials, c.material)
		}
		for _, e := range elements[start:i] {
			for _, c := range e.cells {
				group.temperatures = append(group.temperatures, c.temperature)
			}
		}
		groups = append(groups, group)
		start = i
	}
	return groups
}

// maxCellCount returns the largest cell count across all elements; strategy
// M3 pads every element to it.
func maxCellCount(elements []wallElement) int {
	max := 0
	for _, e := range elements {
		if len(e.cells) > max {
			max = len(e.cells)
		}
	}
	return max
}

// paddedChunk is one M3 dispatch chunk: every element stored at a fixed
// stride of one cell-count header word plus maxCells padded cells. Padding
// cells are zeroed and ignored past the element's true cell count.
type paddedChunk struct {
	chunkRange
	words []uint32
}

// buildPaddedChunks lays out elements for strategy M3.
func buildPaddedChunks(elements []wallElement, maxPerChunk, maxCells int) []paddedChunk {
	ranges := chunkRanges(len(elements), maxPerChunk)
	chunks := make([]paddedChunk, 0, len(ranges))
	for _, r := range ranges {
		chunk := paddedChunk{chunkRange: r}
		for _, e := range elements[r.start:r.end] {
			chunk.words = append(chunk.words, uint32(len(e.cells)))
			chunk.words = packCells(e.cells, chunk.words)
			for p := len(e.cells); p < maxCells; p++ {
				chunk.words = append(chunk.words, 0, 0, 0)
			}
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}
