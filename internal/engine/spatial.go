package engine

import "math"

// cellKey addresses one cell of the uniform grid.
type cellKey struct {
	X int
	Y int
}

type spatialEntry struct {
	key cellKey
	pos Vec2
}

// spatialIndex is a uniform grid over atom positions answering radius
// queries in O(cells touched). Cell size is tuned to the typical interaction
// radius, so most queries touch at most nine cells. An atom's cell key is
// recomputed after each physics update but the grid is only rewritten when
// the key actually changes.
type spatialIndex struct {
	cellSize    float64
	invCellSize float64
	cells       map[cellKey][]AtomID
	entries     map[AtomID]spatialEntry
}

func newSpatialIndex(cellSize float64) *spatialIndex {
	if cellSize <= 0 {
		cellSize = 100
	}
	return &spatialIndex{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cells:       make(map[cellKey][]AtomID),
		entries:     make(map[AtomID]spatialEntry),
	}
}

// Insert adds an atom at the given position.
func (idx *spatialIndex) Insert(id AtomID, pos Vec2) {
	key := idx.keyFor(pos)
	idx.entries[id] = spatialEntry{key: key, pos: pos}
	idx.cells[key] = append(idx.cells[key], id)
}

// Update moves an atom to a new position, rewriting the grid only when the
// cell key changed.
func (idx *spatialIndex) Update(id AtomID, pos Vec2) {
	entry, ok := idx.entries[id]
	if !ok {
		idx.Insert(id, pos)
		return
	}
	key := idx.keyFor(pos)
	if key == entry.key {
		idx.entries[id] = spatialEntry{key: key, pos: pos}
		return
	}
	idx.removeFromCell(id, entry.key)
	idx.entries[id] = spatialEntry{key: key, pos: pos}
	idx.cells[key] = append(idx.cells[key], id)
}

// Remove deletes an atom from the index. Unknown ids are ignored.
func (idx *spatialIndex) Remove(id AtomID) {
	entry, ok := idx.entries[id]
	if !ok {
		return
	}
	idx.removeFromCell(id, entry.key)
	delete(idx.entries, id)
}

// QueryRadius calls fn for every indexed atom within radius of pos, in the
// deterministic cell-scan order. Queries over empty space return nothing.
func (idx *spatialIndex) QueryRadius(pos Vec2, radius float64, fn func(AtomID)) {
	if radius <= 0 {
		return
	}
	minKey := idx.keyFor(Vec2{X: pos.X - radius, Y: pos.Y - radius})
	maxKey := idx.keyFor(Vec2{X: pos.X + radius, Y: pos.Y + radius})
	radiusSq := radius * radius
	for y := minKey.Y; y <= maxKey.Y; y++ {
		for x := minKey.X; x <= maxKey.X; x++ {
			for _, id := range idx.cells[cellKey{X: x, Y: y}] {
				if idx.entries[id].pos.DistanceSq(pos) <= radiusSq {
					fn(id)
				}
			}
		}
	}
}

func (idx *spatialIndex) removeFromCell(id AtomID, key cellKey) {
	bucket := idx.cells[key]
	for i := range bucket {
		if bucket[i] != id {
			continue
		}
		bucket[i] = bucket[len(bucket)-1]
		bucket = bucket[:len(bucket)-1]
		break
	}
	if len(bucket) == 0 {
		delete(idx.cells, key)
	} else {
		idx.cells[key] = bucket
	}
}

func (idx *spatialIndex) keyFor(pos Vec2) cellKey {
	return cellKey{
		X: int(math.Floor(pos.X * idx.invCellSize)),
		Y: int(math.Floor(pos.Y * idx.invCellSize)),
	}
}
