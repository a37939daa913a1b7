// Package spatial indexes items by their bounding boxes for rectangle queries.
package spatial

import (
	"github.com/tidwall/rtree"

	"github.com/inamate/inamate/whiteboard/internal/geom"
)

// Index is an R-tree over items of type T. Each item is keyed by the box
// returned from the toBBox function given at construction.
type Index[T comparable] struct {
	tree   rtree.RTreeG[T]
	toBBox func(T) geom.Bounds
}

// New creates an empty index.
func New[T comparable](toBBox func(T) geom.Bounds) *Index[T] {
	return &Index[T]{toBBox: toBBox}
}

// Load replaces the contents of the index with items.
func (ix *Index[T]) Load(items []T) {
	ix.tree.Clear()
	for _, item := range items {
		ix.Insert(item)
	}
}

// Insert adds a single item.
func (ix *Index[T]) Insert(item T) {
	b := ix.toBBox(item)
	ix.tree.Insert([2]float64{b.MinX, b.MinY}, [2]float64{b.MaxX, b.MaxY}, item)
}

// Remove deletes item, using its current box.
func (ix *Index[T]) Remove(item T) {
	b := ix.toBBox(item)
	ix.tree.Delete([2]float64{b.MinX, b.MinY}, [2]float64{b.MaxX, b.MaxY}, item)
}

// Search returns every item whose box intersects b.
func (ix *Index[T]) Search(b geom.Bounds) []T {
	var out []T
	ix.tree.Search([2]float64{b.MinX, b.MinY}, [2]float64{b.MaxX, b.MaxY},
		func(_, _ [2]float64, item T) bool {
			out = append(out, item)
			return true
		})
	return out
}

// Clear removes every item.
func (ix *Index[T]) Clear() { ix.tree.Clear() }

// Len is the number of indexed items.
func (ix *Index[T]) Len() int { return ix.tree.Len() }
