package geom

import (
	"cmp"
	"slices"
)

// DistributeItem is one box taking part in a distribution.
type DistributeItem struct {
	ID     string
	Bounds Bounds
	Center Vec
}

// Distribution moves the item ID from Prev to Next (both top lefts).
type Distribution struct {
	ID   string
	Prev Vec
	Next Vec
}

// Distributions spaces items evenly along one axis. When the items
// overlap more than the common box can hold, their centers are spread
// between the outermost two instead, which stay put.
func Distributions(items []DistributeItem, horizontal bool) []Distribution {
	if len(items) < 2 {
		return nil
	}
	axis := func(v Vec) float64 {
		if horizontal {
			return v.X
		}
		return v.Y
	}
	extent := func(b Bounds) float64 {
		if horizontal {
			return b.Width
		}
		return b.Height
	}
	place := func(b Bounds, at float64) Vec {
		if horizontal {
			return V(at, b.MinY)
		}
		return V(b.MinX, at)
	}

	bs := make([]Bounds, len(items))
	var span float64
	for i, it := range items {
		bs[i] = it.Bounds
		span += extent(it.Bounds)
	}
	common := CommonBounds(bs)
	byCenter := slices.Clone(items)
	slices.SortStableFunc(byCenter, func(a, b DistributeItem) int {
		return cmp.Compare(axis(a.Center), axis(b.Center))
	})

	out := make([]Distribution, 0, len(items))
	if span > extent(common) {
		first := slices.MinFunc(items, func(a, b DistributeItem) int {
			return cmp.Compare(axis(a.Bounds.Min()), axis(b.Bounds.Min()))
		})
		last := slices.MaxFunc(items, func(a, b DistributeItem) int {
			return cmp.Compare(axis(a.Bounds.Max()), axis(b.Bounds.Max()))
		})
		step := (axis(last.Center) - axis(first.Center)) / float64(len(items)-1)
		at := axis(first.Center) + step
		i := 0
		for _, it := range byCenter {
			if it.ID == first.ID || it.ID == last.ID {
				continue
			}
			out = append(out, Distribution{
				ID:   it.ID,
				Prev: it.Bounds.Min(),
				Next: place(it.Bounds, at+step*float64(i)-extent(it.Bounds)/2),
			})
			i++
		}
		return out
	}

	at := axis(common.Min())
	step := (extent(common) - span) / float64(len(items)-1)
	for _, it := range byCenter {
		out = append(out, Distribution{ID: it.ID, Prev: it.Bounds.Min(), Next: place(it.Bounds, at)})
		at += extent(it.Bounds) + step
	}
	return out
}
