package world

import (
	"sort"

	"github.com/l1jgo/awareness/internal/quadtree"
)

// DefaultExtent is the half-width of every terrain: maps span
// [-8192, 8192] on both axes.
const DefaultExtent = 8192

// Registry owns one Index per terrain. It is built once at startup and never
// resized, so lookups need no locking.
type Registry struct {
	indices  map[Terrain]*Index
	terrains []Terrain
}

// NewRegistry builds an index for every terrain, each covering
// [-extent, extent]². Duplicate terrains are collapsed.
func NewRegistry(terrains []Terrain, extent float64, opts ...quadtree.Option) *Registry {
	if extent <= 0 {
		extent = DefaultExtent
	}
	bounds := quadtree.Bounds{MinX: -extent, MinZ: -extent, MaxX: extent, MaxZ: extent}
	r := &Registry{indices: make(map[Terrain]*Index, len(terrains))}
	for _, t := range terrains {
		if _, dup := r.indices[t]; dup {
			continue
		}
		r.indices[t] = newIndex(t, bounds, opts...)
		r.terrains = append(r.terrains, t)
	}
	sort.Slice(r.terrains, func(i, j int) bool { return r.terrains[i] < r.terrains[j] })
	return r
}

// Index returns the index for t, or false for an unknown terrain.
func (r *Registry) Index(t Terrain) (*Index, bool) {
	ix, ok := r.indices[t]
	return ix, ok
}

// Terrains returns the registered terrains in ascending order.
func (r *Registry) Terrains() []Terrain {
	return append([]Terrain(nil), r.terrains...)
}

// Count returns the number of indexed objects across all terrains.
func (r *Registry) Count() int {
	n := 0
	for _, ix := range r.indices {
		n += ix.Count()
	}
	return n
}
