package world

import (
	"sync"

	"github.com/l1jgo/awareness/internal/quadtree"
)

// Index is the spatial index for one terrain: a quadtree of object ids
// behind a single lock. Range queries share the read lock; inserts, removes
// and relocations take the write lock for the whole operation, so a reader
// never sees a half-applied relocation.
type Index struct {
	terrain Terrain

	mu     sync.RWMutex
	tree   *quadtree.Tree[uint64]
	placed map[uint64]placement // objectID → where it was inserted
}

type placement struct {
	obj  Object
	x, z float64
}

func newIndex(t Terrain, bounds quadtree.Bounds, opts ...quadtree.Option) *Index {
	return &Index{
		terrain: t,
		tree:    quadtree.New[uint64](bounds, opts...),
		placed:  make(map[uint64]placement),
	}
}

func (ix *Index) Terrain() Terrain { return ix.terrain }

// Insert places obj at (x, z). An object that is already indexed is moved.
// Returns false if the point lies outside the terrain bounds; the object is
// then not indexed at all.
func (ix *Index) Insert(obj Object, x, z float64) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.insertLocked(obj, x, z)
}

// Remove takes obj out of the index using the coordinates it was inserted
// at. Returns false if it was not indexed.
func (ix *Index) Remove(obj Object) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.removeLocked(obj.ObjectID())
}

// Relocate removes obj, stores loc on it and reinserts it, all under one
// write lock. loc.Terrain is expected to be this index's terrain.
func (ix *Index) Relocate(obj Object, loc Location) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(obj.ObjectID())
	obj.SetLocation(loc)
	return ix.insertLocked(obj, loc.X, loc.Z)
}

// Query calls fn for every object within r of (x, z) on the X/Z plane.
// fn runs under the read lock and must not call back into this index.
func (ix *Index) Query(x, z, r float64, fn func(obj Object)) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	ix.tree.ForRange(x, z, r, func(id uint64) {
		fn(ix.placed[id].obj)
	})
}

// Contains reports whether an object with the given id is indexed.
func (ix *Index) Contains(objectID uint64) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.placed[objectID]
	return ok
}

// Count returns the number of indexed objects.
func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.tree.Len()
}

func (ix *Index) insertLocked(obj Object, x, z float64) bool {
	id := obj.ObjectID()
	ix.removeLocked(id)
	if !ix.tree.Insert(x, z, id) {
		return false
	}
	ix.placed[id] = placement{obj: obj, x: x, z: z}
	return true
}

func (ix *Index) removeLocked(id uint64) bool {
	p, ok := ix.placed[id]
	if !ok {
		return false
	}
	ix.tree.Remove(p.x, p.z, id)
	delete(ix.placed, id)
	return true
}
