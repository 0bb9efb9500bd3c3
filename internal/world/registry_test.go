package world

import (
	"math"
	"testing"

	"github.com/l1jgo/awareness/internal/quadtree"
	"github.com/stretchr/testify/require"
)

type stubObject struct {
	id  uint64
	loc Location
}

func (o *stubObject) ObjectID() uint64 { return o.id }
func (o *stubObject) Location() (Location, bool) { return o.loc, true }
func (o *stubObject) SetLocation(loc Location) { o.loc = loc }
func (o *stubObject) LoadRange() float64 { return 0 }
func (o *stubObject) Traits() Traits { return 0 }
func (o *stubObject) HasOwner() bool { return true }
func (o *stubObject) SetAware(aware []Object) {}

func queryAll(ix *Index) []uint64 {
	var ids []uint64
	ix.Query(0, 0, math.Inf(1), func(obj Object) {
		ids = append(ids, obj.ObjectID())
	})
	return ids
}

func TestRegistryBuildsOneIndexPerTerrain(t *testing.T) {
	reg := NewRegistry([]Terrain{3, 1, 2, 1}, DefaultExtent)
	require.Equal(t, []Terrain{1, 2, 3}, reg.Terrains())

	a, ok := reg.Index(1)
	require.True(t, ok)
	b, _ := reg.Index(2)
	require.NotSame(t, a, b)
	require.Equal(t, Terrain(1), a.Terrain())

	_, ok = reg.Index(42)
	require.False(t, ok)
}

func TestRegistryDefaultsExtent(t *testing.T) {
	reg := NewRegistry([]Terrain{1}, 0)
	ix, _ := reg.Index(1)
	require.Equal(t, quadtree.Bounds{MinX: -8192, MinZ: -8192, MaxX: 8192, MaxZ: 8192}, ix.tree.Bounds())
}

func TestIndexInsertRemoveRelocate(t *testing.T) {
	reg := NewRegistry([]Terrain{1}, DefaultExtent, quadtree.WithCapacity(2))
	ix, _ := reg.Index(1)

	objs := []*stubObject{{id: 1}, {id: 2}, {id: 3}, {id: 4}}
	for i, o := range objs {
		require.True(t, ix.Insert(o, float64(i*10), 0))
	}
	require.Equal(t, 4, ix.Count())
	require.Equal(t, 4, reg.Count())

	require.True(t, ix.Relocate(objs[0], Location{Terrain: 1, X: 5000, Z: 5000}))
	require.Equal(t, 5000.0, objs[0].loc.X)
	require.ElementsMatch(t, []uint64{1}, idsOf(ix, 5000, 5000, 1))
	require.Empty(t, idsOf(ix, 0, 0, 1))

	require.True(t, ix.Remove(objs[1]))
	require.False(t, ix.Remove(objs[1]))
	require.False(t, ix.Contains(2))
	require.ElementsMatch(t, []uint64{1, 3, 4}, queryAll(ix))
}

func TestIndexRejectsOutOfBounds(t *testing.T) {
	reg := NewRegistry([]Terrain{1}, 100)
	ix, _ := reg.Index(1)
	o := &stubObject{id: 1}
	require.True(t, ix.Insert(o, 0, 0))

	require.False(t, ix.Relocate(o, Location{Terrain: 1, X: 101}))
	require.False(t, ix.Contains(1), "a rejected relocation leaves the object unindexed")
	require.Zero(t, ix.Count())
}

func TestIndexRemoveUsesInsertedCoordinates(t *testing.T) {
	reg := NewRegistry([]Terrain{1}, DefaultExtent, quadtree.WithCapacity(1))
	ix, _ := reg.Index(1)
	o := &stubObject{id: 7, loc: Location{Terrain: 1, X: -3000, Z: 3000}}
	require.True(t, ix.Insert(o, o.loc.X, o.loc.Z))
	require.True(t, ix.Insert(&stubObject{id: 8}, 3000, -3000))

	// location drifts without going through the index
	o.loc = Location{Terrain: 1, X: 3000, Z: -3000}
	require.True(t, ix.Remove(o))
	require.ElementsMatch(t, []uint64{8}, queryAll(ix))
}

func idsOf(ix *Index, x, z, r float64) []uint64 {
	var ids []uint64
	ix.Query(x, z, r, func(obj Object) {
		ids = append(ids, obj.ObjectID())
	})
	return ids
}
