package sim

import (
	"math"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/l1jgo/awareness/internal/world"
)

// Drifter is a simulated object wandering a terrain. It keeps the last
// awareness snapshot it was handed and counts what entered or left view,
// the way a connection would before sending create/destroy packets.
type Drifter struct {
	id        uint64
	traits    world.Traits
	loadRange float64

	owner   atomic.Bool
	spawned atomic.Bool

	// rng and heading are only touched by the goroutine moving this drifter.
	rng     *rand.Rand
	heading float64

	mu      sync.Mutex
	loc     world.Location
	hasLoc  bool
	known   map[uint64]struct{}
	entered uint64
	left    uint64
}

func newDrifter(id uint64, traits world.Traits, loadRange float64, seed int64) *Drifter {
	d := &Drifter{
		id:        id,
		traits:    traits,
		loadRange: loadRange,
		rng:       rand.New(rand.NewSource(seed)),
		known:     make(map[uint64]struct{}),
	}
	d.heading = d.rng.Float64() * 2 * math.Pi
	d.owner.Store(true)
	return d
}

func (d *Drifter) ObjectID() uint64 { return d.id }
func (d *Drifter) LoadRange() float64 { return d.loadRange }
func (d *Drifter) Traits() world.Traits { return d.traits }
func (d *Drifter) HasOwner() bool { return d.owner.Load() }
func (d *Drifter) Spawned() bool { return d.spawned.Load() }
func (d *Drifter) setOwner(attached bool) { d.owner.Store(attached) }

func (d *Drifter) Location() (world.Location, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loc, d.hasLoc
}

func (d *Drifter) SetLocation(loc world.Location) {
	d.mu.Lock()
	d.loc = loc
	d.hasLoc = true
	d.mu.Unlock()
}

// SetAware replaces the known set and records the difference.
func (d *Drifter) SetAware(aware []world.Object) {
	next := make(map[uint64]struct{}, len(aware))
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, obj := range aware {
		id := obj.ObjectID()
		next[id] = struct{}{}
		if _, ok := d.known[id]; !ok {
			d.entered++
		}
	}
	for id := range d.known {
		if _, ok := next[id]; !ok {
			d.left++
		}
	}
	d.known = next
}

// Known reports whether id is in the drifter's current awareness set.
func (d *Drifter) Known(id uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.known[id]
	return ok
}

// AwareCount returns the size of the current awareness set.
func (d *Drifter) AwareCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.known)
}

func (d *Drifter) churn() (entered, left uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.entered, d.left
}

// forget drops the awareness set after a despawn.
func (d *Drifter) forget() {
	d.mu.Lock()
	d.left += uint64(len(d.known))
	d.known = make(map[uint64]struct{})
	d.mu.Unlock()
}

// step advances the drifter by speed units, turning a little and bouncing
// off the edges of the [-spread, spread] square.
func (d *Drifter) step(from world.Location, speed, spread float64) world.Location {
	d.heading += d.rng.NormFloat64() * 0.3
	next := from
	next.X += math.Cos(d.heading) * speed
	next.Z += math.Sin(d.heading) * speed
	if next.X < -spread || next.X > spread {
		d.heading = math.Pi - d.heading
		next.X = clamp(next.X, -spread, spread)
	}
	if next.Z < -spread || next.Z > spread {
		d.heading = -d.heading
		next.Z = clamp(next.Z, -spread, spread)
	}
	return next
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
