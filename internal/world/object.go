package world

// Traits are capability flags the awareness policy filters on.
type Traits uint8

const (
	// TraitPlayer marks a player-controlled object. Players with no
	// attached owner are spatially indexed but invisible to others.
	TraitPlayer Traits = 1 << iota
	// TraitBuildout marks static world layout. Buildout objects are never
	// indexed and never receive awareness updates.
	TraitBuildout
)

func (t Traits) Has(f Traits) bool { return t&f != 0 }

// Object is the handle the awareness engine works with. Implementations must
// be safe to read from other goroutines while the engine holds the owning
// index lock; SetLocation is only ever called under that lock.
type Object interface {
	ObjectID() uint64
	// Location returns false when the object currently has no position
	// (mid-construction, despawning).
	Location() (Location, bool)
	SetLocation(loc Location)
	// LoadRange overrides the default visibility distance when nonzero.
	LoadRange() float64
	Traits() Traits
	HasOwner() bool
	// SetAware hands the object a fresh awareness snapshot. Diffing against
	// the previous snapshot is the object's job.
	SetAware(aware []Object)
}
