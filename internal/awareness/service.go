package awareness

import (
	"math"
	"sync/atomic"

	"github.com/l1jgo/awareness/internal/world"
	"go.uber.org/zap"
)

const (
	// DefaultAwareRange is the broad radius queried on every update.
	DefaultAwareRange = 1024
)

// DefaultProximity is the visibility distance for objects without a load
// range: a squared 3D distance of 200.
var DefaultProximity = math.Sqrt(200)

// Config tunes the awareness radii. An AwareRange of zero or less selects
// DefaultAwareRange. DefaultRange is used as given, so 0 admits only
// candidates at the observer's exact position; a negative value selects
// DefaultProximity.
type Config struct {
	AwareRange   float64 // index query radius
	DefaultRange float64 // cut-off for candidates with LoadRange 0
}

// Stats is a snapshot of service counters.
type Stats struct {
	Adds     uint64
	Removes  uint64
	Moves    uint64
	Updates  uint64
	Rejected uint64 // inserts refused for falling outside terrain bounds
}

// Service keeps every object's awareness set current as objects spawn,
// despawn and move. All methods are safe for concurrent use across different
// objects; calls for the same object must not overlap. Absent positions,
// unknown terrains and missing index entries are silent no-ops.
type Service struct {
	registry   *world.Registry
	policy     Policy
	awareRange float64
	log        *zap.Logger

	adds     atomic.Uint64
	removes  atomic.Uint64
	moves    atomic.Uint64
	updates  atomic.Uint64
	rejected atomic.Uint64
}

// NewService returns a service over registry. A nil log discards output.
func NewService(registry *world.Registry, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.AwareRange <= 0 {
		cfg.AwareRange = DefaultAwareRange
	}
	if cfg.DefaultRange < 0 {
		cfg.DefaultRange = DefaultProximity
	}
	return &Service{
		registry:   registry,
		policy:     Policy{DefaultRange: cfg.DefaultRange},
		awareRange: cfg.AwareRange,
		log:        log,
	}
}

// Add recomputes obj's awareness and then indexes it at its location.
// Buildout objects are skipped.
func (s *Service) Add(obj world.Object) {
	ix, loc, ok := s.indexFor(obj)
	if !ok {
		return
	}
	s.Update(obj)
	if !ix.Insert(obj, loc.X, loc.Z) {
		s.reject(obj, loc)
		return
	}
	s.adds.Add(1)
}

// Remove takes obj out of its terrain's index.
func (s *Service) Remove(obj world.Object) {
	ix, _, ok := s.indexFor(obj)
	if !ok {
		return
	}
	if ix.Remove(obj) {
		s.removes.Add(1)
	}
}

// Move relocates obj to loc and recomputes its awareness. Within one terrain
// the remove and reinsert happen under a single index lock, so concurrent
// updates see obj at either the old or the new position. A move across
// terrains leaves the old index before entering the new one.
func (s *Service) Move(obj world.Object, loc world.Location) {
	if obj.Traits().Has(world.TraitBuildout) {
		obj.SetLocation(loc)
		return
	}
	src, _, hasSrc := s.indexFor(obj)
	dst, hasDst := s.registry.Index(loc.Terrain)
	if hasSrc && src != dst {
		src.Remove(obj)
	}
	if !hasDst {
		obj.SetLocation(loc)
		s.moves.Add(1)
		return
	}
	if !dst.Relocate(obj, loc) {
		s.reject(obj, loc)
	}
	s.moves.Add(1)
	s.Update(obj)
}

// Update queries obj's surroundings, filters them through the policy and
// hands the result to obj. The index position is not changed.
func (s *Service) Update(obj world.Object) {
	ix, loc, ok := s.indexFor(obj)
	if !ok {
		return
	}
	var aware []world.Object
	ix.Query(loc.X, loc.Z, s.awareRange, func(candidate world.Object) {
		if s.policy.Visible(obj, loc, candidate) {
			aware = append(aware, candidate)
		}
	})
	s.updates.Add(1)
	obj.SetAware(aware)
}

// Stats returns the current counter values.
func (s *Service) Stats() Stats {
	return Stats{
		Adds:     s.adds.Load(),
		Removes:  s.removes.Load(),
		Moves:    s.moves.Load(),
		Updates:  s.updates.Load(),
		Rejected: s.rejected.Load(),
	}
}

func (s *Service) indexFor(obj world.Object) (*world.Index, world.Location, bool) {
	if obj.Traits().Has(world.TraitBuildout) {
		return nil, world.Location{}, false
	}
	loc, ok := obj.Location()
	if !ok {
		return nil, world.Location{}, false
	}
	ix, ok := s.registry.Index(loc.Terrain)
	if !ok {
		return nil, world.Location{}, false
	}
	return ix, loc, true
}

func (s *Service) reject(obj world.Object, loc world.Location) {
	s.rejected.Add(1)
	s.log.Debug("object outside terrain bounds, not indexed",
		zap.Uint64("object_id", obj.ObjectID()),
		zap.Stringer("terrain", loc.Terrain),
		zap.Float64("x", loc.X),
		zap.Float64("z", loc.Z),
	)
}
