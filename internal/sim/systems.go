package sim

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/awareness/internal/core/system"
	"github.com/l1jgo/awareness/internal/world"
)

// SpawnSystem despawns and respawns drifters and flips player ownership,
// exercising Add/Remove and the detached-player rule. Runs serially.
type SpawnSystem struct {
	pop *Population
}

func NewSpawnSystem(pop *Population) *SpawnSystem {
	return &SpawnSystem{pop: pop}
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhaseSpawn }

func (s *SpawnSystem) Update(_ time.Duration) {
	p := s.pop
	for _, d := range p.drifters {
		if d.Spawned() {
			if p.rng.Float64() < despawnChance {
				p.despawn(d)
				continue
			}
		} else {
			if p.rng.Float64() < respawnChance {
				d.SetLocation(p.randomLocation(p.terrains[p.rng.Intn(len(p.terrains))]))
				p.spawn(d)
			}
			continue
		}
		if !d.traits.Has(world.TraitPlayer) {
			continue
		}
		if d.HasOwner() {
			if p.rng.Float64() < detachChance {
				d.setOwner(false)
			}
		} else if p.rng.Float64() < attachChance {
			d.setOwner(true)
		}
	}
}

// MoveSystem relocates every spawned drifter concurrently.
type MoveSystem struct {
	pop *Population
}

func NewMoveSystem(pop *Population) *MoveSystem {
	return &MoveSystem{pop: pop}
}

func (s *MoveSystem) Phase() coresys.Phase { return coresys.PhaseMove }

func (s *MoveSystem) Update(_ time.Duration) {
	p := s.pop
	speed := p.cfg.Speed
	spread := p.cfg.SpawnSpread
	p.parallel(func(d *Drifter) {
		from, ok := d.Location()
		if !ok {
			return
		}
		var to world.Location
		if len(p.terrains) > 1 && d.rng.Float64() < travelChance {
			to = world.Location{
				Terrain: p.terrains[d.rng.Intn(len(p.terrains))],
				X:       d.rng.Float64()*2*spread - spread,
				Z:       d.rng.Float64()*2*spread - spread,
			}
		} else {
			to = d.step(from, speed, spread)
		}
		p.svc.Move(d, to)
	})
}

// AwarenessSystem recomputes every spawned drifter's awareness set
// concurrently once all moves for the tick have landed.
type AwarenessSystem struct {
	pop *Population
}

func NewAwarenessSystem(pop *Population) *AwarenessSystem {
	return &AwarenessSystem{pop: pop}
}

func (s *AwarenessSystem) Phase() coresys.Phase { return coresys.PhaseAwareness }

func (s *AwarenessSystem) Update(_ time.Duration) {
	s.pop.parallel(func(d *Drifter) { s.pop.svc.Update(d) })
}

// ReportSystem logs aggregate awareness figures every N ticks.
type ReportSystem struct {
	pop      *Population
	registry *world.Registry
	every    int
	log      *zap.Logger

	ticks       int
	lastEntered uint64
	lastLeft    uint64
	lastTick    time.Time
}

func NewReportSystem(pop *Population, registry *world.Registry, every int, log *zap.Logger) *ReportSystem {
	if every <= 0 {
		every = 1
	}
	return &ReportSystem{pop: pop, registry: registry, every: every, log: log, lastTick: time.Now()}
}

func (s *ReportSystem) Phase() coresys.Phase { return coresys.PhaseReport }

func (s *ReportSystem) Update(_ time.Duration) {
	s.ticks++
	if s.ticks%s.every != 0 {
		return
	}
	r := s.Snapshot()
	now := time.Now()
	s.log.Info("awareness report",
		zap.Int("tick", s.ticks),
		zap.Int("spawned", r.Spawned),
		zap.Int("indexed", r.Indexed),
		zap.Float64("avg_aware", r.AvgAware),
		zap.Int("max_aware", r.MaxAware),
		zap.Uint64("entered", r.Entered-s.lastEntered),
		zap.Uint64("left", r.Left-s.lastLeft),
		zap.Uint64("updates", r.Service.Updates),
		zap.Uint64("rejected", r.Service.Rejected),
		zap.Duration("elapsed", now.Sub(s.lastTick)),
	)
	s.lastEntered, s.lastLeft = r.Entered, r.Left
	s.lastTick = now
}
