package sim

import (
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/l1jgo/awareness/internal/awareness"
	"github.com/l1jgo/awareness/internal/config"
	"github.com/l1jgo/awareness/internal/world"
)

const (
	// share of non-player drifters that carry a custom load range
	rangedFraction = 0.05
	rangedLoad     = 256
	// per-tick chance that a drifter hops to another terrain
	travelChance = 0.0005
	// per-tick chance that a drifter despawns, or a despawned one returns
	despawnChance = 0.001
	respawnChance = 0.02
	// per-tick chance that a player's connection drops or reattaches
	detachChance = 0.002
	attachChance = 0.05
)

// Population owns every drifter and drives them through the awareness
// service, standing in for the intent layer that would normally do so.
type Population struct {
	svc      *awareness.Service
	terrains []world.Terrain
	cfg      config.SimulationConfig
	log      *zap.Logger

	rng      *rand.Rand // spawn phase only
	drifters []*Drifter
}

func NewPopulation(svc *awareness.Service, terrains []world.Terrain, cfg config.SimulationConfig, log *zap.Logger) *Population {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Population{
		svc:      svc,
		terrains: terrains,
		cfg:      cfg,
		log:      log,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Populate creates cfg.Drifters drifters per terrain and adds them to the
// world. Returns the number spawned.
func (p *Population) Populate() int {
	var id uint64
	for _, t := range p.terrains {
		for i := 0; i < p.cfg.Drifters; i++ {
			id++
			var traits world.Traits
			var load float64
			r := p.rng.Float64()
			switch {
			case r < p.cfg.PlayerFraction:
				traits = world.TraitPlayer
			case r < p.cfg.PlayerFraction+rangedFraction:
				load = rangedLoad
			}
			d := newDrifter(id, traits, load, p.cfg.Seed+int64(id))
			d.SetLocation(p.randomLocation(t))
			p.spawn(d)
			p.drifters = append(p.drifters, d)
		}
	}
	p.log.Info("population spawned",
		zap.Int("drifters", len(p.drifters)),
		zap.Int("terrains", len(p.terrains)),
	)
	return len(p.drifters)
}

// Drifters returns every drifter, spawned or not.
func (p *Population) Drifters() []*Drifter { return p.drifters }

// Spawned returns the number of drifters currently in the world.
func (p *Population) Spawned() int {
	n := 0
	for _, d := range p.drifters {
		if d.Spawned() {
			n++
		}
	}
	return n
}

// Despawn takes every drifter out of the world.
func (p *Population) Despawn() {
	for _, d := range p.drifters {
		p.despawn(d)
	}
}

func (p *Population) spawn(d *Drifter) {
	p.svc.Add(d)
	d.spawned.Store(true)
}

func (p *Population) despawn(d *Drifter) {
	if !d.spawned.Swap(false) {
		return
	}
	p.svc.Remove(d)
	d.forget()
}

func (p *Population) randomLocation(t world.Terrain) world.Location {
	s := p.cfg.SpawnSpread
	return world.Location{
		Terrain: t,
		X:       p.rng.Float64()*2*s - s,
		Z:       p.rng.Float64()*2*s - s,
	}
}

// parallel splits the spawned drifters into one chunk per worker and runs
// fn over each chunk concurrently.
func (p *Population) parallel(fn func(d *Drifter)) {
	live := make([]*Drifter, 0, len(p.drifters))
	for _, d := range p.drifters {
		if d.Spawned() {
			live = append(live, d)
		}
	}
	if len(live) == 0 {
		return
	}
	workers := p.cfg.Workers
	if workers > len(live) {
		workers = len(live)
	}
	chunk := (len(live) + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < len(live); start += chunk {
		part := live[start:min(start+chunk, len(live))]
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, d := range part {
				fn(d)
			}
		}()
	}
	wg.Wait()
}
