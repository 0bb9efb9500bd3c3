package sim

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/awareness/internal/awareness"
	"github.com/l1jgo/awareness/internal/config"
	coresys "github.com/l1jgo/awareness/internal/core/system"
	"github.com/l1jgo/awareness/internal/world"
)

func testConfig() config.SimulationConfig {
	return config.SimulationConfig{
		Drifters:       150,
		PlayerFraction: 0.3,
		SpawnSpread:    300,
		Speed:          6,
		Workers:        4,
		ReportEvery:    5,
		Seed:           11,
	}
}

func newRig(t *testing.T, cfg config.SimulationConfig) (*Population, *world.Registry, *coresys.Runner, *ReportSystem) {
	t.Helper()
	terrains := []world.Terrain{1, 2}
	reg := world.NewRegistry(terrains, world.DefaultExtent)
	svc := awareness.NewService(reg, awareness.Config{AwareRange: 1024, DefaultRange: 40}, zap.NewNop())
	pop := NewPopulation(svc, terrains, cfg, zap.NewNop())
	require.Equal(t, 2*cfg.Drifters, pop.Populate())

	report := NewReportSystem(pop, reg, cfg.ReportEvery, zap.NewNop())
	runner := coresys.NewRunner()
	runner.Register(report)
	runner.Register(NewAwarenessSystem(pop))
	runner.Register(NewMoveSystem(pop))
	runner.Register(NewSpawnSystem(pop))
	return pop, reg, runner, report
}

func TestSimulationKeepsIndexConsistent(t *testing.T) {
	pop, reg, runner, report := newRig(t, testConfig())
	for i := 0; i < 60; i++ {
		runner.Tick(time.Millisecond)
	}

	r := report.Snapshot()
	require.Equal(t, pop.Spawned(), r.Indexed, "every spawned drifter indexed exactly once")
	require.Equal(t, pop.Spawned(), reg.Count())
	require.Greater(t, r.AvgAware, 0.0)
	require.Greater(t, r.Entered, uint64(0))

	for _, d := range pop.Drifters() {
		require.False(t, d.Known(d.id), "drifter %d aware of itself", d.id)
		ix, _ := reg.Index(1)
		ix2, _ := reg.Index(2)
		inIndex := ix.Contains(d.id) || ix2.Contains(d.id)
		require.Equal(t, d.Spawned(), inIndex, "drifter %d", d.id)
	}
}

func TestSimulationNeverShowsDetachedPlayers(t *testing.T) {
	pop, _, runner, _ := newRig(t, testConfig())
	// detach every player, then let one full tick run
	for _, d := range pop.Drifters() {
		if d.traits.Has(world.TraitPlayer) {
			d.setOwner(false)
		}
	}
	runner.TickPhase(coresys.PhaseAwareness, time.Millisecond)

	for _, observer := range pop.Drifters() {
		for _, other := range pop.Drifters() {
			if other.traits.Has(world.TraitPlayer) && !other.HasOwner() {
				require.False(t, observer.Known(other.id))
			}
		}
	}
}

func TestSimulationAwarenessRespectsRanges(t *testing.T) {
	pop, _, runner, _ := newRig(t, testConfig())
	runner.TickPhase(coresys.PhaseAwareness, time.Millisecond)

	byID := make(map[uint64]*Drifter)
	for _, d := range pop.Drifters() {
		byID[d.id] = d
	}
	for _, d := range pop.Drifters() {
		at, _ := d.Location()
		d.mu.Lock()
		known := make([]uint64, 0, len(d.known))
		for id := range d.known {
			known = append(known, id)
		}
		d.mu.Unlock()
		for _, id := range known {
			other := byID[id]
			loc, _ := other.Location()
			require.Equal(t, at.Terrain, loc.Terrain)
			limit := 40.0
			if other.loadRange != 0 {
				limit = other.loadRange
			}
			require.LessOrEqual(t, math.Sqrt(at.DistanceSquared(loc)), limit)
		}
	}
}

func TestDespawnEmptiesIndex(t *testing.T) {
	pop, reg, runner, _ := newRig(t, testConfig())
	runner.Tick(time.Millisecond)
	pop.Despawn()
	require.Zero(t, reg.Count())
	require.Zero(t, pop.Spawned())
	for _, d := range pop.Drifters() {
		require.Zero(t, d.AwareCount())
	}
}

func TestStepStaysInsideSpread(t *testing.T) {
	d := newDrifter(1, 0, 0, 5)
	loc := world.Location{Terrain: 1}
	for i := 0; i < 10000; i++ {
		loc = d.step(loc, 25, 100)
		require.LessOrEqual(t, math.Abs(loc.X), 100.0)
		require.LessOrEqual(t, math.Abs(loc.Z), 100.0)
	}
}

func TestParallelVisitsLiveDriftersOnce(t *testing.T) {
	pop, _, _, _ := newRig(t, testConfig())
	for i, d := range pop.Drifters() {
		if i%3 == 0 {
			pop.despawn(d)
		}
	}

	var mu sync.Mutex
	visits := make(map[uint64]int)
	pop.parallel(func(d *Drifter) {
		mu.Lock()
		visits[d.id]++
		mu.Unlock()
	})

	require.Len(t, visits, pop.Spawned())
	for _, d := range pop.Drifters() {
		if d.Spawned() {
			require.Equal(t, 1, visits[d.id], "drifter %d", d.id)
		} else {
			require.Zero(t, visits[d.id], "despawned drifter %d visited", d.id)
		}
	}
}
