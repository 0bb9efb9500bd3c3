package sim

import "github.com/l1jgo/awareness/internal/awareness"

// Report aggregates the population's awareness state.
type Report struct {
	Spawned  int
	Indexed  int
	AvgAware float64
	MaxAware int
	Entered  uint64 // cumulative
	Left     uint64 // cumulative
	Service  awareness.Stats
}

// Snapshot builds a Report from the current state.
func (s *ReportSystem) Snapshot() Report {
	var r Report
	total := 0
	for _, d := range s.pop.drifters {
		e, l := d.churn()
		r.Entered += e
		r.Left += l
		if !d.Spawned() {
			continue
		}
		r.Spawned++
		n := d.AwareCount()
		total += n
		if n > r.MaxAware {
			r.MaxAware = n
		}
	}
	if r.Spawned > 0 {
		r.AvgAware = float64(total) / float64(r.Spawned)
	}
	r.Indexed = s.registry.Count()
	r.Service = s.pop.svc.Stats()
	return r
}
