package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseSpawn     Phase = iota // 0: objects enter or leave the world
	PhaseMove                   // 1: relocate moving objects
	PhaseAwareness              // 2: recompute awareness sets
	PhaseReport                 // 3: stats and logging
)

func (p Phase) String() string {
	switch p {
	case PhaseSpawn:
		return "spawn"
	case PhaseMove:
		return "move"
	case PhaseAwareness:
		return "awareness"
	case PhaseReport:
		return "report"
	}
	return "unknown"
}

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
