package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase { return r.phase }
func (r recorder) Update(time.Duration) { *r.log = append(*r.log, r.name) }

func TestRunnerOrdersByPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"report", PhaseReport, &log})
	r.Register(recorder{"aware-a", PhaseAwareness, &log})
	r.Register(recorder{"move", PhaseMove, &log})
	r.Register(recorder{"aware-b", PhaseAwareness, &log})

	r.Tick(time.Millisecond)
	require.Equal(t, []string{"move", "aware-a", "aware-b", "report"}, log)

	log = log[:0]
	r.TickPhase(PhaseAwareness, time.Millisecond)
	require.Equal(t, []string{"aware-a", "aware-b"}, log)
}

func TestPhaseString(t *testing.T) {
	require.Equal(t, "awareness", PhaseAwareness.String())
	require.Equal(t, "unknown", Phase(99).String())
}
