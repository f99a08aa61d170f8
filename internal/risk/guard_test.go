package risk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	paused  bool
	closed  bool
	resumed bool
}

func (f *fakeExecutor) Pause() error             { f.paused = true; return nil }
func (f *fakeExecutor) Resume() error            { f.resumed = true; f.paused = false; return nil }
func (f *fakeExecutor) CloseAllPositions() error { f.closed = true; return nil }

func TestGuardEmergencyStopsOnDailyLossBreach(t *testing.T) {
	m := conservativeManager(10000) // MaxDailyLossPercent = 0.03
	m.RecordTradeResult(-400)       // 4% loss, exceeds 3% limit

	g := NewGuard(nil, m)
	exec := &fakeExecutor{}
	g.SetExecutor(exec)

	violations := g.Evaluate()
	require.NotEmpty(t, violations)
	require.True(t, g.Paused())
	require.True(t, exec.closed)
}

func TestGuardPausesApproachingDailyLossLimit(t *testing.T) {
	m := conservativeManager(10000)
	m.RecordTradeResult(-250) // 2.5% loss, 83% of the 3% limit

	g := NewGuard(nil, m)
	exec := &fakeExecutor{}
	g.SetExecutor(exec)

	g.Evaluate()
	require.True(t, g.Paused())
	require.True(t, exec.paused)
	require.False(t, exec.closed)
}

func TestGuardClearOnHealthyState(t *testing.T) {
	m := conservativeManager(10000)
	g := NewGuard(nil, m)
	violations := g.Evaluate()
	require.Empty(t, violations)
	require.False(t, g.Paused())
}

func TestGuardResumeClearsPause(t *testing.T) {
	m := conservativeManager(10000)
	m.RecordTradeResult(-400)

	g := NewGuard(nil, m)
	exec := &fakeExecutor{}
	g.SetExecutor(exec)
	g.Evaluate()
	require.True(t, g.Paused())

	require.NoError(t, g.Resume())
	require.False(t, g.Paused())
	require.True(t, exec.resumed)
}

func TestConsecutiveLossRuleFiresAtThreshold(t *testing.T) {
	m := conservativeManager(10000) // MaxConsecutiveLosses = 3
	m.RecordTradeResult(-10)
	m.RecordTradeResult(-10)
	m.RecordTradeResult(-10)

	g := NewGuard(nil, m)
	violations := g.Evaluate()

	found := false
	for _, v := range violations {
		if v.Rule == "consecutive_losses" {
			found = true
		}
	}
	require.True(t, found)
}
