package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPublishSubscribeRoundTrip(t *testing.T) {
	p := NewPublisher()
	sub := p.Subscribe()

	p.Publish(State{TakenAt: time.Now(), Balance: 10000})

	select {
	case v := <-sub:
		s, ok := v.(State)
		require.True(t, ok)
		require.Equal(t, 10000.0, s.Balance)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published state")
	}
}

func TestPublishPreservesOrderAcrossCalls(t *testing.T) {
	p := NewPublisher()
	sub := p.Subscribe()

	p.Publish(State{Balance: 1})
	p.Publish(State{Balance: 2})

	first := (<-sub).(State)
	second := (<-sub).(State)
	require.Equal(t, 1.0, first.Balance)
	require.Equal(t, 2.0, second.Balance)
}
