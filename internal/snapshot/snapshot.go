// Package snapshot exposes a read-only view of the execution loop's
// core state to a separate host thread (e.g. an HTTP status endpoint),
// per spec.md §5: "the core exposes a read-only snapshot under a single
// guard." Grounded on the teacher's internal/libs/lease for a
// single-writer guard and internal/libs/channel for the publish side.
package snapshot

import (
	"time"

	"github.com/Maryorwahmi/smc-forez/internal/libs/channel"
	"github.com/Maryorwahmi/smc-forez/internal/libs/lease"
	"github.com/Maryorwahmi/smc-forez/internal/models"
)

const topic = "snapshot.state"

// State is the read-only projection published once per tick.
type State struct {
	TakenAt       time.Time
	Balance       float64
	OpenPositions []models.PositionRisk
	Paused        bool
}

// Publisher is the execution loop's single writer: Publish is called
// once per tick and never blocks past the lease's try-acquire.
type Publisher struct {
	ch    *channel.Channel
	guard *lease.Lease
}

// NewPublisher builds a Publisher around a fresh channel hub.
func NewPublisher() *Publisher {
	return &Publisher{ch: channel.New(), guard: lease.New()}
}

// Publish pushes the latest State to any subscriber. If the guard is
// already held (another Publish still in progress), Publish drops the update
// rather than blocking the execution loop.
func (p *Publisher) Publish(s State) {
	if !p.guard.Try() {
		return
	}
	defer p.guard.Release()

	out := p.ch.Get(topic)
	select {
	case out <- s:
	default:
		// Buffer full: drop the oldest-pending update rather than block
		// the tick that produced this one.
		select {
		case <-out:
		default:
		}
		out <- s
	}
}

// Subscribe returns the channel a host thread reads published State
// values from.
func (p *Publisher) Subscribe() <-chan interface{} {
	return p.ch.Get(topic)
}
