package notify

import (
	"testing"
	"time"

	"github.com/Maryorwahmi/smc-forez/internal/libs/logger"
	"github.com/Maryorwahmi/smc-forez/internal/models"
	"github.com/stretchr/testify/require"
)

func TestAlertSignalDeliversWithNilBot(t *testing.T) {
	n := New(logger.NewDev(), nil, 0)
	n.Start()
	defer n.Stop()

	rec := models.Recommendation{
		Action: models.Buy, Confidence: models.ConfidenceHigh, ConfidenceScore: 0.9,
		EntryDetails: models.Candidate{EntryPrice: 1.1, StopLoss: 1.09, TakeProfit: 1.13, RRRatio: 3},
	}
	n.AlertSignal("EURUSD", rec, "order-1")

	// nil-bot delivery only logs; this test exercises the queue/poll
	// plumbing doesn't panic or deadlock.
	time.Sleep(50 * time.Millisecond)
	require.True(t, true)
}

func TestAlertSessionSummaryDoesNotBlock(t *testing.T) {
	n := New(logger.NewDev(), nil, 0)
	n.Start()
	defer n.Stop()

	n.AlertSessionSummary(models.SessionSummary{
		StartedAt: time.Now(), EndedAt: time.Now(), Scans: 5, SignalsGenerated: 2, OrdersSubmitted: 1,
	})
	time.Sleep(50 * time.Millisecond)
}
