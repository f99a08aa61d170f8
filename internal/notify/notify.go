// Package notify pushes Recommendation alerts and session summaries to
// Telegram. Grounded on the teacher's internal/services/notify package
// for the shape of a queue-drained notifier goroutine, generalized from
// order-fill notifications to SMC signal/session alerts, and on
// internal/externals/telegram for the bot transport itself. Uses the
// teacher's internal/libs/queue topic/consumer-group queue as the
// outbound mailbox instead of an order-event bus.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/Maryorwahmi/smc-forez/internal/externals/telegram"
	"github.com/Maryorwahmi/smc-forez/internal/libs/logger"
	"github.com/Maryorwahmi/smc-forez/internal/libs/queue"
	"github.com/Maryorwahmi/smc-forez/internal/models"
	"go.uber.org/zap"
)

const (
	alertTopic   = "notify.alerts"
	consumerGroup = "notify.telegram"
	pollInterval = 500 * time.Millisecond
)

// Notifier drains a queue of outbound alerts and pushes them through a
// Telegram bot, one chat id per process (the operator's chat).
type Notifier struct {
	log    *logger.Logger
	bot    telegram.Notify
	chatID int64
	queue  *queue.Queue
	quit   chan struct{}
}

// New wires a Notifier. bot may be nil, in which case alerts are only
// logged — used in backtest/offline runs with no live chat.
func New(log *logger.Logger, bot telegram.Notify, chatID int64) *Notifier {
	return &Notifier{log: log, bot: bot, chatID: chatID, queue: queue.New(), quit: make(chan struct{})}
}

// Start polls the alert topic in the background until Stop is called.
func (n *Notifier) Start() {
	go n.loop()
}

// Stop halts the poll loop and the underlying bot, if any.
func (n *Notifier) Stop() {
	close(n.quit)
	n.queue.Close()
	if n.bot != nil {
		n.bot.Stop()
	}
}

func (n *Notifier) loop() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	ctx := context.Background()
	for {
		select {
		case <-n.quit:
			return
		case <-ticker.C:
			for {
				msg, err := n.queue.Consume(ctx, alertTopic, consumerGroup)
				if err != nil {
					break
				}
				text, _ := msg.Data.(string)
				n.deliver(text)
				_ = msg.Commit(ctx)
			}
		}
	}
}

func (n *Notifier) deliver(text string) {
	if n.bot == nil {
		n.log.Info("notify (no transport)", zap.String("message", text))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := n.bot.PushNotify(ctx, n.chatID, text); err != nil {
		n.log.Warn("push notify failed", zap.Error(err))
	}
}

// AlertSignal enqueues a human-readable alert for a Recommendation that
// passed the quality filter and was submitted as an order.
func (n *Notifier) AlertSignal(symbol string, rec models.Recommendation, orderID string) {
	text := fmt.Sprintf(
		"%s %s\nentry=%.5f sl=%.5f tp=%.5f rr=%.2f\nconfidence=%s score=%.2f\norder=%s",
		symbol, rec.Action, rec.EntryDetails.EntryPrice, rec.EntryDetails.StopLoss,
		rec.EntryDetails.TakeProfit, rec.EntryDetails.RRRatio, rec.Confidence, rec.ConfidenceScore, orderID,
	)
	_ = n.queue.Push(context.Background(), alertTopic, text)
}

// AlertSessionSummary enqueues the end-of-session summary line.
func (n *Notifier) AlertSessionSummary(s models.SessionSummary) {
	text := fmt.Sprintf(
		"session %s -> %s: scans=%d signals=%d orders=%d",
		s.StartedAt.Format("15:04:05"), s.EndedAt.Format("15:04:05"),
		s.Scans, s.SignalsGenerated, s.OrdersSubmitted,
	)
	_ = n.queue.Push(context.Background(), alertTopic, text)
}
