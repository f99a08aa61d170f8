package risk

import (
	"fmt"
	"sync"
	"time"

	"github.com/Maryorwahmi/smc-forez/internal/libs/logger"
	"go.uber.org/zap"
)

// Severity ranks how serious a safety violation is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Action is the recommended response to a violation.
type Action string

const (
	ActionWarn           Action = "warn"
	ActionPauseTrading   Action = "pause_trading"
	ActionClosePositions Action = "close_positions"
	ActionEmergencyStop  Action = "emergency_stop"
)

// Violation is one rule firing against the current Manager state.
type Violation struct {
	Rule      string
	Severity  Severity
	Message   string
	Action    Action
	Timestamp time.Time
}

// Rule inspects the Manager's runtime state and optionally raises a
// Violation. Grounded on the teacher's guard.SafetyRule, one rule per
// risk metric instead of per exchange-account metric.
type Rule interface {
	Name() string
	Check(m *Manager) *Violation
}

// ExecutorController is the subset of the execution loop (C9) a Guard
// can drive in response to a violation.
type ExecutorController interface {
	Pause() error
	Resume() error
	CloseAllPositions() error
}

// Guard periodically evaluates its Rule set against a Manager and
// escalates through pause/close/stop actions, grounded on the
// teacher's guard.SafetyGuard circuit breaker loop.
type Guard struct {
	mu sync.Mutex

	log     *logger.Logger
	manager *Manager
	rules   []Rule
	exec    ExecutorController

	violations []Violation
	paused     bool

	checkInterval time.Duration
	ticker        *time.Ticker
	quit          chan struct{}
	running       bool
}

// NewGuard builds a Guard with the spec's default rule set.
func NewGuard(log *logger.Logger, manager *Manager) *Guard {
	return &Guard{
		log:           log,
		manager:       manager,
		rules:         defaultRules(),
		checkInterval: 30 * time.Second,
		quit:          make(chan struct{}),
	}
}

func defaultRules() []Rule {
	return []Rule{
		dailyLossLimitRule{},
		drawdownLimitRule{},
		maxPositionsRule{},
		consecutiveLossRule{},
	}
}

// SetExecutor wires the execution loop controller the Guard can pause
// or halt.
func (g *Guard) SetExecutor(exec ExecutorController) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.exec = exec
}

// Start begins periodic background evaluation of the rule set.
func (g *Guard) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		return fmt.Errorf("risk guard already running")
	}
	g.ticker = time.NewTicker(g.checkInterval)
	g.running = true
	go g.loop()
	return nil
}

// Stop halts periodic background evaluation.
func (g *Guard) Stop() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.running {
		return fmt.Errorf("risk guard not running")
	}
	close(g.quit)
	g.ticker.Stop()
	g.running = false
	return nil
}

func (g *Guard) loop() {
	for {
		select {
		case <-g.ticker.C:
			g.Evaluate()
		case <-g.quit:
			return
		}
	}
}

// Evaluate runs every rule once and acts on whatever fires. Exposed
// directly so the execution loop can force an out-of-band check after
// a trade closes, not only on the ticker cadence.
func (g *Guard) Evaluate() []Violation {
	g.mu.Lock()
	defer g.mu.Unlock()

	var fired []Violation
	for _, rule := range g.rules {
		if v := rule.Check(g.manager); v != nil {
			fired = append(fired, *v)
			g.handle(*v)
		}
	}
	return fired
}

// Paused reports whether the guard has paused trading.
func (g *Guard) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// Violations returns the accumulated violation history.
func (g *Guard) Violations() []Violation {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Violation, len(g.violations))
	copy(out, g.violations)
	return out
}

func (g *Guard) handle(v Violation) {
	g.violations = append(g.violations, v)
	if len(g.violations) > 1000 {
		g.violations = g.violations[len(g.violations)-1000:]
	}

	if g.log != nil {
		g.log.Warn("risk guard violation",
			zap.String("rule", v.Rule),
			zap.String("severity", string(v.Severity)),
			zap.String("message", v.Message),
			zap.String("action", string(v.Action)))
	}

	switch v.Action {
	case ActionWarn:
		return
	case ActionPauseTrading:
		g.paused = true
		if g.exec != nil {
			_ = g.exec.Pause()
		}
	case ActionClosePositions, ActionEmergencyStop:
		g.paused = true
		if g.exec != nil {
			_ = g.exec.CloseAllPositions()
			if v.Action == ActionEmergencyStop {
				_ = g.exec.Pause()
			}
		}
	}
}

// Resume clears the paused flag and resumes the wired executor.
func (g *Guard) Resume() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paused = false
	if g.exec != nil {
		return g.exec.Resume()
	}
	return nil
}

type dailyLossLimitRule struct{}

func (dailyLossLimitRule) Name() string { return "daily_loss_limit" }

func (dailyLossLimitRule) Check(m *Manager) *Violation {
	limit := m.cfg.MaxDailyLossPercent
	if limit <= 0 {
		return nil
	}
	loss := m.DailyLossPercent()
	if loss <= 0 {
		return nil
	}

	ratio := loss / limit
	switch {
	case ratio >= 1.0:
		return &Violation{
			Rule: "daily_loss_limit", Severity: SeverityCritical,
			Message:   fmt.Sprintf("daily loss %.2f%% exceeded limit %.2f%%", loss*100, limit*100),
			Action:    ActionEmergencyStop,
			Timestamp: time.Now(),
		}
	case ratio >= 0.8:
		return &Violation{
			Rule: "daily_loss_limit", Severity: SeverityHigh,
			Message:   fmt.Sprintf("daily loss %.2f%% approaching limit %.2f%%", loss*100, limit*100),
			Action:    ActionPauseTrading,
			Timestamp: time.Now(),
		}
	}
	return nil
}

type drawdownLimitRule struct{}

func (drawdownLimitRule) Name() string { return "drawdown_limit" }

func (drawdownLimitRule) Check(m *Manager) *Violation {
	limit := m.cfg.MaxDrawdownPercent
	if limit <= 0 {
		return nil
	}
	dd := m.DrawdownPercent()
	if dd <= 0 {
		return nil
	}

	ratio := dd / limit
	switch {
	case ratio >= 1.0:
		return &Violation{
			Rule: "drawdown_limit", Severity: SeverityCritical,
			Message:   fmt.Sprintf("drawdown %.2f%% exceeded limit %.2f%%", dd*100, limit*100),
			Action:    ActionEmergencyStop,
			Timestamp: time.Now(),
		}
	case ratio >= 0.8:
		return &Violation{
			Rule: "drawdown_limit", Severity: SeverityHigh,
			Message:   fmt.Sprintf("drawdown %.2f%% approaching limit %.2f%%", dd*100, limit*100),
			Action:    ActionPauseTrading,
			Timestamp: time.Now(),
		}
	}
	return nil
}

type maxPositionsRule struct{}

func (maxPositionsRule) Name() string { return "max_positions" }

func (maxPositionsRule) Check(m *Manager) *Violation {
	max := m.cfg.MaxPositions
	if max <= 0 {
		return nil
	}
	open := m.OpenPositionCount()
	if open >= max {
		return &Violation{
			Rule: "max_positions", Severity: SeverityHigh,
			Message:   fmt.Sprintf("open positions %d reached max %d", open, max),
			Action:    ActionPauseTrading,
			Timestamp: time.Now(),
		}
	}
	return nil
}

type consecutiveLossRule struct{}

func (consecutiveLossRule) Name() string { return "consecutive_losses" }

func (consecutiveLossRule) Check(m *Manager) *Violation {
	max := m.cfg.MaxConsecutiveLosses
	if max <= 0 {
		return nil
	}
	streak := m.ConsecutiveLosses()
	if streak >= max {
		return &Violation{
			Rule: "consecutive_losses", Severity: SeverityHigh,
			Message:   fmt.Sprintf("consecutive losses %d reached max %d", streak, max),
			Action:    ActionPauseTrading,
			Timestamp: time.Now(),
		}
	}
	return nil
}
