// Package errs defines the error kinds that cross component boundaries,
// per spec.md §7. Detectors and the signal pipeline surface errors as
// "no result" plus a logged entry; only ConfigError and unrecoverable
// broker init failure are meant to propagate to process exit.
package errs

import (
	"errors"
	"fmt"
)

// Kind tags which §7 category an error belongs to.
type Kind string

const (
	KindConfig    Kind = "config_error"
	KindData      Kind = "data_error"
	KindDetector  Kind = "detector_error"
	KindSignal    Kind = "signal_invariant_error"
	KindBroker    Kind = "broker_error"
	KindRiskBlock Kind = "risk_block"
	KindShutdown  Kind = "shutdown_requested"
)

// Error wraps an underlying cause with its Kind, symbol, and any
// quantitative context the caller wants logged alongside it.
type Error struct {
	Kind    Kind
	Symbol  string
	Op      string
	Cause   error
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("%s[%s]: %s: %v", e.Kind, e.Symbol, e.Op, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a kinded error.
func New(kind Kind, op, symbol string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Symbol: symbol, Cause: cause}
}

// WithContext attaches quantitative context (scores, R:R, etc.) for logging.
func (e *Error) WithContext(ctx map[string]any) *Error {
	e.Context = ctx
	return e
}

// ShutdownRequested is the sentinel cause used when the OS signal handler
// has asked the execution loop to exit cleanly.
var ShutdownRequested = errors.New("shutdown requested")

// BrokerCode classifies a broker-rejected order at the per-order level.
// None of these ever terminate the execution loop.
type BrokerCode string

const (
	BrokerInvalidStops     BrokerCode = "invalid_stops"
	BrokerInvalidVolume    BrokerCode = "invalid_volume"
	BrokerMarketClosed     BrokerCode = "market_closed"
	BrokerInsufficientFund BrokerCode = "insufficient_funds"
	BrokerPriceChanged     BrokerCode = "price_changed"
	BrokerRequote          BrokerCode = "requote"
	BrokerRejected         BrokerCode = "rejected"
	BrokerInvalidPrice     BrokerCode = "invalid_price"
	BrokerInvalidFill      BrokerCode = "invalid_fill"
	BrokerTooManyRequests  BrokerCode = "too_many_requests"
	BrokerUnknown          BrokerCode = "unknown"
)

// BrokerError is the classified rejection returned by a broker adapter.
type BrokerError struct {
	Code    BrokerCode
	Symbol  string
	Message string
}

func (e *BrokerError) Error() string {
	return fmt.Sprintf("broker_error[%s] %s: %s", e.Code, e.Symbol, e.Message)
}

// IsKind reports whether err (or any error it wraps) carries the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
