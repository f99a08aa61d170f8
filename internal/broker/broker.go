// Package broker defines the external market-data/order-execution
// boundary (spec.md §6): a narrow Broker interface the execution loop
// (C9) is the only caller of, plus a MockBroker for offline runs and a
// BinanceBroker thin adapter for live trading. Grounded on the
// teacher's internal/externals/binance wrapper style, generalized from
// Binance futures margin/leverage concepts to MT5-style symbol/tick/
// rates/order semantics.
package broker

import (
	"context"
	"time"

	"github.com/Maryorwahmi/smc-forez/internal/models"
)

// Credentials authenticates a live broker connection. Login/Password/
// Server accept the literal "auto" per spec.md §6, meaning "read from
// the environment the adapter already has."
type Credentials struct {
	Login    string
	Password string
	Server   string
}

// AccountInfo is the broker's view of the trading account.
type AccountInfo struct {
	Balance float64
	Equity  float64
	Login   string
}

// SymbolInfo is the broker's quoted trading parameters for one symbol.
type SymbolInfo struct {
	Symbol          string
	Bid             float64
	Ask             float64
	Spread          float64
	Point           float64 // smallest price increment
	Digits          int
	VolumeMin       float64
	TradeStopsLevel float64 // minimum broker stop distance, in points
}

// Tick is a single bid/ask snapshot.
type Tick struct {
	Symbol string
	Bid    float64
	Ask    float64
	Time   time.Time
}

// OrderKind distinguishes a market fill from a pending order.
type OrderKind string

const (
	OrderMarket     OrderKind = "market"
	OrderStop       OrderKind = "stop"
	OrderLimit      OrderKind = "limit"
	OrderTakeProfit OrderKind = "take_profit"
)

// OrderRequest is what the execution loop submits to the broker after
// the Risk Manager (C8) has sized and approved a candidate.
type OrderRequest struct {
	Symbol        string
	Side          models.OrderSide
	Kind          OrderKind
	Volume        float64 // lots
	Price         float64 // limit/stop trigger price; ignored for market
	StopLoss      float64
	TakeProfit    float64
	Comment       string
	ClientOrderID string // caller-assigned idempotency key
}

// OrderResult is the broker's response to an OrderRequest.
type OrderResult struct {
	Retcode    int
	OrderID    string
	FillPrice  float64
	FillVolume float64
}

// Broker is the sole I/O boundary of the execution loop (C9), per
// spec.md §6. Mock and live adapters share this exact surface.
type Broker interface {
	Connect(ctx context.Context, creds *Credentials) error
	AccountInfo(ctx context.Context) (AccountInfo, error)
	SymbolInfo(ctx context.Context, symbol string) (SymbolInfo, error)
	LastTick(ctx context.Context, symbol string) (Tick, error)
	Rates(ctx context.Context, symbol string, tf models.Timeframe, count int) ([]models.Bar, error)
	SubmitOrder(ctx context.Context, req OrderRequest) (OrderResult, error)
	Positions(ctx context.Context) ([]models.TradePosition, error)
	Shutdown(ctx context.Context) error
}
