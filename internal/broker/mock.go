package broker

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/Maryorwahmi/smc-forez/internal/models"
)

// timeframeDuration maps a Timeframe to its candle period, used by
// MockBroker to synthesize a plausible bar series.
func timeframeDuration(tf models.Timeframe) time.Duration {
	switch tf {
	case models.M1:
		return time.Minute
	case models.M5:
		return 5 * time.Minute
	case models.M15:
		return 15 * time.Minute
	case models.H1:
		return time.Hour
	case models.H4:
		return 4 * time.Hour
	case models.D1:
		return 24 * time.Hour
	case models.W1:
		return 7 * 24 * time.Hour
	default:
		return time.Hour
	}
}

// basePrice picks a plausible anchor price per symbol: 1.0850 if the
// symbol contains USD, EUR or GBP (case-insensitive), else 1.2500.
func basePrice(symbol string) float64 {
	for _, ccy := range []string{"USD", "EUR", "GBP"} {
		if containsFold(symbol, ccy) {
			return 1.0850
		}
	}
	return 1.2500
}

func containsFold(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if foldEqual(s[i:i+len(sub)], sub) {
			return true
		}
	}
	return false
}

func foldEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'a' <= ca && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if 'a' <= cb && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// MockBroker generates synthetic OHLCV for offline runs and backtests
// that have no external data source, per spec.md §6's "mock adapter
// must implement the same surface and produce plausible OHLCV."
// Grounded on the original source's MockMT5.copy_rates_from_pos random
// walk — reimplemented with a per-instance seeded PRNG so a given
// MockBroker produces a deterministic series across calls.
type MockBroker struct {
	mu      sync.Mutex
	rng     *rand.Rand
	balance float64
	equity  float64
	account string

	positions map[string]models.TradePosition
	nextOrder int
}

// NewMockBroker builds a MockBroker seeded for reproducible backtests.
func NewMockBroker(seed int64, startingBalance float64) *MockBroker {
	return &MockBroker{
		rng:       rand.New(rand.NewSource(seed)),
		balance:   startingBalance,
		equity:    startingBalance,
		account:   "mock",
		positions: make(map[string]models.TradePosition),
	}
}

func (b *MockBroker) Connect(ctx context.Context, creds *Credentials) error {
	return nil
}

func (b *MockBroker) AccountInfo(ctx context.Context) (AccountInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return AccountInfo{Balance: b.balance, Equity: b.equity, Login: b.account}, nil
}

func (b *MockBroker) SymbolInfo(ctx context.Context, symbol string) (SymbolInfo, error) {
	price := basePrice(symbol)
	point := 0.0001
	return SymbolInfo{
		Symbol: symbol, Bid: price, Ask: price + point*2, Spread: 2,
		Point: point, Digits: 5, VolumeMin: 0.01, TradeStopsLevel: 5,
	}, nil
}

func (b *MockBroker) LastTick(ctx context.Context, symbol string) (Tick, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	price := basePrice(symbol) + b.rng.NormFloat64()*0.0005
	return Tick{Symbol: symbol, Bid: price, Ask: price + 0.0002, Time: time.Now()}, nil
}

// Rates synthesizes count bars at tf's period ending now, via a random
// walk on fractional returns anchored at the symbol's base price.
func (b *MockBroker) Rates(ctx context.Context, symbol string, tf models.Timeframe, count int) ([]models.Bar, error) {
	if count <= 0 {
		return nil, fmt.Errorf("broker: rates count must be positive, got %d", count)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	period := timeframeDuration(tf)
	start := time.Now().Add(-period * time.Duration(count))
	price := basePrice(symbol)

	bars := make([]models.Bar, 0, count)
	for i := 0; i < count; i++ {
		ret := b.rng.NormFloat64() * 0.001
		price += price * ret
		high := price + math.Abs(b.rng.NormFloat64())*0.0005
		low := price - math.Abs(b.rng.NormFloat64())*0.0005
		if high < low {
			high, low = low, high
		}
		closeP := price + b.rng.NormFloat64()*0.0003

		bars = append(bars, models.Bar{
			Timestamp: start.Add(period * time.Duration(i)),
			Open:      price,
			High:      math.Max(high, math.Max(price, closeP)),
			Low:       math.Min(low, math.Min(price, closeP)),
			Close:     closeP,
			Volume:    float64(100 + b.rng.Intn(900)),
		})
		price = closeP
	}

	return bars, nil
}

func (b *MockBroker) SubmitOrder(ctx context.Context, req OrderRequest) (OrderResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextOrder++
	orderID := fmt.Sprintf("mock-%d", b.nextOrder)

	fillPrice := req.Price
	if req.Kind == OrderMarket || fillPrice == 0 {
		info, _ := b.SymbolInfo(ctx, req.Symbol)
		fillPrice = info.Ask
		if req.Side == models.SideSell {
			fillPrice = info.Bid
		}
	}

	b.positions[req.Symbol] = models.TradePosition{
		Ticket: orderID, Symbol: req.Symbol,
		Side: req.Side, Volume: req.Volume, OpenPrice: fillPrice,
		StopLoss: req.StopLoss, TakeProfit: req.TakeProfit,
		OpenTime: time.Now(), Comment: req.Comment,
	}

	return OrderResult{Retcode: 0, OrderID: orderID, FillPrice: fillPrice, FillVolume: req.Volume}, nil
}

func (b *MockBroker) Positions(ctx context.Context) ([]models.TradePosition, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.TradePosition, 0, len(b.positions))
	for _, p := range b.positions {
		out = append(out, p)
	}
	return out, nil
}

func (b *MockBroker) Shutdown(ctx context.Context) error {
	return nil
}
