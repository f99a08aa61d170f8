package execution

import (
	"fmt"

	"github.com/Maryorwahmi/smc-forez/internal/broker"
	"github.com/Maryorwahmi/smc-forez/internal/models"
	"github.com/google/uuid"
)

const marketProximityPips = 2.0

// buildOrderRequest implements spec.md §4.9's order-submission rules:
// market vs pending Stop/Limit by proximity to current price, and SL/TP
// re-validation against the broker's minimum stop distance.
func buildOrderRequest(symbol string, candidate models.Candidate, tick broker.Tick, info broker.SymbolInfo, pipSize float64) (broker.OrderRequest, float64, error) {
	if pipSize <= 0 {
		pipSize = 0.0001
	}

	side := models.SideBuy
	refPrice := tick.Ask
	if candidate.SignalType == models.Sell {
		side = models.SideSell
		refPrice = tick.Bid
	}

	sl, tp, rr, ok := adjustForBrokerStops(candidate, side, info, pipSize)
	if !ok {
		return broker.OrderRequest{}, rr, fmt.Errorf("execution: adjusted R:R %.3f below minimum", rr)
	}

	kind, orderPrice := classifyOrderKind(candidate, side, refPrice, pipSize)

	req := broker.OrderRequest{
		Symbol: symbol, Side: side, Kind: kind,
		Price: orderPrice, StopLoss: sl, TakeProfit: tp,
		Comment:       fmt.Sprintf("%s tf=%s score=%d", candidate.SignalType, candidate.Timeframe, candidate.ConfluenceScore),
		ClientOrderID: uuid.NewString(),
	}
	return req, rr, nil
}

// classifyOrderKind decides market vs pending order type: within
// marketProximityPips of the reference price submits at market;
// otherwise a resting Stop when the entry lies beyond the market in the
// trade's direction (above it for a buy, below it for a sell: breakout
// entry), or a Limit when it lies on the other side (pullback entry).
func classifyOrderKind(candidate models.Candidate, side models.OrderSide, refPrice, pipSize float64) (broker.OrderKind, float64) {
	distPips := absf(candidate.EntryPrice-refPrice) / pipSize
	if distPips <= marketProximityPips {
		return broker.OrderMarket, 0
	}

	if side == models.SideBuy {
		if candidate.EntryPrice > refPrice {
			return broker.OrderStop, candidate.EntryPrice
		}
		return broker.OrderLimit, candidate.EntryPrice
	}
	if candidate.EntryPrice < refPrice {
		return broker.OrderStop, candidate.EntryPrice
	}
	return broker.OrderLimit, candidate.EntryPrice
}

// adjustForBrokerStops re-validates SL/TP direction and the broker's
// minimum stop distance, pushing SL out to the minimum when violated and
// recomputing R:R; ok is false when TP lies on the wrong side of entry
// or the adjusted R:R falls below 2.0.
func adjustForBrokerStops(candidate models.Candidate, side models.OrderSide, info broker.SymbolInfo, pipSize float64) (sl, tp, rr float64, ok bool) {
	entry := candidate.EntryPrice
	sl, tp = candidate.StopLoss, candidate.TakeProfit

	minDistance := info.TradeStopsLevel * info.Point
	if minDistance <= 0 {
		minDistance = 5 * pipSize
	}

	if side == models.SideBuy {
		if tp <= entry {
			return sl, tp, 0, false
		}
		if entry-sl < minDistance {
			sl = entry - minDistance
		}
	} else {
		if tp >= entry {
			return sl, tp, 0, false
		}
		if sl-entry < minDistance {
			sl = entry + minDistance
		}
	}

	risk := absf(entry - sl)
	reward := absf(tp - entry)
	if risk <= 0 {
		return sl, tp, 0, false
	}

	rr = reward / risk
	return sl, tp, rr, rr >= 2.0
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// signalID builds the execution loop's per-session dedup key, per
// spec.md §4.9: "(symbol, tf, action, entry_price)."
func signalID(symbol string, c models.Candidate) string {
	return fmt.Sprintf("%s|%s|%s|%.5f", symbol, c.Timeframe, c.SignalType, c.EntryPrice)
}
