package models

import (
	"errors"
	"fmt"
)

// SignalType is the tagged enum for a trade direction decision. Boundaries
// never re-parse free-form strings; String() is the only serialisation.
type SignalType int

const (
	Wait SignalType = iota
	Buy
	Sell
)

func (s SignalType) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "wait"
	}
}

// SignalStrength buckets a candidate's confluence score into a label.
type SignalStrength int

const (
	Weak SignalStrength = iota
	Moderate
	Strong
	VeryStrong
)

func (s SignalStrength) String() string {
	switch s {
	case VeryStrong:
		return "very_strong"
	case Strong:
		return "strong"
	case Moderate:
		return "moderate"
	default:
		return "weak"
	}
}

// SignalDirection is the bias a Candidate is built around. It must always
// agree with SignalType (bullish<->Buy, bearish<->Sell).
type SignalDirection string

const (
	DirBullish SignalDirection = "bullish"
	DirBearish SignalDirection = "bearish"
	DirNeutral SignalDirection = "neutral"
)

// MarketBias is the cross-timeframe directional verdict from the Bias Filter.
type MarketBias string

const (
	BiasBullish  MarketBias = "bullish"
	BiasBearish  MarketBias = "bearish"
	BiasNeutral  MarketBias = "neutral"
	BiasConflict MarketBias = "conflict"
)

// ConfluenceFactor is one scored contributor to a Candidate's confluence total.
type ConfluenceFactor struct {
	Factor  string
	Score   int
	Details string
}

// Candidate is a per-timeframe trade proposal produced by the Signal
// Generator. Construction enforces the spec's direction and R:R
// invariants; NewCandidate is the only valid constructor.
type Candidate struct {
	SignalType        SignalType
	EntryPrice        float64
	StopLoss          float64
	TakeProfit        float64
	RRRatio           float64
	ConfluenceScore   int
	ConfluenceFactors []ConfluenceFactor
	SignalDirection   SignalDirection
	Strength          SignalStrength
	Timeframe         Timeframe
}

// ErrSignalInvariant is returned by NewCandidate when the direction or R:R
// invariant cannot be satisfied; callers must fall back to a Wait candidate.
var ErrSignalInvariant = errors.New("signalgen: candidate invariant violated")

// NewCandidate validates and constructs a Candidate. On any invariant
// violation it returns a Wait candidate (never a partially-valid Buy/Sell)
// together with ErrSignalInvariant so callers can log the reason.
func NewCandidate(signalType SignalType, entry, sl, tp float64, minRR float64, confluence int, factors []ConfluenceFactor, tf Timeframe) (Candidate, error) {
	waitCandidate := Candidate{
		SignalType:        Wait,
		ConfluenceScore:   confluence,
		ConfluenceFactors: factors,
		SignalDirection:   DirNeutral,
		Timeframe:         tf,
	}

	switch signalType {
	case Buy:
		if !(sl < entry && entry < tp) {
			return waitCandidate, fmt.Errorf("%w: buy requires sl<entry<tp (sl=%v entry=%v tp=%v)", ErrSignalInvariant, sl, entry, tp)
		}
	case Sell:
		if !(tp < entry && entry < sl) {
			return waitCandidate, fmt.Errorf("%w: sell requires tp<entry<sl (tp=%v entry=%v sl=%v)", ErrSignalInvariant, tp, entry, sl)
		}
	default:
		return waitCandidate, nil
	}

	risk := absf(entry - sl)
	reward := absf(tp - entry)
	if risk <= 0 {
		return waitCandidate, fmt.Errorf("%w: zero risk distance", ErrSignalInvariant)
	}

	rr := reward / risk
	if rr < minRR {
		return waitCandidate, fmt.Errorf("%w: rr %.3f below minimum %.3f", ErrSignalInvariant, rr, minRR)
	}

	direction := DirBullish
	if signalType == Sell {
		direction = DirBearish
	}

	return Candidate{
		SignalType:        signalType,
		EntryPrice:        entry,
		StopLoss:          sl,
		TakeProfit:        tp,
		RRRatio:           rr,
		ConfluenceScore:   confluence,
		ConfluenceFactors: factors,
		SignalDirection:   direction,
		Strength:          strengthFromScore(confluence),
		Timeframe:         tf,
	}, nil
}

func strengthFromScore(score int) SignalStrength {
	switch {
	case score >= 12:
		return VeryStrong
	case score >= 9:
		return Strong
	case score >= 7:
		return Moderate
	default:
		return Weak
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// ConfidenceLabel buckets a confidence score into a human label.
type ConfidenceLabel string

const (
	ConfidenceLow    ConfidenceLabel = "low"
	ConfidenceMedium ConfidenceLabel = "medium"
	ConfidenceHigh   ConfidenceLabel = "high"
)

// TFConfluence is the per-timeframe confluence score feeding the aggregator.
type TFConfluence struct {
	Timeframe Timeframe
	Candidate Candidate
	Priority  float64 // weight assigned to this timeframe
}

// SignalConfluence summarises cross-timeframe agreement on a direction.
type SignalConfluence struct {
	Dominant        SignalType
	ConfluenceCount int
	PerTimeframe    map[Timeframe]int
}

// Recommendation is the Multi-Timeframe Aggregator's final, strictly-typed
// output. It intentionally does not carry a free-form map: legacy
// consumers that need heterogeneous fields should use View() instead of
// re-parsing strings at the boundary.
type Recommendation struct {
	Action           SignalType
	Confidence       ConfidenceLabel
	ConfidenceScore  float64
	EntryTimeframe   Timeframe
	MarketBias       MarketBias
	TrendDirection   TrendDirection
	TrendAligned     bool
	SignalConfluence SignalConfluence
	EntryDetails     Candidate
	StrengthFactors  []string
}

// View is a read-only, loosely-typed projection of a Recommendation for
// legacy consumers (e.g. log sinks, notifiers) that want a flat map
// instead of the strict struct above.
type View map[string]any

// View renders a read-only projection of the recommendation.
func (r Recommendation) View() View {
	return View{
		"action":           r.Action.String(),
		"confidence":       string(r.Confidence),
		"confidence_score": r.ConfidenceScore,
		"entry_timeframe":  string(r.EntryTimeframe),
		"market_bias":      string(r.MarketBias),
		"trend_direction":  string(r.TrendDirection),
		"trend_aligned":    r.TrendAligned,
		"confluence_count": r.SignalConfluence.ConfluenceCount,
		"entry_price":      r.EntryDetails.EntryPrice,
		"stop_loss":        r.EntryDetails.StopLoss,
		"take_profit":      r.EntryDetails.TakeProfit,
		"rr_ratio":         r.EntryDetails.RRRatio,
	}
}
