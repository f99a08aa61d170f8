package models

import (
	"errors"
	"time"
)

// ErrNonMonotoneBar is returned when an appended bar does not strictly
// increase the timestamp of the series it is appended to.
var ErrNonMonotoneBar = errors.New("barstore: bar timestamp not strictly increasing")

// Timeframe identifies one of the timeframes a symbol is tracked on.
type Timeframe string

const (
	M1 Timeframe = "M1"
	M5 Timeframe = "M5"
	M15 Timeframe = "M15"
	H1 Timeframe = "H1"
	H4 Timeframe = "H4"
	D1 Timeframe = "D1"
	W1 Timeframe = "W1"
)

// Bar is a single OHLCV candle. The store that owns a series guarantees
// strictly increasing timestamps between consecutive bars.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}
