package broker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Maryorwahmi/smc-forez/internal/errs"
	"github.com/Maryorwahmi/smc-forez/internal/models"
	"github.com/adshao/go-binance/v2/futures"
	"golang.org/x/time/rate"
)

// BinanceBroker is a thin live-trading adapter over go-binance/v2/futures,
// grounded on the teacher's internal/services/binance rate-limited
// wrapper style. It fulfils the spec's MT5-shaped Broker interface by
// translating futures.Client responses into the pip/lot domain.
type BinanceBroker struct {
	client  *futures.Client
	limiter *rate.Limiter
	pipSize float64
}

// NewBinanceBroker wires a go-binance futures client behind the spec's
// rate limit (requests per duration), grounded on the teacher's
// rate.NewLimiter construction: one token every window/requests, with a
// burst of requests.
func NewBinanceBroker(apiKey, secretKey string, requestsPerWindow int, window time.Duration, pipSize float64) *BinanceBroker {
	if pipSize <= 0 {
		pipSize = 0.0001
	}
	if requestsPerWindow <= 0 {
		requestsPerWindow = 1
	}
	return &BinanceBroker{
		client:  futures.NewClient(apiKey, secretKey),
		limiter: rate.NewLimiter(rate.Every(window/time.Duration(requestsPerWindow)), requestsPerWindow),
		pipSize: pipSize,
	}
}

func (b *BinanceBroker) wait(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}

func (b *BinanceBroker) Connect(ctx context.Context, creds *Credentials) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	_, err := b.client.NewPingService().Do(ctx)
	if err != nil {
		return errs.New(errs.KindBroker, "connect", "", err)
	}
	return nil
}

func (b *BinanceBroker) AccountInfo(ctx context.Context) (AccountInfo, error) {
	if err := b.wait(ctx); err != nil {
		return AccountInfo{}, err
	}
	acc, err := b.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return AccountInfo{}, errs.New(errs.KindBroker, "account_info", "", err)
	}

	balance, _ := strconv.ParseFloat(acc.TotalWalletBalance, 64)
	equity, _ := strconv.ParseFloat(acc.TotalMarginBalance, 64)
	return AccountInfo{Balance: balance, Equity: equity, Login: strconv.FormatInt(0, 10)}, nil
}

func (b *BinanceBroker) SymbolInfo(ctx context.Context, symbol string) (SymbolInfo, error) {
	if err := b.wait(ctx); err != nil {
		return SymbolInfo{}, err
	}
	prices, err := b.client.NewListBookTickersService().Symbol(symbol).Do(ctx)
	if err != nil {
		return SymbolInfo{}, errs.New(errs.KindBroker, "symbol_info", symbol, err)
	}
	if len(prices) == 0 {
		return SymbolInfo{}, errs.New(errs.KindBroker, "symbol_info", symbol,
			fmt.Errorf("no book ticker returned"))
	}

	bid, _ := strconv.ParseFloat(prices[0].BidPrice, 64)
	ask, _ := strconv.ParseFloat(prices[0].AskPrice, 64)

	return SymbolInfo{
		Symbol: symbol, Bid: bid, Ask: ask, Spread: (ask - bid) / b.pipSize,
		Point: b.pipSize, Digits: 5, VolumeMin: 0.01, TradeStopsLevel: 5,
	}, nil
}

func (b *BinanceBroker) LastTick(ctx context.Context, symbol string) (Tick, error) {
	info, err := b.SymbolInfo(ctx, symbol)
	if err != nil {
		return Tick{}, err
	}
	return Tick{Symbol: symbol, Bid: info.Bid, Ask: info.Ask, Time: time.Now()}, nil
}

func (b *BinanceBroker) Rates(ctx context.Context, symbol string, tf models.Timeframe, count int) ([]models.Bar, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}

	interval, err := binanceInterval(tf)
	if err != nil {
		return nil, errs.New(errs.KindBroker, "rates", symbol, err)
	}

	klines, err := b.client.NewKlinesService().Symbol(symbol).Interval(interval).Limit(count).Do(ctx)
	if err != nil {
		return nil, errs.New(errs.KindBroker, "rates", symbol, err)
	}

	bars := make([]models.Bar, 0, len(klines))
	for _, k := range klines {
		open, _ := strconv.ParseFloat(k.Open, 64)
		high, _ := strconv.ParseFloat(k.High, 64)
		low, _ := strconv.ParseFloat(k.Low, 64)
		closeP, _ := strconv.ParseFloat(k.Close, 64)
		volume, _ := strconv.ParseFloat(k.Volume, 64)

		bars = append(bars, models.Bar{
			Timestamp: time.UnixMilli(k.OpenTime),
			Open:      open, High: high, Low: low, Close: closeP, Volume: volume,
		})
	}
	return bars, nil
}

func binanceInterval(tf models.Timeframe) (string, error) {
	switch tf {
	case models.M1:
		return "1m", nil
	case models.M5:
		return "5m", nil
	case models.M15:
		return "15m", nil
	case models.H1:
		return "1h", nil
	case models.H4:
		return "4h", nil
	case models.D1:
		return "1d", nil
	case models.W1:
		return "1w", nil
	default:
		return "", fmt.Errorf("broker: unsupported timeframe %q", tf)
	}
}

func (b *BinanceBroker) SubmitOrder(ctx context.Context, req OrderRequest) (OrderResult, error) {
	if err := b.wait(ctx); err != nil {
		return OrderResult{}, err
	}

	side := futures.SideTypeBuy
	if req.Side == models.SideSell {
		side = futures.SideTypeSell
	}

	svc := b.client.NewCreateOrderService().Symbol(req.Symbol).Side(side).
		Quantity(strconv.FormatFloat(req.Volume, 'f', -1, 64))

	switch req.Kind {
	case OrderMarket:
		svc = svc.Type(futures.OrderTypeMarket)
	case OrderLimit:
		svc = svc.Type(futures.OrderTypeLimit).
			TimeInForce(futures.TimeInForceTypeGTC).
			Price(strconv.FormatFloat(req.Price, 'f', -1, 64))
	case OrderStop:
		svc = svc.Type(futures.OrderTypeStop).
			TimeInForce(futures.TimeInForceTypeGTC).
			Price(strconv.FormatFloat(req.Price, 'f', -1, 64)).
			StopPrice(strconv.FormatFloat(req.Price, 'f', -1, 64))
	}

	order, err := svc.Do(ctx)
	if err != nil {
		return OrderResult{}, classifyBinanceError(req.Symbol, err)
	}

	fillPrice, _ := strconv.ParseFloat(order.AvgPrice, 64)
	fillVolume, _ := strconv.ParseFloat(order.ExecutedQuantity, 64)

	return OrderResult{
		Retcode: 0, OrderID: strconv.FormatInt(order.OrderID, 10),
		FillPrice: fillPrice, FillVolume: fillVolume,
	}, nil
}

// classifyBinanceError maps a go-binance APIError into spec.md §7's
// BrokerError code taxonomy, per the Broker adapter section.
func classifyBinanceError(symbol string, err error) error {
	code := errs.BrokerUnknown
	msg := err.Error()

	if apiErr, ok := err.(*futures.APIError); ok {
		switch apiErr.Code {
		case -2010:
			code = errs.BrokerInsufficientFund
		case -1013:
			code = errs.BrokerInvalidVolume
		case -2021:
			code = errs.BrokerInvalidPrice
		case -1021, -1022:
			code = errs.BrokerRejected
		case -1003:
			code = errs.BrokerTooManyRequests
		}
		msg = apiErr.Message
	}

	return &errs.BrokerError{Code: code, Symbol: symbol, Message: msg}
}

func (b *BinanceBroker) Positions(ctx context.Context) ([]models.TradePosition, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}

	risks, err := b.client.NewGetPositionRiskService().Do(ctx)
	if err != nil {
		return nil, errs.New(errs.KindBroker, "positions", "", err)
	}

	out := make([]models.TradePosition, 0, len(risks))
	for _, p := range risks {
		amt, _ := strconv.ParseFloat(p.PositionAmt, 64)
		if amt == 0 {
			continue
		}
		entry, _ := strconv.ParseFloat(p.EntryPrice, 64)

		side := models.SideBuy
		volume := amt
		if amt < 0 {
			side = models.SideSell
			volume = -amt
		}

		out = append(out, models.TradePosition{
			Symbol: p.Symbol, Side: side, Volume: volume, OpenPrice: entry,
		})
	}
	return out, nil
}

func (b *BinanceBroker) Shutdown(ctx context.Context) error {
	return nil
}
