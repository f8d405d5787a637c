package finance

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// TimestampLayout renders bar times the way the price tool reports them.
const TimestampLayout = "2006-01-02 15:04:05-07:00"

// PriceSnapshot is the most recent one-minute bar for a symbol.
type PriceSnapshot struct {
	Timestamp string  `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    int64   `json:"volume"`
}

// FetchLatestPrice returns the latest intraday bar for symbol. Unlike
// ResolveSymbol it fails when the symbol is unknown or the series is empty.
func (c *Client) FetchLatestPrice(ctx context.Context, symbol string) (PriceSnapshot, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return PriceSnapshot{}, fmt.Errorf("%w: symbol is required", ErrInvalidSymbol)
	}

	query := url.Values{}
	query.Set("range", "1d")
	query.Set("interval", "1m")

	status, body, err := c.get(ctx, "chart", c.chartURL+"/"+url.PathEscape(symbol), query)
	if err != nil {
		return PriceSnapshot{}, err
	}
	if !gjson.ValidBytes(body) {
		return PriceSnapshot{}, fmt.Errorf("chart %s: malformed response (status %d)", symbol, status)
	}

	if desc := gjson.GetBytes(body, "chart.error.description"); desc.Exists() && desc.Type != gjson.Null {
		return PriceSnapshot{}, fmt.Errorf("%w for %s: %s", ErrNoPriceData, symbol, desc.String())
	}
	if status >= http.StatusBadRequest {
		return PriceSnapshot{}, fmt.Errorf("chart %s: unexpected status %d", symbol, status)
	}

	result := gjson.GetBytes(body, "chart.result.0")
	if !result.Exists() {
		return PriceSnapshot{}, fmt.Errorf("%w for %s", ErrNoPriceData, symbol)
	}
	return latestBar(symbol, result)
}

// latestBar picks the last bar with a closing price, skipping trailing
// placeholders the chart endpoint emits for minutes that have not traded.
func latestBar(symbol string, result gjson.Result) (PriceSnapshot, error) {
	timestamps := result.Get("timestamp").Array()
	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	loc := exchangeLocation(result.Get("meta"))
	for i := len(timestamps) - 1; i >= 0; i-- {
		if i >= len(closes) || closes[i].Type != gjson.Number {
			continue
		}
		ts := time.Unix(timestamps[i].Int(), 0).In(loc)
		return PriceSnapshot{
			Timestamp: ts.Format(TimestampLayout),
			Open:      at(opens, i).Float(),
			High:      at(highs, i).Float(),
			Low:       at(lows, i).Float(),
			Close:     closes[i].Float(),
			Volume:    at(volumes, i).Int(),
		}, nil
	}
	return PriceSnapshot{}, fmt.Errorf("%w for %s", ErrNoPriceData, symbol)
}

func at(values []gjson.Result, i int) gjson.Result {
	if i < len(values) {
		return values[i]
	}
	return gjson.Result{}
}

// exchangeLocation resolves the exchange time zone, falling back to the
// reported GMT offset and finally UTC.
func exchangeLocation(meta gjson.Result) *time.Location {
	if name := meta.Get("exchangeTimezoneName").String(); name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	if offset := meta.Get("gmtoffset"); offset.Exists() {
		return time.FixedZone(meta.Get("timezone").String(), int(offset.Int()))
	}
	return time.UTC
}
