package finance_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/minhyannv/stockbot-go/pkg/config"
	"github.com/minhyannv/stockbot-go/pkg/errorsx"
	"github.com/minhyannv/stockbot-go/pkg/finance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStubClient points both endpoints at a single stub handler.
func newStubClient(t *testing.T, handler http.HandlerFunc) *finance.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig().Finance
	cfg.SearchURL = srv.URL + "/v1/finance/search"
	cfg.ChartURL = srv.URL + "/v8/finance/chart"
	return finance.New(cfg, 5*time.Second)
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestResolveSymbol(t *testing.T) {
	t.Parallel()

	t.Run("first quote wins", func(t *testing.T) {
		t.Parallel()
		var gotQuery, gotCountry, gotAgent string
		client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("q")
			gotCountry = r.URL.Query().Get("country")
			gotAgent = r.Header.Get("User-Agent")
			respond(`{"quotes":[{"symbol":"NVDA","shortname":"NVIDIA"},{"symbol":"NVD.F"}]}`)(w, r)
		})

		symbol, err := client.ResolveSymbol(context.Background(), "Nvidia")
		require.NoError(t, err)
		assert.Equal(t, "NVDA", symbol)
		assert.Equal(t, "Nvidia", gotQuery)
		assert.Equal(t, config.DefaultCountry, gotCountry)
		assert.Equal(t, config.DefaultUserAgent, gotAgent)
	})

	t.Run("no quotes yields empty symbol", func(t *testing.T) {
		t.Parallel()
		client := newStubClient(t, respond(`{"quotes":[]}`))

		symbol, err := client.ResolveSymbol(context.Background(), "Nvidia")
		require.NoError(t, err)
		assert.Equal(t, "", symbol)
	})

	t.Run("malformed json yields empty symbol", func(t *testing.T) {
		t.Parallel()
		client := newStubClient(t, respond(`{"quotes":[{"symbol":`))

		symbol, err := client.ResolveSymbol(context.Background(), "Nvidia")
		require.NoError(t, err)
		assert.Equal(t, "", symbol)
	})

	t.Run("missing quotes key yields empty symbol", func(t *testing.T) {
		t.Parallel()
		client := newStubClient(t, respond(`{"finance":{"error":"throttled"}}`))

		symbol, err := client.ResolveSymbol(context.Background(), "Nvidia")
		require.NoError(t, err)
		assert.Equal(t, "", symbol)
	})

	t.Run("transport failure is returned", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(respond(`{}`))
		cfg := config.DefaultConfig().Finance
		cfg.SearchURL = srv.URL
		srv.Close()

		client := finance.New(cfg, time.Second)
		_, err := client.ResolveSymbol(context.Background(), "Nvidia")
		require.Error(t, err)

		var reqErr *finance.RequestError
		assert.True(t, errors.As(err, &reqErr))
		assert.Equal(t, errorsx.ReasonProvider, errorsx.Reason(err))
	})
}

const oneBarChart = `{"chart":{"result":[{
  "meta":{"currency":"USD","symbol":"NVDA","exchangeTimezoneName":"UTC"},
  "timestamp":[1700000000],
  "indicators":{"quote":[{"open":[480.5],"high":[481.25],"low":[479.75],"close":[481.0],"volume":[120345]}]}
}],"error":null}}`

func TestFetchLatestPrice(t *testing.T) {
	t.Parallel()

	t.Run("single bar", func(t *testing.T) {
		t.Parallel()
		var gotPath, gotInterval, gotRange string
		client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotInterval = r.URL.Query().Get("interval")
			gotRange = r.URL.Query().Get("range")
			respond(oneBarChart)(w, r)
		})

		snap, err := client.FetchLatestPrice(context.Background(), "NVDA")
		require.NoError(t, err)
		assert.Equal(t, "/v8/finance/chart/NVDA", gotPath)
		assert.Equal(t, "1m", gotInterval)
		assert.Equal(t, "1d", gotRange)

		assert.Equal(t, finance.PriceSnapshot{
			Timestamp: "2023-11-14 22:13:20+00:00",
			Open:      480.5,
			High:      481.25,
			Low:       479.75,
			Close:     481.0,
			Volume:    120345,
		}, snap)
	})

	t.Run("trailing null bar is skipped", func(t *testing.T) {
		t.Parallel()
		client := newStubClient(t, respond(`{"chart":{"result":[{
		  "meta":{"gmtoffset":-18000,"timezone":"EST"},
		  "timestamp":[1700000000,1700000060],
		  "indicators":{"quote":[{"open":[1,null],"high":[2,null],"low":[0.5,null],"close":[1.5,null],"volume":[10,null]}]}
		}],"error":null}}`))

		snap, err := client.FetchLatestPrice(context.Background(), "ABC")
		require.NoError(t, err)
		assert.Equal(t, "2023-11-14 17:13:20-05:00", snap.Timestamp)
		assert.Equal(t, 1.5, snap.Close)
		assert.Equal(t, int64(10), snap.Volume)
	})

	t.Run("empty series fails", func(t *testing.T) {
		t.Parallel()
		client := newStubClient(t, respond(`{"chart":{"result":[{"meta":{},"timestamp":[],"indicators":{"quote":[{}]}}],"error":null}}`))

		_, err := client.FetchLatestPrice(context.Background(), "NVDA")
		require.Error(t, err)
		assert.ErrorIs(t, err, finance.ErrNoPriceData)
	})

	t.Run("unknown symbol fails", func(t *testing.T) {
		t.Parallel()
		client := newStubClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
		})

		_, err := client.FetchLatestPrice(context.Background(), "ZZZZ")
		require.Error(t, err)
		assert.ErrorIs(t, err, finance.ErrNoPriceData)
		assert.Contains(t, err.Error(), "delisted")
	})

	t.Run("malformed response fails", func(t *testing.T) {
		t.Parallel()
		client := newStubClient(t, respond(`<html>rate limited</html>`))

		_, err := client.FetchLatestPrice(context.Background(), "NVDA")
		require.Error(t, err)
	})

	t.Run("empty symbol fails without a request", func(t *testing.T) {
		t.Parallel()
		client := newStubClient(t, func(http.ResponseWriter, *http.Request) {
			t.Error("no request expected")
		})

		_, err := client.FetchLatestPrice(context.Background(), "  ")
		assert.ErrorIs(t, err, finance.ErrInvalidSymbol)
	})
}
