package strategy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmi-trading/flightbot/domain"
	"github.com/cmi-trading/flightbot/exchange"
)

type orderRecorder struct {
	mu     sync.Mutex
	orders []domain.OrderRequest
}

func (rec *orderRecorder) all() []domain.OrderRequest {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]domain.OrderRequest(nil), rec.orders...)
}

func newQuoterAPI(t *testing.T) (*exchange.SyncAPI, *orderRecorder) {
	t.Helper()

	rec := &orderRecorder{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/user/authenticate", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Authorization", "Bearer test-token")
	})
	mux.HandleFunc("/api/order", func(w http.ResponseWriter, r *http.Request) {
		request := domain.OrderRequest{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		rec.mu.Lock()
		rec.orders = append(rec.orders, request)
		rec.mu.Unlock()

		json.NewEncoder(w).Encode(domain.OrderResponse{ID: "ok", Product: request.Product})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return exchange.NewSyncAPI(server.URL, "user", "pass"), rec
}

func book(product string, bid, ask float64) *domain.OrderBook {
	return &domain.OrderBook{
		Product:    product,
		TickSize:   0.5,
		BuyOrders:  []domain.Order{{Price: bid, Volume: 5}},
		SellOrders: []domain.Order{{Price: ask, Volume: 5}},
	}
}

func TestQuoter_BuysWhenMarketBelowFairValue(t *testing.T) {
	api, rec := newQuoterAPI(t)
	quoter := NewQuoter(api, "MUC5", 100)

	quoter.OnOrderBook(book("MUC5", 49, 51))

	orders := rec.all()
	require.Len(t, orders, 1)
	assert.Equal(t, domain.SideBuy, orders[0].Side)
	assert.Equal(t, 51.0, orders[0].Price, "a buy lifts the best ask")
	assert.Equal(t, 2, orders[0].Volume)
}

func TestQuoter_SellsWhenMarketAboveFairValue(t *testing.T) {
	api, rec := newQuoterAPI(t)
	quoter := NewQuoter(api, "MUC5", 100)

	quoter.OnOrderBook(book("MUC5", 199, 201))

	orders := rec.all()
	require.Len(t, orders, 1)
	assert.Equal(t, domain.SideSell, orders[0].Side)
	assert.Equal(t, 199.0, orders[0].Price, "a sell hits the best bid")
}

func TestQuoter_QuietNearFairValue(t *testing.T) {
	api, rec := newQuoterAPI(t)
	quoter := NewQuoter(api, "MUC5", 100)

	quoter.OnOrderBook(book("MUC5", 97, 99))

	assert.Empty(t, rec.all())
}

func TestQuoter_IgnoresOtherProductsAndCrossedBooks(t *testing.T) {
	api, rec := newQuoterAPI(t)
	quoter := NewQuoter(api, "MUC5", 100)

	quoter.OnOrderBook(book("MUC6", 49, 51))
	quoter.OnOrderBook(book("MUC5", 51, 49))

	assert.Empty(t, rec.all())
}

func TestQuoter_TradeHistoryIsBounded(t *testing.T) {
	api, _ := newQuoterAPI(t)
	quoter := NewQuoter(api, "MUC5", 100)
	quoter.historyLimit = 8

	for i := 0; i < 20; i++ {
		quoter.OnTrades([]domain.Trade{{Product: "MUC5", Price: float64(i), Timestamp: strconv.Itoa(i)}})
	}

	trades := quoter.RecentTrades()
	require.Len(t, trades, 8)
	assert.Equal(t, 12.0, trades[0].Price, "oldest retained trade first")
	assert.Equal(t, 19.0, trades[7].Price)
}
