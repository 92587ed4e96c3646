package strategy

import (
	"log"
	"sync"

	"github.com/gammazero/deque"

	"github.com/cmi-trading/flightbot/domain"
	"github.com/cmi-trading/flightbot/exchange"
	"github.com/cmi-trading/flightbot/pricing"
)

var logger = log.New(log.Writer(), "[quoter] ", log.LstdFlags)

const defaultTradeHistoryLimit = 256

// Quoter trades one product around a fixed fair value estimate. It
// implements exchange.Handler, so it reacts to each book update on the
// listener goroutine; order placement blocks that goroutine until the
// exchange answers.
type Quoter struct {
	api       *exchange.SyncAPI
	product   string
	fairValue float64

	mu           sync.Mutex
	trades       deque.Deque[domain.Trade]
	historyLimit int
}

func NewQuoter(api *exchange.SyncAPI, product string, fairValue float64) *Quoter {
	return &Quoter{
		api:          api,
		product:      product,
		fairValue:    fairValue,
		historyLimit: defaultTradeHistoryLimit,
	}
}

func (q *Quoter) OnOrderBook(book *domain.OrderBook) {
	if book.Product != q.product {
		return
	}
	if book.Crossed() {
		// stale exchange state, nothing to act on
		return
	}

	mid, ok := book.Mid()
	if !ok {
		return
	}

	amount := pricing.Signal(q.fairValue, mid)
	if amount == 0 {
		return
	}

	side := domain.SideBuy
	price, _ := book.BestAsk()
	if amount < 0 {
		side = domain.SideSell
		amount = -amount
		price, _ = book.BestBid()
	}

	response := q.api.SendOrder(domain.OrderRequest{
		Product: q.product,
		Price:   price.Price,
		Side:    side,
		Volume:  amount,
	})
	if response == nil {
		logger.Printf("quote on %s at %v not placed", q.product, price.Price)
	}
}

func (q *Quoter) OnTrades(trades []domain.Trade) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, trade := range trades {
		q.trades.PushBack(trade)
		for q.trades.Len() > q.historyLimit {
			q.trades.PopFront()
		}
	}
}

// RecentTrades returns the retained trade history, oldest first.
func (q *Quoter) RecentTrades() []domain.Trade {
	q.mu.Lock()
	defer q.mu.Unlock()

	trades := make([]domain.Trade, q.trades.Len())
	for i := 0; i < q.trades.Len(); i++ {
		trades[i] = q.trades.At(i)
	}
	return trades
}
