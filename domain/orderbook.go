package domain

import (
	"fmt"
	"sort"
	"strconv"
)

// Order is one aggregated price level of the book.
type Order struct {
	Price     float64 `json:"price"`
	Volume    int     `json:"volume"`
	OwnVolume int     `json:"own_volume"`
}

// OrderBook is the full two-sided depth for one product at one moment.
// It is rebuilt from scratch on every order event and never mutated in
// place; the next event for the same product supersedes it.
type OrderBook struct {
	Product    string  `json:"product"`
	TickSize   float64 `json:"tick_size"`
	BuyOrders  []Order `json:"buy_orders"`
	SellOrders []Order `json:"sell_orders"`
}

// PriceLevelVolumes is the wire form of one price level.
type PriceLevelVolumes struct {
	MarketVolume int `json:"marketVolume"`
	UserVolume   int `json:"userVolume"`
}

// OrderBookEvent is the raw payload of an "order" stream event. Both sides
// arrive as maps keyed by price string.
type OrderBookEvent struct {
	ProductSymbol string                       `json:"productsymbol"`
	TickSize      float64                      `json:"tickSize"`
	BuyOrders     map[string]PriceLevelVolumes `json:"buyOrders"`
	SellOrders    map[string]PriceLevelVolumes `json:"sellOrders"`
}

// NewOrderBook normalizes a raw order event into an OrderBook: price keys
// are parsed to floats, buy levels sorted descending and sell levels
// ascending, best price first on both sides.
func NewOrderBook(event *OrderBookEvent) (*OrderBook, error) {
	buys, err := parsePriceLevels(event.BuyOrders)
	if err != nil {
		return nil, fmt.Errorf("buy orders: %w", err)
	}

	sells, err := parsePriceLevels(event.SellOrders)
	if err != nil {
		return nil, fmt.Errorf("sell orders: %w", err)
	}

	sort.Slice(buys, func(i, j int) bool {
		return buys[i].Price > buys[j].Price
	})
	sort.Slice(sells, func(i, j int) bool {
		return sells[i].Price < sells[j].Price
	})

	return &OrderBook{
		Product:    event.ProductSymbol,
		TickSize:   event.TickSize,
		BuyOrders:  buys,
		SellOrders: sells,
	}, nil
}

func parsePriceLevels(levels map[string]PriceLevelVolumes) ([]Order, error) {
	result := make([]Order, 0, len(levels))
	for price, volumes := range levels {
		p, err := strconv.ParseFloat(price, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price level %q: %w", price, err)
		}

		result = append(result, Order{
			Price:     p,
			Volume:    volumes.MarketVolume,
			OwnVolume: volumes.UserVolume,
		})
	}

	return result, nil
}

// BestBid returns the highest buy level, if any.
func (ob *OrderBook) BestBid() (Order, bool) {
	if len(ob.BuyOrders) == 0 {
		return Order{}, false
	}
	return ob.BuyOrders[0], true
}

// BestAsk returns the lowest sell level, if any.
func (ob *OrderBook) BestAsk() (Order, bool) {
	if len(ob.SellOrders) == 0 {
		return Order{}, false
	}
	return ob.SellOrders[0], true
}

// Crossed reports whether the best bid meets or exceeds the best ask.
// A crossed book is stale exchange state and non-actionable, not an error.
func (ob *OrderBook) Crossed() bool {
	bid, ok := ob.BestBid()
	if !ok {
		return false
	}
	ask, ok := ob.BestAsk()
	if !ok {
		return false
	}
	return bid.Price >= ask.Price
}

// Mid returns the midpoint of the touch. It reports false when either side
// of the book is empty.
func (ob *OrderBook) Mid() (float64, bool) {
	bid, ok := ob.BestBid()
	if !ok {
		return 0, false
	}
	ask, ok := ob.BestAsk()
	if !ok {
		return 0, false
	}
	return (bid.Price + ask.Price) / 2, true
}
