package domain

// Side tells whether an order buys or sells.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderStatus is the exchange's state of a placed order.
type OrderStatus string

const (
	OrderStatusActive     OrderStatus = "ACTIVE"
	OrderStatusPartFilled OrderStatus = "PART_FILLED"
)

// Product is a tradable instrument definition, fetched on demand and
// immutable once decoded.
type Product struct {
	Symbol        string  `json:"symbol"`
	TickSize      float64 `json:"tickSize"`
	StartingPrice int     `json:"startingPrice"`
	ContractSize  int     `json:"contractSize"`
}

// OrderRequest is the caller's intent to place one order.
type OrderRequest struct {
	Product string  `json:"product"`
	Price   float64 `json:"price"`
	Side    Side    `json:"side"`
	Volume  int     `json:"volume"`
}

// OrderResponse is the exchange's acknowledgment of a placed order.
type OrderResponse struct {
	ID         string      `json:"id"`
	Status     OrderStatus `json:"status"`
	Product    string      `json:"product"`
	Side       Side        `json:"side"`
	Price      float64     `json:"price"`
	Volume     int         `json:"volume"`
	Filled     int         `json:"filled"`
	User       string      `json:"user"`
	Timestamp  string      `json:"timestamp"`
	TargetUser string      `json:"targetUser,omitempty"`
	Message    string      `json:"message,omitempty"`
}

// Position is one row of the positions endpoint.
type Position struct {
	Product     string `json:"product"`
	Volume      int    `json:"volume"`
	NetPosition int    `json:"netPosition"`
}
