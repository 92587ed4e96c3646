package domain

// Trade is one executed trade, own or market. Emitted once per trade
// event and immutable.
type Trade struct {
	Timestamp string  `json:"timestamp"`
	Product   string  `json:"product"`
	Buyer     string  `json:"buyer"`
	Seller    string  `json:"seller"`
	Volume    int     `json:"volume"`
	Price     float64 `json:"price"`
}
