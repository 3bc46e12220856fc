package types

type PriceLevel struct {
	Price float64 `json:"price"`
	Size  uint64  `json:"size"`
}

// OrderBookView holds bids and asks both sorted by descending price.
type OrderBookView struct {
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	Spread    float64      `json:"spread"`
	HasSpread bool         `json:"hasSpread"`
}

func (v OrderBookView) BestBid() (PriceLevel, bool) {
	if len(v.Bids) == 0 {
		return PriceLevel{}, false
	}
	return v.Bids[0], true
}

// BestAsk is the lowest ask, stored last.
func (v OrderBookView) BestAsk() (PriceLevel, bool) {
	if len(v.Asks) == 0 {
		return PriceLevel{}, false
	}
	return v.Asks[len(v.Asks)-1], true
}
