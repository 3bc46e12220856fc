package orderbook

import (
	"sort"

	"github.com/iqbalbaharum/betting-market-client/internal/types"
)

// Depth is the number of levels kept on each side.
const Depth = 10

// Aggregate builds the order book view from the market's buy amounts.
//
// A YES buy at p cents is a bid at p/100. A NO buy at p cents is an ask on
// YES at (100-p)/100. Both sides are sorted by descending price; bids keep
// the highest Depth levels and asks keep the lowest Depth levels.
func Aggregate(yes, no [types.PriceSlots]uint64) types.OrderBookView {
	bids := make([]types.PriceLevel, 0, Depth)
	asks := make([]types.PriceLevel, 0, Depth)

	for p := 0; p < types.PriceSlots; p++ {
		if yes[p] != 0 {
			bids = append(bids, types.PriceLevel{Price: float64(p) / 100, Size: yes[p]})
		}
		if no[p] != 0 {
			asks = append(asks, types.PriceLevel{Price: float64(types.MaxPrice-p) / 100, Size: no[p]})
		}
	}

	sortDescending(bids)
	sortDescending(asks)

	if len(bids) > Depth {
		bids = bids[:Depth]
	}
	if len(asks) > Depth {
		asks = asks[len(asks)-Depth:]
	}

	view := types.OrderBookView{Bids: bids, Asks: asks}
	if len(bids) > 0 && len(asks) > 0 {
		view.Spread = asks[len(asks)-1].Price - bids[0].Price
		view.HasSpread = true
	}

	return view
}

func sortDescending(levels []types.PriceLevel) {
	sort.SliceStable(levels, func(i, j int) bool {
		return levels[i].Price > levels[j].Price
	})
}
