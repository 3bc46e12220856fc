package types

import "github.com/shopspring/decimal"

type PriceData struct {
	Price       decimal.Decimal `json:"price"`
	Confidence  decimal.Decimal `json:"confidence"`
	RawPrice    int64           `json:"rawPrice"`
	Exponent    int32           `json:"exponent"`
	Status      uint32          `json:"status"`
	ValidSlot   uint64          `json:"validSlot"`
	PublishSlot uint64          `json:"publishSlot"`
}
