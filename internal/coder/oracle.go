package coder

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/iqbalbaharum/betting-market-client/internal/types"
	"github.com/shopspring/decimal"
)

const (
	pythMagic        uint32 = 0xa1b2c3d4
	pythAccountPrice uint32 = 3

	pythExponentOffset    = 20
	pythValidSlotOffset   = 40
	pythAggPriceOffset    = 208
	pythAggConfOffset     = 216
	pythAggStatusOffset   = 224
	pythAggPubSlotOffset  = 232
	pythPriceAccountBytes = 240
)

// strike prices are whole units, oracle prices carry nine decimals
const strikeScale = 9

// DecodePriceAccount reads the aggregate price from a Pyth v2 price account.
func DecodePriceAccount(data []byte) (types.PriceData, error) {
	var price types.PriceData

	if len(data) < pythPriceAccountBytes {
		return price, fmt.Errorf("price account holds %d bytes, need %d: %w", len(data), pythPriceAccountBytes, types.ErrMalformedAccount)
	}
	if magic := binary.LittleEndian.Uint32(data[0:]); magic != pythMagic {
		return price, fmt.Errorf("price account magic %#x: %w", magic, types.ErrMalformedAccount)
	}
	if atype := binary.LittleEndian.Uint32(data[8:]); atype != pythAccountPrice {
		return price, fmt.Errorf("account type %d is not a price account: %w", atype, types.ErrMalformedAccount)
	}

	price.Exponent = int32(binary.LittleEndian.Uint32(data[pythExponentOffset:]))
	price.ValidSlot = binary.LittleEndian.Uint64(data[pythValidSlotOffset:])
	price.RawPrice = int64(binary.LittleEndian.Uint64(data[pythAggPriceOffset:]))
	conf := binary.LittleEndian.Uint64(data[pythAggConfOffset:])
	price.Status = binary.LittleEndian.Uint32(data[pythAggStatusOffset:])
	price.PublishSlot = binary.LittleEndian.Uint64(data[pythAggPubSlotOffset:])

	price.Price = decimal.New(price.RawPrice, price.Exponent)
	price.Confidence = decimal.NewFromBigInt(new(big.Int).SetUint64(conf), price.Exponent)

	return price, nil
}

// OracleVerdict is the result the program records when judged by the oracle.
func OracleVerdict(raw int64, strike uint64) types.Result {
	threshold := decimal.NewFromBigInt(new(big.Int).SetUint64(strike), strikeScale)
	if decimal.NewFromInt(raw).GreaterThan(threshold) {
		return types.ResultYes
	}
	return types.ResultNo
}
