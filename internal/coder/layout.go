package coder

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/betting-market-client/internal/types"
)

const (
	// MarketAccountSize is the allocation of a betting market account.
	MarketAccountSize = 100000
	// MarketDataSize is the populated prefix of the account.
	MarketDataSize = 90800
)

type FieldKind uint8

const (
	KindReserved FieldKind = iota
	KindBool
	KindU8
	KindU64
	KindPubkey
	KindU64Array
	KindPubkeyArray
)

func (k FieldKind) width() int {
	switch k {
	case KindBool, KindU8:
		return 1
	case KindU64, KindU64Array:
		return 8
	case KindPubkey, KindPubkeyArray:
		return solana.PublicKeyLength
	default:
		return 1
	}
}

// Field is one fixed-offset region of the market record. Ref returns a
// pointer to the scalar, or a slice aliasing the array, that the region maps to.
type Field struct {
	Name   string
	Offset int
	Length int
	Kind   FieldKind
	Count  int
	Ref    func(*types.MarketState) interface{}
}

func reserved(name string, offset, length int) Field {
	return Field{Name: name, Offset: offset, Length: length, Kind: KindReserved}
}

var MarketLayout = []Field{
	{Name: "isInitialized", Offset: 0, Length: 1, Kind: KindBool,
		Ref: func(s *types.MarketState) interface{} { return &s.Initialized }},
	{Name: "result", Offset: 1, Length: 1, Kind: KindU8,
		Ref: func(s *types.MarketState) interface{} { return &s.Result }},
	{Name: "yesTokenMint", Offset: 2, Length: 32, Kind: KindPubkey,
		Ref: func(s *types.MarketState) interface{} { return &s.YesTokenMint }},
	{Name: "noTokenMint", Offset: 34, Length: 32, Kind: KindPubkey,
		Ref: func(s *types.MarketState) interface{} { return &s.NoTokenMint }},
	{Name: "usdTokenAccount", Offset: 66, Length: 32, Kind: KindPubkey,
		Ref: func(s *types.MarketState) interface{} { return &s.UsdTokenAccount }},
	{Name: "strikePrice", Offset: 98, Length: 8, Kind: KindU64,
		Ref: func(s *types.MarketState) interface{} { return &s.StrikePrice }},
	{Name: "judge", Offset: 106, Length: 32, Kind: KindPubkey,
		Ref: func(s *types.MarketState) interface{} { return &s.Judge }},
	reserved("header padding", 138, 862),
	{Name: "buyAmountsForYes", Offset: 1000, Length: 808, Kind: KindU64Array, Count: types.PriceSlots,
		Ref: func(s *types.MarketState) interface{} { return s.BuyAmountsForYes[:] }},
	reserved("yes padding", 1808, 192),
	{Name: "buyAmountsForNo", Offset: 2000, Length: 808, Kind: KindU64Array, Count: types.PriceSlots,
		Ref: func(s *types.MarketState) interface{} { return s.BuyAmountsForNo[:] }},
	reserved("no padding", 2808, 7192),
	reserved("legacy user table", 10000, 32320),
	reserved("legacy user padding", 42320, 7680),
	reserved("legacy usd payout table", 50000, 8080),
	reserved("legacy usd payout padding", 58080, 1920),
	reserved("legacy amount table", 60000, 8080),
	reserved("legacy amount padding", 68080, 1920),
	{Name: "payoutUserAccounts", Offset: 70000, Length: 3200, Kind: KindPubkeyArray, Count: types.PayoutSlots,
		Ref: func(s *types.MarketState) interface{} { return s.PayoutUserAccounts[:] }},
	reserved("payout user padding", 73200, 6800),
	{Name: "payoutMints", Offset: 80000, Length: 3200, Kind: KindPubkeyArray, Count: types.PayoutSlots,
		Ref: func(s *types.MarketState) interface{} { return s.PayoutMints[:] }},
	reserved("payout mint padding", 83200, 6800),
	{Name: "payoutAmounts", Offset: 90000, Length: 800, Kind: KindU64Array, Count: types.PayoutSlots,
		Ref: func(s *types.MarketState) interface{} { return s.PayoutAmounts[:] }},
}

// ValidateLayout checks that the fields tile [0, size) in order, without gaps
// or overlaps, and that every typed field's length matches its kind.
func ValidateLayout(layout []Field, size int) error {
	next := 0
	for _, f := range layout {
		if f.Offset != next {
			return fmt.Errorf("field %s starts at %d, expected %d", f.Name, f.Offset, next)
		}
		if f.Length <= 0 {
			return fmt.Errorf("field %s has length %d", f.Name, f.Length)
		}
		if f.Kind != KindReserved {
			count := f.Count
			if count == 0 {
				count = 1
			}
			if f.Kind.width()*count != f.Length {
				return fmt.Errorf("field %s length %d does not hold %d x %d bytes", f.Name, f.Length, count, f.Kind.width())
			}
			if f.Ref == nil {
				return fmt.Errorf("field %s is not bound", f.Name)
			}
		}
		next = f.Offset + f.Length
	}
	if next != size {
		return fmt.Errorf("layout ends at %d, expected %d", next, size)
	}
	return nil
}
