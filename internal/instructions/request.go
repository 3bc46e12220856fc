package instructions

import (
	"fmt"

	"github.com/iqbalbaharum/betting-market-client/internal/coder"
	"github.com/iqbalbaharum/betting-market-client/internal/types"
)

// Args are instruction arguments as they arrive from untyped callers.
type Args struct {
	IsYes  *bool   `json:"isYes,omitempty"`
	Price  *uint64 `json:"price,omitempty"`
	Amount *uint64 `json:"amount,omitempty"`
	Result *uint64 `json:"result,omitempty"`
}

type Params struct {
	IsYes  bool
	Price  uint64
	Amount uint64
	Result uint64
}

// FromRequest checks that every argument op needs is present. Values that do
// not fit u64 are rejected earlier, when the caller decodes them into Args.
// The price range is left to the caller.
func FromRequest(op uint8, args Args) (Params, error) {
	var params Params
	var err error

	switch op {
	case coder.OpInitBettingMarket, coder.OpPayout, coder.OpJudgeOracle:
	case coder.OpOfferTrade:
		if args.IsYes == nil {
			return params, fmt.Errorf("isYes is required: %w", types.ErrInvalidArgument)
		}
		params.IsYes = *args.IsYes
		if params.Price, err = RequireUint64("price", args.Price); err != nil {
			return params, err
		}
		if params.Amount, err = RequireUint64("amount", args.Amount); err != nil {
			return params, err
		}
	case coder.OpFreeMint:
		params.Amount, err = RequireUint64("amount", args.Amount)
	case coder.OpJudgeManually:
		params.Result, err = RequireUint64("result", args.Result)
	case coder.OpSetStrikePrice:
		params.Price, err = RequireUint64("price", args.Price)
	default:
		return params, fmt.Errorf("opcode %d: %w", op, types.ErrInvalidArgument)
	}

	return params, err
}

func RequireUint64(name string, v *uint64) (uint64, error) {
	if v == nil {
		return 0, fmt.Errorf("%s is required: %w", name, types.ErrInvalidArgument)
	}
	return *v, nil
}
