package market

import (
	"fmt"

	"github.com/iqbalbaharum/betting-market-client/internal/types"
)

// ErrInvalidPrice is returned for trade prices outside (0, 100) cents.
var ErrInvalidPrice = fmt.Errorf("price must be between 1 and 99 cents: %w", types.ErrInvalidArgument)

func ValidatePrice(price uint64) error {
	if price == 0 || price >= types.MaxPrice {
		return fmt.Errorf("price %d: %w", price, ErrInvalidPrice)
	}
	return nil
}
