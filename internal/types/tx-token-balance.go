package types

import "math/big"

// TxTokenBalance is one token account balance reported in transaction metadata.
type TxTokenBalance struct {
	Mint    string `json:"mint"`
	Owner   string `json:"owner"`
	Amount  string `json:"amount"`
	Decimal uint32 `json:"decimal"`
}

// RawAmount parses Amount, the balance in base units.
func (b TxTokenBalance) RawAmount() (*big.Int, bool) {
	return new(big.Int).SetString(b.Amount, 10)
}
