package types

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
)

const (
	MaxPrice    = 100
	PriceSlots  = MaxPrice + 1
	PayoutSlots = 100
)

type Result uint8

const (
	ResultUndecided Result = 0
	ResultYes       Result = 1
	ResultNo        Result = 2
)

func (r Result) String() string {
	switch r {
	case ResultUndecided:
		return "undecided"
	case ResultYes:
		return "YES"
	case ResultNo:
		return "NO"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(r))
	}
}

func (r Result) Decided() bool {
	return r == ResultYes || r == ResultNo
}

type Outcome string

const (
	OutcomeYes Outcome = "yes"
	OutcomeNo  Outcome = "no"
)

// ParseSide reports whether side is "buy" (true) or "sell" (false).
func ParseSide(side string) (bool, error) {
	switch side {
	case "buy":
		return true, nil
	case "sell":
		return false, nil
	default:
		return false, fmt.Errorf("side %q must be buy or sell: %w", side, ErrInvalidArgument)
	}
}

func ParseOutcome(s string) (Outcome, error) {
	switch Outcome(s) {
	case OutcomeYes, OutcomeNo:
		return Outcome(s), nil
	default:
		return "", fmt.Errorf("outcome %q: %w", s, ErrInvalidArgument)
	}
}

// MarketState is the decoded betting market record. Buy amounts are indexed
// by price in cents. The payout arrays are parallel; a slot is empty when its
// user account is the zero key.
type MarketState struct {
	Initialized        bool                          `json:"initialized"`
	Result             Result                        `json:"result"`
	YesTokenMint       solana.PublicKey              `json:"yesTokenMint"`
	NoTokenMint        solana.PublicKey              `json:"noTokenMint"`
	UsdTokenAccount    solana.PublicKey              `json:"usdTokenAccount"`
	StrikePrice        uint64                        `json:"strikePrice"`
	Judge              solana.PublicKey              `json:"judge"`
	BuyAmountsForYes   [PriceSlots]uint64            `json:"buyAmountsForYes"`
	BuyAmountsForNo    [PriceSlots]uint64            `json:"buyAmountsForNo"`
	PayoutUserAccounts [PayoutSlots]solana.PublicKey `json:"payoutUserAccounts"`
	PayoutMints        [PayoutSlots]solana.PublicKey `json:"payoutMints"`
	PayoutAmounts      [PayoutSlots]uint64           `json:"payoutAmounts"`
}

type Payout struct {
	Index  int              `json:"index"`
	User   solana.PublicKey `json:"user"`
	Mint   solana.PublicKey `json:"mint"`
	Amount uint64           `json:"amount"`
	Token  string           `json:"token"`
}

// TokenAccounts are the payer's associated token accounts for the market's mints.
type TokenAccounts struct {
	Owner solana.PublicKey `json:"owner"`
	Usd   solana.PublicKey `json:"usd"`
	Yes   solana.PublicKey `json:"yes"`
	No    solana.PublicKey `json:"no"`
}

type Balances struct {
	Usd string `json:"usd"`
	Yes string `json:"yes"`
	No  string `json:"no"`
}

type InitializedMarket struct {
	Market          solana.PublicKey   `json:"market"`
	YesTokenMint    solana.PublicKey   `json:"yesTokenMint"`
	NoTokenMint     solana.PublicKey   `json:"noTokenMint"`
	UsdTokenAccount solana.PublicKey   `json:"usdTokenAccount"`
	Judge           solana.PublicKey   `json:"judge"`
	Signatures      []solana.Signature `json:"signatures"`
}

// MarketSnapshot is a mirrored market read, as served from the cache.
type MarketSnapshot struct {
	Market    string        `json:"market"`
	State     MarketState   `json:"state"`
	OrderBook OrderBookView `json:"orderbook"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
