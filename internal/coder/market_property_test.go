package coder

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/betting-market-client/internal/types"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func drawKey(t *rapid.T, label string) solana.PublicKey {
	var k solana.PublicKey
	copy(k[:], rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, label))
	return k
}

func drawState(t *rapid.T) types.MarketState {
	state := types.MarketState{
		Initialized:     rapid.Bool().Draw(t, "initialized"),
		Result:          types.Result(rapid.Uint8().Draw(t, "result")),
		YesTokenMint:    drawKey(t, "yesMint"),
		NoTokenMint:     drawKey(t, "noMint"),
		UsdTokenAccount: drawKey(t, "usdAccount"),
		StrikePrice:     rapid.Uint64().Draw(t, "strike"),
		Judge:           drawKey(t, "judge"),
	}

	for i := 0; i < types.PriceSlots; i++ {
		state.BuyAmountsForYes[i] = rapid.Uint64().Draw(t, "yes")
		state.BuyAmountsForNo[i] = rapid.Uint64().Draw(t, "no")
	}

	slots := rapid.IntRange(0, types.PayoutSlots).Draw(t, "payouts")
	for i := 0; i < slots; i++ {
		index := rapid.IntRange(0, types.PayoutSlots-1).Draw(t, "slot")
		state.PayoutUserAccounts[index] = drawKey(t, "user")
		state.PayoutMints[index] = drawKey(t, "mint")
		state.PayoutAmounts[index] = rapid.Uint64().Draw(t, "amount")
	}

	return state
}

func TestMarketRoundTripProperty(t *testing.T) {
	coder := NewBettingMarketCoder()

	rapid.Check(t, func(t *rapid.T) {
		state := drawState(t)

		data := coder.Encode(state)
		require.Len(t, data, MarketAccountSize)

		decoded, err := coder.Decode(data)
		require.NoError(t, err)
		require.Equal(t, state, decoded)

		// trailing bytes past the populated region never matter
		decoded, err = coder.Decode(data[:MarketDataSize])
		require.NoError(t, err)
		require.Equal(t, state, decoded)
	})
}
