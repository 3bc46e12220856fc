package coder

import (
	"encoding/binary"
	"errors"
	"math/rand"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/betting-market-client/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(b byte) solana.PublicKey {
	var k solana.PublicKey
	for i := range k {
		k[i] = b
	}
	return k
}

func sampleState() types.MarketState {
	state := types.MarketState{
		Initialized:     true,
		Result:          types.ResultNo,
		YesTokenMint:    key(1),
		NoTokenMint:     key(2),
		UsdTokenAccount: key(3),
		StrikePrice:     65000,
		Judge:           key(4),
	}
	for i := 0; i < types.PriceSlots; i++ {
		state.BuyAmountsForYes[i] = uint64(i * 7)
		state.BuyAmountsForNo[i] = uint64(1000 - i)
	}
	state.PayoutUserAccounts[0] = key(9)
	state.PayoutMints[0] = key(1)
	state.PayoutAmounts[0] = 42
	state.PayoutUserAccounts[99] = key(10)
	state.PayoutMints[99] = key(5)
	state.PayoutAmounts[99] = 1 << 40
	return state
}

func TestMarketLayoutIsContiguous(t *testing.T) {
	require.NoError(t, ValidateLayout(MarketLayout, MarketDataSize))
}

func TestValidateLayoutRejectsGaps(t *testing.T) {
	layout := []Field{
		reserved("a", 0, 10),
		reserved("b", 12, 10),
	}
	assert.Error(t, ValidateLayout(layout, 22))

	overlap := []Field{
		reserved("a", 0, 10),
		reserved("b", 8, 10),
	}
	assert.Error(t, ValidateLayout(overlap, 18))

	short := []Field{reserved("a", 0, 10)}
	assert.Error(t, ValidateLayout(short, 12))

	badWidth := []Field{
		{Name: "strike", Offset: 0, Length: 4, Kind: KindU64,
			Ref: func(s *types.MarketState) interface{} { return &s.StrikePrice }},
	}
	assert.Error(t, ValidateLayout(badWidth, 4))
}

func TestMarketRoundTrip(t *testing.T) {
	c := NewBettingMarketCoder()
	state := sampleState()

	data := c.Encode(state)
	require.Len(t, data, MarketAccountSize)

	decoded, err := c.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, state, decoded)
}

func TestMarketFieldOffsets(t *testing.T) {
	data := NewBettingMarketCoder().Encode(sampleState())

	assert.Equal(t, byte(1), data[0])
	assert.Equal(t, byte(types.ResultNo), data[1])
	assert.Equal(t, key(1).Bytes(), data[2:34])
	assert.Equal(t, key(2).Bytes(), data[34:66])
	assert.Equal(t, key(3).Bytes(), data[66:98])
	assert.Equal(t, uint64(65000), binary.LittleEndian.Uint64(data[98:106]))
	assert.Equal(t, key(4).Bytes(), data[106:138])
	assert.Equal(t, uint64(7), binary.LittleEndian.Uint64(data[1008:1016]))
	assert.Equal(t, uint64(900), binary.LittleEndian.Uint64(data[2000+100*8:2808]))
	assert.Equal(t, key(9).Bytes(), data[70000:70032])
	assert.Equal(t, key(5).Bytes(), data[80000+99*32:83200])
	assert.Equal(t, uint64(42), binary.LittleEndian.Uint64(data[90000:90008]))
	assert.Equal(t, uint64(1<<40), binary.LittleEndian.Uint64(data[90792:90800]))
}

func TestMarketDecodeIgnoresReservedBytes(t *testing.T) {
	c := NewBettingMarketCoder()
	clean := c.Encode(sampleState())

	noisy := make([]byte, len(clean))
	copy(noisy, clean)
	rng := rand.New(rand.NewSource(7))
	for _, f := range MarketLayout {
		if f.Kind != KindReserved {
			continue
		}
		rng.Read(noisy[f.Offset : f.Offset+f.Length])
	}
	rng.Read(noisy[MarketDataSize:])

	want, err := c.Decode(clean)
	require.NoError(t, err)
	got, err := c.Decode(noisy)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestMarketDecodeShortBuffer(t *testing.T) {
	c := NewBettingMarketCoder()

	_, err := c.Decode(make([]byte, MarketDataSize-1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrMalformedAccount))

	_, err = c.Decode(make([]byte, MarketDataSize))
	assert.NoError(t, err)
}

func TestMarketDecodeUnknownResult(t *testing.T) {
	data := make([]byte, MarketDataSize)
	data[0] = 5
	data[1] = 9

	state, err := NewBettingMarketCoder().Decode(data)
	require.NoError(t, err)
	assert.True(t, state.Initialized)
	assert.Equal(t, "unknown(9)", state.Result.String())
	assert.False(t, state.Result.Decided())
}
