package coder

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload(op uint8, fields ...uint64) []byte {
	data := []byte{op}
	for _, f := range fields {
		data = binary.LittleEndian.AppendUint64(data, f)
	}
	return data
}

func TestDecodeInstructions(t *testing.T) {
	c := NewBettingMarketInstructionCoder()

	tests := []struct {
		name string
		data []byte
		want interface{}
	}{
		{"init", []byte{OpInitBettingMarket}, InitBettingMarket{}},
		{"offer trade", append([]byte{OpOfferTrade, 1}, payload(0, 42, 1000)[1:]...), OfferTrade{IsYes: true, Price: 42, Amount: 1000}},
		{"offer trade no", append([]byte{OpOfferTrade, 0}, payload(0, 70, 5)[1:]...), OfferTrade{IsYes: false, Price: 70, Amount: 5}},
		{"payout", []byte{OpPayout}, Payout{}},
		{"free mint", payload(OpFreeMint, 250), FreeMint{Amount: 250}},
		{"judge manually", payload(OpJudgeManually, 2), JudgeManually{Result: 2}},
		{"judge oracle", []byte{OpJudgeOracle}, JudgeOracle{}},
		{"strike price", payload(OpSetStrikePrice, 65000), SetStrikePrice{StrikePrice: 65000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Decode(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeInvalidInstructions(t *testing.T) {
	c := NewBettingMarketInstructionCoder()

	for _, data := range [][]byte{
		{},
		{1},
		{9},
		{OpFreeMint, 1, 2, 3},
		{OpOfferTrade, 1, 42},
	} {
		_, err := c.Decode(data)
		assert.True(t, errors.Is(err, ErrInvalidInstruction), "payload %v", data)
	}
}

func TestDecodeCompute(t *testing.T) {
	c := NewBettingMarketInstructionCoder()

	compute, err := c.DecodeCompute([]byte{2, 0x40, 0x0d, 0x03, 0x00})
	require.NoError(t, err)
	assert.Equal(t, uint8(2), compute.Instruction)
	assert.Equal(t, uint32(200000), compute.Value)

	_, err = c.DecodeCompute([]byte{2})
	assert.Error(t, err)
}
