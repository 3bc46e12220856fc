package coder

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/iqbalbaharum/betting-market-client/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priceAccount(raw int64, conf uint64, expo int32) []byte {
	data := make([]byte, 3312)
	binary.LittleEndian.PutUint32(data[0:], pythMagic)
	binary.LittleEndian.PutUint32(data[4:], 2)
	binary.LittleEndian.PutUint32(data[8:], pythAccountPrice)
	binary.LittleEndian.PutUint32(data[pythExponentOffset:], uint32(expo))
	binary.LittleEndian.PutUint64(data[pythValidSlotOffset:], 1234)
	binary.LittleEndian.PutUint64(data[pythAggPriceOffset:], uint64(raw))
	binary.LittleEndian.PutUint64(data[pythAggConfOffset:], conf)
	binary.LittleEndian.PutUint32(data[pythAggStatusOffset:], 1)
	binary.LittleEndian.PutUint64(data[pythAggPubSlotOffset:], 1240)
	return data
}

func TestDecodePriceAccount(t *testing.T) {
	price, err := DecodePriceAccount(priceAccount(6512345000000, 2500000000, -8))
	require.NoError(t, err)

	assert.Equal(t, int64(6512345000000), price.RawPrice)
	assert.Equal(t, int32(-8), price.Exponent)
	assert.Equal(t, "65123.45", price.Price.String())
	assert.Equal(t, "25", price.Confidence.String())
	assert.Equal(t, uint64(1234), price.ValidSlot)
	assert.Equal(t, uint64(1240), price.PublishSlot)
	assert.Equal(t, uint32(1), price.Status)
}

func TestDecodePriceAccountRejectsBadHeader(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short", make([]byte, 100)},
		{"magic", func() []byte {
			d := priceAccount(1, 1, -8)
			binary.LittleEndian.PutUint32(d[0:], 0xdeadbeef)
			return d
		}()},
		{"type", func() []byte {
			d := priceAccount(1, 1, -8)
			binary.LittleEndian.PutUint32(d[8:], 2)
			return d
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePriceAccount(tt.data)
			assert.True(t, errors.Is(err, types.ErrMalformedAccount))
		})
	}
}

func TestOracleVerdict(t *testing.T) {
	assert.Equal(t, types.ResultYes, OracleVerdict(65000_000000001, 65000))
	assert.Equal(t, types.ResultNo, OracleVerdict(65000_000000000, 65000))
	assert.Equal(t, types.ResultNo, OracleVerdict(-1, 0))
	assert.Equal(t, types.ResultYes, OracleVerdict(1, 0))
	assert.Equal(t, types.ResultNo, OracleVerdict(1<<62, 1<<62))
}
