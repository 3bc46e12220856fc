package coder

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/iqbalbaharum/betting-market-client/internal/types"
)

type BettingMarketCoder struct {
	layout []Field
}

func NewBettingMarketCoder() *BettingMarketCoder {
	return &BettingMarketCoder{layout: MarketLayout}
}

// Decode reads the market record. Only the first MarketDataSize bytes are
// inspected; everything outside the mapped fields is ignored.
func (coder *BettingMarketCoder) Decode(data []byte) (types.MarketState, error) {
	var state types.MarketState

	if len(data) < MarketDataSize {
		return state, fmt.Errorf("market account holds %d bytes, need %d: %w", len(data), MarketDataSize, types.ErrMalformedAccount)
	}

	for _, f := range coder.layout {
		if f.Kind == KindReserved {
			continue
		}
		if err := decodeField(f, data[f.Offset:f.Offset+f.Length], &state); err != nil {
			return types.MarketState{}, err
		}
	}

	return state, nil
}

// Encode is the inverse of Decode. Reserved regions are zero.
func (coder *BettingMarketCoder) Encode(state types.MarketState) []byte {
	data := make([]byte, MarketAccountSize)
	for _, f := range coder.layout {
		if f.Kind == KindReserved {
			continue
		}
		encodeField(f, data[f.Offset:f.Offset+f.Length], &state)
	}
	return data
}

func decodeField(f Field, b []byte, state *types.MarketState) error {
	switch v := f.Ref(state).(type) {
	case *bool:
		*v = b[0] != 0
	case *types.Result:
		*v = types.Result(b[0])
	case *uint64:
		*v = binary.LittleEndian.Uint64(b)
	case *solana.PublicKey:
		*v = solana.PublicKeyFromBytes(b)
	case []uint64:
		for i := range v {
			v[i] = binary.LittleEndian.Uint64(b[i*8:])
		}
	case []solana.PublicKey:
		for i := range v {
			v[i] = solana.PublicKeyFromBytes(b[i*solana.PublicKeyLength : (i+1)*solana.PublicKeyLength])
		}
	default:
		return fmt.Errorf("field %s: unsupported binding %T: %w", f.Name, v, types.ErrMalformedAccount)
	}
	return nil
}

func encodeField(f Field, b []byte, state *types.MarketState) {
	switch v := f.Ref(state).(type) {
	case *bool:
		if *v {
			b[0] = 1
		}
	case *types.Result:
		b[0] = byte(*v)
	case *uint64:
		binary.LittleEndian.PutUint64(b, *v)
	case *solana.PublicKey:
		copy(b, v[:])
	case []uint64:
		for i, n := range v {
			binary.LittleEndian.PutUint64(b[i*8:], n)
		}
	case []solana.PublicKey:
		for i, key := range v {
			copy(b[i*solana.PublicKeyLength:], key[:])
		}
	}
}
