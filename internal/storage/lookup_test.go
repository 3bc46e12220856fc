package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupRoundTrip(t *testing.T) {
	_, client := newRedis(t)
	s := NewLookupTableStorage(client, time.Minute)
	ctx := context.Background()

	table := solana.NewWallet().PublicKey()
	addresses := []solana.PublicKey{solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()}

	require.NoError(t, s.SetLookup(ctx, table, addresses))

	got, err := s.GetLookup(ctx, table)
	require.NoError(t, err)
	assert.Equal(t, addresses, got)
}

func TestLookupMiss(t *testing.T) {
	_, client := newRedis(t)
	s := NewLookupTableStorage(client, time.Minute)

	_, err := s.GetLookup(context.Background(), solana.NewWallet().PublicKey())
	assert.True(t, errors.Is(err, ErrLookupNotFound))
}

func TestLookupDefaultTTL(t *testing.T) {
	mr, client := newRedis(t)
	s := NewLookupTableStorage(client, 0)
	ctx := context.Background()
	table := solana.NewWallet().PublicKey()

	require.NoError(t, s.SetLookup(ctx, table, []solana.PublicKey{solana.NewWallet().PublicKey()}))
	assert.Equal(t, DefaultLookupTTL, mr.TTL(lookupKey(table.String())))

	mr.FastForward(DefaultLookupTTL + time.Second)

	_, err := s.GetLookup(ctx, table)
	assert.True(t, errors.Is(err, ErrLookupNotFound))
}

func TestLookupCorruptEntry(t *testing.T) {
	mr, client := newRedis(t)
	s := NewLookupTableStorage(client, time.Minute)
	table := solana.NewWallet().PublicKey()

	require.NoError(t, mr.Set(lookupKey(table.String()), "not json"))

	_, err := s.GetLookup(context.Background(), table)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrLookupNotFound))
}
