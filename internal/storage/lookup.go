package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/redis/go-redis/v9"
)

// LookupTableStorage caches address lookup table contents by table address.
type LookupTableStorage struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLookupTableStorage(client *redis.Client, ttl time.Duration) *LookupTableStorage {
	if ttl <= 0 {
		ttl = DefaultLookupTTL
	}
	return &LookupTableStorage{client: client, ttl: ttl}
}

func (s *LookupTableStorage) SetLookup(ctx context.Context, table solana.PublicKey, addresses []solana.PublicKey) error {
	data, err := json.Marshal(addresses)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, lookupKey(table.String()), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache lookup table %s: %w", table, err)
	}

	return nil
}

func (s *LookupTableStorage) GetLookup(ctx context.Context, table solana.PublicKey) ([]solana.PublicKey, error) {
	data, err := s.client.Get(ctx, lookupKey(table.String())).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s: %w", table, ErrLookupNotFound)
		}
		return nil, err
	}

	var addresses []solana.PublicKey
	if err := json.Unmarshal(data, &addresses); err != nil {
		return nil, err
	}

	return addresses, nil
}
