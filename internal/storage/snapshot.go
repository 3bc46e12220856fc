package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/iqbalbaharum/betting-market-client/internal/types"
	"github.com/redis/go-redis/v9"
)

// SnapshotStorage mirrors the latest decoded market and its order book in
// Redis. Each write replaces the previous one and expires after ttl.
type SnapshotStorage struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotStorage(client *redis.Client, ttl time.Duration) *SnapshotStorage {
	return &SnapshotStorage{client: client, ttl: ttl}
}

func (s *SnapshotStorage) SetSnapshot(ctx context.Context, market string, state *types.MarketState, book types.OrderBookView) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return err
	}
	bookJSON, err := json.Marshal(book)
	if err != nil {
		return err
	}

	key := snapshotKey(market)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key,
		FIELD_STATE, stateJSON,
		FIELD_ORDERBOOK, bookJSON,
		FIELD_UPDATED_AT, time.Now().UnixMilli(),
	)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mirror snapshot %s: %w", market, err)
	}
	return nil
}

func (s *SnapshotStorage) GetSnapshot(ctx context.Context, market string) (*types.MarketSnapshot, error) {
	fields, err := s.client.HGetAll(ctx, snapshotKey(market)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%s: %w: %w", market, ErrSnapshotNotFound, types.ErrNoSnapshot)
	}

	snapshot := &types.MarketSnapshot{Market: market}
	if err := json.Unmarshal([]byte(fields[FIELD_STATE]), &snapshot.State); err != nil {
		return nil, fmt.Errorf("cached state for %s: %w", market, err)
	}
	if err := json.Unmarshal([]byte(fields[FIELD_ORDERBOOK]), &snapshot.OrderBook); err != nil {
		return nil, fmt.Errorf("cached order book for %s: %w", market, err)
	}
	if ms, err := strconv.ParseInt(fields[FIELD_UPDATED_AT], 10, 64); err == nil {
		snapshot.UpdatedAt = time.UnixMilli(ms)
	}

	return snapshot, nil
}
