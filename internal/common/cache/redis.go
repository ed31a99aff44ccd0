// internal/common/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"refi-pipeline/internal/common/config"
	"refi-pipeline/internal/common/errors"
)

// SnapshotStore is the key-value fallback store: snapshots of live results,
// written on success and read when a later live call fails. Keys are
// namespaced per record family.
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotStore creates a store over a fresh Redis client.
func NewSnapshotStore(cfg config.RedisConfig, ttl time.Duration) *SnapshotStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
	return &SnapshotStore{client: rdb, ttl: ttl}
}

// NewSnapshotStoreWithClient wraps an existing client (tests use miniredis).
func NewSnapshotStoreWithClient(client *redis.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{client: client, ttl: ttl}
}

// Ping tests the Redis connection.
func (s *SnapshotStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *SnapshotStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Key namespaces.
const (
	nsIdentity  = "identity"  // PAN -> identity+credit snapshot
	nsVehicle   = "vehicle"   // registration -> vehicle snapshot
	nsProfile   = "profile"   // mobile -> partial profile
	nsCatalogue = "catalogue" // singleton product catalogue
)

func key(ns, id string) string {
	return fmt.Sprintf("refi:%s:%s", ns, id)
}

// PutIdentity stores an identity+credit snapshot under the PAN.
func (s *SnapshotStore) PutIdentity(ctx context.Context, pan string, v interface{}) error {
	return s.put(ctx, key(nsIdentity, pan), v)
}

// GetIdentity loads the snapshot for a PAN into out.
func (s *SnapshotStore) GetIdentity(ctx context.Context, pan string, out interface{}) error {
	return s.get(ctx, key(nsIdentity, pan), out)
}

// PutVehicle stores a vehicle snapshot under the registration number.
func (s *SnapshotStore) PutVehicle(ctx context.Context, regNo string, v interface{}) error {
	return s.put(ctx, key(nsVehicle, regNo), v)
}

// GetVehicle loads the snapshot for a registration number into out.
func (s *SnapshotStore) GetVehicle(ctx context.Context, regNo string, out interface{}) error {
	return s.get(ctx, key(nsVehicle, regNo), out)
}

// PutPartialProfile stores a partial profile under the mobile number.
func (s *SnapshotStore) PutPartialProfile(ctx context.Context, mobile string, v interface{}) error {
	return s.put(ctx, key(nsProfile, mobile), v)
}

// GetPartialProfile loads the partial profile for a mobile number into out.
func (s *SnapshotStore) GetPartialProfile(ctx context.Context, mobile string, out interface{}) error {
	return s.get(ctx, key(nsProfile, mobile), out)
}

// PutCatalogue stores the raw product-catalogue document. The catalogue is
// kept as raw JSON so the policy connector can schema-check it on read.
func (s *SnapshotStore) PutCatalogue(ctx context.Context, raw []byte) error {
	return s.client.Set(ctx, key(nsCatalogue, "products"), raw, s.ttl).Err()
}

// GetCatalogue returns the raw product-catalogue document.
func (s *SnapshotStore) GetCatalogue(ctx context.Context) ([]byte, error) {
	raw, err := s.client.Get(ctx, key(nsCatalogue, "products")).Bytes()
	if err == redis.Nil {
		return nil, errors.NewCacheMissError(key(nsCatalogue, "products"))
	}
	if err != nil {
		return nil, errors.NewTransportError("redis", err)
	}
	return raw, nil
}

func (s *SnapshotStore) put(ctx context.Context, k string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", k, err)
	}
	return s.client.Set(ctx, k, raw, s.ttl).Err()
}

func (s *SnapshotStore) get(ctx context.Context, k string, out interface{}) error {
	raw, err := s.client.Get(ctx, k).Bytes()
	if err == redis.Nil {
		return errors.NewCacheMissError(k)
	}
	if err != nil {
		return errors.NewTransportError("redis", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.NewMalformedResponseError("redis", fmt.Sprintf("decode snapshot %s: %v", k, err))
	}
	return nil
}
