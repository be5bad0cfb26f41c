package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/fridgechef/backend/internal/model"
)

// Stable storage keys for the two durable collections. No schema
// versioning; each key holds a JSON array of recipes.
const (
	HistoryKey   = "recipe_history"
	FavoritesKey = "recipe_favorites"
)

// CollectionStore is the durable key-value collaborator behind history
// and favorites. Load returns (nil, nil) when the key has never been
// written.
type CollectionStore interface {
	Load(ctx context.Context, key string) ([]model.Recipe, error)
	Save(ctx context.Context, key string, recipes []model.Recipe) error
}

// loadOrEmpty reads one collection, failing open: absent or corrupt data
// comes back as an empty collection, never as an error.
func loadOrEmpty(ctx context.Context, store CollectionStore, key string) []model.Recipe {
	recipes, err := store.Load(ctx, key)
	if err != nil {
		log.Printf("Failed to load %s, starting empty: %v", key, err)
		return nil
	}
	return recipes
}

// RedisCollectionStore persists collections as JSON values in Redis.
type RedisCollectionStore struct {
	client *redis.Client
}

// NewRedisCollectionStore creates a store on top of an existing client.
func NewRedisCollectionStore(client *redis.Client) *RedisCollectionStore {
	return &RedisCollectionStore{client: client}
}

// Load implements CollectionStore.
func (s *RedisCollectionStore) Load(ctx context.Context, key string) ([]model.Recipe, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s from Redis: %w", key, err)
	}

	var recipes []model.Recipe
	if err := json.Unmarshal(data, &recipes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return recipes, nil
}

// Save implements CollectionStore.
func (s *RedisCollectionStore) Save(ctx context.Context, key string, recipes []model.Recipe) error {
	data, err := json.Marshal(recipes)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save %s to Redis: %w", key, err)
	}
	return nil
}

// SQLiteCollectionStore persists collections as snapshot rows in an
// embedded sqlite database, for installs without a Redis instance.
type SQLiteCollectionStore struct {
	db *gorm.DB
}

// NewSQLiteCollectionStore creates a store on top of an open database.
func NewSQLiteCollectionStore(db *gorm.DB) *SQLiteCollectionStore {
	return &SQLiteCollectionStore{db: db}
}

// Load implements CollectionStore.
func (s *SQLiteCollectionStore) Load(ctx context.Context, key string) ([]model.Recipe, error) {
	var snapshot model.CollectionSnapshot
	err := s.db.WithContext(ctx).First(&snapshot, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", key, err)
	}

	var recipes []model.Recipe
	if err := json.Unmarshal(snapshot.Data, &recipes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot %s: %w", key, err)
	}
	return recipes, nil
}

// Save implements CollectionStore.
func (s *SQLiteCollectionStore) Save(ctx context.Context, key string, recipes []model.Recipe) error {
	data, err := json.Marshal(recipes)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	snapshot := model.CollectionSnapshot{Key: key, Data: data}
	if err := s.db.WithContext(ctx).Save(&snapshot).Error; err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", key, err)
	}
	return nil
}
