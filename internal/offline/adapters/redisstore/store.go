// Package redisstore содержит реализацию долговременного key-value хранилища
// на базе Redis. Хранилище разделяется со всем приложением (токены, профиль),
// поэтому офлайн-ядро пишет только под собственными ключами.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"notesync/internal/offline/config"
	"notesync/internal/offline/ports/storage"
	"notesync/pkg/logger"
)

// Константы для логирования.
const (
	LogMethodGet        = "get"
	LogMethodSet        = "set"
	LogMethodRemove     = "remove"
	LogMethodRemoveMany = "remove_many"

	ErrorFailedToGet    = "failed to get value from store"
	ErrorFailedToSet    = "failed to set value in store"
	ErrorFailedToRemove = "failed to remove value from store"
	ErrorFailedToClose  = "failed to close store connection"
)

// Store реализует интерфейс KeyValueStore с использованием Redis.
// Значения не имеют TTL: офлайн-заметки живут до успешной синхронизации.
type Store struct {
	client *redis.Client
}

// NewStore создает новый экземпляр Store.
func NewStore(ctx context.Context, cfg *config.StorageConfig) (storage.KeyValueStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            cfg.GetAddressString(),
		Password:        cfg.Password,
		DB:              cfg.DB,
		DialTimeout:     cfg.ConnectTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdle,
		ConnMaxIdleTime: cfg.IdleTimeout,
		ConnMaxLifetime: cfg.MaxConnLifetime,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}

	return &Store{client: client}, nil
}

// Get получает значение по ключу; второй результат false при отсутствии ключа.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	log := logger.Log(ctx).With(zap.String("method", LogMethodGet), zap.String("key", key))

	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		log.Error(ctx, ErrorFailedToGet, zap.Error(err))
		return "", false, fmt.Errorf("%s: %w", ErrorFailedToGet, err)
	}

	return value, true, nil
}

// Set устанавливает значение для ключа без времени жизни.
func (s *Store) Set(ctx context.Context, key string, value string) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodSet), zap.String("key", key))

	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		log.Error(ctx, ErrorFailedToSet, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToSet, err)
	}

	return nil
}

// Remove удаляет значение по ключу.
func (s *Store) Remove(ctx context.Context, key string) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodRemove), zap.String("key", key))

	if err := s.client.Del(ctx, key).Err(); err != nil {
		log.Error(ctx, ErrorFailedToRemove, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToRemove, err)
	}

	return nil
}

// RemoveMany удаляет несколько ключей за одну операцию.
func (s *Store) RemoveMany(ctx context.Context, keys ...string) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodRemoveMany), zap.Strings("keys", keys))

	if len(keys) == 0 {
		return nil
	}

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		log.Error(ctx, ErrorFailedToRemove, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToRemove, err)
	}

	return nil
}

// Close закрывает соединение с хранилищем.
func (s *Store) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToClose, err)
	}
	return nil
}
