// Package storage определяет интерфейс долговременного key-value хранилища.
package storage

import "context"

// KeyValueStore определяет контракт долговременного хранилища устройства.
// Хранилище разделяется со всем приложением, поэтому потребители обязаны
// использовать собственные namespace-префиксы ключей.
type KeyValueStore interface {
	// Get возвращает значение по ключу; второй результат false, если ключ отсутствует.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set записывает значение по ключу.
	Set(ctx context.Context, key string, value string) error

	// Remove удаляет значение по ключу.
	Remove(ctx context.Context, key string) error

	// RemoveMany удаляет несколько ключей за одну операцию.
	RemoveMany(ctx context.Context, keys ...string) error

	Close() error
}
