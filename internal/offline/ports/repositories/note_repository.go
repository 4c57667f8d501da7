// Package repositories определяет интерфейсы репозиториев офлайн-ядра.
package repositories

import (
	"context"

	"notesync/internal/offline/domain/entities"
)

// OfflineNoteRepository определяет контракт локального хранилища заметок,
// созданных или отредактированных офлайн.
type OfflineNoteRepository interface {
	// SaveOfflineNote добавляет заметку в локальную коллекцию.
	// Идентификатор заметки должен быть уникален.
	SaveOfflineNote(ctx context.Context, note *entities.OfflineNote) error

	// GetOfflineNotes возвращает всю коллекцию в порядке добавления.
	// При ошибке чтения или отсутствии данных возвращает пустой список.
	GetOfflineNotes(ctx context.Context) []*entities.OfflineNote

	// GetOfflineNote возвращает заметку по локальному идентификатору.
	GetOfflineNote(ctx context.Context, id string) (*entities.OfflineNote, bool)

	// UpdateOfflineNote накладывает патч на заметку с данным идентификатором.
	// Неизвестный идентификатор - тихий no-op.
	UpdateOfflineNote(ctx context.Context, id string, patch entities.NotePatch) error

	// SetSyncStatus выставляет состояние синхронизации заметки.
	SetSyncStatus(ctx context.Context, id string, status entities.SyncStatus) error

	// DeleteOfflineNote удаляет заметку; отсутствующий идентификатор - no-op.
	DeleteOfflineNote(ctx context.Context, id string) error

	// MarkForSync добавляет идентификатор в очередь синхронизации (FIFO, без дублей).
	MarkForSync(ctx context.Context, id string) error

	// GetPendingSyncNotes возвращает идентификаторы, ожидающие отправки, в порядке постановки.
	GetPendingSyncNotes(ctx context.Context) []string

	// RemoveFromPendingSync убирает идентификатор из очереди синхронизации.
	RemoveFromPendingSync(ctx context.Context, id string) error

	// ClearOfflineStorage удаляет коллекцию заметок и очередь синхронизации.
	ClearOfflineStorage(ctx context.Context) error
}
