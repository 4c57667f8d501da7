// Package app реализует бизнес-логику офлайн-ядра: локальный репозиторий
// заметок, контроллер режима связности и процесс синхронизации.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"notesync/internal/offline/domain/entities"
	"notesync/internal/offline/ports/storage"
	"notesync/pkg/logger"
)

// Ключи офлайн-ядра в разделяемом хранилище устройства.
const (
	offlineNotesKey = "offline:notes"
	pendingSyncKey  = "offline:pending_sync"
)

// Константы для логирования.
const (
	LogRepoSave        = "offline repository: save note"
	LogRepoUpdate      = "offline repository: update note"
	LogRepoDelete      = "offline repository: delete note"
	LogRepoClear       = "offline repository: clear storage"
	LogRepoMarkSync    = "offline repository: mark for sync"
	LogRepoUnmarkSync  = "offline repository: remove from pending sync"
	LogRepoMissingNote = "offline repository: note not found, ignoring"

	ErrorReadNotesFailed    = "failed to read offline notes, returning empty list"
	ErrorReadPendingFailed  = "failed to read pending sync ids, returning empty list"
	ErrorDecodeNotesFailed  = "failed to decode offline notes, returning empty list"
	ErrorWriteNotesFailed   = "failed to persist offline notes"
	ErrorWritePendingFailed = "failed to persist pending sync ids"
)

// Ошибки репозитория.
var (
	// ErrDuplicateID возвращается при сохранении заметки с уже занятым идентификатором.
	ErrDuplicateID = errors.New("offline note id already exists")
)

// Repository реализует OfflineNoteRepository поверх key-value хранилища.
// Вся коллекция сериализуется в два JSON-массива; каждый цикл
// чтение-изменение-запись выполняется под мьютексом, так как хранилище
// не дает атомарности на уровне элемента списка.
type Repository struct {
	store storage.KeyValueStore
	mu    sync.Mutex
	now   func() time.Time
}

// NewRepository создает новый экземпляр Repository.
func NewRepository(store storage.KeyValueStore) *Repository {
	return &Repository{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// NewRepositoryWithClock создает Repository с внешними часами (для тестов).
func NewRepositoryWithClock(store storage.KeyValueStore, now func() time.Time) *Repository {
	return &Repository{store: store, now: now}
}

// SaveOfflineNote добавляет заметку в конец локальной коллекции.
// Ошибка записи возвращается вызывающему, чтобы UI мог сообщить,
// что заметка не сохранена.
func (r *Repository) SaveOfflineNote(ctx context.Context, note *entities.OfflineNote) error {
	log := logger.Log(ctx).With(zap.String("note_id", note.ID))
	log.Debug(ctx, LogRepoSave)

	r.mu.Lock()
	defer r.mu.Unlock()

	notes := r.loadNotes(ctx)
	for _, existing := range notes {
		if existing.ID == note.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateID, note.ID)
		}
	}

	notes = append(notes, note)
	return r.storeNotes(ctx, notes)
}

// GetOfflineNotes возвращает всю коллекцию в порядке добавления.
// Ошибка чтения деградирует до пустого списка: листинг никогда
// не блокирует UI.
func (r *Repository) GetOfflineNotes(ctx context.Context) []*entities.OfflineNote {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loadNotes(ctx)
}

// GetOfflineNote возвращает заметку по локальному идентификатору.
func (r *Repository) GetOfflineNote(ctx context.Context, id string) (*entities.OfflineNote, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, note := range r.loadNotes(ctx) {
		if note.ID == id {
			return note, true
		}
	}
	return nil, false
}

// UpdateOfflineNote накладывает патч на заметку с данным идентификатором
// и возвращает её в состояние pending. Неизвестный идентификатор - тихий no-op.
func (r *Repository) UpdateOfflineNote(ctx context.Context, id string, patch entities.NotePatch) error {
	log := logger.Log(ctx).With(zap.String("note_id", id))
	log.Debug(ctx, LogRepoUpdate)

	r.mu.Lock()
	defer r.mu.Unlock()

	notes := r.loadNotes(ctx)
	found := false
	for _, note := range notes {
		if note.ID == id {
			note.Apply(patch, r.now())
			found = true
			break
		}
	}
	if !found {
		log.Debug(ctx, LogRepoMissingNote)
		return nil
	}

	return r.storeNotes(ctx, notes)
}

// SetSyncStatus выставляет состояние синхронизации заметки.
// Неизвестный идентификатор - тихий no-op.
func (r *Repository) SetSyncStatus(ctx context.Context, id string, status entities.SyncStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	notes := r.loadNotes(ctx)
	found := false
	for _, note := range notes {
		if note.ID == id {
			note.SyncStatus = status
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	return r.storeNotes(ctx, notes)
}

// DeleteOfflineNote удаляет заметку и её запись в очереди синхронизации.
// Отсутствующий идентификатор - no-op (операция идемпотентна).
func (r *Repository) DeleteOfflineNote(ctx context.Context, id string) error {
	log := logger.Log(ctx).With(zap.String("note_id", id))
	log.Debug(ctx, LogRepoDelete)

	r.mu.Lock()
	defer r.mu.Unlock()

	notes := r.loadNotes(ctx)
	filtered := notes[:0]
	found := false
	for _, note := range notes {
		if note.ID == id {
			found = true
			continue
		}
		filtered = append(filtered, note)
	}

	if found {
		if err := r.storeNotes(ctx, filtered); err != nil {
			return err
		}
	}

	// Инвариант: идентификатор присутствует в очереди синхронизации
	// только пока заметка существует локально.
	return r.removePending(ctx, id)
}

// MarkForSync добавляет идентификатор в конец очереди синхронизации, без дублей.
func (r *Repository) MarkForSync(ctx context.Context, id string) error {
	log := logger.Log(ctx).With(zap.String("note_id", id))
	log.Debug(ctx, LogRepoMarkSync)

	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.loadPending(ctx)
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}

	ids = append(ids, id)
	return r.storePending(ctx, ids)
}

// GetPendingSyncNotes возвращает очередь синхронизации в порядке постановки.
func (r *Repository) GetPendingSyncNotes(ctx context.Context) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loadPending(ctx)
}

// RemoveFromPendingSync убирает идентификатор из очереди синхронизации.
func (r *Repository) RemoveFromPendingSync(ctx context.Context, id string) error {
	log := logger.Log(ctx).With(zap.String("note_id", id))
	log.Debug(ctx, LogRepoUnmarkSync)

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.removePending(ctx, id)
}

// ClearOfflineStorage удаляет коллекцию заметок и очередь синхронизации.
func (r *Repository) ClearOfflineStorage(ctx context.Context) error {
	log := logger.Log(ctx)
	log.Info(ctx, LogRepoClear)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.RemoveMany(ctx, offlineNotesKey, pendingSyncKey); err != nil {
		return fmt.Errorf("failed to clear offline storage: %w", err)
	}
	return nil
}

// loadNotes читает коллекцию заметок; вызывается под мьютексом.
func (r *Repository) loadNotes(ctx context.Context) []*entities.OfflineNote {
	log := logger.Log(ctx)

	raw, found, err := r.store.Get(ctx, offlineNotesKey)
	if err != nil {
		log.Warn(ctx, ErrorReadNotesFailed, zap.Error(err))
		return []*entities.OfflineNote{}
	}
	if !found {
		return []*entities.OfflineNote{}
	}

	var notes []*entities.OfflineNote
	if err := json.Unmarshal([]byte(raw), &notes); err != nil {
		log.Warn(ctx, ErrorDecodeNotesFailed, zap.Error(err))
		return []*entities.OfflineNote{}
	}
	return notes
}

// storeNotes записывает коллекцию заметок; вызывается под мьютексом.
func (r *Repository) storeNotes(ctx context.Context, notes []*entities.OfflineNote) error {
	raw, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrorWriteNotesFailed, err)
	}
	if err := r.store.Set(ctx, offlineNotesKey, string(raw)); err != nil {
		return fmt.Errorf("%s: %w", ErrorWriteNotesFailed, err)
	}
	return nil
}

// loadPending читает очередь синхронизации; вызывается под мьютексом.
func (r *Repository) loadPending(ctx context.Context) []string {
	log := logger.Log(ctx)

	raw, found, err := r.store.Get(ctx, pendingSyncKey)
	if err != nil {
		log.Warn(ctx, ErrorReadPendingFailed, zap.Error(err))
		return []string{}
	}
	if !found {
		return []string{}
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		log.Warn(ctx, ErrorReadPendingFailed, zap.Error(err))
		return []string{}
	}
	return ids
}

// storePending записывает очередь синхронизации; вызывается под мьютексом.
func (r *Repository) storePending(ctx context.Context, ids []string) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrorWritePendingFailed, err)
	}
	if err := r.store.Set(ctx, pendingSyncKey, string(raw)); err != nil {
		return fmt.Errorf("%s: %w", ErrorWritePendingFailed, err)
	}
	return nil
}

// removePending убирает идентификатор из очереди; вызывается под мьютексом.
func (r *Repository) removePending(ctx context.Context, id string) error {
	ids := r.loadPending(ctx)
	filtered := ids[:0]
	found := false
	for _, existing := range ids {
		if existing == id {
			found = true
			continue
		}
		filtered = append(filtered, existing)
	}
	if !found {
		return nil
	}
	return r.storePending(ctx, filtered)
}
