package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"notesync/internal/offline/domain/entities"
	"notesync/internal/offline/ports/repositories"
	"notesync/internal/offline/ports/services"
	"notesync/internal/offline/resilience"
	"notesync/pkg/logger"
)

// Константы для логирования.
const (
	LogSyncPassStarted  = "reconciliation pass started"
	LogSyncPassFinished = "reconciliation pass finished"
	LogSyncPushNote     = "pushing offline note"
	LogSyncNoteRetired  = "offline note synced and retired"
	LogSyncNoteFailed   = "offline note push failed, marked error"
	LogSyncOrphanedID   = "pending id without local note, removing from index"
	LogSyncPassAborted  = "reconciliation pass aborted, remaining notes stay pending"
)

// Ошибки процесса синхронизации.
var (
	// ErrPassInFlight возвращается при попытке запустить проход, пока предыдущий не завершён.
	ErrPassInFlight = errors.New("reconciliation pass already in flight")
)

// Summary содержит итог одного прохода синхронизации.
type Summary struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Reconciler выполняет проход синхронизации: выталкивает заметки из очереди
// в удалённый API в порядке постановки (FIFO) и обновляет локальное
// состояние по результату. Ошибка одной заметки не прерывает проход.
type Reconciler struct {
	repo        repositories.OfflineNoteRepository
	api         services.RemoteNotesAPI
	retry       *resilience.Retry
	pushTimeout time.Duration

	mu       sync.Mutex
	inFlight bool
}

// ReconcilerOptions содержит настройки процесса синхронизации.
type ReconcilerOptions struct {
	// PushTimeout ограничивает одну попытку отправки заметки.
	PushTimeout time.Duration
	// MaxAttempts - количество попыток отправки одной заметки за проход.
	MaxAttempts int
}

// NewReconciler создает новый экземпляр Reconciler.
func NewReconciler(repo repositories.OfflineNoteRepository, api services.RemoteNotesAPI, opts ReconcilerOptions) *Reconciler {
	if opts.PushTimeout <= 0 {
		opts.PushTimeout = 10 * time.Second
	}

	retryCfg := resilience.DefaultRetryConfig()
	if opts.MaxAttempts > 0 {
		retryCfg.MaxAttempts = opts.MaxAttempts
	}

	return &Reconciler{
		repo:        repo,
		api:         api,
		retry:       resilience.NewRetry("note-push", retryCfg),
		pushTimeout: opts.PushTimeout,
	}
}

// Run выполняет один проход синхронизации. Одновременно выполняется не более
// одного прохода; повторный запуск возвращает ErrPassInFlight.
//
// Отмена контекста посреди прохода оставляет необработанные заметки в
// состоянии pending: разрыв связи не является ошибкой заметки.
func (r *Reconciler) Run(ctx context.Context) (Summary, error) {
	r.mu.Lock()
	if r.inFlight {
		r.mu.Unlock()
		return Summary{}, ErrPassInFlight
	}
	r.inFlight = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.inFlight = false
		r.mu.Unlock()
	}()

	log := logger.Log(ctx)

	pending := r.repo.GetPendingSyncNotes(ctx)
	log.Info(ctx, LogSyncPassStarted, zap.Int("pending", len(pending)))

	var summary Summary
	for _, id := range pending {
		if err := ctx.Err(); err != nil {
			log.Info(ctx, LogSyncPassAborted,
				zap.Int("remaining", len(pending)-summary.Succeeded-summary.Failed-summary.Skipped))
			return summary, fmt.Errorf("reconciliation pass aborted: %w", err)
		}

		note, found := r.repo.GetOfflineNote(ctx, id)
		if !found {
			// Восстановление инварианта: очередь содержит только
			// существующие локальные заметки.
			log.Warn(ctx, LogSyncOrphanedID, zap.String("note_id", id))
			if err := r.repo.RemoveFromPendingSync(ctx, id); err != nil {
				log.Error(ctx, "failed to repair pending index", zap.Error(err))
			}
			summary.Skipped++
			continue
		}

		if err := r.pushNote(ctx, note); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, resilience.ErrContextCanceled) {
				log.Info(ctx, LogSyncPassAborted, zap.String("note_id", id))
				return summary, fmt.Errorf("reconciliation pass aborted: %w", err)
			}

			log.Warn(ctx, LogSyncNoteFailed, zap.String("note_id", id), zap.Error(err))
			if err := r.repo.SetSyncStatus(ctx, id, entities.SyncError); err != nil {
				log.Error(ctx, "failed to mark note as error", zap.String("note_id", id), zap.Error(err))
			}
			summary.Failed++
			continue
		}

		// Успешно отправленная заметка полностью изымается из локального
		// хранилища: её каноническая копия теперь на сервере.
		if err := r.repo.DeleteOfflineNote(ctx, id); err != nil {
			log.Error(ctx, "failed to retire synced note", zap.String("note_id", id), zap.Error(err))
			summary.Failed++
			continue
		}

		log.Info(ctx, LogSyncNoteRetired, zap.String("note_id", id))
		summary.Succeeded++
	}

	log.Info(ctx, LogSyncPassFinished,
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped))

	return summary, nil
}

// pushNote отправляет одну заметку: create для новой, update для теневой
// копии серверной заметки. Каждая попытка ограничена pushTimeout.
func (r *Reconciler) pushNote(ctx context.Context, note *entities.OfflineNote) error {
	log := logger.Log(ctx).With(zap.String("note_id", note.ID))
	log.Debug(ctx, LogSyncPushNote, zap.Bool("is_shadow", note.ServerID != nil))

	fields := services.NoteFields{
		Title:    note.Title,
		Content:  note.Content,
		Status:   note.Status,
		IsPublic: note.IsPublic,
	}

	return r.retry.Execute(ctx, func() error {
		pushCtx, cancel := context.WithTimeout(ctx, r.pushTimeout)
		defer cancel()

		var err error
		if note.ServerID != nil {
			_, err = r.api.UpdateNote(pushCtx, *note.ServerID, fields)
		} else {
			_, err = r.api.CreateNote(pushCtx, fields)
		}
		return err
	})
}
