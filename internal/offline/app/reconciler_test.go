package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesync/internal/offline/app"
	"notesync/internal/offline/domain/entities"
	"notesync/internal/offline/ports/services"
)

var errServerRejected = errors.New("server rejected note")

// seedPendingNote сохраняет заметку и ставит её в очередь синхронизации.
func seedPendingNote(t *testing.T, repo *app.Repository, note *entities.OfflineNote) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.SaveOfflineNote(ctx, note))
	require.NoError(t, repo.MarkForSync(ctx, note.ID))
}

func TestReconciler_PartialFailure(t *testing.T) {
	ctx := context.Background()
	repo := app.NewRepository(newMemStore())

	a := entities.NewOfflineNote("a", "content", entities.StatusDraft, false)
	b := entities.NewOfflineNote("b", "content", entities.StatusDraft, false)
	seedPendingNote(t, repo, a)
	seedPendingNote(t, repo, b)

	api := &fakeNotesAPI{
		createFn: func(_ context.Context, fields services.NoteFields) (*entities.RemoteNote, error) {
			if fields.Title == "b" {
				return nil, errServerRejected
			}
			return &entities.RemoteNote{ID: 100, Title: fields.Title}, nil
		},
	}

	reconciler := app.NewReconciler(repo, api, app.ReconcilerOptions{MaxAttempts: 1})

	summary, err := reconciler.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, app.Summary{Succeeded: 1, Failed: 1}, summary)

	// Успешно отправленная заметка изъята целиком, неудачная осталась
	// в очереди с состоянием error.
	notes := repo.GetOfflineNotes(ctx)
	require.Len(t, notes, 1)
	assert.Equal(t, b.ID, notes[0].ID)
	assert.Equal(t, entities.SyncError, notes[0].SyncStatus)
	assert.Equal(t, []string{b.ID}, repo.GetPendingSyncNotes(ctx))
}

func TestReconciler_ShadowCopyPushesUpdate(t *testing.T) {
	ctx := context.Background()
	repo := app.NewRepository(newMemStore())

	shadow := entities.NewShadowCopy(42, "edited offline", "content", entities.StatusDraft, false)
	seedPendingNote(t, repo, shadow)

	var updatedID int64
	api := &fakeNotesAPI{
		updateFn: func(_ context.Context, serverID int64, fields services.NoteFields) (*entities.RemoteNote, error) {
			updatedID = serverID
			return &entities.RemoteNote{ID: serverID, Title: fields.Title}, nil
		},
	}

	reconciler := app.NewReconciler(repo, api, app.ReconcilerOptions{MaxAttempts: 1})

	summary, err := reconciler.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, app.Summary{Succeeded: 1}, summary)

	// Теневая копия уходит как update существующей серверной заметки.
	assert.Equal(t, int64(42), updatedID)
	assert.Empty(t, repo.GetOfflineNotes(ctx))
	assert.Empty(t, repo.GetPendingSyncNotes(ctx))
}

func TestReconciler_SecondRunIsNoop(t *testing.T) {
	ctx := context.Background()
	repo := app.NewRepository(newMemStore())
	seedPendingNote(t, repo, entities.NewOfflineNote("a", "content", entities.StatusDraft, false))

	api := &fakeNotesAPI{
		createFn: func(_ context.Context, fields services.NoteFields) (*entities.RemoteNote, error) {
			return &entities.RemoteNote{ID: 1, Title: fields.Title}, nil
		},
	}

	reconciler := app.NewReconciler(repo, api, app.ReconcilerOptions{MaxAttempts: 1})

	summary, err := reconciler.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, app.Summary{Succeeded: 1}, summary)

	summary, err = reconciler.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, app.Summary{}, summary)
}

func TestReconciler_OrphanedPendingID(t *testing.T) {
	ctx := context.Background()
	repo := app.NewRepository(newMemStore())

	// Запись в очереди без локальной заметки: нарушенный инвариант
	// восстанавливается на проходе.
	require.NoError(t, repo.MarkForSync(ctx, "orphan"))

	reconciler := app.NewReconciler(repo, &fakeNotesAPI{}, app.ReconcilerOptions{MaxAttempts: 1})

	summary, err := reconciler.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, app.Summary{Skipped: 1}, summary)
	assert.Empty(t, repo.GetPendingSyncNotes(ctx))
}

func TestReconciler_RetriesTransientFailure(t *testing.T) {
	ctx := context.Background()
	repo := app.NewRepository(newMemStore())
	seedPendingNote(t, repo, entities.NewOfflineNote("a", "content", entities.StatusDraft, false))

	attempts := 0
	api := &fakeNotesAPI{
		createFn: func(_ context.Context, fields services.NoteFields) (*entities.RemoteNote, error) {
			attempts++
			if attempts < 2 {
				return nil, errServerRejected
			}
			return &entities.RemoteNote{ID: 1, Title: fields.Title}, nil
		},
	}

	reconciler := app.NewReconciler(repo, api, app.ReconcilerOptions{MaxAttempts: 3})

	summary, err := reconciler.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, app.Summary{Succeeded: 1}, summary)
	assert.Equal(t, 2, attempts)
}

func TestReconciler_CanceledContextLeavesNotesPending(t *testing.T) {
	repo := app.NewRepository(newMemStore())

	a := entities.NewOfflineNote("a", "content", entities.StatusDraft, false)
	b := entities.NewOfflineNote("b", "content", entities.StatusDraft, false)
	seedPendingNote(t, repo, a)
	seedPendingNote(t, repo, b)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reconciler := app.NewReconciler(repo, &fakeNotesAPI{}, app.ReconcilerOptions{MaxAttempts: 1})

	summary, err := reconciler.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, app.Summary{}, summary)

	// Разрыв связи не является ошибкой заметки: обе остаются pending.
	assert.Equal(t, []string{a.ID, b.ID}, repo.GetPendingSyncNotes(context.Background()))
	for _, note := range repo.GetOfflineNotes(context.Background()) {
		assert.Equal(t, entities.SyncPending, note.SyncStatus)
	}
}

func TestReconciler_CancellationMidPassAborts(t *testing.T) {
	repo := app.NewRepository(newMemStore())

	a := entities.NewOfflineNote("a", "content", entities.StatusDraft, false)
	b := entities.NewOfflineNote("b", "content", entities.StatusDraft, false)
	seedPendingNote(t, repo, a)
	seedPendingNote(t, repo, b)

	ctx, cancel := context.WithCancel(context.Background())

	api := &fakeNotesAPI{
		createFn: func(_ context.Context, _ services.NoteFields) (*entities.RemoteNote, error) {
			// Связь обрывается во время отправки первой заметки.
			cancel()
			return nil, context.Canceled
		},
	}

	reconciler := app.NewReconciler(repo, api, app.ReconcilerOptions{MaxAttempts: 3})

	summary, err := reconciler.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, app.Summary{}, summary)

	// Проход прерван, заметки не помечены ошибочными.
	assert.Equal(t, []string{a.ID, b.ID}, repo.GetPendingSyncNotes(context.Background()))
	for _, note := range repo.GetOfflineNotes(context.Background()) {
		assert.Equal(t, entities.SyncPending, note.SyncStatus)
	}
}

func TestReconciler_SingleFlight(t *testing.T) {
	repo := app.NewRepository(newMemStore())
	seedPendingNote(t, repo, entities.NewOfflineNote("a", "content", entities.StatusDraft, false))

	entered := make(chan struct{})
	release := make(chan struct{})
	api := &fakeNotesAPI{
		createFn: func(_ context.Context, fields services.NoteFields) (*entities.RemoteNote, error) {
			close(entered)
			<-release
			return &entities.RemoteNote{ID: 1, Title: fields.Title}, nil
		},
	}

	reconciler := app.NewReconciler(repo, api, app.ReconcilerOptions{MaxAttempts: 1, PushTimeout: time.Minute})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := reconciler.Run(context.Background())
		assert.NoError(t, err)
	}()

	<-entered
	_, err := reconciler.Run(context.Background())
	require.ErrorIs(t, err, app.ErrPassInFlight)

	close(release)
	wg.Wait()

	// После завершения прохода запуск снова разрешён.
	_, err = reconciler.Run(context.Background())
	assert.NoError(t, err)
}
