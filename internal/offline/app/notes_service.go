package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"notesync/internal/offline/app/dto"
	"notesync/internal/offline/domain/entities"
	"notesync/internal/offline/ports/repositories"
	"notesync/internal/offline/ports/services"
	"notesync/pkg/logger"
)

// Константы для логирования.
const (
	LogServiceListNotes  = "notes service: list notes"
	LogServiceCreateNote = "notes service: create note"
	LogServiceUpdateNote = "notes service: update note"
	LogServiceDeleteNote = "notes service: delete note"

	ErrorRemoteListFailed = "failed to list remote notes"
)

// Ошибки уровня бизнес-логики.
var (
	// ErrOfflineOnly возвращается для операций, недоступных без сети.
	ErrOfflineOnly = errors.New("operation requires connectivity")
	// ErrNoteNotFound возвращается, когда заметка не найдена ни локально, ни на сервере.
	ErrNoteNotFound = errors.New("note not found")
)

// NotesService маршрутизирует операции с заметками между удалённым API и
// локальным репозиторием в зависимости от режима связности.
type NotesService struct {
	mode *ModeController
	repo repositories.OfflineNoteRepository
	api  services.RemoteNotesAPI
}

// NewNotesService создает новый экземпляр сервиса заметок.
func NewNotesService(mode *ModeController, repo repositories.OfflineNoteRepository, api services.RemoteNotesAPI) *NotesService {
	return &NotesService{
		mode: mode,
		repo: repo,
		api:  api,
	}
}

// ListNotes возвращает список заметок. Онлайн: серверный список, дополненный
// локальными несинхронизированными заметками, чтобы офлайн-работа оставалась
// видимой. Офлайн: только локальная коллекция.
func (s *NotesService) ListNotes(ctx context.Context) ([]dto.NoteView, error) {
	log := logger.Log(ctx)
	log.Debug(ctx, LogServiceListNotes, zap.Bool("offline_mode", s.mode.IsOfflineMode()))

	views := make([]dto.NoteView, 0)

	if !s.mode.IsOfflineMode() {
		remote, err := s.api.GetNotes(ctx)
		if err != nil {
			log.Error(ctx, ErrorRemoteListFailed, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", ErrorRemoteListFailed, err)
		}
		for _, note := range remote {
			views = append(views, remoteView(note))
		}
	}

	for _, note := range s.repo.GetOfflineNotes(ctx) {
		views = append(views, offlineView(note))
	}

	return views, nil
}

// GetPublicNotes возвращает публичные заметки. Доступно только онлайн.
func (s *NotesService) GetPublicNotes(ctx context.Context) ([]dto.NoteView, error) {
	if s.mode.IsOfflineMode() {
		return nil, ErrOfflineOnly
	}

	remote, err := s.api.GetPublicNotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list public notes: %w", err)
	}

	views := make([]dto.NoteView, 0, len(remote))
	for _, note := range remote {
		views = append(views, remoteView(note))
	}
	return views, nil
}

// SearchNotes ищет заметки на сервере. Доступно только онлайн.
func (s *NotesService) SearchNotes(ctx context.Context, query string) ([]dto.NoteView, error) {
	if s.mode.IsOfflineMode() {
		return nil, ErrOfflineOnly
	}

	remote, err := s.api.SearchNotes(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}

	views := make([]dto.NoteView, 0, len(remote))
	for _, note := range remote {
		views = append(views, remoteView(note))
	}
	return views, nil
}

// CreateNote создает заметку. Онлайн: сразу на сервере. Офлайн: локально,
// с постановкой в очередь синхронизации.
func (s *NotesService) CreateNote(ctx context.Context, req dto.CreateNoteRequest) (dto.NoteView, error) {
	log := logger.Log(ctx)
	log.Debug(ctx, LogServiceCreateNote, zap.Bool("offline_mode", s.mode.IsOfflineMode()))

	status := req.Status
	if status == "" {
		status = entities.StatusDraft
	}

	if !s.mode.IsOfflineMode() {
		remote, err := s.api.CreateNote(ctx, services.NoteFields{
			Title:    req.Title,
			Content:  req.Content,
			Status:   status,
			IsPublic: req.IsPublic,
		})
		if err != nil {
			return dto.NoteView{}, fmt.Errorf("failed to create note: %w", err)
		}
		return remoteView(remote), nil
	}

	note := entities.NewOfflineNote(req.Title, req.Content, status, req.IsPublic)
	if err := s.saveAndMark(ctx, note); err != nil {
		return dto.NoteView{}, err
	}
	return offlineView(note), nil
}

// UpdateNote обновляет заметку. Идентификатор может быть серверным числовым
// или локальным uuid. Офлайн-правка серверной заметки создает теневую копию,
// несущую серверный ID для последующего update при синхронизации.
func (s *NotesService) UpdateNote(ctx context.Context, id string, req dto.UpdateNoteRequest) (dto.NoteView, error) {
	log := logger.Log(ctx).With(zap.String("note_id", id))
	log.Debug(ctx, LogServiceUpdateNote, zap.Bool("offline_mode", s.mode.IsOfflineMode()))

	serverID, isServerID := parseServerID(id)

	if !s.mode.IsOfflineMode() && isServerID {
		remote, err := s.api.UpdateNote(ctx, serverID, fieldsFromPatch(req))
		if err != nil {
			return dto.NoteView{}, fmt.Errorf("failed to update note: %w", err)
		}
		return remoteView(remote), nil
	}

	if isServerID {
		return s.updateServerNoteOffline(ctx, serverID, req)
	}

	// Локальная заметка: патч применяется на месте, заметка остается
	// (или становится) pending.
	if _, found := s.repo.GetOfflineNote(ctx, id); !found {
		return dto.NoteView{}, fmt.Errorf("%w: %s", ErrNoteNotFound, id)
	}
	if err := s.repo.UpdateOfflineNote(ctx, id, req.Patch()); err != nil {
		return dto.NoteView{}, err
	}
	if err := s.repo.MarkForSync(ctx, id); err != nil {
		return dto.NoteView{}, err
	}

	note, _ := s.repo.GetOfflineNote(ctx, id)
	return offlineView(note), nil
}

// DeleteNote удаляет заметку по серверному или локальному идентификатору.
func (s *NotesService) DeleteNote(ctx context.Context, id string) error {
	log := logger.Log(ctx).With(zap.String("note_id", id))
	log.Debug(ctx, LogServiceDeleteNote, zap.Bool("offline_mode", s.mode.IsOfflineMode()))

	if serverID, ok := parseServerID(id); ok {
		if s.mode.IsOfflineMode() {
			return ErrOfflineOnly
		}
		if err := s.api.DeleteNote(ctx, serverID); err != nil {
			return fmt.Errorf("failed to delete note: %w", err)
		}
		return nil
	}

	return s.repo.DeleteOfflineNote(ctx, id)
}

// updateServerNoteOffline создает или обновляет теневую копию серверной
// заметки, отредактированной без сети.
func (s *NotesService) updateServerNoteOffline(ctx context.Context, serverID int64, req dto.UpdateNoteRequest) (dto.NoteView, error) {
	for _, note := range s.repo.GetOfflineNotes(ctx) {
		if note.ServerID != nil && *note.ServerID == serverID {
			if err := s.repo.UpdateOfflineNote(ctx, note.ID, req.Patch()); err != nil {
				return dto.NoteView{}, err
			}
			if err := s.repo.MarkForSync(ctx, note.ID); err != nil {
				return dto.NoteView{}, err
			}
			updated, _ := s.repo.GetOfflineNote(ctx, note.ID)
			return offlineView(updated), nil
		}
	}

	shadow := entities.NewShadowCopy(serverID, deref(req.Title), deref(req.Content), derefStatus(req.Status), derefBool(req.IsPublic))
	if err := s.saveAndMark(ctx, shadow); err != nil {
		return dto.NoteView{}, err
	}
	return offlineView(shadow), nil
}

func (s *NotesService) saveAndMark(ctx context.Context, note *entities.OfflineNote) error {
	if err := s.repo.SaveOfflineNote(ctx, note); err != nil {
		return err
	}
	if err := s.repo.MarkForSync(ctx, note.ID); err != nil {
		return err
	}
	return nil
}

func parseServerID(id string) (int64, bool) {
	serverID, err := strconv.ParseInt(id, 10, 64)
	return serverID, err == nil
}

func fieldsFromPatch(req dto.UpdateNoteRequest) services.NoteFields {
	return services.NoteFields{
		Title:    deref(req.Title),
		Content:  deref(req.Content),
		Status:   derefStatus(req.Status),
		IsPublic: derefBool(req.IsPublic),
	}
}

func deref(s *string) string {
	if s != nil {
		return *s
	}
	return ""
}

func derefStatus(s *entities.NoteStatus) entities.NoteStatus {
	if s != nil {
		return *s
	}
	return entities.StatusDraft
}

func derefBool(b *bool) bool {
	if b != nil {
		return *b
	}
	return false
}

func remoteView(note *entities.RemoteNote) dto.NoteView {
	id := note.ID
	return dto.NoteView{
		ID:        strconv.FormatInt(note.ID, 10),
		ServerID:  &id,
		Title:     note.Title,
		Content:   note.Content,
		Status:    note.Status,
		IsPublic:  note.IsPublic,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

func offlineView(note *entities.OfflineNote) dto.NoteView {
	return dto.NoteView{
		ID:         note.ID,
		ServerID:   note.ServerID,
		Title:      note.Title,
		Content:    note.Content,
		Status:     note.Status,
		IsPublic:   note.IsPublic,
		CreatedAt:  note.CreatedAt,
		UpdatedAt:  note.UpdatedAt,
		IsOffline:  note.IsOffline,
		SyncStatus: note.SyncStatus,
	}
}
