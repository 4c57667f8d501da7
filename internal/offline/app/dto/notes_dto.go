// Package dto содержит структуры запросов и ответов управляющего HTTP API.
package dto

import (
	"time"

	"notesync/internal/offline/domain/entities"
)

// CreateNoteRequest содержит данные для создания заметки.
type CreateNoteRequest struct {
	Title    string              `json:"title" validate:"required"`
	Content  string              `json:"content" validate:"required"`
	Status   entities.NoteStatus `json:"status"`
	IsPublic bool                `json:"isPublic"`
}

// UpdateNoteRequest содержит данные для частичного обновления заметки.
type UpdateNoteRequest struct {
	Title    *string              `json:"title"`
	Content  *string              `json:"content"`
	Status   *entities.NoteStatus `json:"status"`
	IsPublic *bool                `json:"isPublic"`
}

// Patch преобразует запрос в доменный патч.
func (r *UpdateNoteRequest) Patch() entities.NotePatch {
	return entities.NotePatch{
		Title:    r.Title,
		Content:  r.Content,
		Status:   r.Status,
		IsPublic: r.IsPublic,
	}
}

// NoteView представляет заметку в смешанном списке: серверную или локальную.
// У локальных заметок IsOffline = true и заполнен SyncStatus.
type NoteView struct {
	ID         string              `json:"id"`
	ServerID   *int64              `json:"serverId,omitempty"`
	Title      string              `json:"title"`
	Content    string              `json:"content"`
	Status     entities.NoteStatus `json:"status"`
	IsPublic   bool                `json:"isPublic"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
	IsOffline  bool                `json:"isOffline"`
	SyncStatus entities.SyncStatus `json:"syncStatus,omitempty"`
}

// StatusResponse содержит текущее состояние режима связности.
type StatusResponse struct {
	IsConnected   bool `json:"isConnected"`
	IsOfflineMode bool `json:"isOfflineMode"`
}

// SyncResponse содержит итог прохода синхронизации.
type SyncResponse struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}
