// Package entities defines the domain entities for the offline notes core.
package entities

import (
	"time"

	"github.com/google/uuid"
)

// NoteStatus представляет редакционный статус заметки.
type NoteStatus string

// Статусы заметки.
const (
	StatusDraft     NoteStatus = "DRAFT"
	StatusPublished NoteStatus = "PUBLISHED"
	StatusArchived  NoteStatus = "ARCHIVED"
)

// SyncStatus представляет состояние синхронизации локальной заметки.
// Терминального состояния "synced" нет: успешно отправленная заметка
// удаляется из локального хранилища целиком.
type SyncStatus string

// Состояния синхронизации.
const (
	SyncPending SyncStatus = "pending"
	SyncError   SyncStatus = "error"
)

// OfflineNote представляет собой заметку, созданную или отредактированную офлайн.
// ServerID заполнен только у теневой копии заметки, уже существующей на сервере.
type OfflineNote struct {
	ID         string     `json:"id"`
	ServerID   *int64     `json:"serverId,omitempty"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Status     NoteStatus `json:"status"`
	IsPublic   bool       `json:"isPublic"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	IsOffline  bool       `json:"isOffline"`
	SyncStatus SyncStatus `json:"syncStatus"`
}

// NewOfflineNote creates a locally-originated note with a fresh local id.
func NewOfflineNote(title, content string, status NoteStatus, isPublic bool) *OfflineNote {
	now := time.Now().UTC()
	return &OfflineNote{
		ID:         uuid.New().String(),
		Title:      title,
		Content:    content,
		Status:     status,
		IsPublic:   isPublic,
		CreatedAt:  now,
		UpdatedAt:  now,
		IsOffline:  true,
		SyncStatus: SyncPending,
	}
}

// NewShadowCopy creates the local shadow of a server-side note edited offline.
func NewShadowCopy(serverID int64, title, content string, status NoteStatus, isPublic bool) *OfflineNote {
	note := NewOfflineNote(title, content, status, isPublic)
	note.ServerID = &serverID
	return note
}

// NotePatch содержит изменяемые поля заметки для частичного обновления.
type NotePatch struct {
	Title    *string     `json:"title"`
	Content  *string     `json:"content"`
	Status   *NoteStatus `json:"status"`
	IsPublic *bool       `json:"isPublic"`
}

// Apply накладывает заполненные поля патча на заметку, обновляет UpdatedAt
// и возвращает заметку в состояние pending.
func (n *OfflineNote) Apply(patch NotePatch, now time.Time) {
	if patch.Title != nil {
		n.Title = *patch.Title
	}
	if patch.Content != nil {
		n.Content = *patch.Content
	}
	if patch.Status != nil {
		n.Status = *patch.Status
	}
	if patch.IsPublic != nil {
		n.IsPublic = *patch.IsPublic
	}
	if now.After(n.UpdatedAt) {
		n.UpdatedAt = now
	}
	n.SyncStatus = SyncPending
}

// RemoteNote представляет заметку в том виде, в котором её отдаёт удалённый API.
type RemoteNote struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Status    NoteStatus `json:"status"`
	IsPublic  bool       `json:"isPublic"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
