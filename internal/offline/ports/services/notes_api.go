// Package services определяет интерфейсы внешних сервисов офлайн-ядра.
package services

import (
	"context"

	"notesync/internal/offline/domain/entities"
)

// NoteFields содержит поля заметки для создания или обновления на сервере.
type NoteFields struct {
	Title    string              `json:"title"`
	Content  string              `json:"content"`
	Status   entities.NoteStatus `json:"status"`
	IsPublic bool                `json:"isPublic"`
}

// RemoteNotesAPI определяет интерфейс удалённого API заметок.
type RemoteNotesAPI interface {
	// CreateNote создает заметку; сервер назначает канонический числовой ID.
	CreateNote(ctx context.Context, fields NoteFields) (*entities.RemoteNote, error)

	// GetNote получает заметку по серверному ID.
	GetNote(ctx context.Context, serverID int64) (*entities.RemoteNote, error)

	// GetNotes получает список заметок пользователя.
	GetNotes(ctx context.Context) ([]*entities.RemoteNote, error)

	// GetPublicNotes получает список публичных заметок.
	GetPublicNotes(ctx context.Context) ([]*entities.RemoteNote, error)

	// SearchNotes ищет заметки по строке запроса.
	SearchNotes(ctx context.Context, query string) ([]*entities.RemoteNote, error)

	// UpdateNote обновляет существующую заметку.
	UpdateNote(ctx context.Context, serverID int64, fields NoteFields) (*entities.RemoteNote, error)

	// DeleteNote удаляет заметку.
	DeleteNote(ctx context.Context, serverID int64) error

	// Ping проверяет доступность API.
	Ping(ctx context.Context) error
}
