// Package httpapi содержит клиент удалённого REST API заметок.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"notesync/internal/offline/config"
	"notesync/internal/offline/domain/entities"
	"notesync/internal/offline/ports/services"
	"notesync/pkg/logger"
)

// Константы для логирования.
const (
	LogAPICreateNote     = "notes api: create note"
	LogAPIGetNote        = "notes api: get note"
	LogAPIGetNotes       = "notes api: list notes"
	LogAPIGetPublicNotes = "notes api: list public notes"
	LogAPISearchNotes    = "notes api: search notes"
	LogAPIUpdateNote     = "notes api: update note"
	LogAPIDeleteNote     = "notes api: delete note"

	ErrorRequestFailed = "notes api request failed"
)

// Ошибки клиента удалённого API.
var (
	// ErrNoteNotFound возвращается, когда сервер не знает заметку с таким ID.
	ErrNoteNotFound = errors.New("note not found on server")
	// ErrAPIUnavailable возвращается при транспортной ошибке или ответе 5xx.
	ErrAPIUnavailable = errors.New("notes api unavailable")
	// ErrUnexpectedStatus возвращается на прочие неуспешные статусы.
	ErrUnexpectedStatus = errors.New("notes api returned unexpected status")
)

// TokenSource возвращает bearer-токен для запроса. Жизненный цикл токена
// вне зоны ответственности офлайн-ядра. Пустая строка - запрос без токена.
type TokenSource func(ctx context.Context) string

// Client реализует RemoteNotesAPI поверх HTTP/JSON.
type Client struct {
	baseURL    string
	healthURL  string
	httpClient *http.Client
	token      TokenSource
}

// NewClient создает новый экземпляр клиента удалённого API.
func NewClient(cfg *config.APIConfig, token TokenSource) services.RemoteNotesAPI {
	return &Client{
		baseURL:   cfg.BaseURL,
		healthURL: cfg.HealthURL,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		token: token,
	}
}

// CreateNote создает заметку; сервер назначает канонический числовой ID.
func (c *Client) CreateNote(ctx context.Context, fields services.NoteFields) (*entities.RemoteNote, error) {
	logger.Log(ctx).Debug(ctx, LogAPICreateNote)

	var note entities.RemoteNote
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/notes", fields, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// GetNote получает заметку по серверному ID.
func (c *Client) GetNote(ctx context.Context, serverID int64) (*entities.RemoteNote, error) {
	logger.Log(ctx).Debug(ctx, LogAPIGetNote, zap.Int64("server_id", serverID))

	var note entities.RemoteNote
	if err := c.do(ctx, http.MethodGet, c.noteURL(serverID), nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// GetNotes получает список заметок пользователя.
func (c *Client) GetNotes(ctx context.Context) ([]*entities.RemoteNote, error) {
	logger.Log(ctx).Debug(ctx, LogAPIGetNotes)

	var notes []*entities.RemoteNote
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/notes", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// GetPublicNotes получает список публичных заметок.
func (c *Client) GetPublicNotes(ctx context.Context) ([]*entities.RemoteNote, error) {
	logger.Log(ctx).Debug(ctx, LogAPIGetPublicNotes)

	var notes []*entities.RemoteNote
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/notes/public", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// SearchNotes ищет заметки по строке запроса.
func (c *Client) SearchNotes(ctx context.Context, query string) ([]*entities.RemoteNote, error) {
	logger.Log(ctx).Debug(ctx, LogAPISearchNotes, zap.String("query", query))

	var notes []*entities.RemoteNote
	searchURL := c.baseURL + "/notes/search?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, searchURL, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// UpdateNote обновляет существующую заметку.
func (c *Client) UpdateNote(ctx context.Context, serverID int64, fields services.NoteFields) (*entities.RemoteNote, error) {
	logger.Log(ctx).Debug(ctx, LogAPIUpdateNote, zap.Int64("server_id", serverID))

	var note entities.RemoteNote
	if err := c.do(ctx, http.MethodPut, c.noteURL(serverID), fields, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// DeleteNote удаляет заметку.
func (c *Client) DeleteNote(ctx context.Context, serverID int64) error {
	logger.Log(ctx).Debug(ctx, LogAPIDeleteNote, zap.Int64("server_id", serverID))

	return c.do(ctx, http.MethodDelete, c.noteURL(serverID), nil, nil)
}

// Ping проверяет доступность API через health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, c.healthURL, nil, nil)
}

func (c *Client) noteURL(serverID int64) string {
	return c.baseURL + "/notes/" + strconv.FormatInt(serverID, 10)
}

// do выполняет HTTP запрос и декодирует успешный ответ в out (если out != nil).
func (c *Client) do(ctx context.Context, method, rawURL string, body, out any) error {
	log := logger.Log(ctx).With(zap.String("http_method", method), zap.String("url", rawURL))

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != nil {
		if token := c.token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", ErrorRequestFailed, ctx.Err())
		}
		log.Warn(ctx, ErrorRequestFailed, zap.Error(err))
		return fmt.Errorf("%w: %w", ErrAPIUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", ErrNoteNotFound, method, rawURL)
	case resp.StatusCode >= http.StatusInternalServerError:
		log.Warn(ctx, ErrorRequestFailed, zap.Int("status", resp.StatusCode))
		return fmt.Errorf("%w: status %d", ErrAPIUnavailable, resp.StatusCode)
	default:
		log.Warn(ctx, ErrorRequestFailed, zap.Int("status", resp.StatusCode))
		return fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}
