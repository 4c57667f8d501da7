package app_test

import (
	"context"
	"errors"
	"sync"

	"notesync/internal/offline/domain/entities"
	"notesync/internal/offline/ports/services"
)

var errStoreUnavailable = errors.New("store unavailable")

// memStore - key-value хранилище в памяти с инъекцией отказов.
type memStore struct {
	mu       sync.Mutex
	data     map[string]string
	failGets bool
	failSets bool
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (s *memStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGets {
		return "", false, errStoreUnavailable
	}
	value, found := s.data[key]
	return value, found, nil
}

func (s *memStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSets {
		return errStoreUnavailable
	}
	s.data[key] = value
	return nil
}

func (s *memStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *memStore) RemoveMany(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func (s *memStore) Close() error { return nil }

// fakeMonitor - управляемый из теста источник сигнала связности.
type fakeMonitor struct {
	mu        sync.Mutex
	connected bool
	callbacks map[int]func(bool)
	nextID    int
}

func newFakeMonitor() *fakeMonitor {
	return &fakeMonitor{connected: true, callbacks: make(map[int]func(bool))}
}

func (m *fakeMonitor) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *fakeMonitor) Subscribe(callback func(isConnected bool)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.callbacks[id] = callback

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.callbacks, id)
	}
}

func (m *fakeMonitor) fire(isConnected bool) {
	m.mu.Lock()
	m.connected = isConnected
	callbacks := make([]func(bool), 0, len(m.callbacks))
	for _, cb := range m.callbacks {
		callbacks = append(callbacks, cb)
	}
	m.mu.Unlock()

	for _, cb := range callbacks {
		cb(isConnected)
	}
}

// fakeNotesAPI - удалённый API с переопределяемыми операциями.
type fakeNotesAPI struct {
	createFn func(ctx context.Context, fields services.NoteFields) (*entities.RemoteNote, error)
	updateFn func(ctx context.Context, serverID int64, fields services.NoteFields) (*entities.RemoteNote, error)
	deleteFn func(ctx context.Context, serverID int64) error
	getAllFn func(ctx context.Context) ([]*entities.RemoteNote, error)
	publicFn func(ctx context.Context) ([]*entities.RemoteNote, error)
	searchFn func(ctx context.Context, query string) ([]*entities.RemoteNote, error)
}

var errAPINotConfigured = errors.New("fake api: operation not configured")

func (a *fakeNotesAPI) CreateNote(ctx context.Context, fields services.NoteFields) (*entities.RemoteNote, error) {
	if a.createFn == nil {
		return nil, errAPINotConfigured
	}
	return a.createFn(ctx, fields)
}

func (a *fakeNotesAPI) GetNote(context.Context, int64) (*entities.RemoteNote, error) {
	return nil, errAPINotConfigured
}

func (a *fakeNotesAPI) GetNotes(ctx context.Context) ([]*entities.RemoteNote, error) {
	if a.getAllFn == nil {
		return nil, errAPINotConfigured
	}
	return a.getAllFn(ctx)
}

func (a *fakeNotesAPI) GetPublicNotes(ctx context.Context) ([]*entities.RemoteNote, error) {
	if a.publicFn == nil {
		return nil, errAPINotConfigured
	}
	return a.publicFn(ctx)
}

func (a *fakeNotesAPI) SearchNotes(ctx context.Context, query string) ([]*entities.RemoteNote, error) {
	if a.searchFn == nil {
		return nil, errAPINotConfigured
	}
	return a.searchFn(ctx, query)
}

func (a *fakeNotesAPI) UpdateNote(ctx context.Context, serverID int64, fields services.NoteFields) (*entities.RemoteNote, error) {
	if a.updateFn == nil {
		return nil, errAPINotConfigured
	}
	return a.updateFn(ctx, serverID, fields)
}

func (a *fakeNotesAPI) DeleteNote(ctx context.Context, serverID int64) error {
	if a.deleteFn == nil {
		return errAPINotConfigured
	}
	return a.deleteFn(ctx, serverID)
}

func (a *fakeNotesAPI) Ping(context.Context) error { return nil }
