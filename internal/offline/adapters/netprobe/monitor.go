// Package netprobe содержит монитор связности, периодически опрашивающий
// удалённый API заметок.
package netprobe

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"notesync/internal/offline/config"
	"notesync/pkg/logger"
)

// Константы для логирования.
const (
	LogProbeStarted      = "connectivity monitor started"
	LogProbeStopped      = "connectivity monitor stopped"
	LogConnectivityState = "connectivity state changed"
)

// Pinger проверяет доступность удалённой стороны.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor опрашивает удалённый API с заданным интервалом и уведомляет
// подписчиков при смене состояния. Уведомления только по фронту изменения:
// повторяющееся состояние не рассылается.
type Monitor struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration

	mu          sync.RWMutex
	isConnected bool
	subscribers map[int]func(isConnected bool)
	nextSubID   int

	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor создает монитор связности. До первой пробы состояние
// оптимистично считается онлайн.
func NewMonitor(pinger Pinger, cfg *config.ConnectivityConfig) *Monitor {
	return &Monitor{
		pinger:      pinger,
		interval:    cfg.ProbeInterval,
		timeout:     cfg.ProbeTimeout,
		isConnected: true,
		subscribers: make(map[int]func(isConnected bool)),
	}
}

// Start запускает цикл опроса в фоне.
func (m *Monitor) Start(ctx context.Context) {
	probeCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	logger.Log(ctx).Info(ctx, LogProbeStarted,
		zap.Duration("interval", m.interval),
		zap.Duration("timeout", m.timeout))

	go m.loop(probeCtx)
}

// Stop останавливает цикл опроса и дожидается его завершения.
func (m *Monitor) Stop(ctx context.Context) {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	logger.Log(ctx).Info(ctx, LogProbeStopped)
}

// IsConnected возвращает последнее известное состояние связности.
func (m *Monitor) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isConnected
}

// Subscribe регистрирует обработчик смены состояния и возвращает функцию отписки.
func (m *Monitor) Subscribe(callback func(isConnected bool)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = callback

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// Первая проба сразу, не дожидаясь интервала.
	m.probe(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

// probe выполняет одну пробу и рассылает уведомления при смене состояния.
// Уведомления выполняются на горутине цикла опроса; планирование
// перерисовки UI - забота подписчика.
func (m *Monitor) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	connected := m.pinger.Ping(probeCtx) == nil
	if ctx.Err() != nil {
		return
	}

	m.mu.Lock()
	if m.isConnected == connected {
		m.mu.Unlock()
		return
	}
	m.isConnected = connected

	callbacks := make([]func(bool), 0, len(m.subscribers))
	for _, cb := range m.subscribers {
		callbacks = append(callbacks, cb)
	}
	m.mu.Unlock()

	logger.Log(ctx).Info(ctx, LogConnectivityState, zap.Bool("is_connected", connected))

	for _, cb := range callbacks {
		cb(connected)
	}
}
