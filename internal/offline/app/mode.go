package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"notesync/internal/offline/ports/services"
	"notesync/pkg/logger"
)

// Константы для логирования.
const (
	LogModeChanged      = "connectivity mode changed"
	LogModeSyncStarting = "connection restored, starting reconciliation"
	LogModeSyncCanceled = "connection lost, canceling reconciliation pass"
	LogModeSyncFailed   = "background reconciliation failed"
	LogModeSyncDone     = "background reconciliation finished"
)

// SyncRunner запускает один проход синхронизации.
type SyncRunner interface {
	Run(ctx context.Context) (Summary, error)
}

// ModeController наблюдает за монитором связности и публикует производный
// флаг офлайн-режима, по которому приложение выбирает между удалённым API
// и локальным репозиторием. До первого сигнала состояние оптимистично
// считается онлайн.
type ModeController struct {
	mu          sync.RWMutex
	isConnected bool
	subscribers map[int]func(isConnected bool)
	nextSubID   int

	monitor     services.ConnectivityMonitor
	reconciler  SyncRunner
	unsubscribe func()

	baseCtx    context.Context
	cancelPass context.CancelFunc
}

// NewModeController создает контроллер режима. Start необходимо вызвать отдельно.
func NewModeController(monitor services.ConnectivityMonitor, reconciler SyncRunner) *ModeController {
	return &ModeController{
		isConnected: true,
		subscribers: make(map[int]func(isConnected bool)),
		monitor:     monitor,
		reconciler:  reconciler,
	}
}

// Start подписывает контроллер на монитор связности. Контекст используется
// как родительский для фоновых проходов синхронизации.
func (c *ModeController) Start(ctx context.Context) {
	c.baseCtx = ctx
	c.unsubscribe = c.monitor.Subscribe(func(isConnected bool) {
		c.onConnectivityChange(ctx, isConnected)
	})
}

// Stop отписывает контроллер от монитора и отменяет активный проход синхронизации.
func (c *ModeController) Stop() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelPass != nil {
		c.cancelPass()
		c.cancelPass = nil
	}
}

// IsConnected возвращает текущее состояние связности.
func (c *ModeController) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}

// IsOfflineMode возвращает флаг офлайн-режима. Всегда отрицание IsConnected;
// отдельный метод оставлен для читаемости мест вызова.
func (c *ModeController) IsOfflineMode() bool {
	return !c.IsConnected()
}

// Subscribe регистрирует обработчик смены режима и возвращает функцию отписки.
// Обработчик вызывается синхронно при каждой смене состояния.
func (c *ModeController) Subscribe(callback func(isConnected bool)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = callback

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// onConnectivityChange обрабатывает событие монитора: обновляет оба поля,
// уведомляет подписчиков и управляет фоновой синхронизацией. Дебаунса нет -
// каждое переключение сигнала публикуется немедленно.
func (c *ModeController) onConnectivityChange(ctx context.Context, isConnected bool) {
	log := logger.Log(ctx)

	c.mu.Lock()
	wasConnected := c.isConnected
	if wasConnected == isConnected {
		c.mu.Unlock()
		return
	}
	c.isConnected = isConnected

	callbacks := make([]func(bool), 0, len(c.subscribers))
	for _, cb := range c.subscribers {
		callbacks = append(callbacks, cb)
	}

	var passCtx context.Context
	if isConnected {
		passCtx, c.cancelPass = context.WithCancel(c.baseCtx)
	} else if c.cancelPass != nil {
		log.Info(ctx, LogModeSyncCanceled)
		c.cancelPass()
		c.cancelPass = nil
	}
	c.mu.Unlock()

	log.Info(ctx, LogModeChanged,
		zap.Bool("is_connected", isConnected),
		zap.Bool("is_offline_mode", !isConnected))

	for _, cb := range callbacks {
		cb(isConnected)
	}

	// Переход офлайн -> онлайн запускает синхронизацию в фоне.
	if isConnected && c.reconciler != nil {
		log.Info(ctx, LogModeSyncStarting)
		go func() {
			summary, err := c.reconciler.Run(passCtx)
			if err != nil {
				log.Warn(passCtx, LogModeSyncFailed, zap.Error(err))
				return
			}
			log.Info(passCtx, LogModeSyncDone,
				zap.Int("succeeded", summary.Succeeded),
				zap.Int("failed", summary.Failed),
				zap.Int("skipped", summary.Skipped))
		}()
	}
}
