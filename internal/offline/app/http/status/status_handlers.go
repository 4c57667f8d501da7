// Package status содержит HTTP-обработчики режима связности и синхронизации.
package status

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notesync/internal/offline/app"
	"notesync/internal/offline/app/dto"
	"notesync/internal/offline/app/http/middleware"
	"notesync/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerStatus = "handling status request"
	LogHandlerSync   = "handling sync request"

	ErrMsgSyncInFlight = "reconciliation already in flight"
)

// SyncRunner запускает один проход синхронизации.
type SyncRunner interface {
	Run(ctx context.Context) (app.Summary, error)
}

// Handler обработчик HTTP-запросов состояния и синхронизации.
type Handler struct {
	mode       *app.ModeController
	reconciler SyncRunner
}

// NewHandler создает новый экземпляр обработчика.
func NewHandler(mode *app.ModeController, reconciler SyncRunner) *Handler {
	return &Handler{
		mode:       mode,
		reconciler: reconciler,
	}
}

// Status возвращает текущее состояние режима связности.
func (h *Handler) Status(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.Status"))
	log.Debug(requestCtx, LogHandlerStatus)

	resp := dto.StatusResponse{
		IsConnected:   h.mode.IsConnected(),
		IsOfflineMode: h.mode.IsOfflineMode(),
	}

	if err := ctx.JSON(resp); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// Sync запускает проход синхронизации и возвращает его итог.
func (h *Handler) Sync(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.Sync"))
	log.Debug(requestCtx, LogHandlerSync)

	summary, err := h.reconciler.Run(requestCtx)
	if err != nil {
		if errors.Is(err, app.ErrPassInFlight) {
			if err := ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": ErrMsgSyncInFlight,
			}); err != nil {
				return fmt.Errorf("error sending response: %w", err)
			}
			return nil
		}

		log.Error(requestCtx, "reconciliation pass failed", zap.Error(err))
		if err := ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		}); err != nil {
			return fmt.Errorf("error sending response: %w", err)
		}
		return nil
	}

	resp := dto.SyncResponse{
		Succeeded: summary.Succeeded,
		Failed:    summary.Failed,
		Skipped:   summary.Skipped,
	}

	if err := ctx.JSON(resp); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}
