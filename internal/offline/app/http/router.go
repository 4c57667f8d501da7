// Package http содержит компоненты локального управляющего HTTP API.
package http

import (
	"github.com/gofiber/fiber/v3"

	"notesync/internal/offline/app"
	"notesync/internal/offline/app/http/middleware"
	"notesync/internal/offline/app/http/notes"
	"notesync/internal/offline/app/http/status"
)

// SetupRouter настраивает маршрутизацию управляющего API.
func SetupRouter(fiberApp *fiber.App, notesService *app.NotesService, mode *app.ModeController, reconciler status.SyncRunner) {
	notesHandler := notes.NewHandler(notesService)
	statusHandler := status.NewHandler(mode, reconciler)

	// Middleware для всех запросов.
	fiberApp.Use(middleware.NewRequestIDMiddleware())
	fiberApp.Use(middleware.NewLoggerMiddleware())
	fiberApp.Use(middleware.NewRecoveryMiddleware())

	// API версии 1.
	apiV1 := fiberApp.Group("/api/v1")

	noteRoutes := apiV1.Group("/notes")
	noteRoutes.Get("/", notesHandler.ListNotes)
	noteRoutes.Get("/public", notesHandler.PublicNotes)
	noteRoutes.Get("/search", notesHandler.SearchNotes)
	noteRoutes.Post("/", notesHandler.CreateNote)
	noteRoutes.Put("/:note_id", notesHandler.UpdateNote)
	noteRoutes.Delete("/:note_id", notesHandler.DeleteNote)

	apiV1.Get("/status", statusHandler.Status)
	apiV1.Post("/sync", statusHandler.Sync)

	// Обработчик для несуществующих маршрутов.
	fiberApp.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Route not found",
		})
	})
}
