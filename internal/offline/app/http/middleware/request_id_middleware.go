// Package middleware содержит промежуточное ПО для HTTP обработчиков.
package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"notesync/pkg/logger"
)

// RequestContextKey - ключ Locals с контекстом запроса.
const RequestContextKey = "requestContext"

// HeaderRequestID - заголовок с идентификатором запроса.
const HeaderRequestID = "X-Request-ID"

// NewRequestIDMiddleware создает промежуточное ПО, которое кладет request_id
// в контекст запроса. Идентификатор берется из заголовка или генерируется.
func NewRequestIDMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestID := ctx.Get(HeaderRequestID)

		requestCtx := logger.NewRequestIDContext(ctx.Context(), requestID)
		ctx.Locals(RequestContextKey, requestCtx)

		if id, ok := logger.GetRequestID(requestCtx); ok {
			ctx.Set(HeaderRequestID, id)
		}

		return ctx.Next()
	}
}

// RequestContext извлекает контекст запроса, созданный NewRequestIDMiddleware.
func RequestContext(ctx fiber.Ctx) context.Context {
	if requestCtx, ok := ctx.Locals(RequestContextKey).(context.Context); ok {
		return requestCtx
	}
	return ctx.Context() // Запасной вариант
}
