package handler

import (
	"errors"
	"log/slog"

	"github.com/EternisAI/lockfleet/internal/api/http/dto"
	"github.com/EternisAI/lockfleet/internal/failure"
	"github.com/gin-gonic/gin"
)

// writeError answers with the failure envelope and the status for the error's
// kind. Internal details are logged, not returned.
func writeError(ctx *gin.Context, err error) {
	kind := failure.KindOf(err)
	status := kind.HTTPStatus()

	attrs := []any{"kind", kind.String(), "path", ctx.FullPath(), "error", err}
	var fe *failure.Error
	if errors.As(err, &fe) && fe.Code != "" {
		attrs = append(attrs, "vendor_code", fe.Code)
	}
	if status >= 500 {
		slog.ErrorContext(ctx.Request.Context(), "Request failed", attrs...)
	} else {
		slog.DebugContext(ctx.Request.Context(), "Request rejected", attrs...)
	}

	ctx.JSON(status, dto.Response{
		Success: false,
		Message: failure.Message(err),
		Kind:    kind.String(),
	})
}

func bindError(ctx *gin.Context, err error) {
	writeError(ctx, failure.Wrap(failure.KindValidation, err, "invalid request"))
}
