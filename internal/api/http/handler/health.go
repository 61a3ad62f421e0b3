package handler

import (
	"net/http"

	"github.com/EternisAI/lockfleet/internal/api/http/dto"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	sandbox bool
}

func NewHealthHandler(sandbox bool) *HealthHandler {
	return &HealthHandler{sandbox: sandbox}
}

func (h *HealthHandler) Check(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Sandbox: h.sandbox})
}
