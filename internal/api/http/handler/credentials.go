package handler

import (
	"context"
	"net/http"

	"github.com/EternisAI/lockfleet/internal/api/http/dto"
	"github.com/EternisAI/lockfleet/internal/credentials"
	"github.com/gin-gonic/gin"
)

type CredentialsHandler struct {
	service *credentials.Service
}

func NewCredentialsHandler(service *credentials.Service) *CredentialsHandler {
	return &CredentialsHandler{service: service}
}

func toRequest(req dto.TempPasswordRequest) credentials.Request {
	return credentials.Request{
		Name:          req.Name,
		Password:      req.Password,
		EffectiveTime: req.EffectiveTime,
		InvalidTime:   req.InvalidTime,
		Type:          req.Type,
		Phone:         req.Phone,
		TimeZone:      req.TimeZone,
		CheckName:     req.CheckName,
		IsRecord:      req.IsRecord,
		RelateDevices: req.RelateDevices,
	}
}

func (h *CredentialsHandler) CreateTempPassword(ctx *gin.Context) {
	var req dto.TempPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	id, err := h.service.ProvisionTemporaryCode(ctx.Request.Context(), ctx.Param("device_id"), toRequest(req))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.OK(dto.TempPasswordResponse{ID: string(id)}))
}

func (h *CredentialsHandler) ModifyTempPassword(ctx *gin.Context) {
	var req dto.TempPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	passwordID := ctx.Param("password_id")
	if err := h.service.ModifyTemporaryCode(ctx.Request.Context(), ctx.Param("device_id"), passwordID, toRequest(req)); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(dto.TempPasswordResponse{ID: passwordID}))
}

func (h *CredentialsHandler) Unlock(ctx *gin.Context) {
	if err := h.service.RemoteUnlock(ctx.Request.Context(), ctx.Param("device_id")); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(true))
}

func (h *CredentialsHandler) DeleteTempPassword(ctx *gin.Context) {
	h.passwordAction(ctx, h.service.DeleteTemporaryCode)
}

func (h *CredentialsHandler) FreezeTempPassword(ctx *gin.Context) {
	h.passwordAction(ctx, h.service.FreezeTemporaryCode)
}

func (h *CredentialsHandler) UnfreezeTempPassword(ctx *gin.Context) {
	h.passwordAction(ctx, h.service.UnfreezeTemporaryCode)
}

func (h *CredentialsHandler) passwordAction(ctx *gin.Context, action func(context.Context, string, string) error) {
	passwordID := ctx.Param("password_id")
	if err := action(ctx.Request.Context(), ctx.Param("device_id"), passwordID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(dto.TempPasswordResponse{ID: passwordID}))
}

func (h *CredentialsHandler) ClearTempPasswords(ctx *gin.Context) {
	if err := h.service.ClearTemporaryCodes(ctx.Request.Context(), ctx.Param("device_id")); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(true))
}

func (h *CredentialsHandler) AssignCredential(ctx *gin.Context) {
	var req dto.KeyRef
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	key := credentials.KeyRef{No: req.No, Type: req.Type}
	if err := h.service.AssignCredential(ctx.Request.Context(), ctx.Param("device_id"), ctx.Param("user_id"), key); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(true))
}

func (h *CredentialsHandler) UnbindCredentials(ctx *gin.Context) {
	var req dto.UnbindRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	keys := make([]credentials.KeyRef, len(req.UnlockList))
	for i, k := range req.UnlockList {
		keys[i] = credentials.KeyRef{No: k.No, Type: k.Type}
	}
	if err := h.service.UnbindCredentials(ctx.Request.Context(), ctx.Param("device_id"), ctx.Param("user_id"), keys); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(true))
}
