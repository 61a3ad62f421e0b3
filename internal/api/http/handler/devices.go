package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/EternisAI/lockfleet/internal/api/http/dto"
	"github.com/EternisAI/lockfleet/internal/audit"
	"github.com/EternisAI/lockfleet/internal/devices"
	"github.com/gin-gonic/gin"
)

// AuditLister reads the persisted audit trail. It is nil when no database is
// configured.
type AuditLister interface {
	ListByDevice(ctx context.Context, deviceID string, limit int) ([]audit.Entry, error)
}

type DevicesHandler struct {
	sync  *devices.Synchronizer
	audit AuditLister
}

func NewDevicesHandler(sync *devices.Synchronizer, lister AuditLister) *DevicesHandler {
	return &DevicesHandler{sync: sync, audit: lister}
}

func (h *DevicesHandler) ListDevices(ctx *gin.Context) {
	list, err := h.sync.ListDevices(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(list))
}

func (h *DevicesHandler) GetDevice(ctx *gin.Context) {
	d, err := h.sync.GetDeviceDetail(ctx.Request.Context(), ctx.Param("device_id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(d))
}

func (h *DevicesHandler) ListUsers(ctx *gin.Context) {
	users, err := h.sync.ListUsers(ctx.Request.Context(), ctx.Param("device_id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(users))
}

func (h *DevicesHandler) ListUnassignedKeys(ctx *gin.Context) {
	keys, err := h.sync.ListUnassignedCredentials(ctx.Request.Context(), ctx.Param("device_id"), ctx.Query("unlock_type"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(keys))
}

func (h *DevicesHandler) ListUserKeys(ctx *gin.Context) {
	keys, err := h.sync.ListUserCredentials(ctx.Request.Context(), ctx.Param("device_id"), ctx.Param("user_id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(keys))
}

func (h *DevicesHandler) ListTempPasswords(ctx *gin.Context) {
	var params dto.TempPasswordListParams
	if err := ctx.ShouldBindQuery(&params); err != nil {
		bindError(ctx, err)
		return
	}
	validOnly := params.Valid == nil || *params.Valid

	codes, err := h.sync.ListTemporaryCodes(ctx.Request.Context(), ctx.Param("device_id"), validOnly)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(codes))
}

func (h *DevicesHandler) GetTempPassword(ctx *gin.Context) {
	code, err := h.sync.GetTemporaryCode(ctx.Request.Context(), ctx.Param("device_id"), ctx.Param("password_id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(code))
}

func (h *DevicesHandler) ListAlarmLogs(ctx *gin.Context) {
	q, ok := bindLogQuery(ctx)
	if !ok {
		return
	}
	page, err := h.sync.ListAlarmLogs(ctx.Request.Context(), ctx.Param("device_id"), q)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(page))
}

func (h *DevicesHandler) ListUnlockLogs(ctx *gin.Context) {
	q, ok := bindLogQuery(ctx)
	if !ok {
		return
	}
	page, err := h.sync.ListUnlockLogs(ctx.Request.Context(), ctx.Param("device_id"), q)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(page))
}

func bindLogQuery(ctx *gin.Context) (devices.LogQuery, bool) {
	var params dto.LogQueryParams
	if err := ctx.ShouldBindQuery(&params); err != nil {
		bindError(ctx, err)
		return devices.LogQuery{}, false
	}
	q := devices.LogQuery{PageNo: params.PageNo, PageSize: params.PageSize}
	if params.StartTime > 0 {
		q.Start = time.UnixMilli(params.StartTime)
	}
	if params.EndTime > 0 {
		q.End = time.UnixMilli(params.EndTime)
	}
	return q, true
}

func (h *DevicesHandler) ListAudit(ctx *gin.Context) {
	if h.audit == nil {
		ctx.JSON(http.StatusNotFound, dto.Fail(dto.KindNotFound, "audit store is not configured"))
		return
	}
	var params dto.AuditQueryParams
	if err := ctx.ShouldBindQuery(&params); err != nil {
		bindError(ctx, err)
		return
	}

	entries, err := h.audit.ListByDevice(ctx.Request.Context(), ctx.Param("device_id"), params.Limit)
	if err != nil {
		writeError(ctx, err)
		return
	}

	out := make([]dto.AuditEntry, len(entries))
	for i, e := range entries {
		out[i] = dto.AuditEntry{
			ID:           e.ID.String(),
			Operation:    string(e.Operation),
			DeviceID:     e.DeviceID,
			TicketID:     e.TicketID,
			CredentialID: e.CredentialID,
			Subject:      e.Subject,
			Operator:     e.Operator,
			Outcome:      e.Outcome,
			ErrorKind:    e.ErrorKind,
			Message:      e.Message,
			Protocol:     e.Protocol,
			CreatedAt:    e.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	ctx.JSON(http.StatusOK, dto.OK(out))
}
