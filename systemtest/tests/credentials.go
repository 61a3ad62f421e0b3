package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/EternisAI/lockfleet/internal/api/http/dto"
	"github.com/EternisAI/lockfleet/internal/tuya/sandbox"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frontDoor = "lock-front-door"

type envelope[T any] struct {
	Success bool   `json:"success"`
	Result  T      `json:"result"`
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

func decodeEnvelope[T any](t *testing.T, body []byte) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func TestCredentialLifecycle(t *testing.T, router *gin.Engine, vendor *sandbox.Vendor) {
	token := login(t, router, AdminUser, AdminPassword)
	base := "/api/v1/devices/" + frontDoor

	req := dto.TempPasswordRequest{
		Name:          "Cleaner",
		Password:      "2468135",
		EffectiveTime: 1700000000,
		InvalidTime:   1700086400,
		Type:          1,
	}

	var passwordID string
	t.Run("provision", func(t *testing.T) {
		rr := doJSONWithAuth(router, http.MethodPost, base+"/temp-passwords", req, token)
		require.Equal(t, http.StatusCreated, rr.Code)

		env := decodeEnvelope[dto.TempPasswordResponse](t, rr.Body.Bytes())
		assert.True(t, env.Success)
		require.NotEmpty(t, env.Result.ID)
		passwordID = env.Result.ID

		stored := vendor.Passwords(frontDoor)
		require.NotEmpty(t, stored)
		assert.Equal(t, "2468135", stored[len(stored)-1].Code)
		assert.Equal(t, 1, stored[len(stored)-1].Type)
	})

	t.Run("modify", func(t *testing.T) {
		changed := req
		changed.Password = "1357924"
		rr := doJSONWithAuth(router, http.MethodPut, base+"/temp-passwords/"+passwordID, changed, token)
		require.Equal(t, http.StatusOK, rr.Code)

		stored := vendor.Passwords(frontDoor)
		assert.Equal(t, "1357924", stored[len(stored)-1].Code)
	})

	t.Run("inverted window is rejected", func(t *testing.T) {
		bad := req
		bad.EffectiveTime, bad.InvalidTime = bad.InvalidTime, bad.EffectiveTime
		rr := doJSONWithAuth(router, http.MethodPost, base+"/temp-passwords", bad, token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "validation_error", decodeEnvelope[any](t, rr.Body.Bytes()).Kind)
	})

	t.Run("remote unlock", func(t *testing.T) {
		rr := doJSONWithAuth(router, http.MethodPost, base+"/unlock", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)

		rr = doJSONWithAuth(router, http.MethodGet, base+"/unlock-logs", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)
		env := decodeEnvelope[map[string]any](t, rr.Body.Bytes())
		assert.NotEmpty(t, env.Result["records"])
	})

	t.Run("audit trail persisted", func(t *testing.T) {
		rr := doJSONWithAuth(router, http.MethodGet, base+"/audit", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)

		env := decodeEnvelope[[]dto.AuditEntry](t, rr.Body.Bytes())
		require.Len(t, env.Result, 4)
		assert.Equal(t, "remote_unlock", env.Result[0].Operation)
		assert.Equal(t, "provision_temp_password", env.Result[1].Operation)
		assert.Equal(t, "failure", env.Result[1].Outcome)
		assert.Equal(t, "validation_error", env.Result[1].ErrorKind)
		assert.Equal(t, "modify_temp_password", env.Result[2].Operation)
		assert.Equal(t, "provision_temp_password", env.Result[3].Operation)
		assert.Equal(t, passwordID, env.Result[3].CredentialID)
		for _, e := range env.Result {
			assert.Equal(t, AdminUser, e.Operator)
		}
		for _, i := range []int{0, 2, 3} {
			assert.Equal(t, "success", env.Result[i].Outcome)
		}
	})
}

func TestPermissions(t *testing.T, router *gin.Engine) {
	token := login(t, router, ViewerUser, ViewerPassword)

	rr := doJSONWithAuth(router, http.MethodGet, "/api/v1/devices", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSONWithAuth(router, http.MethodPost, "/api/v1/devices/"+frontDoor+"/unlock", nil, token)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = doJSONWithAuth(router, http.MethodGet, "/api/v1/devices", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestKeyAssignment(t *testing.T, router *gin.Engine) {
	token := login(t, router, AdminUser, AdminPassword)
	base := "/api/v1/devices/" + frontDoor
	card := dto.KeyRef{No: 2, Type: "card"}

	rr := doJSONWithAuth(router, http.MethodPost, base+"/users/u-guest/keys", card, token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSONWithAuth(router, http.MethodPost, base+"/users/u-guest/keys/unbind", dto.UnbindRequest{UnlockList: []dto.KeyRef{card}}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSONWithAuth(router, http.MethodGet, base+"/audit?limit=2", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope[[]dto.AuditEntry](t, rr.Body.Bytes())
	require.Len(t, env.Result, 2)
	assert.Equal(t, "unbind_credentials", env.Result[0].Operation)
	assert.Equal(t, "assign_credential", env.Result[1].Operation)
	for _, e := range env.Result {
		assert.Equal(t, "u-guest", e.Subject)
		assert.Equal(t, "card/2", e.CredentialID)
		assert.Equal(t, "success", e.Outcome)
	}
}
