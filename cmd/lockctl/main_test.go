package main

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	internalhttp "github.com/EternisAI/lockfleet/internal/api/http"
	"github.com/EternisAI/lockfleet/internal/audit"
	"github.com/EternisAI/lockfleet/internal/auth"
	"github.com/EternisAI/lockfleet/internal/credentials"
	"github.com/EternisAI/lockfleet/internal/devices"
	"github.com/EternisAI/lockfleet/internal/ticket"
	"github.com/EternisAI/lockfleet/internal/tuya/sandbox"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "vendor-secret"
	testAPIKey = "machine-key-123"
)

func startServer(t *testing.T) (*httptest.Server, *sandbox.Vendor) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	keyHash, err := auth.HashPassword(testAPIKey)
	require.NoError(t, err)
	pwHash, err := auth.HashPassword("operator-pass")
	require.NoError(t, err)

	vendor := sandbox.New(testSecret, "app-uid")
	engine := gin.New()
	internalhttp.SetupRoute(engine, &internalhttp.Services{
		Auth: auth.NewService(auth.Config{
			JWTSecret:  "jwt",
			APIKeyHash: keyHash,
			Operators:  []auth.Operator{{Username: "ana", PasswordHash: pwHash, Role: auth.RoleAdmin}},
		}),
		Credentials: credentials.NewService(vendor, ticket.NewBroker(vendor), testSecret, audit.Multi{}),
		Devices:     devices.NewSynchronizer(vendor, "app-uid", devices.DefaultQueryDefaults()),
		Sandbox:     true,
	})
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv, vendor
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOCKCTL_API_URL", "")
	t.Setenv("LOCKCTL_TOKEN", "")
	t.Setenv("LOCKCTL_API_KEY", "")
	t.Setenv("LOCKCTL_PASSWORD", "")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "lockctl version dev\n", out)
}

func TestDevices(t *testing.T) {
	srv, _ := startServer(t)

	out, err := run(t, "", "devices", "--api-url", srv.URL, "--api-key", testAPIKey)
	require.NoError(t, err)
	assert.Contains(t, out, "lock-front-door")
	assert.Contains(t, out, "Back door")
}

func TestDeviceJSON(t *testing.T) {
	srv, _ := startServer(t)

	out, err := run(t, "", "device", "lock-front-door", "--api-url", srv.URL, "--api-key", testAPIKey, "--output", "json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `{"success":true`))
}

func TestProvisionFromStdin(t *testing.T) {
	srv, vendor := startServer(t)

	out, err := run(t, "1234567\n", "provision",
		"--api-url", srv.URL, "--api-key", testAPIKey,
		"--device", "lock-front-door", "--name", "Guest", "--code-stdin",
		"--from", "1700000000", "--until", "2023-11-14T23:13:20Z")
	require.NoError(t, err)
	assert.Contains(t, out, "Created temporary password 9001")

	stored := vendor.Passwords("lock-front-door")
	require.Len(t, stored, 1)
	assert.Equal(t, "1234567", stored[0].Code)
	assert.Equal(t, int64(1700000000), stored[0].EffectiveTime)
	assert.Equal(t, int64(1700003600), stored[0].InvalidTime)
}

func TestProvisionValidationError(t *testing.T) {
	srv, _ := startServer(t)

	_, err := run(t, "", "provision",
		"--api-url", srv.URL, "--api-key", testAPIKey,
		"--device", "lock-front-door", "--name", "Guest", "--code", "12")
	var apiErr *apiError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, "validation_error", apiErr.Kind)
}

func TestUnlockOffline(t *testing.T) {
	srv, _ := startServer(t)

	_, err := run(t, "", "unlock", "lock-back-door", "--api-url", srv.URL, "--api-key", testAPIKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device is offline")
}

func TestTokenThenUseIt(t *testing.T) {
	srv, _ := startServer(t)

	out, err := run(t, "operator-pass\n", "token", "--api-url", srv.URL, "--username", "ana")
	require.NoError(t, err)
	tok := strings.TrimSpace(out)
	require.NotEmpty(t, tok)

	out, err = run(t, "", "unlock", "lock-front-door", "--api-url", srv.URL, "--token", tok)
	require.NoError(t, err)
	assert.Contains(t, out, "Unlocked lock-front-door")
}

func TestMissingAPIURL(t *testing.T) {
	_, err := run(t, "", "devices")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--api-url")
}

func TestHash(t *testing.T) {
	out, err := run(t, "", "hash", "correct-horse")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword("correct-horse", strings.TrimSpace(out)))
}

func TestParseTime(t *testing.T) {
	def := time.Unix(42, 0)

	got, err := parseTime("", def)
	require.NoError(t, err)
	assert.Equal(t, def, got)

	got, err = parseTime("1700000000", def)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), got.Unix())

	got, err = parseTime("2023-11-14T22:13:20Z", def)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), got.Unix())

	_, err = parseTime("12abc", def)
	assert.Error(t, err)
}

func TestPasswordsFreezeAndDelete(t *testing.T) {
	srv, vendor := startServer(t)
	flags := []string{"--api-url", srv.URL, "--api-key", testAPIKey}

	_, err := run(t, "", append([]string{"provision",
		"--device", "lock-front-door", "--name", "Guest", "--code", "1234567",
		"--from", "1700000000", "--until", "2100-01-01T00:00:00Z"}, flags...)...)
	require.NoError(t, err)

	out, err := run(t, "", append([]string{"passwords", "freeze", "lock-front-door", "9001"}, flags...)...)
	require.NoError(t, err)
	assert.Equal(t, "Froze temporary password 9001\n", out)
	assert.Equal(t, 3, vendor.Passwords("lock-front-door")[0].Phase)

	out, err = run(t, "", append([]string{"passwords", "lock-front-door"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "9001")
	assert.Contains(t, out, "frozen")
	assert.Contains(t, out, "2100-01-01T00:00:00Z")

	_, err = run(t, "", append([]string{"passwords", "delete", "lock-front-door", "9001"}, flags...)...)
	require.NoError(t, err)

	out, err = run(t, "", append([]string{"passwords", "lock-front-door"}, flags...)...)
	require.NoError(t, err)
	assert.NotContains(t, out, "9001")

	out, err = run(t, "", append([]string{"passwords", "lock-front-door", "--all"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")

	_, err = run(t, "", append([]string{"passwords", "unfreeze", "lock-front-door", "9001"}, flags...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password not exist")
}
