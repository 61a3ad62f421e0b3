package ticket

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/EternisAI/lockfleet/internal/failure"
	"github.com/EternisAI/lockfleet/internal/tuya"
	"github.com/EternisAI/lockfleet/internal/tuya/tuyatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire(t *testing.T) {
	path := tuya.PasswordTicketPath("abc123")
	fake := tuyatest.New().OK(http.MethodPost, path, map[string]any{
		"ticket_id":   "tkt-1",
		"ticket_key":  "00112233445566778899aabbccddeeff",
		"expire_time": 300,
	})
	b := NewBroker(fake)
	issued := time.Unix(1700000000, 0)
	b.now = func() time.Time { return issued }

	tk, err := b.Acquire(context.Background(), "abc123")
	require.NoError(t, err)

	assert.Equal(t, "tkt-1", tk.ID)
	assert.Len(t, tk.EncryptedKey, 16)
	assert.Equal(t, issued, tk.IssuedAt)
	assert.Equal(t, issued.Add(300*time.Second), tk.ExpiresAt())
	assert.False(t, tk.Expired(issued.Add(299*time.Second)))
	assert.True(t, tk.Expired(issued.Add(300*time.Second)))
	assert.Equal(t, 1, fake.CallCount(http.MethodPost, path))
}

func TestAcquireEachCallIsFresh(t *testing.T) {
	path := tuya.PasswordTicketPath("abc123")
	n := 0
	fake := tuyatest.New().Handle(http.MethodPost, path, func(tuya.Request) ([]byte, error) {
		n++
		if n == 1 {
			return []byte(`{"success":true,"result":{"ticket_id":"a","ticket_key":"00ff","expire_time":60}}`), nil
		}
		return []byte(`{"success":true,"result":{"ticket_id":"b","ticket_key":"00ff","expire_time":60}}`), nil
	})
	b := NewBroker(fake)

	first, err := b.Acquire(context.Background(), "abc123")
	require.NoError(t, err)
	second, err := b.Acquire(context.Background(), "abc123")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, fake.CallCount(http.MethodPost, path))
}

func TestAcquireRequiresDeviceID(t *testing.T) {
	fake := tuyatest.New()
	_, err := NewBroker(fake).Acquire(context.Background(), "  ")
	assert.ErrorIs(t, err, failure.ErrValidation)
	assert.Empty(t, fake.Calls())
}

func TestAcquireVendorFailureNotRetried(t *testing.T) {
	path := tuya.PasswordTicketPath("abc123")
	fake := tuyatest.New().Fail(http.MethodPost, path, "device offline")

	_, err := NewBroker(fake).Acquire(context.Background(), "abc123")
	assert.ErrorIs(t, err, failure.ErrUpstream)
	assert.Equal(t, "device offline", err.Error())
	assert.Equal(t, 1, fake.CallCount(http.MethodPost, path))
}

func TestAcquireMissingTicketKey(t *testing.T) {
	path := tuya.PasswordTicketPath("abc123")
	fake := tuyatest.New().OK(http.MethodPost, path, map[string]any{"ticket_id": "tkt-1"})

	_, err := NewBroker(fake).Acquire(context.Background(), "abc123")
	assert.ErrorIs(t, err, failure.ErrProtocol)
}

func TestAcquireMalformedTicketKey(t *testing.T) {
	path := tuya.PasswordTicketPath("abc123")
	fake := tuyatest.New().OK(http.MethodPost, path, map[string]any{"ticket_id": "tkt-1", "ticket_key": "xyz"})

	_, err := NewBroker(fake).Acquire(context.Background(), "abc123")
	assert.ErrorIs(t, err, failure.ErrCrypto)
}

func TestAcquireTransportError(t *testing.T) {
	path := tuya.PasswordTicketPath("abc123")
	netErr := failure.Wrap(failure.KindNetwork, errors.New("connection reset"), "vendor request failed")
	fake := tuyatest.New().Handle(http.MethodPost, path, func(tuya.Request) ([]byte, error) {
		return nil, netErr
	})

	_, err := NewBroker(fake).Acquire(context.Background(), "abc123")
	assert.ErrorIs(t, err, failure.ErrNetwork)
}

func TestTicketWithoutExpiryNeverExpires(t *testing.T) {
	tk := &Ticket{ID: "x", IssuedAt: time.Unix(0, 0)}
	assert.True(t, tk.ExpiresAt().IsZero())
	assert.False(t, tk.Expired(time.Now()))
}
