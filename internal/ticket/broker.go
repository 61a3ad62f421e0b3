package ticket

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/EternisAI/lockfleet/internal/envelope"
	"github.com/EternisAI/lockfleet/internal/failure"
	"github.com/EternisAI/lockfleet/internal/lockcrypto"
	"github.com/EternisAI/lockfleet/internal/tuya"
)

// Ticket is a vendor-issued, single-use authorisation for one encrypted
// password operation. It is never cached or shared between requests.
type Ticket struct {
	ID            string
	EncryptedKey  []byte
	IssuedAt      time.Time
	ExpireSeconds int
}

// ExpiresAt is zero when the vendor gave no expiry.
func (t *Ticket) ExpiresAt() time.Time {
	if t.ExpireSeconds <= 0 {
		return time.Time{}
	}
	return t.IssuedAt.Add(time.Duration(t.ExpireSeconds) * time.Second)
}

func (t *Ticket) Expired(now time.Time) bool {
	exp := t.ExpiresAt()
	return !exp.IsZero() && !now.Before(exp)
}

type ticketResult struct {
	TicketID   string `json:"ticket_id"`
	TicketKey  string `json:"ticket_key"`
	ExpireTime int    `json:"expire_time"`
}

// Broker requests tickets. It holds no per-ticket state.
type Broker struct {
	client tuya.Requester
	now    func() time.Time
}

func NewBroker(client tuya.Requester) *Broker {
	return &Broker{client: client, now: time.Now}
}

// Acquire issues exactly one ticket request for deviceID. Failures are not
// retried; the vendor does not guarantee idempotency.
func (b *Broker) Acquire(ctx context.Context, deviceID string) (*Ticket, error) {
	if strings.TrimSpace(deviceID) == "" {
		return nil, failure.Validation("device id is required")
	}

	path := tuya.PasswordTicketPath(deviceID)
	raw, err := b.client.Do(ctx, tuya.Request{Method: http.MethodPost, Path: path})
	if err != nil {
		return nil, err
	}

	res, err := envelope.Decode[ticketResult](raw, envelope.VersionOf(path))
	if err != nil {
		return nil, err
	}
	if res.TicketID == "" || res.TicketKey == "" {
		return nil, failure.Protocol("ticket response is missing ticket_id or ticket_key")
	}

	key, err := lockcrypto.DecodeTicketKey(res.TicketKey)
	if err != nil {
		return nil, err
	}

	t := &Ticket{
		ID:            res.TicketID,
		EncryptedKey:  key,
		IssuedAt:      b.now(),
		ExpireSeconds: res.ExpireTime,
	}
	slog.DebugContext(ctx, "Ticket acquired", "device_id", deviceID, "ticket_id", t.ID, "expire_seconds", t.ExpireSeconds)
	return t, nil
}
