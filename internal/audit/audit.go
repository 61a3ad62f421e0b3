package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type Operation string

const (
	OpProvisionTempPassword Operation = "provision_temp_password"
	OpModifyTempPassword    Operation = "modify_temp_password"
	OpRemoteUnlock          Operation = "remote_unlock"
	OpDeleteTempPassword    Operation = "delete_temp_password"
	OpFreezeTempPassword    Operation = "freeze_temp_password"
	OpUnfreezeTempPassword  Operation = "unfreeze_temp_password"
	OpClearTempPasswords    Operation = "clear_temp_passwords"
	OpAssignCredential      Operation = "assign_credential"
	OpUnbindCredentials     Operation = "unbind_credentials"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Entry describes one credential operation. Access codes, derived keys and
// ticket keys are never recorded.
type Entry struct {
	ID           uuid.UUID
	Operation    Operation
	DeviceID     string
	TicketID     string
	CredentialID string
	// Subject is the lock user an assign or unbind acted on.
	Subject      string
	Operator     string
	Outcome      string
	ErrorKind    string
	Message      string
	Protocol     string
	CreatedAt    time.Time
}

type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// NewEntry fills the id and timestamp.
func NewEntry(ctx context.Context, op Operation, deviceID string) Entry {
	return Entry{
		ID:        uuid.New(),
		Operation: op,
		DeviceID:  deviceID,
		Operator:  OperatorFrom(ctx),
		CreatedAt: time.Now().UTC(),
	}
}

// LogRecorder writes entries to the structured log.
type LogRecorder struct{}

func (LogRecorder) Record(ctx context.Context, e Entry) error {
	slog.InfoContext(ctx, "credential operation completed",
		"audit_id", e.ID.String(),
		"operation", string(e.Operation),
		"device_id", e.DeviceID,
		"ticket_id", e.TicketID,
		"credential_id", e.CredentialID,
		"subject", e.Subject,
		"operator", e.Operator,
		"result", e.Outcome,
		"error_kind", e.ErrorKind,
		"protocol", e.Protocol,
		"timestamp", e.CreatedAt.Format(time.RFC3339),
	)
	return nil
}

// Multi fans an entry out to every recorder and returns the first error.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, e Entry) error {
	var first error
	for _, r := range m {
		if err := r.Record(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type operatorKey struct{}

func WithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, operatorKey{}, operator)
}

func OperatorFrom(ctx context.Context) string {
	if v, ok := ctx.Value(operatorKey{}).(string); ok {
		return v
	}
	return ""
}
