package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRecorder persists entries to the credential_audit table.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

func NewPostgresRecorder(pool *pgxpool.Pool) *PostgresRecorder {
	return &PostgresRecorder{pool: pool}
}

const insertEntry = `
INSERT INTO credential_audit
    (id, operation, device_id, ticket_id, credential_id, subject, operator, outcome, error_kind, message, protocol, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

func (r *PostgresRecorder) Record(ctx context.Context, e Entry) error {
	_, err := r.pool.Exec(ctx, insertEntry,
		e.ID, string(e.Operation), e.DeviceID, e.TicketID, e.CredentialID, e.Subject, e.Operator,
		e.Outcome, e.ErrorKind, e.Message, e.Protocol, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

const listByDevice = `
SELECT id, operation, device_id, ticket_id, credential_id, subject, operator, outcome, error_kind, message, protocol, created_at
FROM credential_audit
WHERE device_id = $1
ORDER BY created_at DESC
LIMIT $2`

// ListByDevice returns the most recent entries for a device, newest first.
func (r *PostgresRecorder) ListByDevice(ctx context.Context, deviceID string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, listByDevice, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		var op string
		err := row.Scan(&e.ID, &op, &e.DeviceID, &e.TicketID, &e.CredentialID, &e.Subject, &e.Operator,
			&e.Outcome, &e.ErrorKind, &e.Message, &e.Protocol, &e.CreatedAt)
		e.Operation = Operation(op)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan audit entries: %w", err)
	}
	return entries, nil
}
