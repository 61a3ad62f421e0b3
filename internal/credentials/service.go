// Package credentials provisions ticket-encrypted temporary access codes on
// locks. Every operation runs the full ticket lifecycle: acquire a fresh
// ticket, derive its key, encrypt, submit, discard. Nothing is retried; a
// caller that wants to try again starts over with a new ticket.
package credentials

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/EternisAI/lockfleet/internal/audit"
	"github.com/EternisAI/lockfleet/internal/envelope"
	"github.com/EternisAI/lockfleet/internal/failure"
	"github.com/EternisAI/lockfleet/internal/lockcrypto"
	"github.com/EternisAI/lockfleet/internal/ticket"
	"github.com/EternisAI/lockfleet/internal/tuya"
)

// TicketSource issues single-use tickets.
type TicketSource interface {
	Acquire(ctx context.Context, deviceID string) (*ticket.Ticket, error)
}

type Service struct {
	client   tuya.Requester
	tickets  TicketSource
	secret   string
	recorder audit.Recorder
	now      func() time.Time
}

func NewService(client tuya.Requester, tickets TicketSource, secret string, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.LogRecorder{}
	}
	return &Service{
		client:   client,
		tickets:  tickets,
		secret:   secret,
		recorder: recorder,
		now:      time.Now,
	}
}

// ProvisionTemporaryCode creates a temporary password on deviceID.
func (s *Service) ProvisionTemporaryCode(ctx context.Context, deviceID string, req Request) (CredentialID, error) {
	entry := audit.NewEntry(ctx, audit.OpProvisionTempPassword, deviceID)

	if err := validateTarget(deviceID, req); err != nil {
		s.finish(ctx, entry, err)
		return "", err
	}

	path := tuya.TempPasswordPath(deviceID)
	env, err := s.submitWithTicket(ctx, &entry, deviceID, req, http.MethodPost, path)
	if err != nil {
		s.finish(ctx, entry, err)
		return "", err
	}

	id := CredentialID(env.ResultID("id", "password_id"))
	if id == "" {
		err := failure.Protocol("temporary password response carries no id")
		s.finish(ctx, entry, err)
		return "", err
	}
	entry.CredentialID = string(id)
	s.finish(ctx, entry, nil)
	return id, nil
}

// ModifyTemporaryCode replaces the code and validity window of an existing
// temporary password. It needs its own ticket like a create does.
func (s *Service) ModifyTemporaryCode(ctx context.Context, deviceID, passwordID string, req Request) error {
	entry := audit.NewEntry(ctx, audit.OpModifyTempPassword, deviceID)
	entry.CredentialID = passwordID

	err := validateTarget(deviceID, req)
	if err == nil && strings.TrimSpace(passwordID) == "" {
		err = failure.Validation("password id is required")
	}
	if err != nil {
		s.finish(ctx, entry, err)
		return err
	}

	path := tuya.ModifyTempPasswordPath(deviceID, passwordID)
	_, err = s.submitWithTicket(ctx, &entry, deviceID, req, http.MethodPut, path)
	s.finish(ctx, entry, err)
	return err
}

// RemoteUnlock opens the lock without a code. The ticket only authorises the
// operation; its key is never derived.
func (s *Service) RemoteUnlock(ctx context.Context, deviceID string) error {
	entry := audit.NewEntry(ctx, audit.OpRemoteUnlock, deviceID)

	tk, err := s.tickets.Acquire(ctx, deviceID)
	if err != nil {
		s.finish(ctx, entry, err)
		return err
	}
	entry.TicketID = tk.ID
	if err := s.checkTicket(tk); err != nil {
		s.finish(ctx, entry, err)
		return err
	}

	err = s.call(ctx, tuya.Request{
		Method: http.MethodPost,
		Path:   tuya.DoorOperatePath(deviceID),
		Body:   map[string]any{"ticket_id": tk.ID, "open": true},
	})
	s.finish(ctx, entry, err)
	return err
}

// DeleteTemporaryCode removes a temporary password from the lock.
func (s *Service) DeleteTemporaryCode(ctx context.Context, deviceID, passwordID string) error {
	return s.passwordAction(ctx, audit.OpDeleteTempPassword, deviceID, passwordID,
		http.MethodDelete, tuya.DeleteTempPasswordPath)
}

// FreezeTemporaryCode suspends a temporary password without deleting it.
func (s *Service) FreezeTemporaryCode(ctx context.Context, deviceID, passwordID string) error {
	return s.passwordAction(ctx, audit.OpFreezeTempPassword, deviceID, passwordID,
		http.MethodPut, tuya.FreezeTempPasswordPath)
}

// UnfreezeTemporaryCode reactivates a frozen temporary password.
func (s *Service) UnfreezeTemporaryCode(ctx context.Context, deviceID, passwordID string) error {
	return s.passwordAction(ctx, audit.OpUnfreezeTempPassword, deviceID, passwordID,
		http.MethodPut, tuya.UnfreezeTempPasswordPath)
}

func (s *Service) passwordAction(ctx context.Context, op audit.Operation, deviceID, passwordID, method string, path func(string, string) string) error {
	entry := audit.NewEntry(ctx, op, deviceID)
	entry.CredentialID = passwordID

	err := requireIDs(deviceID, passwordID)
	if err == nil {
		err = s.call(ctx, tuya.Request{Method: method, Path: path(deviceID, passwordID)})
	}
	s.finish(ctx, entry, err)
	return err
}

// ClearTemporaryCodes removes every temporary password on the lock.
func (s *Service) ClearTemporaryCodes(ctx context.Context, deviceID string) error {
	entry := audit.NewEntry(ctx, audit.OpClearTempPasswords, deviceID)

	err := requireDevice(deviceID)
	if err == nil {
		err = s.call(ctx, tuya.Request{Method: http.MethodPost, Path: tuya.ResetTempPasswordsPath(deviceID)})
	}
	s.finish(ctx, entry, err)
	return err
}

// AssignCredential binds an unassigned unlock method to a lock user.
func (s *Service) AssignCredential(ctx context.Context, deviceID, userID string, key KeyRef) error {
	entry := audit.NewEntry(ctx, audit.OpAssignCredential, deviceID)
	entry.Subject = userID
	entry.CredentialID = key.String()

	err := requireUser(deviceID, userID)
	if err == nil {
		err = key.Validate()
	}
	if err == nil {
		err = s.call(ctx, tuya.Request{
			Method: http.MethodPost,
			Path:   tuya.AllocateCredentialPath(deviceID, userID),
			Body:   key,
		})
	}
	s.finish(ctx, entry, err)
	return err
}

// UnbindCredentials releases unlock methods from a lock user. They become
// unassigned again.
func (s *Service) UnbindCredentials(ctx context.Context, deviceID, userID string, keys []KeyRef) error {
	entry := audit.NewEntry(ctx, audit.OpUnbindCredentials, deviceID)
	entry.Subject = userID
	refs := make([]string, len(keys))
	for i, k := range keys {
		refs[i] = k.String()
	}
	entry.CredentialID = strings.Join(refs, ",")

	err := requireUser(deviceID, userID)
	if err == nil && len(keys) == 0 {
		err = failure.Validation("at least one key is required")
	}
	for _, k := range keys {
		if err != nil {
			break
		}
		err = k.Validate()
	}
	if err == nil {
		err = s.call(ctx, tuya.Request{
			Method: http.MethodPost,
			Path:   tuya.CancelAllocatePath(deviceID),
			Body:   map[string]any{"user_id": userID, "unlock_list": keys},
		})
	}
	s.finish(ctx, entry, err)
	return err
}

// call sends a request whose result carries nothing beyond success.
func (s *Service) call(ctx context.Context, req tuya.Request) error {
	raw, err := s.client.Do(ctx, req)
	if err != nil {
		return err
	}
	_, err = envelope.Parse(raw, envelope.VersionOf(req.Path))
	return err
}

func requireDevice(deviceID string) error {
	if strings.TrimSpace(deviceID) == "" {
		return failure.Validation("device id is required")
	}
	return nil
}

func requireIDs(deviceID, passwordID string) error {
	if err := requireDevice(deviceID); err != nil {
		return err
	}
	if strings.TrimSpace(passwordID) == "" {
		return failure.Validation("password id is required")
	}
	return nil
}

func requireUser(deviceID, userID string) error {
	if err := requireDevice(deviceID); err != nil {
		return err
	}
	if strings.TrimSpace(userID) == "" {
		return failure.Validation("user id is required")
	}
	return nil
}

func validateTarget(deviceID string, req Request) error {
	if err := requireDevice(deviceID); err != nil {
		return err
	}
	return req.Validate()
}

// submitWithTicket runs acquire, derive, encrypt, submit. The ticket and key
// are local to this call and the key is wiped before returning.
func (s *Service) submitWithTicket(ctx context.Context, entry *audit.Entry, deviceID string, req Request, method, path string) (*envelope.Envelope, error) {
	tk, err := s.tickets.Acquire(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	entry.TicketID = tk.ID
	entry.Protocol = lockcrypto.Protocol
	if err := s.checkTicket(tk); err != nil {
		return nil, err
	}

	key, err := lockcrypto.DeriveKey(tk.EncryptedKey, s.secret)
	defer key.Wipe()
	if err != nil {
		return nil, err
	}

	cipherHex, err := lockcrypto.EncryptCode(req.Password, key)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Do(ctx, tuya.Request{
		Method: method,
		Path:   path,
		Body:   newPayload(req, tk.ID, cipherHex),
	})
	if err != nil {
		return nil, err
	}
	return envelope.Parse(raw, envelope.VersionOf(path))
}

// checkTicket refuses a ticket whose validity window has already closed.
func (s *Service) checkTicket(tk *ticket.Ticket) error {
	if tk.Expired(s.now()) {
		return failure.Protocol("ticket %s expired at %s before use", tk.ID, tk.ExpiresAt().UTC().Format(time.RFC3339))
	}
	return nil
}

func (s *Service) finish(ctx context.Context, entry audit.Entry, err error) {
	entry.Outcome = audit.OutcomeSuccess
	if err != nil {
		entry.Outcome = audit.OutcomeFailure
		entry.ErrorKind = failure.KindOf(err).String()
		entry.Message = failure.Message(err)
		if !errors.Is(err, failure.ErrValidation) {
			slog.WarnContext(ctx, "Credential operation failed",
				"operation", string(entry.Operation),
				"device_id", entry.DeviceID,
				"ticket_id", entry.TicketID,
				"error", err)
		}
	}
	if rerr := s.recorder.Record(ctx, entry); rerr != nil {
		slog.ErrorContext(ctx, "Failed to record audit entry", "error", rerr, "audit_id", entry.ID.String())
	}
}
