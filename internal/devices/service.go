// Package devices reads device, user and credential state from the vendor and
// normalises it into canonical records regardless of the API version that
// answered.
package devices

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/EternisAI/lockfleet/internal/envelope"
	"github.com/EternisAI/lockfleet/internal/failure"
	"github.com/EternisAI/lockfleet/internal/tuya"
)

type Synchronizer struct {
	client   tuya.Requester
	appUID   string
	defaults QueryDefaults
	now      func() time.Time
}

func NewSynchronizer(client tuya.Requester, appUID string, defaults QueryDefaults) *Synchronizer {
	return &Synchronizer{
		client:   client,
		appUID:   appUID,
		defaults: defaults.withFallbacks(),
		now:      time.Now,
	}
}

func (s *Synchronizer) get(ctx context.Context, path string, query url.Values) (*envelope.Envelope, error) {
	raw, err := s.client.Do(ctx, tuya.Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return nil, err
	}
	return envelope.Parse(raw, envelope.VersionOf(path))
}

func requireID(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return failure.Validation("%s is required", name)
	}
	return nil
}

// ListDevices lists every device bound to the configured app account.
func (s *Synchronizer) ListDevices(ctx context.Context) ([]Device, error) {
	if s.appUID == "" {
		return nil, &failure.Error{Kind: failure.KindInternal, Message: "app account uid is not configured"}
	}
	env, err := s.get(ctx, tuya.UserDevicesPath(s.appUID), nil)
	if err != nil {
		return nil, err
	}

	// v1.0 returns a bare list; newer versions wrap it as {devices|list: [...]}.
	var items envelope.List[envelope.Fields]
	if err := env.Into(&items); err != nil {
		return nil, err
	}
	if len(items) == 1 && items[0].Has("devices", "list") {
		var inner envelope.List[envelope.Fields]
		if _, err := items[0].Into(&inner, "devices", "list"); err != nil {
			return nil, failure.Wrap(failure.KindProtocol, err, "unexpected device list shape")
		}
		items = inner
	}

	out := make([]Device, 0, len(items))
	for _, f := range items {
		out = append(out, deviceFromFields(f))
	}
	return out, nil
}

// GetDeviceDetail merges the v2.0 thing details with the v1.0 status list.
// The status call is authoritative for status points when the details carry
// none.
func (s *Synchronizer) GetDeviceDetail(ctx context.Context, deviceID string) (*Device, error) {
	if err := requireID("device id", deviceID); err != nil {
		return nil, err
	}

	env, err := s.get(ctx, tuya.DeviceDetailPath(deviceID), nil)
	if err != nil {
		return nil, err
	}
	var f envelope.Fields
	if err := env.Into(&f); err != nil {
		return nil, err
	}
	d := deviceFromFields(f)
	if d.ID == "" {
		d.ID = deviceID
	}

	status, err := s.GetDeviceStatus(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if len(status) > 0 {
		d.Status = status
	}
	return &d, nil
}

// GetDeviceStatus returns the status points of a device, always as a list.
func (s *Synchronizer) GetDeviceStatus(ctx context.Context, deviceID string) ([]StatusPoint, error) {
	if err := requireID("device id", deviceID); err != nil {
		return nil, err
	}
	env, err := s.get(ctx, tuya.DeviceStatusPath(deviceID), nil)
	if err != nil {
		return nil, err
	}
	var status envelope.List[StatusPoint]
	if err := env.Into(&status); err != nil {
		return nil, err
	}
	if status == nil {
		return []StatusPoint{}, nil
	}
	return status, nil
}

func (s *Synchronizer) ListUsers(ctx context.Context, deviceID string) ([]User, error) {
	if err := requireID("device id", deviceID); err != nil {
		return nil, err
	}
	env, err := s.get(ctx, tuya.DeviceUsersPath(deviceID), nil)
	if err != nil {
		return nil, err
	}

	var items envelope.List[envelope.Fields]
	if err := env.Into(&items); err != nil {
		return nil, err
	}
	if len(items) == 1 && items[0].Has("users", "list") {
		var inner envelope.List[envelope.Fields]
		if _, err := items[0].Into(&inner, "users", "list"); err != nil {
			return nil, failure.Wrap(failure.KindProtocol, err, "unexpected user list shape")
		}
		items = inner
	}

	out := make([]User, 0, len(items))
	for _, f := range items {
		out = append(out, userFromFields(f))
	}
	return out, nil
}

// ListUnassignedCredentials lists unlock methods not yet bound to a user. An
// empty unlockType lists every type.
func (s *Synchronizer) ListUnassignedCredentials(ctx context.Context, deviceID, unlockType string) ([]Credential, error) {
	if err := requireID("device id", deviceID); err != nil {
		return nil, err
	}
	var query url.Values
	if unlockType != "" {
		query = url.Values{"unlock_type": {unlockType}}
	}
	env, err := s.get(ctx, tuya.UnassignedKeysPath(deviceID), query)
	if err != nil {
		return nil, err
	}
	return keysFrom(env)
}

// ListUserCredentials lists the unlock methods bound to one lock user.
func (s *Synchronizer) ListUserCredentials(ctx context.Context, deviceID, userID string) ([]Credential, error) {
	if err := requireID("device id", deviceID); err != nil {
		return nil, err
	}
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	env, err := s.get(ctx, tuya.UserOpmodesPath(deviceID, userID), nil)
	if err != nil {
		return nil, err
	}
	return keysFrom(env)
}

// keysFrom accepts {unlock_keys: [...]}, {keys: [...]} or a bare list.
func keysFrom(env *envelope.Envelope) ([]Credential, error) {
	var f envelope.Fields
	if err := env.Into(&f); err != nil {
		var direct envelope.List[envelope.Fields]
		if derr := env.Into(&direct); derr != nil {
			return nil, err
		}
		return credentialsFrom(direct), nil
	}
	var keys envelope.List[envelope.Fields]
	if ok, err := f.Into(&keys, "unlock_keys", "keys"); ok && err != nil {
		return nil, failure.Wrap(failure.KindProtocol, err, "unexpected unlock_keys shape")
	}
	return credentialsFrom(keys), nil
}

func credentialsFrom(items []envelope.Fields) []Credential {
	out := make([]Credential, 0, len(items))
	for _, f := range items {
		out = append(out, credentialFromFields(f))
	}
	return out
}

// ListTemporaryCodes lists the temporary passwords on a lock. validOnly asks
// the vendor to leave out deleted and expired ones.
func (s *Synchronizer) ListTemporaryCodes(ctx context.Context, deviceID string, validOnly bool) ([]TempCode, error) {
	if err := requireID("device id", deviceID); err != nil {
		return nil, err
	}
	var query url.Values
	if validOnly {
		query = url.Values{"valid": {"true"}}
	}
	env, err := s.get(ctx, tuya.TempPasswordsPath(deviceID), query)
	if err != nil {
		return nil, err
	}

	var items envelope.List[envelope.Fields]
	if err := env.Into(&items); err != nil {
		return nil, err
	}
	if len(items) == 1 && items[0].Has("list", "passwords") {
		var inner envelope.List[envelope.Fields]
		if _, err := items[0].Into(&inner, "list", "passwords"); err != nil {
			return nil, failure.Wrap(failure.KindProtocol, err, "unexpected temporary password list shape")
		}
		items = inner
	}

	out := make([]TempCode, 0, len(items))
	for _, f := range items {
		out = append(out, tempCodeFromFields(f))
	}
	return out, nil
}

// GetTemporaryCode returns one temporary password.
func (s *Synchronizer) GetTemporaryCode(ctx context.Context, deviceID, passwordID string) (*TempCode, error) {
	if err := requireID("device id", deviceID); err != nil {
		return nil, err
	}
	if err := requireID("password id", passwordID); err != nil {
		return nil, err
	}
	env, err := s.get(ctx, tuya.TempPasswordDetailPath(deviceID, passwordID), nil)
	if err != nil {
		return nil, err
	}
	var f envelope.Fields
	if err := env.Into(&f); err != nil {
		return nil, err
	}
	c := tempCodeFromFields(f)
	if c.ID == "" {
		c.ID = passwordID
	}
	return &c, nil
}

// ListAlarmLogs lists alarm events, restricted to the configured alarm codes.
func (s *Synchronizer) ListAlarmLogs(ctx context.Context, deviceID string, q LogQuery) (*LogPage, error) {
	if err := requireID("device id", deviceID); err != nil {
		return nil, err
	}
	query := s.resolve(q, s.defaults.AlarmPage)
	query.Set("codes", strings.Join(s.defaults.AlarmCodes, ","))
	return s.logs(ctx, tuya.AlarmLogsPath(deviceID), query)
}

func (s *Synchronizer) ListUnlockLogs(ctx context.Context, deviceID string, q LogQuery) (*LogPage, error) {
	if err := requireID("device id", deviceID); err != nil {
		return nil, err
	}
	return s.logs(ctx, tuya.UnlockLogsPath(deviceID), s.resolve(q, s.defaults.UnlockPage))
}

// resolve applies QueryDefaults to a caller query once, producing vendor
// query parameters. Times are sent in milliseconds.
func (s *Synchronizer) resolve(q LogQuery, pageSize int) url.Values {
	end := q.End
	if end.IsZero() {
		end = s.now()
	}
	start := q.Start
	if start.IsZero() || !start.Before(end) {
		start = end.Add(-s.defaults.Window)
	}
	pageNo := q.PageNo
	if pageNo < 1 {
		pageNo = 1
	}
	if q.PageSize > 0 {
		pageSize = q.PageSize
	}
	if pageSize > s.defaults.MaxPageSize {
		pageSize = s.defaults.MaxPageSize
	}

	return url.Values{
		"start_time":      {strconv.FormatInt(start.UnixMilli(), 10)},
		"end_time":        {strconv.FormatInt(end.UnixMilli(), 10)},
		"page_no":         {strconv.Itoa(pageNo)},
		"page_size":       {strconv.Itoa(pageSize)},
		"show_media_info": {strconv.FormatBool(s.defaults.ShowMediaInfo)},
	}
}

func (s *Synchronizer) logs(ctx context.Context, path string, query url.Values) (*LogPage, error) {
	env, err := s.get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	var f envelope.Fields
	if err := env.Into(&f); err != nil {
		return nil, err
	}

	var records envelope.List[envelope.Fields]
	if ok, err := f.Into(&records, "records", "logs", "list"); ok && err != nil {
		return nil, failure.Wrap(failure.KindProtocol, err, "unexpected log records shape")
	}

	page := &LogPage{Records: make([]LogRecord, 0, len(records))}
	for _, r := range records {
		page.Records = append(page.Records, logRecordFromFields(r))
	}
	page.Total, _ = f.Int("total")
	if page.Total == 0 {
		page.Total = int64(len(page.Records))
	}
	page.HasMore, _ = f.Bool("has_more", "hasMore")
	return page, nil
}
