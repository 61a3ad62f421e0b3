// Package sandbox emulates the subset of the lock vendor cloud used by
// lockfleet, so the server can run without real devices.
package sandbox

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/EternisAI/lockfleet/internal/lockcrypto"
	"github.com/EternisAI/lockfleet/internal/tuya"
	"github.com/google/uuid"
)

const (
	ticketTTL = 5 * time.Minute

	codeTicketInvalid  = 2008
	codeDeviceNotFound = 1106
	codeDeviceOffline  = 2001
	codeBadRequest     = 1109
	codeNoSuchPath     = 1108
	firstPasswordID    = 9001
)

// Vendor phase codes for temporary passwords.
const (
	phaseActive  = 2
	phaseFrozen  = 3
	phaseDeleted = 0
)

// TempPassword is a temporary password as stored by the emulated lock.
type TempPassword struct {
	ID            int64
	Name          string
	Code          string
	EffectiveTime int64
	InvalidTime   int64
	Type          int
	Phone         string
	Phase         int
}

type ticket struct {
	deviceID string
	key      lockcrypto.DerivedKey
	expires  time.Time
}

type device struct {
	ID          string
	Name        string
	Online      bool
	Category    string
	ProductName string
	Battery     int
	Users       []map[string]any
	Unassigned  []map[string]any
	Assigned    map[string][]map[string]any
	Alarms      []map[string]any
	Unlocks     []map[string]any
	Passwords   []TempPassword
}

// Vendor is an in-memory lock cloud. It implements tuya.Requester.
type Vendor struct {
	secret string
	appUID string
	now    func() time.Time

	mu      sync.Mutex
	devices map[string]*device
	tickets map[string]ticket
	nextPwd int64
	routes  []route
}

type handlerFunc func(params []string, req tuya.Request) (any, *vendorError)

type route struct {
	method  string
	pattern []string
	handle  handlerFunc
}

type vendorError struct {
	code int
	msg  string
}

// New seeds a vendor with two locks. secret must match the access secret
// the service derives keys with.
func New(secret, appUID string) *Vendor {
	v := &Vendor{
		secret:  secret,
		appUID:  appUID,
		now:     time.Now,
		devices: seedDevices(time.Now()),
		tickets: make(map[string]ticket),
		nextPwd: firstPasswordID,
	}
	v.routes = []route{
		v.route(http.MethodPost, tuya.PasswordTicketPath(":id"), v.issueTicket),
		v.route(http.MethodPost, tuya.TempPasswordPath(":id"), v.createTempPassword),
		v.route(http.MethodPut, tuya.ModifyTempPasswordPath(":id", ":pid"), v.modifyTempPassword),
		v.route(http.MethodGet, tuya.TempPasswordsPath(":id"), v.listTempPasswords),
		v.route(http.MethodGet, tuya.TempPasswordDetailPath(":id", ":pid"), v.tempPasswordDetail),
		v.route(http.MethodDelete, tuya.DeleteTempPasswordPath(":id", ":pid"), v.deleteTempPassword),
		v.route(http.MethodPut, tuya.FreezeTempPasswordPath(":id", ":pid"), v.setPhase(phaseFrozen)),
		v.route(http.MethodPut, tuya.UnfreezeTempPasswordPath(":id", ":pid"), v.setPhase(phaseActive)),
		v.route(http.MethodPost, tuya.ResetTempPasswordsPath(":id"), v.resetTempPasswords),
		v.route(http.MethodPost, tuya.AllocateCredentialPath(":id", ":uid"), v.allocate),
		v.route(http.MethodPost, tuya.CancelAllocatePath(":id"), v.cancelAllocate),
		v.route(http.MethodGet, tuya.UserOpmodesPath(":id", ":uid"), v.userOpmodes),
		v.route(http.MethodPost, tuya.DoorOperatePath(":id"), v.doorOperate),
		v.route(http.MethodGet, tuya.UserDevicesPath(":uid"), v.listDevices),
		v.route(http.MethodGet, tuya.DeviceDetailPath(":id"), v.deviceDetail),
		v.route(http.MethodGet, tuya.DeviceStatusPath(":id"), v.deviceStatus),
		v.route(http.MethodGet, tuya.DeviceUsersPath(":id"), v.deviceUsers),
		v.route(http.MethodGet, tuya.UnassignedKeysPath(":id"), v.unassignedKeys),
		v.route(http.MethodGet, tuya.AlarmLogsPath(":id"), v.alarmLogs),
		v.route(http.MethodGet, tuya.UnlockLogsPath(":id"), v.unlockLogs),
	}
	return v
}

func (v *Vendor) route(method, pattern string, h handlerFunc) route {
	return route{method: method, pattern: strings.Split(pattern, "/"), handle: h}
}

func match(pattern []string, path string) ([]string, bool) {
	segs := strings.Split(path, "/")
	if len(segs) != len(pattern) {
		return nil, false
	}
	var params []string
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			s, err := url.PathUnescape(segs[i])
			if err != nil {
				return nil, false
			}
			params = append(params, s)
			continue
		}
		if p != segs[i] {
			return nil, false
		}
	}
	return params, true
}

// Do answers a request with a vendor envelope, the way the cloud would.
func (v *Vendor) Do(ctx context.Context, req tuya.Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	for _, r := range v.routes {
		if r.method != req.Method {
			continue
		}
		params, ok := match(r.pattern, req.Path)
		if !ok {
			continue
		}
		v.mu.Lock()
		result, verr := r.handle(params, req)
		v.mu.Unlock()
		if verr != nil {
			slog.DebugContext(ctx, "Sandbox vendor rejected request",
				"method", req.Method, "path", req.Path, "code", verr.code, "msg", verr.msg)
			return envelopeFailure(verr, v.now()), nil
		}
		return json.Marshal(map[string]any{"success": true, "result": result, "t": v.now().UnixMilli()})
	}
	return envelopeFailure(&vendorError{code: codeNoSuchPath, msg: "uri path invalid"}, v.now()), nil
}

func envelopeFailure(e *vendorError, now time.Time) []byte {
	b, _ := json.Marshal(map[string]any{"success": false, "code": e.code, "msg": e.msg, "t": now.UnixMilli()})
	return b
}

// ServeHTTP exposes the vendor over HTTP so tuya.Client can talk to it.
func (v *Vendor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := tuya.Request{Method: r.Method, Path: r.URL.EscapedPath(), Query: r.URL.Query()}
	if r.Body != nil {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(raw) > 0 {
			req.Body = json.RawMessage(raw)
		}
	}
	out, err := v.Do(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(out)
}

// Passwords returns the temporary passwords stored on a device.
func (v *Vendor) Passwords(deviceID string) []TempPassword {
	v.mu.Lock()
	defer v.mu.Unlock()
	d, ok := v.devices[deviceID]
	if !ok {
		return nil
	}
	out := make([]TempPassword, len(d.Passwords))
	copy(out, d.Passwords)
	return out
}

// SetOnline toggles a device's connectivity.
func (v *Vendor) SetOnline(deviceID string, online bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if d, ok := v.devices[deviceID]; ok {
		d.Online = online
	}
}

func (v *Vendor) device(id string) (*device, *vendorError) {
	d, ok := v.devices[id]
	if !ok {
		return nil, &vendorError{code: codeDeviceNotFound, msg: "permission deny"}
	}
	return d, nil
}

func decodeBody(req tuya.Request, dst any) *vendorError {
	var raw []byte
	switch b := req.Body.(type) {
	case nil:
		return &vendorError{code: codeBadRequest, msg: "param is empty"}
	case json.RawMessage:
		raw = b
	case []byte:
		raw = b
	default:
		var err error
		if raw, err = json.Marshal(b); err != nil {
			return &vendorError{code: codeBadRequest, msg: "param is illegal"}
		}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &vendorError{code: codeBadRequest, msg: "param is illegal"}
	}
	return nil
}

func (v *Vendor) issueTicket(params []string, _ tuya.Request) (any, *vendorError) {
	if _, verr := v.device(params[0]); verr != nil {
		return nil, verr
	}

	var plain [lockcrypto.KeySize]byte
	if _, err := rand.Read(plain[:]); err != nil {
		return nil, &vendorError{code: 500, msg: "system error"}
	}
	sealed, err := lockcrypto.SealTicketKey(plain[:], v.secret)
	if err != nil {
		return nil, &vendorError{code: 500, msg: "system error"}
	}

	id := uuid.NewString()
	v.tickets[id] = ticket{deviceID: params[0], key: lockcrypto.DerivedKey(plain), expires: v.now().Add(ticketTTL)}
	return map[string]any{
		"ticket_id":   id,
		"ticket_key":  sealed,
		"expire_time": int64(ticketTTL / time.Second),
	}, nil
}

// consumeTicket removes a ticket so that it serves exactly one request.
func (v *Vendor) consumeTicket(id, deviceID string) (lockcrypto.DerivedKey, *vendorError) {
	t, ok := v.tickets[id]
	delete(v.tickets, id)
	if !ok || t.deviceID != deviceID || v.now().After(t.expires) {
		return lockcrypto.DerivedKey{}, &vendorError{code: codeTicketInvalid, msg: "ticket expired"}
	}
	return t.key, nil
}

type passwordBody struct {
	Name          string `json:"name"`
	Password      string `json:"password"`
	PasswordType  string `json:"password_type"`
	TicketID      string `json:"ticket_id"`
	EffectiveTime int64  `json:"effective_time"`
	InvalidTime   int64  `json:"invalid_time"`
	Type          int    `json:"type"`
	Phone         string `json:"phone"`
}

func (v *Vendor) openPassword(deviceID string, req tuya.Request) (passwordBody, string, *vendorError) {
	var body passwordBody
	if verr := decodeBody(req, &body); verr != nil {
		return body, "", verr
	}
	if body.PasswordType != "ticket" {
		return body, "", &vendorError{code: codeBadRequest, msg: "password_type is illegal"}
	}
	key, verr := v.consumeTicket(body.TicketID, deviceID)
	if verr != nil {
		return body, "", verr
	}
	code, err := lockcrypto.DecryptCode(body.Password, key)
	if err != nil || lockcrypto.ValidateCode(code) != nil {
		return body, "", &vendorError{code: codeBadRequest, msg: "password decrypt failed"}
	}
	if body.EffectiveTime >= body.InvalidTime {
		return body, "", &vendorError{code: codeBadRequest, msg: "invalid_time must be after effective_time"}
	}
	return body, code, nil
}

func (v *Vendor) createTempPassword(params []string, req tuya.Request) (any, *vendorError) {
	d, verr := v.device(params[0])
	if verr != nil {
		return nil, verr
	}
	body, code, verr := v.openPassword(d.ID, req)
	if verr != nil {
		return nil, verr
	}
	if !d.Online {
		return nil, &vendorError{code: codeDeviceOffline, msg: "device is offline"}
	}

	id := v.nextPwd
	v.nextPwd++
	d.Passwords = append(d.Passwords, TempPassword{
		ID:            id,
		Name:          body.Name,
		Code:          code,
		EffectiveTime: body.EffectiveTime,
		InvalidTime:   body.InvalidTime,
		Type:          body.Type,
		Phone:         body.Phone,
		Phase:         phaseActive,
	})
	return map[string]any{"id": id}, nil
}

func (v *Vendor) modifyTempPassword(params []string, req tuya.Request) (any, *vendorError) {
	d, verr := v.device(params[0])
	if verr != nil {
		return nil, verr
	}
	p, verr := d.password(params[1])
	if verr != nil {
		return nil, verr
	}
	body, code, verr := v.openPassword(d.ID, req)
	if verr != nil {
		return nil, verr
	}
	p.Name = body.Name
	p.Code = code
	p.EffectiveTime = body.EffectiveTime
	p.InvalidTime = body.InvalidTime
	p.Phone = body.Phone
	return true, nil
}

// password finds a temporary password that has not been deleted.
func (d *device) password(rawID string) (*TempPassword, *vendorError) {
	pid, err := strconv.ParseInt(rawID, 10, 64)
	if err == nil {
		for i := range d.Passwords {
			if p := &d.Passwords[i]; p.ID == pid && p.Phase != phaseDeleted {
				return p, nil
			}
		}
	}
	return nil, &vendorError{code: codeBadRequest, msg: "password not exist"}
}

func (p TempPassword) view() map[string]any {
	return map[string]any{
		"id":             p.ID,
		"name":           p.Name,
		"phase":          p.Phase,
		"effective_time": p.EffectiveTime,
		"invalid_time":   p.InvalidTime,
		"phone":          p.Phone,
	}
}

func (v *Vendor) listTempPasswords(params []string, req tuya.Request) (any, *vendorError) {
	d, verr := v.device(params[0])
	if verr != nil {
		return nil, verr
	}
	validOnly := req.Query.Get("valid") == "true"
	out := make([]map[string]any, 0, len(d.Passwords))
	for _, p := range d.Passwords {
		if validOnly && (p.Phase == phaseDeleted || v.now().Unix() >= p.InvalidTime) {
			continue
		}
		out = append(out, p.view())
	}
	return out, nil
}

func (v *Vendor) tempPasswordDetail(params []string, _ tuya.Request) (any, *vendorError) {
	d, verr := v.device(params[0])
	if verr != nil {
		return nil, verr
	}
	p, verr := d.password(params[1])
	if verr != nil {
		return nil, verr
	}
	return p.view(), nil
}

func (v *Vendor) deleteTempPassword(params []string, _ tuya.Request) (any, *vendorError) {
	d, verr := v.device(params[0])
	if verr != nil {
		return nil, verr
	}
	p, verr := d.password(params[1])
	if verr != nil {
		return nil, verr
	}
	if !d.Online {
		return nil, &vendorError{code: codeDeviceOffline, msg: "device is offline"}
	}
	p.Phase = phaseDeleted
	return true, nil
}

func (v *Vendor) setPhase(phase int) handlerFunc {
	return func(params []string, _ tuya.Request) (any, *vendorError) {
		d, verr := v.device(params[0])
		if verr != nil {
			return nil, verr
		}
		p, verr := d.password(params[1])
		if verr != nil {
			return nil, verr
		}
		if !d.Online {
			return nil, &vendorError{code: codeDeviceOffline, msg: "device is offline"}
		}
		p.Phase = phase
		return true, nil
	}
}

func (v *Vendor) resetTempPasswords(params []string, _ tuya.Request) (any, *vendorError) {
	d, verr := v.device(params[0])
	if verr != nil {
		return nil, verr
	}
	if !d.Online {
		return nil, &vendorError{code: codeDeviceOffline, msg: "device is offline"}
	}
	for i := range d.Passwords {
		d.Passwords[i].Phase = phaseDeleted
	}
	return true, nil
}

type keyRef struct {
	No   int64  `json:"no"`
	Type string `json:"type"`
}

func (k keyRef) matches(m map[string]any) bool {
	var no int64
	switch n := m["unlock_no"].(type) {
	case int:
		no = int64(n)
	case int64:
		no = n
	case float64:
		no = int64(n)
	}
	return no == k.No && m["unlock_type"] == k.Type
}

func (d *device) hasUser(uid string) bool {
	for _, u := range d.Users {
		if u["user_id"] == uid || u["uid"] == uid {
			return true
		}
	}
	return false
}

func takeKey(keys []map[string]any, k keyRef) ([]map[string]any, map[string]any) {
	for i, m := range keys {
		if k.matches(m) {
			return append(keys[:i:i], keys[i+1:]...), m
		}
	}
	return keys, nil
}

// allocate moves an unassigned key to a user.
func (v *Vendor) allocate(params []string, req tuya.Request) (any, *vendorError) {
	d, verr := v.device(params[0])
	if verr != nil {
		return nil, verr
	}
	if !d.hasUser(params[1]) {
		return nil, &vendorError{code: codeBadRequest, msg: "user not exist"}
	}
	var k keyRef
	if verr := decodeBody(req, &k); verr != nil {
		return nil, verr
	}
	rest, key := takeKey(d.Unassigned, k)
	if key == nil {
		return nil, &vendorError{code: codeBadRequest, msg: "unlock key not exist"}
	}
	d.Unassigned = rest
	if d.Assigned == nil {
		d.Assigned = make(map[string][]map[string]any)
	}
	d.Assigned[params[1]] = append(d.Assigned[params[1]], key)
	return true, nil
}

// cancelAllocate returns a user's keys to the unassigned pool. Either every
// listed key moves or none does.
func (v *Vendor) cancelAllocate(params []string, req tuya.Request) (any, *vendorError) {
	d, verr := v.device(params[0])
	if verr != nil {
		return nil, verr
	}
	var body struct {
		UserID     string   `json:"user_id"`
		UnlockList []keyRef `json:"unlock_list"`
	}
	if verr := decodeBody(req, &body); verr != nil {
		return nil, verr
	}
	if len(body.UnlockList) == 0 {
		return nil, &vendorError{code: codeBadRequest, msg: "unlock_list is empty"}
	}

	held := append([]map[string]any(nil), d.Assigned[body.UserID]...)
	var freed []map[string]any
	for _, k := range body.UnlockList {
		var key map[string]any
		if held, key = takeKey(held, k); key == nil {
			return nil, &vendorError{code: codeBadRequest, msg: "unlock key not exist"}
		}
		freed = append(freed, key)
	}
	d.Assigned[body.UserID] = held
	d.Unassigned = append(d.Unassigned, freed...)
	return true, nil
}

func (v *Vendor) userOpmodes(params []string, _ tuya.Request) (any, *vendorError) {
	d, verr := v.device(params[0])
	if verr != nil {
		return nil, verr
	}
	if !d.hasUser(params[1]) {
		return nil, &vendorError{code: codeBadRequest, msg: "user not exist"}
	}
	keys := d.Assigned[params[1]]
	if keys == nil {
		keys = []map[string]any{}
	}
	return keys, nil
}

func (v *Vendor) doorOperate(params []string, req tuya.Request) (any, *vendorError) {
	d, verr := v.device(params[0])
	if verr != nil {
		return nil, verr
	}
	var body struct {
		TicketID string `json:"ticket_id"`
		Open     bool   `json:"open"`
	}
	if verr := decodeBody(req, &body); verr != nil {
		return nil, verr
	}
	if _, verr := v.consumeTicket(body.TicketID, d.ID); verr != nil {
		return nil, verr
	}
	if !d.Online {
		return nil, &vendorError{code: codeDeviceOffline, msg: "device is offline"}
	}
	if body.Open {
		d.Unlocks = append(d.Unlocks, map[string]any{
			"user_id":     "",
			"nick_name":   "remote",
			"update_time": v.now().UnixMilli(),
			"status":      map[string]any{"code": "unlock_app", "value": 1},
		})
	}
	return true, nil
}

func (v *Vendor) listDevices(params []string, _ tuya.Request) (any, *vendorError) {
	if v.appUID != "" && params[0] != v.appUID {
		return nil, &vendorError{code: codeDeviceNotFound, msg: "permission deny"}
	}
	out := make([]map[string]any, 0, len(v.devices))
	for _, d := range v.sortedDevices() {
		out = append(out, map[string]any{
			"id":       d.ID,
			"name":     d.Name,
			"online":   d.Online,
			"category": d.Category,
			"status":   d.status(),
		})
	}
	return out, nil
}

func (v *Vendor) sortedDevices() []*device {
	out := make([]*device, 0, len(v.devices))
	for _, d := range v.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (d *device) status() []map[string]any {
	return []map[string]any{
		{"code": "residual_electricity", "value": d.Battery},
		{"code": "closed_opened", "value": "closed"},
	}
}

func (v *Vendor) deviceDetail(params []string, _ tuya.Request) (any, *vendorError) {
	d, verr := v.device(params[0])
	if verr != nil {
		return nil, verr
	}
	return map[string]any{
		"id":          d.ID,
		"name":        d.Name,
		"isOnline":    d.Online,
		"is_online":   d.Online,
		"category":    d.Category,
		"productName": d.ProductName,
		"time_zone":   "+00:00",
		"activeTime":  1700000000,
	}, nil
}

func (v *Vendor) deviceStatus(params []string, _ tuya.Request) (any, *vendorError) {
	d, verr := v.device(params[0])
	if verr != nil {
		return nil, verr
	}
	return d.status(), nil
}

func (v *Vendor) deviceUsers(params []string, _ tuya.Request) (any, *vendorError) {
	d, verr := v.device(params[0])
	if verr != nil {
		return nil, verr
	}
	return d.Users, nil
}

func (v *Vendor) unassignedKeys(params []string, req tuya.Request) (any, *vendorError) {
	d, verr := v.device(params[0])
	if verr != nil {
		return nil, verr
	}
	want := req.Query.Get("unlock_type")
	keys := make([]map[string]any, 0, len(d.Unassigned))
	for _, k := range d.Unassigned {
		if want == "" || k["unlock_type"] == want {
			keys = append(keys, k)
		}
	}
	return map[string]any{"unlock_keys": keys}, nil
}

func (v *Vendor) alarmLogs(params []string, req tuya.Request) (any, *vendorError) {
	d, verr := v.device(params[0])
	if verr != nil {
		return nil, verr
	}
	return page(d.Alarms, req.Query, "records")
}

func (v *Vendor) unlockLogs(params []string, req tuya.Request) (any, *vendorError) {
	d, verr := v.device(params[0])
	if verr != nil {
		return nil, verr
	}
	return page(d.Unlocks, req.Query, "logs")
}

// page filters records by the millisecond window and slices out one page.
func page(records []map[string]any, q url.Values, key string) (any, *vendorError) {
	start, err1 := strconv.ParseInt(q.Get("start_time"), 10, 64)
	end, err2 := strconv.ParseInt(q.Get("end_time"), 10, 64)
	pageNo, err3 := strconv.Atoi(q.Get("page_no"))
	size, err4 := strconv.Atoi(q.Get("page_size"))
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || pageNo < 1 || size < 1 {
		return nil, &vendorError{code: codeBadRequest, msg: "param is illegal"}
	}

	var hits []map[string]any
	for i := len(records) - 1; i >= 0; i-- {
		ts, _ := records[i]["update_time"].(int64)
		if ts >= start && ts <= end {
			hits = append(hits, records[i])
		}
	}
	from := (pageNo - 1) * size
	if from > len(hits) {
		from = len(hits)
	}
	to := from + size
	if to > len(hits) {
		to = len(hits)
	}
	return map[string]any{
		key:        hits[from:to],
		"total":    len(hits),
		"has_more": to < len(hits),
	}, nil
}

func seedDevices(now time.Time) map[string]*device {
	recent := func(d time.Duration) int64 { return now.Add(-d).UnixMilli() }
	front := &device{
		ID:          "lock-front-door",
		Name:        "Front door",
		Online:      true,
		Category:    "jtmspro",
		ProductName: "WiFi Smart Lock",
		Battery:     87,
		Users: []map[string]any{
			{"user_id": "u-owner", "nick_name": "Owner", "role": "admin"},
			{"uid": "u-guest", "nickName": "Guest", "user_type": 20},
		},
		Unassigned: []map[string]any{
			{"unlock_no": 1, "unlock_type": "fingerprint", "unlock_name": "right thumb"},
			{"unlock_no": 2, "unlock_type": "card", "unlock_name": "blue fob"},
		},
		Alarms: []map[string]any{
			{"nick_name": "", "update_time": recent(26 * time.Hour), "status": map[string]any{"code": "alarm_lock", "value": "wrong_finger"}},
			{"nick_name": "", "update_time": recent(2 * time.Hour), "status": []map[string]any{{"code": "alarm_battery_low", "value": 18}}},
		},
		Unlocks: []map[string]any{
			{"user_id": "u-owner", "nick_name": "Owner", "update_time": recent(3 * time.Hour), "status": map[string]any{"code": "unlock_fingerprint", "value": 1}},
		},
	}
	back := &device{
		ID:          "lock-back-door",
		Name:        "Back door",
		Online:      false,
		Category:    "jtmspro",
		ProductName: "WiFi Smart Lock",
		Battery:     12,
		Users:       []map[string]any{{"user_id": "u-owner", "nick_name": "Owner", "role": "admin"}},
	}
	return map[string]*device{front.ID: front, back.ID: back}
}
