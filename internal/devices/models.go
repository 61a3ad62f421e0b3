package devices

import (
	"strings"
	"time"

	"github.com/EternisAI/lockfleet/internal/envelope"
)

// StatusPoint is one data point reported by a device.
type StatusPoint struct {
	Code  string `json:"code"`
	Value any    `json:"value"`
}

// Device is the canonical device record. Every field is populated; values the
// vendor omitted carry their zero default.
type Device struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Online      bool          `json:"online"`
	Category    string        `json:"category"`
	ProductID   string        `json:"product_id"`
	ProductName string        `json:"product_name"`
	Model       string        `json:"model"`
	IP          string        `json:"ip"`
	TimeZone    string        `json:"time_zone"`
	Icon        string        `json:"icon"`
	ActiveTime  int64         `json:"active_time"`
	UpdateTime  int64         `json:"update_time"`
	Status      []StatusPoint `json:"status"`
}

type User struct {
	ID       string `json:"user_id"`
	NickName string `json:"nick_name"`
	Avatar   string `json:"avatar"`
	Role     string `json:"role"`
}

// Credential is an unlock method (fingerprint, card, password) known to a lock.
type Credential struct {
	No         int64  `json:"no"`
	UnlockType string `json:"unlock_type"`
	Name       string `json:"name"`
	SN         int64  `json:"sn"`
}

// Temporary password phases, normalised from the vendor's numeric codes.
const (
	PhasePending = "pending"
	PhaseActive  = "active"
	PhaseFrozen  = "frozen"
	PhaseDeleted = "deleted"
	PhaseFailed  = "failed"
	PhaseUnknown = "unknown"
)

// TempCode describes a temporary password. The access code itself is never
// returned by the vendor.
type TempCode struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Phase         string `json:"phase"`
	EffectiveTime int64  `json:"effective_time"`
	InvalidTime   int64  `json:"invalid_time"`
	Phone         string `json:"phone"`
}

type MediaInfo struct {
	FileKey string `json:"file_key"`
	FileURL string `json:"file_url"`
}

// LogRecord is one alarm or unlock event.
type LogRecord struct {
	UserID     string        `json:"user_id"`
	NickName   string        `json:"nick_name"`
	UpdateTime int64         `json:"update_time"`
	Status     []StatusPoint `json:"status"`
	MediaInfos []MediaInfo   `json:"media_infos"`
}

type LogPage struct {
	Records []LogRecord `json:"records"`
	Total   int64       `json:"total"`
	HasMore bool        `json:"has_more"`
}

// Key names that drift between vendor API versions, most specific first.
var (
	onlineKeys     = []string{"is_online", "online"}
	nameKeys       = []string{"name", "custom_name", "device_name"}
	productIDKeys  = []string{"product_id", "productId"}
	productKeys    = []string{"product_name", "productName"}
	modelKeys      = []string{"model", "device_model"}
	timeZoneKeys   = []string{"time_zone", "timeZone"}
	activeTimeKeys = []string{"active_time", "activeTime"}
	updateTimeKeys = []string{"update_time", "updateTime"}
	userIDKeys     = []string{"user_id", "uid", "id"}
	nickNameKeys   = []string{"nick_name", "nickName", "name"}
	roleKeys       = []string{"role", "user_type", "userType"}
	avatarKeys     = []string{"avatar", "avatar_url"}
	unlockTypeKeys = []string{"unlock_type", "opmode", "dp_code"}
	unlockNoKeys   = []string{"no", "unlock_no", "unlock_sn"}
	unlockNameKeys = []string{"unlock_name", "name"}
	passwordIDKeys = []string{"id", "password_id"}
	phaseKeys      = []string{"phase", "status"}
	effectiveKeys  = []string{"effective_time", "effectiveTime"}
	invalidKeys    = []string{"invalid_time", "invalidTime"}
)

func deviceFromFields(f envelope.Fields) Device {
	d := Device{
		ID:          f.String("id", "device_id"),
		Name:        f.String(nameKeys...),
		Category:    f.String("category"),
		ProductID:   f.String(productIDKeys...),
		ProductName: f.String(productKeys...),
		Model:       f.String(modelKeys...),
		IP:          f.String("ip"),
		TimeZone:    f.String(timeZoneKeys...),
		Icon:        f.String("icon"),
		Status:      []StatusPoint{},
	}
	d.Online, _ = f.Bool(onlineKeys...)
	d.ActiveTime, _ = f.Int(activeTimeKeys...)
	d.UpdateTime, _ = f.Int(updateTimeKeys...)

	var status envelope.List[StatusPoint]
	if ok, err := f.Into(&status, "status"); ok && err == nil {
		d.Status = status
	}
	return d
}

func userFromFields(f envelope.Fields) User {
	u := User{
		ID:       f.String(userIDKeys...),
		NickName: f.String(nickNameKeys...),
		Avatar:   f.String(avatarKeys...),
		Role:     normalizeRole(f.String(roleKeys...)),
	}
	return u
}

// Roles arrive as names in v1.0 and as numeric user types elsewhere.
func normalizeRole(r string) string {
	switch r {
	case "admin", "1", "10", "ADMIN":
		return "admin"
	case "", "normal", "0", "20", "NORMAL", "member":
		return "normal"
	default:
		return r
	}
}

func credentialFromFields(f envelope.Fields) Credential {
	c := Credential{
		UnlockType: f.String(unlockTypeKeys...),
		Name:       f.String(unlockNameKeys...),
	}
	c.No, _ = f.Int(unlockNoKeys...)
	c.SN, _ = f.Int("unlock_sn", "sn")
	return c
}

func tempCodeFromFields(f envelope.Fields) TempCode {
	c := TempCode{
		ID:    f.String(passwordIDKeys...),
		Name:  f.String("name"),
		Phase: normalizePhase(f.String(phaseKeys...)),
		Phone: f.String("phone"),
	}
	c.EffectiveTime, _ = f.Int(effectiveKeys...)
	c.InvalidTime, _ = f.Int(invalidKeys...)
	return c
}

func normalizePhase(p string) string {
	switch strings.ToLower(p) {
	case "1", PhasePending:
		return PhasePending
	case "2", PhaseActive:
		return PhaseActive
	case "3", PhaseFrozen:
		return PhaseFrozen
	case "0", "4", PhaseDeleted:
		return PhaseDeleted
	case "5", "7", PhaseFailed:
		return PhaseFailed
	default:
		return PhaseUnknown
	}
}

func logRecordFromFields(f envelope.Fields) LogRecord {
	r := LogRecord{
		UserID:     f.String("user_id", "uid"),
		NickName:   f.String(nickNameKeys...),
		Status:     []StatusPoint{},
		MediaInfos: []MediaInfo{},
	}
	r.UpdateTime, _ = f.Int(updateTimeKeys...)

	var status envelope.List[StatusPoint]
	if ok, err := f.Into(&status, "status"); ok && err == nil {
		r.Status = status
	}
	var media envelope.List[MediaInfo]
	if ok, err := f.Into(&media, "media_infos", "media_info"); ok && err == nil {
		r.MediaInfos = media
	}
	return r
}

// QueryDefaults holds the named defaults applied to log queries at the API
// boundary.
type QueryDefaults struct {
	Window        time.Duration `mapstructure:"window"`
	UnlockPage    int           `mapstructure:"unlock_page_size"`
	AlarmPage     int           `mapstructure:"alarm_page_size"`
	MaxPageSize   int           `mapstructure:"max_page_size"`
	AlarmCodes    []string      `mapstructure:"alarm_codes"`
	ShowMediaInfo bool          `mapstructure:"show_media_info"`
}

func DefaultQueryDefaults() QueryDefaults {
	return QueryDefaults{
		Window:      7 * 24 * time.Hour,
		UnlockPage:  20,
		AlarmPage:   10,
		MaxPageSize: 100,
		AlarmCodes: []string{
			"alarm_lock", "alarm_battery_low", "alarm_tamper", "alarm_duress",
			"alarm_break_in", "alarm_vibration", "alarm_door_open",
		},
		ShowMediaInfo: true,
	}
}

// withFallbacks fills any unset field from DefaultQueryDefaults.
func (q QueryDefaults) withFallbacks() QueryDefaults {
	def := DefaultQueryDefaults()
	if q.Window <= 0 {
		q.Window = def.Window
	}
	if q.UnlockPage <= 0 {
		q.UnlockPage = def.UnlockPage
	}
	if q.AlarmPage <= 0 {
		q.AlarmPage = def.AlarmPage
	}
	if q.MaxPageSize <= 0 {
		q.MaxPageSize = def.MaxPageSize
	}
	if len(q.AlarmCodes) == 0 {
		q.AlarmCodes = def.AlarmCodes
	}
	return q
}

// LogQuery is a caller's log request. Zero fields take the configured defaults.
type LogQuery struct {
	Start    time.Time
	End      time.Time
	PageNo   int
	PageSize int
}
