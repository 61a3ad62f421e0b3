package credentials

import (
	"strconv"
	"strings"

	"github.com/EternisAI/lockfleet/internal/failure"
	"github.com/EternisAI/lockfleet/internal/lockcrypto"
)

// CredentialID is the vendor id of a created temporary password.
type CredentialID string

const (
	TypeReusable = 0
	TypeOneTime  = 1

	passwordTypeTicket = "ticket"
)

// KeyRef names an unlock method (fingerprint, card, password) enrolled on a
// lock by its number and type.
type KeyRef struct {
	No   int64  `json:"no"`
	Type string `json:"type"`
}

func (k KeyRef) Validate() error {
	if k.No <= 0 {
		return failure.Validation("key number must be positive")
	}
	if strings.TrimSpace(k.Type) == "" {
		return failure.Validation("key type is required")
	}
	return nil
}

func (k KeyRef) String() string {
	return k.Type + "/" + strconv.FormatInt(k.No, 10)
}

// Request is what a caller supplies to create or modify a temporary password.
// Password is the plaintext access code.
type Request struct {
	Name          string
	Password      string
	EffectiveTime int64
	InvalidTime   int64
	Type          int
	Phone         string
	TimeZone      string
	CheckName     *bool
	IsRecord      *bool
	RelateDevices []string
}

// Validate checks every precondition that can be checked without the network.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return failure.Validation("name is required")
	}
	if r.Password == "" {
		return failure.Validation("password is required")
	}
	if r.EffectiveTime <= 0 {
		return failure.Validation("effective_time is required")
	}
	if r.InvalidTime <= 0 {
		return failure.Validation("invalid_time is required")
	}
	if r.EffectiveTime >= r.InvalidTime {
		return failure.Validation("effective_time must be before invalid_time")
	}
	if r.Type != TypeReusable && r.Type != TypeOneTime {
		return failure.Validation("type must be 0 (reusable) or 1 (one-time)")
	}
	return lockcrypto.ValidateCode(r.Password)
}

// Payload is the encrypted body submitted to the vendor. phone is always
// sent, even when empty. relate_dev_list only goes out when the caller names
// devices; the template endpoint binds the code to the path device otherwise.
type Payload struct {
	Name          string   `json:"name"`
	Password      string   `json:"password"`
	PasswordType  string   `json:"password_type"`
	TicketID      string   `json:"ticket_id"`
	EffectiveTime int64    `json:"effective_time"`
	InvalidTime   int64    `json:"invalid_time"`
	Type          int      `json:"type"`
	Phone         string   `json:"phone"`
	TimeZone      string   `json:"time_zone,omitempty"`
	CheckName     bool     `json:"check_name"`
	IsRecord      bool     `json:"is_record"`
	RelateDevList []string `json:"relate_dev_list,omitempty"`
}

func newPayload(r Request, ticketID, cipherHex string) Payload {
	p := Payload{
		Name:          strings.TrimSpace(r.Name),
		Password:      cipherHex,
		PasswordType:  passwordTypeTicket,
		TicketID:      ticketID,
		EffectiveTime: r.EffectiveTime,
		InvalidTime:   r.InvalidTime,
		Type:          r.Type,
		Phone:         r.Phone,
		TimeZone:      r.TimeZone,
		CheckName:     true,
		IsRecord:      true,
		RelateDevList: r.RelateDevices,
	}
	if r.CheckName != nil {
		p.CheckName = *r.CheckName
	}
	if r.IsRecord != nil {
		p.IsRecord = *r.IsRecord
	}
	return p
}
