package dto

// TempPasswordRequest carries a plaintext access code. It is encrypted before
// leaving the service and never logged.
type TempPasswordRequest struct {
	Name          string   `json:"name"`
	Password      string   `json:"password"`
	EffectiveTime int64    `json:"effective_time"`
	InvalidTime   int64    `json:"invalid_time"`
	Type          int      `json:"type"`
	Phone         string   `json:"phone"`
	TimeZone      string   `json:"time_zone"`
	CheckName     *bool    `json:"check_name"`
	IsRecord      *bool    `json:"is_record"`
	RelateDevices []string `json:"relate_dev_list"`
}

type TempPasswordResponse struct {
	ID string `json:"id"`
}

type AuditEntry struct {
	ID           string `json:"id"`
	Operation    string `json:"operation"`
	DeviceID     string `json:"device_id"`
	TicketID     string `json:"ticket_id,omitempty"`
	CredentialID string `json:"credential_id,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Operator     string `json:"operator,omitempty"`
	Outcome      string `json:"outcome"`
	ErrorKind    string `json:"error_kind,omitempty"`
	Message      string `json:"message,omitempty"`
	Protocol     string `json:"protocol,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// TempPasswordListParams filters the temporary password listing. Valid
// defaults to true.
type TempPasswordListParams struct {
	Valid *bool `form:"valid"`
}

type KeyRef struct {
	No   int64  `json:"no" binding:"required,min=1"`
	Type string `json:"type" binding:"required"`
}

type UnbindRequest struct {
	UnlockList []KeyRef `json:"unlock_list" binding:"required,min=1,dive"`
}
