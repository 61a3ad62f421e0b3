package dto

type HealthResponse struct {
	Status  string `json:"status"`
	Sandbox bool   `json:"sandbox"`
}

// Response is the envelope every /api/v1 endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

func OK(result any) Response {
	return Response{Success: true, Result: result}
}

// Kinds for requests rejected before any service runs.
const (
	KindUnauthorized = "unauthorized"
	KindForbidden    = "forbidden"
	KindNotFound     = "not_found"
	KindUnavailable  = "unavailable"
)

func Fail(kind, message string) Response {
	return Response{Success: false, Message: message, Kind: kind}
}
