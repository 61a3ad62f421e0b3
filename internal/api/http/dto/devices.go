package dto

// LogQueryParams are the optional query parameters of the log endpoints.
// Times are Unix milliseconds.
type LogQueryParams struct {
	StartTime int64 `form:"start_time" binding:"omitempty,min=0"`
	EndTime   int64 `form:"end_time" binding:"omitempty,min=0"`
	PageNo    int   `form:"page_no" binding:"omitempty,min=1"`
	PageSize  int   `form:"page_size" binding:"omitempty,min=1"`
}

type AuditQueryParams struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}
