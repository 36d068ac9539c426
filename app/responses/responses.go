package responses

// ErrorResponse is the uniform error body for client-facing failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// StatsResponse wraps cache statistics for the admin surface.
type StatsResponse struct {
	Cache interface{} `json:"cache"`
}
