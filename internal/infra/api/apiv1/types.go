package apiv1

// ErrorResponse is the body of every non-2xx answer. Details is filled only in dev mode.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// JobNotFoundResponse is the 404 body of the poll endpoint.
type JobNotFoundResponse struct {
	Error   string `json:"error"`
	JobID   string `json:"jobId"`
	Message string `json:"message"`
}

// StartAnalysisResponse is the 202 body of the submit endpoint.
type StartAnalysisResponse struct {
	JobID         string `json:"jobId"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	EstimatedTime string `json:"estimatedTime"`
}

// CheckStatusParams are the query parameters of GET /api/check-status.
type CheckStatusParams struct {
	JobID *string `form:"jobId,omitempty" json:"jobId,omitempty"`
}
