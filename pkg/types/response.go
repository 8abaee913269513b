package types

// SuccessEnvelope wraps successful responses. Warnings carry non-fatal conditions,
// e.g. a remote save whose local cache append failed.
type SuccessEnvelope struct {
	Data     any      `json:"data"`
	Warnings []string `json:"warnings,omitempty"`
}

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	Details   any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
