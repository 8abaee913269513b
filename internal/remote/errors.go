package remote

import (
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
)

// CallFailure records a non-2xx response from the shop backend. The body is kept
// for logs only and is never parsed.
type CallFailure struct {
	Operation string
	Status    int
	RawBody   string
}

func (f *CallFailure) Error() string {
	return fmt.Sprintf("%s: status %d: %s", f.Operation, f.Status, strings.TrimSpace(f.RawBody))
}

func (f *CallFailure) StatusCode() int { return f.Status }
func (f *CallFailure) Body() string    { return f.RawBody }

func callFailure(operation string, status int, body []byte) *pkgerrors.Error {
	failure := &CallFailure{Operation: operation, Status: status, RawBody: string(body)}
	code := pkgerrors.CodeRemoteCall
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		code = pkgerrors.CodeUnauthorized
	}
	return pkgerrors.Wrap(code, failure, fmt.Sprintf("%s failed", operation)).
		WithDetails(map[string]any{"status": status, "operation": operation})
}

func transportFailure(operation string, err error) *pkgerrors.Error {
	return pkgerrors.Wrap(pkgerrors.CodeRemoteCall, err, fmt.Sprintf("%s failed", operation)).
		WithDetails(map[string]any{"operation": operation})
}
