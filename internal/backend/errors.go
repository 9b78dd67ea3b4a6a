package backend

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrTransport means the request never produced an HTTP response.
	ErrTransport = errors.New("backend unreachable")

	// ErrDecode means a 2xx response body was not the expected JSON.
	ErrDecode = errors.New("unexpected backend response")

	// ErrFileTooLarge is returned for uploads over the configured limit.
	ErrFileTooLarge = errors.New("uploaded file is too large")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Flatten())
}

// NotFound reports a 404 response.
func (e *APIError) NotFound() bool { return e.Status == http.StatusNotFound }

// Flatten renders the error body for display. A JSON object becomes
// "field: msg1, msg2; other: msg" with fields sorted; anything else is
// returned as trimmed text.
func (e *APIError) Flatten() string {
	text := strings.TrimSpace(string(e.Body))
	if text == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}

	var fields map[string]any
	if err := codec.Unmarshal(e.Body, &fields); err != nil || len(fields) == 0 {
		return text
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+flattenValue(fields[k]))
	}
	return strings.Join(parts, "; ")
}

func flattenValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		items := make([]string, 0, len(val))
		for _, item := range val {
			items = append(items, flattenValue(item))
		}
		return strings.Join(items, ", ")
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
