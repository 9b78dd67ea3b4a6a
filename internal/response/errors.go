package response

import (
	"errors"

	"github.com/stemsi/institute-console/internal/backend"
)

// ErrCode is a typed error code enum for consistent error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionRequired    ErrCode = "SESSION_REQUIRED"
	ErrSessionMalformed   ErrCode = "SESSION_MALFORMED"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrWrongPassword      ErrCode = "WRONG_PASSWORD"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation           ErrCode = "VALIDATION_ERROR"
	ErrInvalidID            ErrCode = "INVALID_ID"
	ErrInvalidPayload       ErrCode = "INVALID_PAYLOAD"
	ErrConfirmationRequired ErrCode = "CONFIRMATION_REQUIRED"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Backend ───────────────────────────────────────────────────────
	ErrBackendUnavailable ErrCode = "BACKEND_UNAVAILABLE"
	ErrBackendRejected    ErrCode = "BACKEND_REJECTED"
	ErrUnexpectedResponse ErrCode = "UNEXPECTED_RESPONSE"

	// ─── Attendance ────────────────────────────────────────────────────
	ErrAttendancePartial ErrCode = "ATTENDANCE_PARTIAL"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileTooLarge ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid credentials."
	case ErrSessionRequired:
		return "Please log in to continue."
	case ErrSessionMalformed:
		return "Your session could not be read. Please log in again."
	case ErrTokenExpired:
		return "Your login has expired. Please log in again."
	case ErrWrongPassword:
		return "Current password is incorrect."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Please fill in all required fields."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrConfirmationRequired:
		return "Deletion was not confirmed."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Record not found."

	// ─── Backend ───────────────────────────────────────────────────────
	case ErrBackendUnavailable:
		return "Network error. Please try again."
	case ErrBackendRejected:
		return "The server rejected the request."
	case ErrUnexpectedResponse:
		return "The server sent an unexpected response."

	// ─── Attendance ────────────────────────────────────────────────────
	case ErrAttendancePartial:
		return "Some attendance rows could not be submitted."

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileTooLarge:
		return "File size exceeds the limit."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}

// CodeFor classifies a backend error.
func CodeFor(err error) ErrCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, backend.ErrTransport):
		return ErrBackendUnavailable
	case errors.Is(err, backend.ErrDecode):
		return ErrUnexpectedResponse
	case errors.Is(err, backend.ErrFileTooLarge):
		return ErrFileTooLarge
	}
	if apiErr, ok := backend.AsAPIError(err); ok {
		if apiErr.NotFound() {
			return ErrNotFound
		}
		return ErrBackendRejected
	}
	return ErrInternal
}

// MessageFor renders err as the text shown to the user. Backend validation
// errors show the flattened response body.
func MessageFor(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := backend.AsAPIError(err); ok && !apiErr.NotFound() {
		return "Failed: " + apiErr.Flatten()
	}
	return GetMessage(CodeFor(err))
}
