package response

import (
	"errors"
	"net/http"

	"github.com/manas-swain-001/cms/internal/domain/attendance"
	"github.com/manas-swain-001/cms/internal/domain/auth"
	"github.com/manas-swain-001/cms/internal/domain/task"
	"github.com/manas-swain-001/cms/internal/domain/user"
	"github.com/manas-swain-001/cms/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrAccountDisabled):
		Forbidden(w, "Account is disabled")
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrManagerAccessRequired):
		Forbidden(w, "Manager access required")

	// Attendance domain errors. Punch and break misuse is a state
	// conflict, not a malformed request.
	case errors.Is(err, attendance.ErrActiveSessionExists):
		Conflict(w, "An open session already exists, punch out first")
	case errors.Is(err, attendance.ErrNoActiveSession):
		Conflict(w, "No open session, punch in first")
	case errors.Is(err, attendance.ErrOngoingBreakExists):
		Conflict(w, "A break is already ongoing")
	case errors.Is(err, attendance.ErrNoActiveBreak):
		Conflict(w, "No ongoing break to end")
	case errors.Is(err, attendance.ErrRecordFrozen):
		Conflict(w, "Attendance record is frozen")
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")

	// Checkpoint ledger errors
	case errors.Is(err, task.ErrOutOfWindow):
		UnprocessableEntity(w, "OUT_OF_WINDOW", "No checkpoint window is open right now")
	case errors.Is(err, task.ErrAlreadySubmitted):
		Conflict(w, "Checkpoint update already submitted")
	case errors.Is(err, task.ErrAlreadyEscalated):
		Conflict(w, "Checkpoint already escalated, updates are closed")
	case errors.Is(err, task.ErrEntryNotFound):
		NotFound(w, "Checkpoint entry not found")
	case errors.Is(err, task.ErrLedgerNotFound):
		NotFound(w, "No checkpoint ledger for this day")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
