package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leavepayment"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payment"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/timelog"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Settlement preconditions carry a machine-readable reason
	var precondition *payroll.PreconditionError
	if errors.As(err, &precondition) {
		ConflictWithCode(w, string(precondition.Reason), precondition.Unwrap().Error())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, jwt.ErrInvalidToken), errors.Is(err, jwt.ErrTokenRevoked):
		Unauthorized(w, err.Error())
	case errors.Is(err, jwt.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")
	case errors.Is(err, timelog.ErrEmployeeIDMissing):
		Forbidden(w, err.Error())

	// Not found
	case errors.Is(err, employee.ErrEmployeeNotFound), errors.Is(err, payroll.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, payroll.ErrPayrollRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, leavepayment.ErrLeavePaymentNotFound):
		NotFound(w, "Leave payment not found")
	case errors.Is(err, timelog.ErrTimeLogNotFound):
		NotFound(w, "Time log not found")
	case errors.Is(err, payment.ErrCheckoutNotFound):
		NotFound(w, "Checkout not found")

	// Payroll state
	case errors.Is(err, payroll.ErrPayrollAlreadyPaid),
		errors.Is(err, payroll.ErrSettlementInProgress),
		errors.Is(err, payroll.ErrTimeLogsAlreadyClaimed),
		errors.Is(err, payroll.ErrIllegalTransition):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrManualHoursRequired):
		ConflictWithCode(w, "manual_hours_required", err.Error())
	case errors.Is(err, payroll.ErrHourlyRateMissing):
		ConflictWithCode(w, "hourly_rate_missing", err.Error())
	case errors.Is(err, payroll.ErrCheckoutNotCreated):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, err.Error(), nil)

	// Leave payments
	case errors.Is(err, leavepayment.ErrPayrollAlreadyPaid):
		Conflict(w, err.Error())
	case errors.Is(err, leavepayment.ErrEmployeeMismatch):
		BadRequest(w, err.Error(), nil)

	// Time logs
	case errors.Is(err, timelog.ErrAlreadyClockedIn),
		errors.Is(err, timelog.ErrNotClockedIn),
		errors.Is(err, timelog.ErrTimeLogClaimed),
		errors.Is(err, timelog.ErrAbsenceAlreadyFiled):
		Conflict(w, err.Error())
	case errors.Is(err, timelog.ErrInvalidTimeRange):
		BadRequest(w, err.Error(), nil)

	// Gateway
	case errors.Is(err, payment.ErrAmountBelowMinimum):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
