package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	bookingdomain "github.com/smallbiznis/pumpops/internal/booking/domain"
	"github.com/smallbiznis/pumpops/internal/booking/slotlock"
	jobdomain "github.com/smallbiznis/pumpops/internal/jobvolume/domain"
	ledgerdomain "github.com/smallbiznis/pumpops/internal/ledger/domain"
	overviewdomain "github.com/smallbiznis/pumpops/internal/overview/domain"
	pumpdomain "github.com/smallbiznis/pumpops/internal/pump/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type conflictDetail struct {
	BookingID string `json:"booking_id,omitempty"`
	PumpID    string `json:"pump_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

type errorPayload struct {
	Type     string            `json:"type"`
	Message  string            `json:"message"`
	Errors   []ValidationError `json:"errors,omitempty"`
	Conflict *conflictDetail   `json:"conflict,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var bookingErr *bookingdomain.ValidationError
	if errors.As(err, &bookingErr) {
		out := make([]ValidationError, 0, len(bookingErr.Violations))
		for _, v := range bookingErr.Violations {
			out = append(out, ValidationError{Field: v.Field, Code: v.Code, Message: v.Message})
		}
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  out,
		}
	}

	var conflict *bookingdomain.ConflictError
	if errors.As(err, &conflict) {
		detail := &conflictDetail{
			PumpID: conflict.Slot.PumpID.String(),
			Date:   conflict.Slot.DateString(),
			Time:   conflict.Slot.Time,
		}
		if conflict.BookingID != 0 {
			detail.BookingID = conflict.BookingID.String()
		}
		return http.StatusConflict, errorPayload{
			Type:     "conflict",
			Message:  "slot already booked",
			Conflict: detail,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, pumpdomain.ErrPrefixTaken):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, slotlock.ErrLockTimeout):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog gives the request logger the same type/code pair the
// client receives.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	if status == http.StatusInternalServerError {
		return payload.Type, "internal_error"
	}
	return payload.Type, code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isPumpValidationError(err),
		isLedgerValidationError(err),
		isJobValidationError(err),
		errors.Is(err, bookingdomain.ErrInvalidID),
		errors.Is(err, bookingdomain.ErrInvalidPump),
		errors.Is(err, overviewdomain.ErrBookingPumpMismatch):
		return true
	default:
		return false
	}
}

func isPumpValidationError(err error) bool {
	switch {
	case errors.Is(err, pumpdomain.ErrInvalidID),
		errors.Is(err, pumpdomain.ErrInvalidPrefix),
		errors.Is(err, pumpdomain.ErrInvalidOwner),
		errors.Is(err, pumpdomain.ErrInvalidStatus):
		return true
	default:
		return false
	}
}

func isLedgerValidationError(err error) bool {
	switch {
	case errors.Is(err, ledgerdomain.ErrInvalidPump),
		errors.Is(err, ledgerdomain.ErrInvalidOccurredOn),
		errors.Is(err, ledgerdomain.ErrInvalidAmount),
		errors.Is(err, ledgerdomain.ErrInvalidPayload),
		errors.Is(err, ledgerdomain.ErrInvalidCategory),
		errors.Is(err, ledgerdomain.ErrInvalidLiters),
		errors.Is(err, ledgerdomain.ErrInvalidCostPerLiter),
		errors.Is(err, ledgerdomain.ErrInvalidDiscount),
		errors.Is(err, ledgerdomain.ErrInvalidOdometer),
		errors.Is(err, ledgerdomain.ErrAmountMismatch),
		errors.Is(err, ledgerdomain.ErrInvalidLabel),
		errors.Is(err, ledgerdomain.ErrInvalidMaintenanceKind),
		errors.Is(err, ledgerdomain.ErrInvalidMaintenanceStatus),
		errors.Is(err, ledgerdomain.ErrInvalidName),
		errors.Is(err, ledgerdomain.ErrInvalidDescription):
		return true
	default:
		return false
	}
}

func isJobValidationError(err error) bool {
	switch {
	case errors.Is(err, jobdomain.ErrInvalidPump),
		errors.Is(err, jobdomain.ErrInvalidVolume),
		errors.Is(err, jobdomain.ErrInvalidCompletedOn):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, pumpdomain.ErrNotFound),
		errors.Is(err, bookingdomain.ErrNotFound),
		errors.Is(err, ledgerdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if code == "fuel_amount_mismatch" {
		return "amount"
	}
	if code == "booking_pump_mismatch" {
		return "booking_id"
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "fuel_amount_mismatch":
		return "amount must equal liters_filled x cost_per_liter - discount"
	case "booking_pump_mismatch":
		return "booking belongs to another pump"
	default:
		return "invalid value"
	}
}
