package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/bursar/internal/attendance"
	"github.com/MrJamesThe3rd/bursar/internal/fee"
	"github.com/MrJamesThe3rd/bursar/internal/http/request"
	"github.com/MrJamesThe3rd/bursar/internal/money"
	"github.com/MrJamesThe3rd/bursar/internal/student"
)

type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Errors  []fee.RowError    `json:"errors,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

func Status(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorBody{Code: code, Message: message})
}

// Error writes the response for err. Unrecognised errors are logged and
// reported as a bare 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)

	if status == http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	JSON(w, status, body)
}

func classify(err error) (int, ErrorBody) {
	var (
		validationErr *request.ValidationError
		amountErr     *fee.InvalidAmountError
		overpayErr    *fee.OverpaymentError
		importErr     *fee.ImportError
	)

	switch {
	case errors.Is(err, fee.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Code: "fee_not_found", Message: "Fee record not found"}
	case errors.Is(err, student.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Code: "student_not_found", Message: "Student record not found"}
	case errors.Is(err, attendance.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Code: "attendance_not_found", Message: "Attendance record not found"}
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, ErrorBody{Code: "validation_failed", Message: validationErr.Error(), Fields: validationErr.Fields}
	case errors.As(err, &overpayErr):
		return http.StatusBadRequest, ErrorBody{Code: "overpayment", Message: overpayErr.Error()}
	case errors.As(err, &amountErr):
		return http.StatusBadRequest, ErrorBody{Code: "invalid_amount", Message: amountErr.Error()}
	case errors.As(err, &importErr):
		return http.StatusUnprocessableEntity, ErrorBody{Code: "import_rejected", Message: importErr.Error(), Errors: importErr.Rows}
	case errors.Is(err, money.ErrPrecision), errors.Is(err, money.ErrOutOfRange):
		return http.StatusBadRequest, ErrorBody{Code: "invalid_amount", Message: err.Error()}
	case errors.Is(err, fee.ErrInvalidFeeType),
		errors.Is(err, fee.ErrInvalidPaymentMode),
		errors.Is(err, fee.ErrInvalidAcademicYear),
		errors.Is(err, fee.ErrInvalidDueDate),
		errors.Is(err, attendance.ErrNoEntries),
		errors.Is(err, attendance.ErrInvalidStatus),
		errors.Is(err, attendance.ErrInvalidClass),
		errors.Is(err, request.ErrMalformed):
		return http.StatusBadRequest, ErrorBody{Code: "bad_request", Message: err.Error()}
	}

	return http.StatusInternalServerError, ErrorBody{Code: "internal", Message: "internal error"}
}
