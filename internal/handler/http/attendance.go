package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	GetAttendanceMap(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	aggregator attendance.AggregatorService
}

func NewAttendanceHandler(aggregator attendance.AggregatorService) AttendanceHandler {
	return &attendanceHandlerImpl{aggregator: aggregator}
}

// parsePeriod reads the month and year query parameters and answers 400
// when either is not a number.
func parsePeriod(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		response.BadRequest(w, "invalid month parameter", nil)
		return 0, 0, false
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		response.BadRequest(w, "invalid year parameter", nil)
		return 0, 0, false
	}
	return month, year, true
}

// GetAttendanceMap handles GET /attendances/{phoneNumber}
func (h *attendanceHandlerImpl) GetAttendanceMap(w http.ResponseWriter, r *http.Request) {
	officeID, err := middleware.OfficeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	phoneNumber := chi.URLParam(r, "phoneNumber")
	if phoneNumber == "" {
		response.BadRequest(w, "Phone number is required", nil)
		return
	}

	month, year, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	if month < 1 || month > 12 {
		response.BadRequest(w, "month must be between 1 and 12", nil)
		return
	}

	result, err := h.aggregator.GetAttendanceMap(r.Context(), attendance.Key{
		OfficeID:    officeID,
		PhoneNumber: phoneNumber,
		Month:       time.Month(month),
		Year:        year,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
