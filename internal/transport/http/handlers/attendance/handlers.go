package attendancehandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrpay/internal/auth"
	"hrpay/internal/domain/attendance"
	"hrpay/internal/transport/http/api"
	"hrpay/internal/transport/http/middleware"
	"hrpay/internal/transport/http/shared"
)

type Handler struct {
	Store *attendance.Store
}

func NewHandler(store *attendance.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	hr := middleware.RequireRole(auth.RoleHR)

	r.Route("/attendance", func(r chi.Router) {
		r.Post("/clock-in", h.punch(h.Store.ClockIn))
		r.Post("/break-out", h.punch(h.Store.BreakOut))
		r.Post("/break-in", h.punch(h.Store.BreakIn))
		r.Post("/clock-out", h.punch(h.Store.ClockOut))
		r.Get("/records", h.handleListRecords)
		r.Get("/records/{employeeID}", h.handleListEmployeeRecords)
	})
	r.Route("/schedules", func(r chi.Router) {
		r.Get("/", h.handleListSchedules)
		r.With(hr).Post("/", h.handleCreateSchedule)
	})
}

// punch wraps the four clocking transitions; they share authorization
// and error mapping, and differ only in the store call.
func (h *Handler) punch(op func(ctx context.Context, employeeID string, at time.Time) (attendance.Record, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetRequestID(r.Context())
		user, ok := middleware.GetUser(r.Context())
		if !ok || user.EmployeeID == "" {
			api.Fail(w, http.StatusForbidden, "forbidden", "an employee record is required to clock", reqID)
			return
		}

		record, err := op(r.Context(), user.EmployeeID, time.Now())
		if err != nil {
			h.failPunch(w, err, reqID)
			return
		}
		api.Success(w, record, reqID)
	}
}

func (h *Handler) failPunch(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, attendance.ErrAlreadyClockedIn):
		api.Fail(w, http.StatusConflict, "already_clocked_in", "already clocked in today", reqID)
	case errors.Is(err, attendance.ErrNotClockedIn):
		api.Fail(w, http.StatusConflict, "not_clocked_in", "no open attendance for today", reqID)
	case errors.Is(err, attendance.ErrAlreadyClockedOut):
		api.Fail(w, http.StatusConflict, "already_clocked_out", "already clocked out today", reqID)
	case errors.Is(err, attendance.ErrBreakOpen):
		api.Fail(w, http.StatusConflict, "break_open", "a break is already open", reqID)
	case errors.Is(err, attendance.ErrNoBreakOpen):
		api.Fail(w, http.StatusConflict, "no_break_open", "no break is open", reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "attendance_failed", "attendance operation failed", reqID)
	}
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.EmployeeID == "" {
		api.Fail(w, http.StatusForbidden, "forbidden", "an employee record is required", reqID)
		return
	}
	h.listRecords(w, r, user.EmployeeID, reqID)
}

func (h *Handler) handleListEmployeeRecords(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	if user.Role != auth.RoleHR && user.EmployeeID != employeeID {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another employee's attendance", reqID)
		return
	}
	h.listRecords(w, r, employeeID, reqID)
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request, employeeID, reqID string) {
	query := r.URL.Query()
	start, err := shared.ParseDate(query.Get("from"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid from date", reqID)
		return
	}
	end, err := shared.ParseDate(query.Get("to"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid to date", reqID)
		return
	}
	if start.IsZero() {
		start = attendance.DayOf(time.Now()).AddDate(0, 0, -30)
	}
	if end.IsZero() {
		end = attendance.DayOf(time.Now())
	}

	records, err := h.Store.ListRecords(r.Context(), employeeID, start, end)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_list_failed", "failed to list attendance", reqID)
		return
	}
	schedule, err := h.Store.EmployeeSchedule(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_list_failed", "failed to load schedule", reqID)
		return
	}
	api.Success(w, attendance.AttachMetrics(records, schedule), reqID)
}

func (h *Handler) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	schedules, err := h.Store.ListSchedules(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "schedules_list_failed", "failed to list schedules", reqID)
		return
	}
	api.Success(w, schedules, reqID)
}

type schedulePayload struct {
	Name        string   `json:"name"`
	TimeIn      string   `json:"timeIn"`
	TimeOut     string   `json:"timeOut"`
	WorkingDays []string `json:"workingDays"`
}

func (h *Handler) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload schedulePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name)
	v.Clock("timeIn", payload.TimeIn)
	v.Clock("timeOut", payload.TimeOut)
	for _, day := range payload.WorkingDays {
		v.Enum("workingDays", day, "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday")
	}
	if v.Reject(w, reqID) {
		return
	}
	if len(payload.WorkingDays) == 0 {
		payload.WorkingDays = attendance.DefaultWorkingDays
	}

	id, err := h.Store.CreateSchedule(r.Context(), attendance.Schedule{
		Name:        payload.Name,
		TimeIn:      payload.TimeIn,
		TimeOut:     payload.TimeOut,
		WorkingDays: payload.WorkingDays,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "schedule_create_failed", "failed to create schedule", reqID)
		return
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}
