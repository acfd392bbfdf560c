package payrollhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrpay/internal/auth"
	"hrpay/internal/domain/audit"
	"hrpay/internal/domain/payroll"
	"hrpay/internal/transport/http/api"
	"hrpay/internal/transport/http/middleware"
	"hrpay/internal/transport/http/shared"
)

type Handler struct {
	Store   *payroll.Store
	Service *payroll.Service
	Audit   *audit.Service
}

func NewHandler(store *payroll.Store, service *payroll.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Store: store, Service: service, Audit: auditSvc}
}

func (h *Handler) recordAudit(r *http.Request, action, entityType, entityID string, detail any) {
	user, _ := middleware.GetUser(r.Context())
	if err := h.Audit.Record(r.Context(), user.UserID, action, entityType, entityID, middleware.GetRequestID(r.Context()), detail); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	hr := middleware.RequireRole(auth.RoleHR)

	r.Route("/payroll", func(r chi.Router) {
		r.With(hr).Get("/periods", h.handleListPeriods)
		r.With(hr).Post("/periods", h.handleCreatePeriod)
		r.With(hr).Get("/periods/{periodID}", h.handleGetPeriod)
		r.With(hr, middleware.RateLimit(10, time.Minute)).Post("/periods/{periodID}/calculate", h.handleCalculate)
		r.With(hr).Post("/periods/{periodID}/close", h.handleClosePeriod)
		r.With(hr).Get("/periods/{periodID}/items", h.handleListItems)
		r.With(hr).Get("/periods/{periodID}/summary", h.handlePeriodSummary)
		r.Get("/payslips", h.handleMyPayslips)
		r.Get("/items/{itemID}/payslip", h.handleDownloadPayslip)
	})
	r.Route("/holidays", func(r chi.Router) {
		r.Get("/", h.handleListHolidays)
		r.With(hr).Post("/", h.handleCreateHoliday)
	})
}

func (h *Handler) handleListPeriods(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	periods, err := h.Store.ListPeriods(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "periods_list_failed", "failed to list payroll periods", reqID)
		return
	}
	api.Success(w, periods, reqID)
}

type periodPayload struct {
	Name              string `json:"name"`
	StartDate         string `json:"startDate"`
	EndDate           string `json:"endDate"`
	DeductionsEnabled bool   `json:"deductionsEnabled"`
}

func (h *Handler) handleCreatePeriod(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload periodPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name)
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, reqID) {
		return
	}

	id, err := h.Store.CreatePeriod(r.Context(), payload.Name, start, end, payload.DeductionsEnabled)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "period_create_failed", "failed to create payroll period", reqID)
		return
	}
	h.recordAudit(r, "payroll.period.create", "payroll_period", id, payload)
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleGetPeriod(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	periodID := chi.URLParam(r, "periodID")

	period, err := h.Store.GetPeriod(r.Context(), periodID)
	if errors.Is(err, payroll.ErrPeriodNotFound) {
		api.Fail(w, http.StatusNotFound, "period_not_found", "payroll period not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "period_get_failed", "failed to load payroll period", reqID)
		return
	}
	api.Success(w, period, reqID)
}

// handleCalculate runs (or reruns) the whole period. Rerunning replaces
// every item, so the numbers always reflect the current inputs.
func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	periodID := chi.URLParam(r, "periodID")

	summary, err := h.Service.RunPeriod(r.Context(), periodID)
	switch {
	case errors.Is(err, payroll.ErrPeriodNotFound):
		api.Fail(w, http.StatusNotFound, "period_not_found", "payroll period not found", reqID)
		return
	case errors.Is(err, payroll.ErrPeriodClosed):
		api.Fail(w, http.StatusConflict, "period_closed", payroll.ErrPeriodClosed.Error(), reqID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "calculation_failed", "payroll calculation failed", reqID)
		return
	}
	h.recordAudit(r, "payroll.period.calculate", "payroll_period", periodID, summary)
	api.Success(w, summary, reqID)
}

func (h *Handler) handleClosePeriod(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	periodID := chi.URLParam(r, "periodID")

	err := h.Service.ClosePeriod(r.Context(), periodID)
	switch {
	case errors.Is(err, payroll.ErrPeriodNotFound):
		api.Fail(w, http.StatusNotFound, "period_not_found", "payroll period not found", reqID)
		return
	case errors.Is(err, payroll.ErrPeriodClosed):
		api.Fail(w, http.StatusConflict, "period_closed", "period is already closed", reqID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "period_close_failed", "failed to close payroll period", reqID)
		return
	}
	h.recordAudit(r, "payroll.period.close", "payroll_period", periodID, nil)
	api.Success(w, map[string]string{"id": periodID, "status": payroll.PeriodStatusClosed}, reqID)
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	periodID := chi.URLParam(r, "periodID")

	items, err := h.Store.ListItems(r.Context(), periodID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "items_list_failed", "failed to list payroll items", reqID)
		return
	}
	api.Success(w, items, reqID)
}

func (h *Handler) handlePeriodSummary(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	periodID := chi.URLParam(r, "periodID")

	summary, err := h.Store.PeriodSummary(r.Context(), periodID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "summary_failed", "failed to summarize period", reqID)
		return
	}
	api.Success(w, summary, reqID)
}

func (h *Handler) handleMyPayslips(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.EmployeeID == "" {
		api.Fail(w, http.StatusForbidden, "forbidden", "an employee record is required", reqID)
		return
	}

	items, err := h.Store.ListEmployeeItems(r.Context(), user.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslips_list_failed", "failed to list payslips", reqID)
		return
	}
	api.Success(w, items, reqID)
}

func (h *Handler) handleDownloadPayslip(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	itemID := chi.URLParam(r, "itemID")

	data, err := h.Store.GetPayslipData(r.Context(), itemID)
	if errors.Is(err, payroll.ErrItemNotFound) {
		api.Fail(w, http.StatusNotFound, "item_not_found", "payroll item not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslip_failed", "failed to load payslip", reqID)
		return
	}
	if user.Role != auth.RoleHR && user.EmployeeID != data.Item.EmployeeID {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot download another employee's payslip", reqID)
		return
	}

	pdf, err := payroll.GeneratePayslipPDF(data)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslip_failed", "failed to render payslip", reqID)
		return
	}
	api.Attachment(w, "application/pdf", "payslip-"+data.Item.ID+".pdf", pdf)
}

func (h *Handler) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	holidays, err := h.Store.ListAllHolidays(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holidays_list_failed", "failed to list holidays", reqID)
		return
	}
	api.Success(w, holidays, reqID)
}

type holidayPayload struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Date     string  `json:"date"`
	PayRate  float64 `json:"payRate"`
	IsActive *bool   `json:"isActive"`
}

func (h *Handler) handleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload holidayPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name)
	v.Enum("type", payload.Type, payroll.HolidayTypeRegular, payroll.HolidayTypeSpecial)
	date, _ := v.Date("date", payload.Date)
	v.Positive("payRate", payload.PayRate)
	if v.Reject(w, reqID) {
		return
	}

	holiday := payroll.Holiday{
		Name:     payload.Name,
		Type:     payload.Type,
		Date:     date,
		PayRate:  payload.PayRate,
		IsActive: true,
	}
	if payload.IsActive != nil {
		holiday.IsActive = *payload.IsActive
	}
	if holiday.Type == "" {
		holiday.Type = payroll.HolidayTypeRegular
	}

	id, err := h.Store.CreateHoliday(r.Context(), holiday)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holiday_create_failed", "failed to create holiday", reqID)
		return
	}
	h.recordAudit(r, "payroll.holiday.create", "holiday", id, holiday)
	api.Created(w, map[string]string{"id": id}, reqID)
}
