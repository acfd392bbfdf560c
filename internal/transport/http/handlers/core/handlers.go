package corehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hrpay/internal/auth"
	"hrpay/internal/domain/audit"
	"hrpay/internal/domain/core"
	"hrpay/internal/domain/payroll"
	"hrpay/internal/transport/http/api"
	"hrpay/internal/transport/http/middleware"
	"hrpay/internal/transport/http/shared"
)

type Handler struct {
	Store *core.Store
	Audit *audit.Service
}

func NewHandler(store *core.Store, auditSvc *audit.Service) *Handler {
	return &Handler{Store: store, Audit: auditSvc}
}

func (h *Handler) recordAudit(r *http.Request, action, entityType, entityID string, detail any) {
	user, _ := middleware.GetUser(r.Context())
	if err := h.Audit.Record(r.Context(), user.UserID, action, entityType, entityID, middleware.GetRequestID(r.Context()), detail); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	hr := middleware.RequireRole(auth.RoleHR)

	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.handleListEmployees)
		r.With(hr).Post("/", h.handleCreateEmployee)
		r.Get("/{employeeID}", h.handleGetEmployee)
		r.With(hr).Put("/{employeeID}", h.handleUpdateEmployee)
		r.With(hr).Patch("/{employeeID}/status", h.handleSetStatus)
		r.Get("/{employeeID}/benefits", h.handleListBenefits)
		r.With(hr).Post("/{employeeID}/benefits", h.handleAssignBenefit)
		r.Get("/{employeeID}/advances", h.handleListAdvances)
		r.With(hr).Post("/{employeeID}/advances", h.handleIssueAdvance)
	})
	r.With(hr).Delete("/benefits/{benefitID}", h.handleEndBenefit)

	r.Route("/departments", func(r chi.Router) {
		r.Get("/", h.handleListDepartments)
		r.With(hr).Post("/", h.handleCreateDepartment)
	})
	r.Route("/salary-grades", func(r chi.Router) {
		r.With(hr).Get("/", h.handleListSalaryGrades)
		r.With(hr).Post("/", h.handleCreateSalaryGrade)
	})
	r.Route("/benefit-types", func(r chi.Router) {
		r.With(hr).Get("/", h.handleListBenefitTypes)
		r.With(hr).Post("/", h.handleCreateBenefitType)
	})
}

// canViewEmployee allows HR everywhere and employees on their own
// record only.
func canViewEmployee(user auth.UserContext, employeeID string) bool {
	return user.Role == auth.RoleHR || user.EmployeeID == employeeID
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employees_list_failed", "failed to list employees", reqID)
		return
	}
	for i := range employees {
		core.FilterEmployeeFields(&employees[i], user)
	}
	api.Success(w, employees, reqID)
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	emp, err := h.Store.GetEmployee(r.Context(), employeeID)
	if errors.Is(err, core.ErrEmployeeNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_get_failed", "failed to load employee", reqID)
		return
	}
	core.FilterEmployeeFields(&emp, user)
	api.Success(w, emp, reqID)
}

type employeePayload struct {
	EmployeeNumber string `json:"employeeNumber"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	HireDate       string `json:"hireDate"`
	DepartmentID   string `json:"departmentId"`
	SalaryType     string `json:"salaryType"`
	SalaryGradeID  string `json:"salaryGradeId"`
	ScheduleID     string `json:"scheduleId"`
	Status         string `json:"status"`
}

func (p employeePayload) validate(w http.ResponseWriter, reqID string) (core.Employee, bool) {
	v := shared.NewValidator()
	v.Required("firstName", p.FirstName)
	v.Required("lastName", p.LastName)
	v.Required("email", p.Email)
	v.Enum("salaryType", p.SalaryType, payroll.SalaryTypeMonthly, payroll.SalaryTypeDaily, payroll.SalaryTypeHourly)
	v.Enum("status", p.Status, core.EmployeeStatusActive, core.EmployeeStatusInactive)

	var hireDate *time.Time
	if p.HireDate != "" {
		parsed, ok := v.Date("hireDate", p.HireDate)
		if ok {
			hireDate = &parsed
		}
	}
	if v.Reject(w, reqID) {
		return core.Employee{}, false
	}

	emp := core.Employee{
		EmployeeNumber: p.EmployeeNumber,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          strings.ToLower(strings.TrimSpace(p.Email)),
		Phone:          p.Phone,
		Address:        p.Address,
		HireDate:       hireDate,
		DepartmentID:   p.DepartmentID,
		SalaryType:     p.SalaryType,
		SalaryGradeID:  p.SalaryGradeID,
		ScheduleID:     p.ScheduleID,
		Status:         p.Status,
	}
	if emp.SalaryType == "" {
		emp.SalaryType = payroll.SalaryTypeMonthly
	}
	if emp.Status == "" {
		emp.Status = core.EmployeeStatusActive
	}
	return emp, true
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	emp, ok := payload.validate(w, reqID)
	if !ok {
		return
	}

	id, err := h.Store.CreateEmployee(r.Context(), emp)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", reqID)
		return
	}
	h.recordAudit(r, "core.employee.create", "employee", id, emp)
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	emp, ok := payload.validate(w, reqID)
	if !ok {
		return
	}

	err := h.Store.UpdateEmployee(r.Context(), employeeID, emp)
	if errors.Is(err, core.ErrEmployeeNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", reqID)
		return
	}
	h.recordAudit(r, "core.employee.update", "employee", employeeID, emp)
	api.Success(w, map[string]string{"id": employeeID}, reqID)
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.Status != core.EmployeeStatusActive && payload.Status != core.EmployeeStatusInactive {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "status must be active or inactive", reqID)
		return
	}

	err := h.Store.SetEmployeeStatus(r.Context(), employeeID, payload.Status)
	if errors.Is(err, core.ErrEmployeeNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_status_failed", "failed to update status", reqID)
		return
	}
	api.Success(w, map[string]string{"id": employeeID, "status": payload.Status}, reqID)
}

func (h *Handler) handleListBenefits(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	if !canViewEmployee(user, employeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another employee's benefits", reqID)
		return
	}

	benefits, err := h.Store.ListEmployeeBenefits(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "benefits_list_failed", "failed to list benefits", reqID)
		return
	}
	api.Success(w, benefits, reqID)
}

func (h *Handler) handleAssignBenefit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	var payload struct {
		BenefitTypeID        string  `json:"benefitTypeId"`
		EmployeeContribution float64 `json:"employeeContribution"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("benefitTypeId", payload.BenefitTypeID)
	v.Positive("employeeContribution", payload.EmployeeContribution)
	if v.Reject(w, reqID) {
		return
	}

	id, err := h.Store.AssignBenefit(r.Context(), employeeID, payload.BenefitTypeID, payload.EmployeeContribution)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "benefit_assign_failed", "failed to assign benefit", reqID)
		return
	}
	h.recordAudit(r, "core.benefit.assign", "employee_benefit", id, payload)
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleEndBenefit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	benefitID := chi.URLParam(r, "benefitID")

	err := h.Store.EndBenefit(r.Context(), benefitID)
	if errors.Is(err, core.ErrBenefitNotFound) {
		api.Fail(w, http.StatusNotFound, "benefit_not_found", "benefit assignment not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "benefit_end_failed", "failed to end benefit", reqID)
		return
	}
	api.Success(w, map[string]string{"id": benefitID}, reqID)
}

func (h *Handler) handleListAdvances(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	if !canViewEmployee(user, employeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot view another employee's cash advances", reqID)
		return
	}

	advances, err := h.Store.ListCashAdvances(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "advances_list_failed", "failed to list cash advances", reqID)
		return
	}
	api.Success(w, advances, reqID)
}

func (h *Handler) handleIssueAdvance(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	var payload struct {
		Amount float64 `json:"amount"`
		Reason string  `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Positive("amount", payload.Amount)
	if v.Reject(w, reqID) {
		return
	}

	id, err := h.Store.IssueCashAdvance(r.Context(), employeeID, payload.Amount, payload.Reason)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "advance_issue_failed", "failed to issue cash advance", reqID)
		return
	}
	h.recordAudit(r, "core.advance.issue", "cash_advance", id, payload)
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	departments, err := h.Store.ListDepartments(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "departments_list_failed", "failed to list departments", reqID)
		return
	}
	api.Success(w, departments, reqID)
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "name is required", reqID)
		return
	}

	id, err := h.Store.CreateDepartment(r.Context(), payload.Name)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_create_failed", "failed to create department", reqID)
		return
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleListSalaryGrades(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	grades, err := h.Store.ListSalaryGrades(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "salary_grades_list_failed", "failed to list salary grades", reqID)
		return
	}
	api.Success(w, grades, reqID)
}

func (h *Handler) handleCreateSalaryGrade(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload struct {
		Name       string  `json:"name"`
		SalaryRate float64 `json:"salaryRate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name)
	v.Positive("salaryRate", payload.SalaryRate)
	if v.Reject(w, reqID) {
		return
	}

	id, err := h.Store.CreateSalaryGrade(r.Context(), payload.Name, payload.SalaryRate)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "salary_grade_create_failed", "failed to create salary grade", reqID)
		return
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleListBenefitTypes(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	types, err := h.Store.ListBenefitTypes(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "benefit_types_list_failed", "failed to list benefit types", reqID)
		return
	}
	api.Success(w, types, reqID)
}

func (h *Handler) handleCreateBenefitType(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "name is required", reqID)
		return
	}

	id, err := h.Store.CreateBenefitType(r.Context(), payload.Name)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "benefit_type_create_failed", "failed to create benefit type", reqID)
		return
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}
