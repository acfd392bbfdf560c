package authhandler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrpay/internal/auth"
	"hrpay/internal/domain/core"
	"hrpay/internal/transport/http/api"
	"hrpay/internal/transport/http/middleware"
)

const tokenTTL = 8 * time.Hour

type Handler struct {
	DB     *pgxpool.Pool
	Secret string
	Core   *core.Store
}

func NewHandler(db *pgxpool.Pool, secret string, coreStore *core.Store) *Handler {
	return &Handler{DB: db, Secret: secret, Core: coreStore}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.With(middleware.RequireAuth).Get("/me", h.handleMe)
		r.With(middleware.RequireRole(auth.RoleHR)).Post("/users", h.handleCreateUser)
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token      string `json:"token"`
	Role       string `json:"role"`
	EmployeeID string `json:"employeeId,omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	var userID, role, hash, employeeID string
	err := h.DB.QueryRow(r.Context(), `
    SELECT u.id, u.role, u.password_hash, COALESCE(e.id::text, '')
    FROM users u
    LEFT JOIN employees e ON e.user_id = u.id
    WHERE u.email = $1 AND u.is_active = true
  `, strings.ToLower(strings.TrimSpace(payload.Email))).Scan(&userID, &role, &hash, &employeeID)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}

	if err := auth.CheckPassword(hash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{UserID: userID, EmployeeID: employeeID, Role: role}, tokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", reqID)
		return
	}

	api.Success(w, loginResponse{Token: token, Role: role, EmployeeID: employeeID}, reqID)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	out := map[string]any{
		"userId": user.UserID,
		"role":   user.Role,
	}
	if user.EmployeeID != "" {
		emp, err := h.Core.GetEmployee(r.Context(), user.EmployeeID)
		if err == nil {
			out["employee"] = emp
		}
	}
	api.Success(w, out, reqID)
}

type createUserRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	EmployeeID string `json:"employeeId"`
}

// handleCreateUser provisions a login and optionally links it to an
// employee record so that person can clock in and read payslips.
func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	if payload.Email == "" || len(payload.Password) < 8 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "email and a password of at least 8 characters are required", reqID)
		return
	}
	if payload.Role != auth.RoleHR && payload.Role != auth.RoleEmployee {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "role must be hr or employee", reqID)
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", reqID)
		return
	}

	var id string
	err = h.DB.QueryRow(r.Context(), `
    INSERT INTO users (email, password_hash, role)
    VALUES ($1,$2,$3)
    RETURNING id
  `, payload.Email, hash, payload.Role).Scan(&id)
	if err != nil {
		api.Fail(w, http.StatusConflict, "user_create_failed", "email already registered", reqID)
		return
	}

	if payload.EmployeeID != "" {
		if err := h.Core.LinkUser(r.Context(), payload.EmployeeID, id); err != nil {
			api.Fail(w, http.StatusBadRequest, "user_link_failed", "user created but employee link failed", reqID)
			return
		}
	}

	api.Created(w, map[string]string{"id": id}, reqID)
}
