package user_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"eventx/internal/apperr"
	"eventx/internal/auth"
	"eventx/internal/logger"
	"eventx/internal/users"
	"eventx/internal/utils"
)

type Handler struct {
	UserService *users.UserService
	Logger      *logger.Logger
}

func NewHandler(userService *users.UserService, log *logger.Logger) *Handler {
	return &Handler{UserService: userService, Logger: log}
}

// RegisterAuthRoutes mounts register and login, served without auth.
func (h *Handler) RegisterAuthRoutes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
}

// RegisterUserRoutes mounts the authenticated self-service endpoints.
func (h *Handler) RegisterUserRoutes(r chi.Router) {
	r.Get("/me", h.Me)
	r.Put("/me", h.UpdateProfile)
}

// RegisterAdminRoutes mounts the account management endpoints.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.ListUsers)
	r.Patch("/{userId}/role", h.ChangeRole)
	r.Delete("/{userId}", h.DeleteUser)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req users.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apperr.BadRequest("Invalid request body"))
		return
	}

	resp, err := h.UserService.Register(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Register: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Account created successfully", resp))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req users.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apperr.BadRequest("Invalid request body"))
		return
	}

	resp, err := h.UserService.Login(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Login: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Logged in successfully", resp))
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.Get(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Profile retrieved", user))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req users.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apperr.BadRequest("Invalid request body"))
		return
	}

	user, err := h.UserService.UpdateProfile(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateProfile: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Profile updated successfully", user))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))

	list, total, err := h.UserService.List(r.Context(), page, perPage)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListUsers: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Users retrieved", map[string]interface{}{
		"users": list,
		"total": total,
	}))
}

func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apperr.BadRequest("Invalid request body"))
		return
	}

	user, err := h.UserService.ChangeRole(r.Context(), userID, req.Role)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ChangeRole: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Role updated successfully", user))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	if err := h.UserService.Delete(r.Context(), auth.UserID(r.Context()), userID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteUser: %v", err))
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("User deleted successfully", nil))
}
