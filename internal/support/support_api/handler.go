package support_api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventx/internal/apperr"
	"eventx/internal/auth"
	"eventx/internal/logger"
	"eventx/internal/models"
	"eventx/internal/support"
	"eventx/internal/utils"
)

// UserDirectory resolves the authenticated user's profile so tickets and
// responses carry a denormalized name and email.
type UserDirectory interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

type Handler struct {
	Service *support.Service
	Users   UserDirectory
	Logger  *logger.Logger
}

func NewHandler(service *support.Service, users UserDirectory, log *logger.Logger) *Handler {
	return &Handler{Service: service, Users: users, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/my-tickets", h.MyTickets)
	r.Get("/{supportId}", h.Get)
	r.Post("/{supportId}/respond", h.Respond)
	r.Put("/{supportId}/close", h.Close)
}

// RegisterAdminRoutes mounts the help-desk queue.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.ListAll)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req support.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apperr.BadRequest("Invalid request body"))
		return
	}

	user, err := h.Users.Get(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	t, err := h.Service.Create(r.Context(), user, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateSupportTicket: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Support ticket created", t))
}

func (h *Handler) MyTickets(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListForUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Support tickets retrieved", list))
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListAll(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Support tickets retrieved", list))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := h.Service.Get(ctx, auth.UserID(ctx), auth.IsAdmin(ctx), chi.URLParam(r, "supportId"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Support ticket retrieved", t))
}

func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	var req support.RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apperr.BadRequest("Invalid request body"))
		return
	}

	ctx := r.Context()
	responder, err := h.Users.Get(ctx, auth.UserID(ctx))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	resp, err := h.Service.Respond(ctx, responder, auth.IsAdmin(ctx), chi.URLParam(r, "supportId"), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("RespondSupportTicket: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Response added", resp))
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.Service.Close(ctx, auth.UserID(ctx), auth.IsAdmin(ctx), chi.URLParam(r, "supportId")); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CloseSupportTicket: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Support ticket closed", nil))
}
