package notification_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventx/internal/apperr"
	"eventx/internal/auth"
	"eventx/internal/logger"
	"eventx/internal/notifications"
	"eventx/internal/utils"
)

type Handler struct {
	Service *notifications.Service
	Logger  *logger.Logger
}

func NewHandler(service *notifications.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Put("/read-all", h.MarkAllRead)
	r.Put("/{notificationId}/read", h.MarkRead)
	r.Delete("/{notificationId}", h.Delete)
}

// RegisterAdminRoutes mounts the send endpoints.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/send", h.Send)
	r.Post("/send-bulk", h.SendBulk)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListForUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListNotifications: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Notifications retrieved", list))
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "notificationId")
	if err := h.Service.MarkRead(r.Context(), auth.UserID(r.Context()), id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("MarkRead: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Notification marked as read", nil))
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.MarkAllRead(r.Context(), auth.UserID(r.Context())); err != nil {
		h.Logger.Error("API", fmt.Sprintf("MarkAllRead: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("All notifications marked as read", nil))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "notificationId")
	if err := h.Service.Delete(r.Context(), auth.UserID(r.Context()), id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteNotification: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Notification deleted", nil))
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var req notifications.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apperr.BadRequest("Invalid request body"))
		return
	}

	n, err := h.Service.Send(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("SendNotification: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Notification sent", n))
}

func (h *Handler) SendBulk(w http.ResponseWriter, r *http.Request) {
	var req notifications.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apperr.BadRequest("Invalid request body"))
		return
	}

	count, err := h.Service.SendBulk(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("SendBulkNotification: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Bulk notification sent", map[string]int{"recipients": count}))
}
