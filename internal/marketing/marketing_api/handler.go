package marketing_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventx/internal/apperr"
	"eventx/internal/logger"
	"eventx/internal/marketing"
	"eventx/internal/utils"
)

type Handler struct {
	Service *marketing.Service
	Logger  *logger.Logger
}

func NewHandler(service *marketing.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// RegisterPublicRoutes mounts the promo code endpoints.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/promo-codes", h.PromoCodes)
	r.Post("/validate-promo", h.ValidatePromo)
}

// RegisterAdminRoutes mounts campaign management.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/campaigns", h.ListCampaigns)
	r.Post("/campaigns", h.CreateCampaign)
	r.Get("/campaigns/{campaignId}", h.GetCampaign)
	r.Put("/campaigns/{campaignId}", h.UpdateCampaign)
	r.Delete("/campaigns/{campaignId}", h.DeleteCampaign)
}

func (h *Handler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListCampaigns: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Campaigns retrieved", list))
}

func (h *Handler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.Get(r.Context(), chi.URLParam(r, "campaignId"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Campaign retrieved", c))
}

func (h *Handler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req marketing.CampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apperr.BadRequest("Invalid request body"))
		return
	}

	c, err := h.Service.Create(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateCampaign: %v", err))
		utils.WriteError(w, err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("campaign %s created", c.ID))
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Campaign created", c))
}

func (h *Handler) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var req marketing.CampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apperr.BadRequest("Invalid request body"))
		return
	}

	c, err := h.Service.Update(r.Context(), chi.URLParam(r, "campaignId"), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateCampaign: %v", err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Campaign updated", c))
}

func (h *Handler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "campaignId")); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Campaign deleted", nil))
}

func (h *Handler) PromoCodes(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Promo codes retrieved", h.Service.PromoCodes()))
}

func (h *Handler) ValidatePromo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, apperr.BadRequest("Invalid request body"))
		return
	}

	promo, err := h.Service.ValidatePromo(req.Code)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Promo code valid", promo))
}
