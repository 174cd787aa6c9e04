package category_api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"eventx/internal/apperr"
	"eventx/internal/categories"
	"eventx/internal/utils"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{categoryId}", h.Get)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Categories retrieved", categories.List()))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "categoryId"))
	if err != nil {
		utils.WriteError(w, apperr.BadRequest("Invalid category id"))
		return
	}
	c, err := categories.Get(id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Category retrieved", c))
}
