package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-raffles/internal/clients"
	"ms-raffles/internal/logger"
	"ms-raffles/internal/utils"
)

type Handler struct {
	Service *clients.Service
	Logger  *logger.Logger
}

func NewHandler(service *clients.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListClients: %v", err))
		http.Error(w, "Failed to load clients", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(utils.SuccessResponse("clients", list))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	cedula := chi.URLParam(r, "cedula")

	client, err := h.Service.Get(r.Context(), cedula)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetClient: %v", err))
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(utils.SuccessResponse("client", client))
}
