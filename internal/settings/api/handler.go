package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-raffles/internal/logger"
	"ms-raffles/internal/models"
	"ms-raffles/internal/settings"
	"ms-raffles/internal/utils"
)

type Handler struct {
	DB     *settings.DB
	Logger *logger.Logger
}

func NewHandler(db *settings.DB, log *logger.Logger) *Handler {
	return &Handler{DB: db, Logger: log}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.DB.GetSettings(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetSettings: %v", err))
		http.Error(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("settings", s))
}

func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var s models.SiteSettings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.DB.SaveSettings(r.Context(), s); err != nil {
		h.Logger.Error("API", fmt.Sprintf("SaveSettings: %v", err))
		http.Error(w, "Failed to save settings", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("settings saved", s))
}

// ListPaymentMethods serves the checkout page; the public variant only
// returns active methods.
func (h *Handler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"

	methods, err := h.DB.PaymentMethods(r.Context(), activeOnly)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListPaymentMethods: %v", err))
		http.Error(w, "Failed to load payment methods", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("payment methods", methods))
}

func (h *Handler) CreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var m models.PaymentMethod
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if m.Name == "" {
		http.Error(w, "Payment method name is required", http.StatusBadRequest)
		return
	}

	created, err := h.DB.CreatePaymentMethod(r.Context(), m)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreatePaymentMethod: %v", err))
		http.Error(w, "Failed to create payment method", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusCreated, utils.SuccessResponse("payment method created", created))
}

func (h *Handler) UpdatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "methodID")

	var m models.PaymentMethod
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	m.ID = id

	if err := h.DB.UpdatePaymentMethod(r.Context(), m); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdatePaymentMethod: %v", err))
		http.Error(w, "Failed to update payment method", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("payment method updated", m))
}

func (h *Handler) DeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "methodID")

	if err := h.DB.DeletePaymentMethod(r.Context(), id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeletePaymentMethod: %v", err))
		http.Error(w, "Failed to delete payment method", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
