package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-raffles/internal/logger"
	"ms-raffles/internal/models"
	"ms-raffles/internal/orders"
	"ms-raffles/internal/raffles"
	"ms-raffles/internal/utils"
)

type Handler struct {
	Service *raffles.Service
	Logger  *logger.Logger
}

func NewHandler(service *raffles.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	var vErr *orders.ValidationError
	switch {
	case errors.As(err, &vErr):
		status = http.StatusBadRequest
	case errors.Is(err, orders.ErrRaffleNotFound):
		status = http.StatusNotFound
	}
	h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(utils.ErrorResponse(op+" failed", err.Error()))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	list, err := h.Service.List(r.Context(), activeOnly)
	if err != nil {
		h.writeError(w, "ListRaffles", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("raffles", list))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "raffleID")

	raffle, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetRaffle", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("raffle", raffle))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.RaffleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	raffle, err := h.Service.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, "CreateRaffle", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, utils.SuccessResponse("raffle created", raffle))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "raffleID")

	var req models.RaffleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	raffle, err := h.Service.Update(r.Context(), id, req)
	if err != nil {
		h.writeError(w, "UpdateRaffle", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("raffle updated", raffle))
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "raffleID")

	var body struct {
		Status models.RaffleStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("SetRaffleStatus: raffleID=%s status=%s", id, body.Status))

	raffle, err := h.Service.SetStatus(r.Context(), id, body.Status)
	if err != nil {
		h.writeError(w, "SetRaffleStatus", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("status updated", raffle))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "raffleID")

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.writeError(w, "DeleteRaffle", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
