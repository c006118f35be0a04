package order_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"ms-raffles/internal/logger"
	"ms-raffles/internal/models"
	"ms-raffles/internal/orders"
	"ms-raffles/internal/tickets/qr"
	"ms-raffles/internal/utils"
)

// maxProofSize caps uploaded payment proofs at 10MB.
const maxProofSize = 10 << 20

// ProofResolver turns a stored proof reference into a downloadable URL.
type ProofResolver interface {
	ResolveURL(ref string) (string, error)
}

type Handler struct {
	OrderService *orders.OrderService
	QR           *qr.QRGenerator
	Proofs       ProofResolver
	Logger       *logger.Logger
}

func NewHandler(orderService *orders.OrderService, qrGen *qr.QRGenerator, resolver ProofResolver, log *logger.Logger) *Handler {
	return &Handler{
		OrderService: orderService,
		QR:           qrGen,
		Proofs:       resolver,
		Logger:       log,
	}
}

// writeError maps service errors to status codes and a uniform body.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	var vErr *orders.ValidationError
	var aErr *orders.AllocationConflictError
	switch {
	case errors.As(err, &vErr):
		status = http.StatusBadRequest
	case errors.As(err, &aErr):
		status = http.StatusConflict
	case errors.Is(err, orders.ErrRaffleNotFound), errors.Is(err, orders.ErrOrderNotFound):
		status = http.StatusNotFound
	case errors.Is(err, orders.ErrRaffleFinished):
		status = http.StatusConflict
	}

	h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := utils.ErrorResponse(op+" failed", err.Error())
	if aErr != nil {
		resp.Data = aErr
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}

// decodePurchase reads a purchase from JSON or, when the client attaches
// a proof file, from a multipart form with a "payload" JSON part and a
// "payment_proof" file part.
func decodePurchase(r *http.Request) (models.PurchaseRequest, error) {
	var req models.PurchaseRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxProofSize); err != nil {
			return req, fmt.Errorf("invalid multipart form: %w", err)
		}
		if err := json.Unmarshal([]byte(r.FormValue("payload")), &req); err != nil {
			return req, fmt.Errorf("invalid payload JSON: %w", err)
		}
		file, header, err := r.FormFile("payment_proof")
		if err == nil {
			defer file.Close()
			data, readErr := io.ReadAll(io.LimitReader(file, maxProofSize))
			if readErr != nil {
				return req, fmt.Errorf("failed to read proof file: %w", readErr)
			}
			req.Proof = &models.ProofFile{Name: header.Filename, Data: data}
		}
		return req, nil
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("invalid request body: %w", err)
	}
	return req, nil
}

// PlaceOrder handles the customer checkout.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	raffleID := chi.URLParam(r, "raffleID")
	h.Logger.Info("API", fmt.Sprintf("PlaceOrder: raffleID=%s", raffleID))

	req, err := decodePurchase(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.RaffleID = raffleID

	result, err := h.OrderService.PlaceOrder(r.Context(), req)
	if err != nil {
		h.writeError(w, "PlaceOrder", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("PlaceOrder: created order %s", result.Order.OrderID))
	h.writeJSON(w, http.StatusCreated, utils.SuccessResponse("order created", result))
}

// AdminAddOrder handles back-office manual registration.
func (h *Handler) AdminAddOrder(w http.ResponseWriter, r *http.Request) {
	raffleID := chi.URLParam(r, "raffleID")
	h.Logger.Info("API", fmt.Sprintf("AdminAddOrder: raffleID=%s", raffleID))

	req, err := decodePurchase(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.RaffleID = raffleID

	result, err := h.OrderService.AdminAddOrder(r.Context(), req)
	if err != nil {
		h.writeError(w, "AdminAddOrder", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, utils.SuccessResponse("order created", result))
}

// ListOrders returns all reconciled orders of a raffle for the dashboard.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	raffleID := chi.URLParam(r, "raffleID")

	list, err := h.OrderService.ListOrders(r.Context(), raffleID)
	if err != nil {
		h.writeError(w, "ListOrders", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("orders", list))
}

// VerifyByCedula is the public "check my tickets" endpoint.
func (h *Handler) VerifyByCedula(w http.ResponseWriter, r *http.Request) {
	raffleID := chi.URLParam(r, "raffleID")
	cedula := chi.URLParam(r, "cedula")
	h.Logger.Info("API", fmt.Sprintf("VerifyByCedula: raffleID=%s cedula=%s", raffleID, cedula))

	list, err := h.OrderService.VerifyByCedula(r.Context(), raffleID, cedula)
	if err != nil {
		h.writeError(w, "VerifyByCedula", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("orders", list))
}

// VerifyGlobal lists a buyer's orders across every raffle.
func (h *Handler) VerifyGlobal(w http.ResponseWriter, r *http.Request) {
	cedula := chi.URLParam(r, "cedula")
	h.Logger.Info("API", fmt.Sprintf("VerifyGlobal: cedula=%s", cedula))

	list, err := h.OrderService.VerifyGlobal(r.Context(), cedula)
	if err != nil {
		h.writeError(w, "VerifyGlobal", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("raffles", list))
}

// ResolveProof exchanges a stored proof reference for a downloadable URL
// so the back office can open Telegram-stored proofs.
func (h *Handler) ResolveProof(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("ref")
	if ref == "" {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("ResolveProof failed", "ref query parameter is required"))
		return
	}
	if h.Proofs == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, utils.ErrorResponse("ResolveProof failed", "proof storage is not configured"))
		return
	}

	url, err := h.Proofs.ResolveURL(ref)
	if err != nil {
		h.writeError(w, "ResolveProof", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("proof", map[string]string{"url": url}))
}

// Availability returns the taken/free summary of the number grid.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	raffleID := chi.URLParam(r, "raffleID")

	availability, err := h.OrderService.Availability(r.Context(), raffleID)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("availability", availability))
}

// Stats returns the admin dashboard counters.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	raffleID := chi.URLParam(r, "raffleID")

	stats, err := h.OrderService.Stats(r.Context(), raffleID)
	if err != nil {
		h.writeError(w, "Stats", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("stats", stats))
}

// ApplyStatus applies one admin status transition to a whole order.
func (h *Handler) ApplyStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var body struct {
		Status models.PaymentStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("ApplyStatus: orderID=%s status=%s", orderID, body.Status))

	result, err := h.OrderService.ApplyStatus(r.Context(), orderID, body.Status)
	if err != nil {
		h.writeError(w, "ApplyStatus", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("status updated", result))
}

// UndoStatus reverts the last status change applied to an order.
func (h *Handler) UndoStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	h.Logger.Info("API", fmt.Sprintf("UndoStatus: orderID=%s", orderID))

	action, err := h.OrderService.UndoLast(r.Context(), orderID)
	if err != nil {
		h.writeError(w, "UndoStatus", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("status restored", action))
}

// CompletePayment records a top-up on a reserved or partially paid order.
func (h *Handler) CompletePayment(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var req models.CompletionRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxProofSize); err != nil {
			http.Error(w, "Invalid multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := json.Unmarshal([]byte(r.FormValue("payload")), &req); err != nil {
			http.Error(w, "Invalid payload JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		if file, header, err := r.FormFile("payment_proof"); err == nil {
			defer file.Close()
			data, readErr := io.ReadAll(io.LimitReader(file, maxProofSize))
			if readErr != nil {
				http.Error(w, "Failed to read proof file", http.StatusBadRequest)
				return
			}
			req.Proof = &models.ProofFile{Name: header.Filename, Data: data}
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	req.OrderID = orderID

	order, err := h.OrderService.CompleteReservation(r.Context(), req)
	if err != nil {
		h.writeError(w, "CompletePayment", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("payment recorded", order))
}

// DeleteOrder removes a rejected order.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	h.Logger.Info("API", fmt.Sprintf("DeleteOrder: orderID=%s", orderID))

	if err := h.OrderService.DeleteOrder(r.Context(), orderID); err != nil {
		h.writeError(w, "DeleteOrder", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OrderQR returns the encrypted verification QR for an order as PNG.
func (h *Handler) OrderQR(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	tickets, err := h.OrderService.Tickets.ByOrder(r.Context(), orderID)
	if err != nil || len(tickets) == 0 {
		h.writeError(w, "OrderQR", fmt.Errorf("%w: %s", orders.ErrOrderNotFound, orderID))
		return
	}
	raffle, err := h.OrderService.Raffles.ByID(r.Context(), tickets[0].RaffleID)
	if err != nil {
		h.writeError(w, "OrderQR", fmt.Errorf("%w: %s", orders.ErrRaffleNotFound, tickets[0].RaffleID))
		return
	}

	groups := orders.GroupTickets(tickets)
	reconciled := orders.Reconcile(groups[0], *raffle)

	png, err := h.QR.GenerateOrderQR(reconciled)
	if err != nil {
		h.writeError(w, "OrderQR", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// OrderTicket returns the shareable ticket text for an order.
func (h *Handler) OrderTicket(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	tickets, err := h.OrderService.Tickets.ByOrder(r.Context(), orderID)
	if err != nil || len(tickets) == 0 {
		h.writeError(w, "OrderTicket", fmt.Errorf("%w: %s", orders.ErrOrderNotFound, orderID))
		return
	}
	raffle, err := h.OrderService.Raffles.ByID(r.Context(), tickets[0].RaffleID)
	if err != nil {
		h.writeError(w, "OrderTicket", fmt.Errorf("%w: %s", orders.ErrRaffleNotFound, tickets[0].RaffleID))
		return
	}

	groups := orders.GroupTickets(tickets)
	reconciled := orders.Reconcile(groups[0], *raffle)

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("ticket", map[string]string{
		"text": orders.TicketText(reconciled, *raffle),
	}))
}
