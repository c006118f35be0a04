package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"ms-raffles/internal/logger"
	"ms-raffles/internal/models"
	"ms-raffles/internal/utils"
	"ms-raffles/internal/whatsapp"
)

type TicketStore interface {
	ByRaffle(ctx context.Context, raffleID string) ([]models.Ticket, error)
	ActiveByRaffle(ctx context.Context, raffleID string) ([]models.Ticket, error)
	ByCedula(ctx context.Context, raffleID, cedula string) ([]models.Ticket, error)
	ByCedulaGlobal(ctx context.Context, cedula string) ([]models.Ticket, error)
	ByOrder(ctx context.Context, orderID string) ([]models.Ticket, error)
	Insert(ctx context.Context, tickets []models.Ticket) error
	UpdateStatusByIDs(ctx context.Context, ids []string, status models.PaymentStatus) error
	UpdateTicket(ctx context.Context, ticket models.Ticket) error
	DeleteByIDs(ctx context.Context, ids []string) error
}

type RaffleStore interface {
	ByID(ctx context.Context, id string) (*models.Raffle, error)
}

// NumberLock is the advisory redis lock held across the checkout window.
type NumberLock interface {
	LockNumbers(raffleID string, numbers []int, orderID string) (bool, error)
	UnlockNumbers(raffleID string, numbers []int, orderID string) error
}

type EventPublisher interface {
	PublishTicketInserted(ticket models.Ticket) error
	PublishOrderApproved(orderID string, ticketIDs []string) error
}

// ProofUploader pushes a payment proof to external blob storage. A nil
// url with nil error means upload was skipped.
type ProofUploader interface {
	Upload(ctx context.Context, name string, data []byte, caption string) (string, error)
}

type OrderService struct {
	Tickets TicketStore
	Raffles RaffleStore
	Lock    NumberLock
	Events  EventPublisher
	Proofs  ProofUploader
	Guard   *Guard
	Undo    *UndoStack
	Logger  *logger.Logger
}

func NewOrderService(tickets TicketStore, raffles RaffleStore, lock NumberLock, events EventPublisher, proofs ProofUploader, log *logger.Logger) *OrderService {
	return &OrderService{
		Tickets: tickets,
		Raffles: raffles,
		Lock:    lock,
		Events:  events,
		Proofs:  proofs,
		Guard:   NewGuard(tickets),
		Undo:    NewUndoStack(DefaultUndoDepth),
		Logger:  log,
	}
}

// PurchaseResult is what a successful checkout returns to the caller.
type PurchaseResult struct {
	Order        models.ReconciledOrder `json:"order"`
	ProofWarning string                 `json:"proof_warning,omitempty"`
	WhatsAppLink string                 `json:"whatsapp_link"`
	TicketText   string                 `json:"ticket_text"`
}

// PlaceOrder is the customer self-checkout path.
func (s *OrderService) PlaceOrder(ctx context.Context, req models.PurchaseRequest) (*PurchaseResult, error) {
	return s.placeOrder(ctx, req, false, models.StatusPending)
}

// AdminAddOrder is the back-office manual-add path. It runs the same
// availability check but bypasses the per-client cap.
func (s *OrderService) AdminAddOrder(ctx context.Context, req models.PurchaseRequest) (*PurchaseResult, error) {
	s.Logger.LogAllocation(req.RaffleID, fmt.Sprintf("admin manual add for cedula %s bypasses client cap", req.BuyerCedula))
	return s.placeOrder(ctx, req, true, models.StatusPending)
}

func (s *OrderService) placeOrder(ctx context.Context, req models.PurchaseRequest, overrideCap bool, initialStatus models.PaymentStatus) (*PurchaseResult, error) {
	if err := validatePurchase(req); err != nil {
		return nil, err
	}

	raffle, err := s.Raffles.ByID(ctx, req.RaffleID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRaffleNotFound, req.RaffleID)
	}
	if raffle.Status != models.RaffleActive {
		return nil, ErrRaffleFinished
	}

	if err := s.Guard.Check(ctx, *raffle, req.Numbers, req.BuyerCedula, overrideCap); err != nil {
		return nil, err
	}

	orderID := utils.NewOrderID(req.BuyerCedula)

	ok, err := s.Lock.LockNumbers(raffle.ID, req.Numbers, orderID)
	if err != nil {
		return nil, fmt.Errorf("number lock error: %w", err)
	}
	if !ok {
		return nil, &AllocationConflictError{Reason: ReasonNumberTaken, Conflicts: req.Numbers}
	}

	// Proof upload degrades gracefully: ticket creation proceeds even if
	// the upload fails, the buyer is told to send the proof by chat.
	var proofURL, proofWarning string
	if req.Proof != nil && s.Proofs != nil {
		caption := fmt.Sprintf("%s | %s | ref %s", raffle.Title, req.BuyerCedula, req.ReferenceNumber)
		url, upErr := s.Proofs.Upload(ctx, req.Proof.Name, req.Proof.Data, caption)
		if upErr != nil || url == "" {
			proofWarning = "No se pudo subir el comprobante. Envíalo por el canal de contacto."
			s.Logger.Warn("TELEGRAM", fmt.Sprintf("proof upload failed for order %s: %v", orderID, upErr))
		} else {
			proofURL = url
		}
	}

	status := initialStatus
	amountPaid := req.PartialAmount
	switch req.PaymentType {
	case models.PaymentReserve:
		status = models.StatusReserved
		amountPaid = 0
	case models.PaymentFull:
		amountPaid = raffle.Price * float64(len(req.Numbers))
	}

	now := time.Now()
	share := amountPaid / float64(len(req.Numbers))
	tickets := make([]models.Ticket, len(req.Numbers))
	for i, n := range req.Numbers {
		tickets[i] = models.Ticket{
			ID:              uuid.NewString(),
			RaffleID:        raffle.ID,
			OrderID:         orderID,
			Number:          n,
			BuyerName:       req.BuyerName,
			BuyerCedula:     req.BuyerCedula,
			BuyerPhone:      req.BuyerPhone,
			ReferenceNumber: req.ReferenceNumber,
			PaymentProofURL: proofURL,
			PaymentStatus:   status,
			AmountPaid:      share,
			CreatedAt:       now,
		}
	}

	// The batch insert is all-or-nothing; the partial unique index on
	// (raffle_id, number) rejects a concurrent winner's duplicates here.
	if err := s.Tickets.Insert(ctx, tickets); err != nil {
		_ = s.Lock.UnlockNumbers(raffle.ID, req.Numbers, orderID)
		return nil, fmt.Errorf("failed to insert tickets for order %s: %w", orderID, err)
	}

	s.Logger.LogOrder("CREATE", orderID, fmt.Sprintf("%d numbers for %s", len(tickets), req.BuyerCedula))

	if s.Events != nil {
		for _, t := range tickets {
			if err := s.Events.PublishTicketInserted(t); err != nil {
				s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish ticket insert for order %s: %v", orderID, err))
				break
			}
		}
	}

	reconciled := Reconcile(groupOne(tickets), *raffle)
	text := TicketText(reconciled, *raffle)
	return &PurchaseResult{
		Order:        reconciled,
		ProofWarning: proofWarning,
		WhatsAppLink: whatsapp.Link(req.BuyerPhone, text),
		TicketText:   text,
	}, nil
}

func validatePurchase(req models.PurchaseRequest) error {
	if req.BuyerName == "" {
		return &ValidationError{Field: "buyer_name", Message: "required"}
	}
	if req.BuyerCedula == "" {
		return &ValidationError{Field: "buyer_cedula", Message: "required"}
	}
	if req.BuyerPhone == "" {
		return &ValidationError{Field: "buyer_phone", Message: "required"}
	}
	if len(req.Numbers) == 0 {
		return &ValidationError{Field: "numbers", Message: "no numbers selected"}
	}
	switch req.PaymentType {
	case models.PaymentFull, models.PaymentPartial, models.PaymentReserve:
	default:
		return &ValidationError{Field: "payment_type", Message: "must be full, partial or reserve"}
	}
	if req.PaymentType != models.PaymentReserve && req.ReferenceNumber == "" {
		return &ValidationError{Field: "reference_number", Message: "required unless reserving"}
	}
	if req.PaymentType == models.PaymentPartial && req.PartialAmount <= 0 {
		return &ValidationError{Field: "partial_amount", Message: "must be positive"}
	}
	return nil
}

// groupOne builds the derived order for a freshly inserted batch without a
// round-trip through the store.
func groupOne(tickets []models.Ticket) models.Order {
	groups := GroupTickets(tickets)
	if len(groups) == 0 {
		return models.Order{}
	}
	return groups[0]
}

// ListOrders returns all orders for a raffle, grouped and reconciled
// against the raffle's current price, newest first.
func (s *OrderService) ListOrders(ctx context.Context, raffleID string) ([]models.ReconciledOrder, error) {
	raffle, err := s.Raffles.ByID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRaffleNotFound, raffleID)
	}
	tickets, err := s.Tickets.ByRaffle(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets for raffle %s: %w", raffleID, err)
	}
	return ReconcileAll(GroupTickets(tickets), *raffle), nil
}

// VerifyByCedula returns a buyer's reconciled orders within one raffle.
func (s *OrderService) VerifyByCedula(ctx context.Context, raffleID, cedula string) ([]models.ReconciledOrder, error) {
	if cedula == "" {
		return nil, &ValidationError{Field: "cedula", Message: "required"}
	}
	raffle, err := s.Raffles.ByID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRaffleNotFound, raffleID)
	}
	tickets, err := s.Tickets.ByCedula(ctx, raffleID, cedula)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets for cedula %s: %w", cedula, err)
	}
	return ReconcileAll(GroupTickets(tickets), *raffle), nil
}

// GlobalVerification bundles a buyer's reconciled orders under one raffle.
type GlobalVerification struct {
	Raffle models.Raffle            `json:"raffle"`
	Orders []models.ReconciledOrder `json:"orders"`
}

// VerifyGlobal returns a buyer's orders across every raffle they bought
// into, grouped per raffle in first-purchase order.
func (s *OrderService) VerifyGlobal(ctx context.Context, cedula string) ([]GlobalVerification, error) {
	if cedula == "" {
		return nil, &ValidationError{Field: "cedula", Message: "required"}
	}
	tickets, err := s.Tickets.ByCedulaGlobal(ctx, cedula)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets for cedula %s: %w", cedula, err)
	}

	byRaffle := make(map[string][]models.Ticket)
	seen := make([]string, 0, 4)
	for _, t := range tickets {
		if _, ok := byRaffle[t.RaffleID]; !ok {
			seen = append(seen, t.RaffleID)
		}
		byRaffle[t.RaffleID] = append(byRaffle[t.RaffleID], t)
	}

	result := make([]GlobalVerification, 0, len(seen))
	for _, raffleID := range seen {
		raffle, err := s.Raffles.ByID(ctx, raffleID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrRaffleNotFound, raffleID)
		}
		result = append(result, GlobalVerification{
			Raffle: *raffle,
			Orders: ReconcileAll(GroupTickets(byRaffle[raffleID]), *raffle),
		})
	}
	return result, nil
}

// Availability summarizes the number grid: every number held by a
// non-rejected ticket is taken.
func (s *OrderService) Availability(ctx context.Context, raffleID string) (*models.Availability, error) {
	raffle, err := s.Raffles.ByID(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRaffleNotFound, raffleID)
	}
	active, err := s.Tickets.ActiveByRaffle(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets for raffle %s: %w", raffleID, err)
	}

	seen := make(map[int]bool, len(active))
	taken := make([]int, 0, len(active))
	for _, t := range active {
		if !seen[t.Number] {
			seen[t.Number] = true
			taken = append(taken, t.Number)
		}
	}
	sort.Ints(taken)

	return &models.Availability{
		NumberCount:  raffle.NumberCount,
		TakenNumbers: taken,
		TakenCount:   len(taken),
		FreeCount:    raffle.NumberCount - len(taken),
	}, nil
}

// Stats aggregates the admin dashboard counters for one raffle.
func (s *OrderService) Stats(ctx context.Context, raffleID string) (*models.RaffleStats, error) {
	tickets, err := s.Tickets.ByRaffle(ctx, raffleID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets for raffle %s: %w", raffleID, err)
	}

	var stats models.RaffleStats
	for _, t := range tickets {
		switch t.PaymentStatus {
		case models.StatusPaid:
			stats.Collected += t.AmountPaid
			stats.PaidCount++
		case models.StatusPending, models.StatusReserved:
			stats.PendingCount++
		}
	}
	return &stats, nil
}

// StatusChangeResult reports an applied transition plus the confirmation
// side effects offered on approval.
type StatusChangeResult struct {
	Order        models.ReconciledOrder `json:"order"`
	Undoable     bool                   `json:"undoable"`
	WhatsAppLink string                 `json:"whatsapp_link,omitempty"`
	Message      string                 `json:"message,omitempty"`
}

// ApplyStatus performs one batched status update over all tickets of an
// order and records an undo action for paid/rejected transitions. On
// approval it also records an approval event and prepares the templated
// confirmation message.
func (s *OrderService) ApplyStatus(ctx context.Context, orderID string, newStatus models.PaymentStatus) (*StatusChangeResult, error) {
	switch newStatus {
	case models.StatusPaid, models.StatusRejected, models.StatusPending:
	default:
		return nil, &ValidationError{Field: "status", Message: "must be paid, rejected or pending"}
	}

	tickets, err := s.Tickets.ByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order %s: %w", orderID, err)
	}
	if len(tickets) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}

	group := groupOne(tickets)
	previous := group.StoredStatus

	if err := s.Tickets.UpdateStatusByIDs(ctx, group.TicketIDs, newStatus); err != nil {
		return nil, fmt.Errorf("failed to update order %s to %s: %w", orderID, newStatus, err)
	}
	s.Logger.LogOrder("STATUS", orderID, fmt.Sprintf("%s -> %s (%d tickets)", previous, newStatus, len(group.TicketIDs)))

	undoable := newStatus == models.StatusPaid || newStatus == models.StatusRejected
	if undoable {
		s.Undo.Push(models.UndoAction{
			OrderID:        orderID,
			TicketIDs:      group.TicketIDs,
			PreviousStatus: previous,
			NewStatus:      newStatus,
			Timestamp:      time.Now(),
		})
	}

	raffle, err := s.Raffles.ByID(ctx, group.RaffleID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRaffleNotFound, group.RaffleID)
	}

	group.StoredStatus = newStatus
	for i := range group.Tickets {
		group.Tickets[i].PaymentStatus = newStatus
	}
	reconciled := Reconcile(group, *raffle)

	result := &StatusChangeResult{Order: reconciled, Undoable: undoable}

	if newStatus == models.StatusPaid {
		if s.Events != nil {
			if err := s.Events.PublishOrderApproved(orderID, group.TicketIDs); err != nil {
				s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish approval for order %s: %v", orderID, err))
			}
		}
		result.Message = TicketText(reconciled, *raffle)
		result.WhatsAppLink = whatsapp.Link(group.BuyerPhone, result.Message)
	}

	return result, nil
}

// UndoLast reverts the pending status change for an order, restoring all
// its tickets to the previous status, then drops the action.
func (s *OrderService) UndoLast(ctx context.Context, orderID string) (*models.UndoAction, error) {
	action, ok := s.Undo.ByOrder(orderID)
	if !ok {
		return nil, fmt.Errorf("no undoable action for order %s", orderID)
	}

	if err := s.Tickets.UpdateStatusByIDs(ctx, action.TicketIDs, action.PreviousStatus); err != nil {
		return nil, fmt.Errorf("failed to undo status change on order %s: %w", orderID, err)
	}

	s.Undo.Remove(orderID)
	s.Logger.LogOrder("UNDO", orderID, fmt.Sprintf("restored %d tickets to %s", len(action.TicketIDs), action.PreviousStatus))
	return &action, nil
}

// CompleteReservation tops up a reserved or partially paid order. The
// added amount accrues to the representative ticket only; per-ticket
// shares are never redistributed.
func (s *OrderService) CompleteReservation(ctx context.Context, req models.CompletionRequest) (*models.ReconciledOrder, error) {
	if req.Amount <= 0 {
		return nil, &ValidationError{Field: "amount", Message: "must be positive"}
	}
	if req.ReferenceNumber == "" {
		return nil, &ValidationError{Field: "reference_number", Message: "required"}
	}

	tickets, err := s.Tickets.ByOrder(ctx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order %s: %w", req.OrderID, err)
	}
	if len(tickets) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, req.OrderID)
	}

	group := groupOne(tickets)
	if group.StoredStatus == models.StatusRejected {
		return nil, &ValidationError{Field: "order", Message: "cannot add payment to a rejected order"}
	}

	var proofURL string
	if req.Proof != nil && s.Proofs != nil {
		caption := fmt.Sprintf("completion %s | ref %s", req.OrderID, req.ReferenceNumber)
		if url, upErr := s.Proofs.Upload(ctx, req.Proof.Name, req.Proof.Data, caption); upErr == nil && url != "" {
			proofURL = url
		} else {
			s.Logger.Warn("TELEGRAM", fmt.Sprintf("proof upload failed for completion on order %s: %v", req.OrderID, upErr))
		}
	}

	// The representative ticket is the newest in the group; grouping put
	// its identity fields on the order, find it by id.
	rep := tickets[0]
	for _, t := range tickets {
		if t.CreatedAt.After(rep.CreatedAt) {
			rep = t
		}
	}
	rep.AmountPaid += req.Amount
	rep.ReferenceNumber = req.ReferenceNumber
	if proofURL != "" {
		rep.PaymentProofURL = proofURL
	}
	if err := s.Tickets.UpdateTicket(ctx, rep); err != nil {
		return nil, fmt.Errorf("failed to record payment on order %s: %w", req.OrderID, err)
	}

	// A reservation with money against it moves to pending review.
	if group.StoredStatus == models.StatusReserved {
		if err := s.Tickets.UpdateStatusByIDs(ctx, group.TicketIDs, models.StatusPending); err != nil {
			return nil, fmt.Errorf("failed to move order %s to pending: %w", req.OrderID, err)
		}
	}

	s.Logger.LogOrder("COMPLETE", req.OrderID, fmt.Sprintf("added $%.2f ref %s", req.Amount, req.ReferenceNumber))

	// Re-fetch: the snapshot is stale after any mutation.
	fresh, err := s.Tickets.ByOrder(ctx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order %s: %w", req.OrderID, err)
	}
	raffle, err := s.Raffles.ByID(ctx, group.RaffleID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRaffleNotFound, group.RaffleID)
	}
	reconciled := Reconcile(groupOne(fresh), *raffle)
	return &reconciled, nil
}

// DeleteOrder removes an order's tickets. Deletion is only permitted for
// rejected orders; a rejected ticket has already freed its number.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID string) error {
	tickets, err := s.Tickets.ByOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to fetch order %s: %w", orderID, err)
	}
	if len(tickets) == 0 {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	for _, t := range tickets {
		if t.PaymentStatus != models.StatusRejected {
			return errors.New("only rejected orders can be deleted")
		}
	}

	ids := make([]string, len(tickets))
	for i, t := range tickets {
		ids[i] = t.ID
	}
	if err := s.Tickets.DeleteByIDs(ctx, ids); err != nil {
		return fmt.Errorf("failed to delete order %s: %w", orderID, err)
	}
	s.Undo.Remove(orderID)
	s.Logger.LogOrder("DELETE", orderID, fmt.Sprintf("%d tickets removed", len(ids)))
	return nil
}
