package raffles

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-raffles/internal/logger"
	"ms-raffles/internal/models"
	"ms-raffles/internal/orders"
)

type Store interface {
	ByID(ctx context.Context, id string) (*models.Raffle, error)
	All(ctx context.Context) ([]models.Raffle, error)
	Active(ctx context.Context) ([]models.Raffle, error)
	Create(ctx context.Context, raffle models.Raffle) error
	Update(ctx context.Context, raffle models.Raffle) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	DB     Store
	Logger *logger.Logger
}

func NewService(db Store, log *logger.Logger) *Service {
	return &Service{DB: db, Logger: log}
}

// parseDate accepts full RFC 3339 timestamps or bare dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func validate(req models.RaffleRequest) error {
	if req.Title == "" {
		return &orders.ValidationError{Field: "title", Message: "required"}
	}
	if req.Price <= 0 {
		return &orders.ValidationError{Field: "price", Message: "must be positive"}
	}
	if req.NumberCount != 100 && req.NumberCount != 1000 {
		return &orders.ValidationError{Field: "number_count", Message: "must be 100 or 1000"}
	}
	if req.MaxNumbersPerClient < 0 {
		return &orders.ValidationError{Field: "max_numbers_per_client", Message: "cannot be negative"}
	}
	if _, err := parseDate(req.RaffleDate); err != nil {
		return &orders.ValidationError{Field: "raffle_date", Message: "must be RFC 3339 or YYYY-MM-DD"}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req models.RaffleRequest) (*models.Raffle, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	raffleDate, _ := parseDate(req.RaffleDate)
	raffle := models.Raffle{
		ID:                  uuid.NewString(),
		Title:               req.Title,
		Description:         req.Description,
		CoverImage:          req.CoverImage,
		Price:               req.Price,
		RaffleDate:          raffleDate,
		NumberCount:         req.NumberCount,
		MaxNumbersPerClient: req.MaxNumbersPerClient,
		Status:              models.RaffleActive,
		CopRate:             req.CopRate,
		BsRate:              req.BsRate,
		CreatedAt:           time.Now(),
	}
	if err := s.DB.Create(ctx, raffle); err != nil {
		return nil, fmt.Errorf("failed to create raffle: %w", err)
	}

	s.Logger.Info("RAFFLE", fmt.Sprintf("created raffle %s (%s)", raffle.ID, raffle.Title))
	return &raffle, nil
}

func (s *Service) Update(ctx context.Context, id string, req models.RaffleRequest) (*models.Raffle, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	raffle, err := s.DB.ByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", orders.ErrRaffleNotFound, id)
	}

	raffleDate, _ := parseDate(req.RaffleDate)
	raffle.Title = req.Title
	raffle.Description = req.Description
	raffle.CoverImage = req.CoverImage
	raffle.Price = req.Price
	raffle.RaffleDate = raffleDate
	raffle.NumberCount = req.NumberCount
	raffle.MaxNumbersPerClient = req.MaxNumbersPerClient
	raffle.CopRate = req.CopRate
	raffle.BsRate = req.BsRate

	if err := s.DB.Update(ctx, *raffle); err != nil {
		return nil, fmt.Errorf("failed to update raffle %s: %w", id, err)
	}
	return raffle, nil
}

// SetStatus finishes or reopens a raffle. A finished raffle rejects new
// purchases but its orders stay readable.
func (s *Service) SetStatus(ctx context.Context, id string, status models.RaffleStatus) (*models.Raffle, error) {
	if status != models.RaffleActive && status != models.RaffleFinished {
		return nil, &orders.ValidationError{Field: "status", Message: "must be active or finished"}
	}

	raffle, err := s.DB.ByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", orders.ErrRaffleNotFound, id)
	}

	raffle.Status = status
	if err := s.DB.Update(ctx, *raffle); err != nil {
		return nil, fmt.Errorf("failed to update raffle %s: %w", id, err)
	}

	s.Logger.Info("RAFFLE", fmt.Sprintf("raffle %s is now %s", id, status))
	return raffle, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Raffle, error) {
	raffle, err := s.DB.ByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", orders.ErrRaffleNotFound, id)
	}
	return raffle, nil
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]models.Raffle, error) {
	if activeOnly {
		return s.DB.Active(ctx)
	}
	return s.DB.All(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.DB.ByID(ctx, id); err != nil {
		return fmt.Errorf("%w: %s", orders.ErrRaffleNotFound, id)
	}
	if err := s.DB.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete raffle %s: %w", id, err)
	}
	s.Logger.Info("RAFFLE", fmt.Sprintf("deleted raffle %s", id))
	return nil
}
