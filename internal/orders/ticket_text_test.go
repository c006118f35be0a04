package orders_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ms-raffles/internal/models"
	"ms-raffles/internal/orders"
)

func TestTicketText(t *testing.T) {
	raffle := models.Raffle{
		Title:       "Gran Rifa",
		Price:       10,
		NumberCount: 1000,
		RaffleDate:  time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC),
	}
	order := models.ReconciledOrder{
		Order: models.Order{
			Numbers:     []int{42, 7, 300},
			BuyerName:   "Maria Perez",
			BuyerCedula: "V-11222333",
			BuyerPhone:  "04125550101",
			CreatedAt:   time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC),
		},
		TotalAmount: 30,
		AmountPaid:  12,
		Debt:        18,
		Status:      models.OrderPartiallyPaid,
	}

	text := orders.TicketText(order, raffle)

	assert.Contains(t, text, "Gran Rifa")
	assert.Contains(t, text, "007, 042, 300", "numbers sorted and zero padded")
	assert.Contains(t, text, "$30.00")
	assert.Contains(t, text, "Abonado")
	assert.Contains(t, text, "resta $18.00")
	assert.Contains(t, text, "Maria Perez")
	assert.Contains(t, text, "24/12/2026")
}

func TestTicketText_NoPartialLineWhenSettled(t *testing.T) {
	raffle := models.Raffle{Title: "Rifa", Price: 10, NumberCount: 100, RaffleDate: time.Now()}
	order := models.ReconciledOrder{
		Order:       models.Order{Numbers: []int{1}, BuyerName: "Jose"},
		TotalAmount: 10,
		AmountPaid:  10,
		Status:      models.OrderPaid,
	}

	text := orders.TicketText(order, raffle)
	assert.NotContains(t, text, "resta")
	assert.Contains(t, text, "Pagado")
}

func TestDebtReminderText(t *testing.T) {
	msg := orders.DebtReminderText("Maria", 18)
	assert.Contains(t, msg, "Maria")
	assert.Contains(t, msg, "$18.00")
}
