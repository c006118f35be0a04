package orders

import (
	"fmt"
	"sort"
	"strings"

	"ms-raffles/internal/models"
)

func statusText(status models.OrderStatus) string {
	switch status {
	case models.OrderPaid:
		return "Pagado ✅"
	case models.OrderPartiallyPaid:
		return "Abonado 💵"
	case models.OrderReserved:
		return "Reservado 📌"
	case models.OrderRejected:
		return "Rechazado ❌"
	default:
		return "Pendiente ⏳"
	}
}

// TicketText renders the shareable purchase-ticket message for an order:
// sorted formatted numbers, money totals at current price, buyer identity.
func TicketText(order models.ReconciledOrder, raffle models.Raffle) string {
	numbers := append([]int(nil), order.Numbers...)
	sort.Ints(numbers)

	formatted := make([]string, len(numbers))
	for i, n := range numbers {
		formatted[i] = FormatNumber(n, raffle.NumberCount)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎟️ TICKET DE COMPRA - %s\n\n", raffle.Title)
	fmt.Fprintf(&b, "📋 Números: %s\n", strings.Join(formatted, ", "))
	fmt.Fprintf(&b, "💰 Total: $%.2f\n", order.TotalAmount)
	if order.Debt > 0 && order.AmountPaid > 0 {
		fmt.Fprintf(&b, "💵 Abonado: $%.2f (resta $%.2f)\n", order.AmountPaid, order.Debt)
	}
	fmt.Fprintf(&b, "📊 Estado: %s\n\n", statusText(order.Status))
	fmt.Fprintf(&b, "👤 Nombre: %s\n", order.BuyerName)
	fmt.Fprintf(&b, "🪪 Cédula: %s\n", order.BuyerCedula)
	fmt.Fprintf(&b, "📱 Teléfono: %s\n", order.BuyerPhone)
	if order.ReferenceNumber != "" {
		fmt.Fprintf(&b, "🔢 Referencia: %s\n", order.ReferenceNumber)
	}
	fmt.Fprintf(&b, "\n📅 Fecha de compra: %s\n", order.CreatedAt.Format("02/01/2006 15:04"))
	fmt.Fprintf(&b, "🎯 Sorteo: %s\n\n", raffle.RaffleDate.Format("02/01/2006"))
	b.WriteString("¡Gracias por tu compra! 🍀")

	return b.String()
}

// DebtReminderText renders the debt-chasing message used from the clients
// section.
func DebtReminderText(name string, debt float64) string {
	return fmt.Sprintf(
		"Hola %s, te recordamos que tienes un saldo pendiente de $%.2f en tus participaciones de rifa. ¿Necesitas ayuda para completar tu pago?",
		name, debt)
}
