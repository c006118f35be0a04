package orders

import "fmt"

// FormatNumber renders a raffle number for humans: 2-digit zero-padded for
// raffles of up to 100 numbers, 3-digit otherwise. Storage keeps plain ints.
func FormatNumber(num, numberCount int) string {
	if numberCount <= 100 {
		return fmt.Sprintf("%02d", num)
	}
	return fmt.Sprintf("%03d", num)
}
