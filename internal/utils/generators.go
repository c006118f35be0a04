package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const orderIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewOrderID builds the shared identifier that groups all tickets from one
// purchase: <unix-millis>-<cedula>-<random suffix>.
func NewOrderID(cedula string) string {
	suffix := make([]byte, 7)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(orderIDAlphabet))))
		if err != nil {
			suffix[i] = orderIDAlphabet[time.Now().UnixNano()%int64(len(orderIDAlphabet))]
			continue
		}
		suffix[i] = orderIDAlphabet[n.Int64()]
	}
	return fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), cedula, suffix)
}
