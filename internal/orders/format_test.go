package orders_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ms-raffles/internal/orders"
)

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		num         int
		numberCount int
		want        string
	}{
		{5, 100, "05"},
		{0, 100, "00"},
		{99, 100, "99"},
		{5, 1000, "005"},
		{0, 1000, "000"},
		{42, 1000, "042"},
		{999, 1000, "999"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, orders.FormatNumber(tc.num, tc.numberCount))
	}
}
