package program

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayment(t *testing.T) {
	tests := []struct {
		name     string
		quantity uint64
		price    uint64
		want     uint64
	}{
		{"one per token", 3, 1_000_000_000, 3},
		{"truncates", 3, 500_000_000, 1},
		{"below one unit", 1, 999_999_999, 0},
		{"zero quantity", 0, 1_000_000_000, 0},
		{"zero price", 10, 0, 0},
		{"large intermediate", math.MaxUint64, 1_000_000_000, math.MaxUint64},
		{"fractional large", math.MaxUint64, 1, math.MaxUint64 / 1_000_000_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Payment(tt.quantity, tt.price)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPayment_Overflow(t *testing.T) {
	_, err := Payment(math.MaxUint64, 2_000_000_000)
	assert.ErrorIs(t, err, ErrPaymentOverflow)
	assert.Equal(t, CodePaymentOverflow, ErrorCode(err))
}
