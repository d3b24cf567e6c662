package program

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// PriceDecimals is the fixed-point scale of the list price: a price of
// 10^9 charges one base unit per token.
const PriceDecimals = 9

var priceScale = sdkmath.NewIntWithDecimal(1, PriceDecimals)

// Payment returns quantity × price / 10^9, truncated toward zero.
func Payment(quantity, price uint64) (uint64, error) {
	amount := sdkmath.NewIntFromUint64(quantity).
		Mul(sdkmath.NewIntFromUint64(price)).
		Quo(priceScale)
	if !amount.IsUint64() {
		return 0, fmt.Errorf("%w: %d × %d / 10^%d", ErrPaymentOverflow, quantity, price, PriceDecimals)
	}
	return amount.Uint64(), nil
}
