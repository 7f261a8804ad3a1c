package checkout

import (
	"errors"
	"fmt"

	"toko-kelontong-pos/internal/model"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientPayment  = errors.New("amount received is less than the total")
	ErrInvalidPaymentMethod = errors.New("unknown payment method")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrCommitFailed         = errors.New("sale could not be saved, cart kept for retry")
)

// ComputeChange is max(0, received - total).
func ComputeChange(received, total decimal.Decimal) decimal.Decimal {
	if received.LessThan(total) {
		return decimal.Zero
	}
	return received.Sub(total)
}

// ValidatePayment only checks cash tender. QRIS and e-wallet settle out of band.
func ValidatePayment(method model.PaymentMethod, received, total decimal.Decimal) error {
	if !method.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, method)
	}
	if method == model.PaymentCash && received.LessThan(total) {
		return fmt.Errorf("%w: need %s, got %s", ErrInsufficientPayment, total.StringFixed(0), received.StringFixed(0))
	}
	return nil
}

// settle returns the amounts recorded on the sale for a validated payment.
func settle(method model.PaymentMethod, received, total decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if method != model.PaymentCash {
		return total, decimal.Zero
	}
	return received, ComputeChange(received, total)
}
