package policy

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a customer settles an order or reservation.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentGCash        PaymentMethod = "gcash"
	PaymentSecurityBank PaymentMethod = "security_bank"
)

var knownMethods = []PaymentMethod{PaymentCash, PaymentGCash, PaymentSecurityBank}

// DefaultHighValueThreshold is the total above which cash is refused.
const DefaultHighValueThreshold = 1000

// PaymentPolicy decides method eligibility and proof-of-payment requirements.
type PaymentPolicy struct {
	HighValueThreshold float64
	DefaultNonCash     PaymentMethod
}

// DefaultPaymentPolicy returns the house payment rules.
func DefaultPaymentPolicy() PaymentPolicy {
	return PaymentPolicy{
		HighValueThreshold: DefaultHighValueThreshold,
		DefaultNonCash:     PaymentGCash,
	}
}

// ParsePaymentMethod validates a raw method name.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	method := PaymentMethod(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range knownMethods {
		if method == known {
			return method, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, raw)
}

// EligibleMethods lists the methods allowed for total, in display order.
func (p PaymentPolicy) EligibleMethods(total float64) []PaymentMethod {
	out := make([]PaymentMethod, 0, len(knownMethods))
	for _, method := range knownMethods {
		if p.IsEligible(method, total) {
			out = append(out, method)
		}
	}
	return out
}

// IsEligible reports whether method may pay total.
func (p PaymentPolicy) IsEligible(method PaymentMethod, total float64) bool {
	if method == PaymentCash {
		return Centavos(total).LessThanOrEqual(Centavos(p.HighValueThreshold))
	}
	return method == PaymentGCash || method == PaymentSecurityBank
}

// Reconcile keeps selected when it is still eligible, otherwise it falls back
// to the non-cash default and reports the switch.
func (p PaymentPolicy) Reconcile(selected PaymentMethod, total float64) (PaymentMethod, bool) {
	if selected == "" {
		return "", false
	}
	if p.IsEligible(selected, total) {
		return selected, false
	}
	return p.DefaultNonCash, true
}

// Centavos rounds an amount to the centavo so totals compare exactly.
func Centavos(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Round(2)
}

// RequiresReceipt reports whether method needs a proof-of-payment attachment.
func (p PaymentPolicy) RequiresReceipt(method PaymentMethod) bool {
	return method != PaymentCash
}

// Validate checks a submission's method against total and the attachment.
func (p PaymentPolicy) Validate(method PaymentMethod, total float64, hasReceipt bool) error {
	if method == "" {
		return MissingField("payment_method")
	}
	if _, err := ParsePaymentMethod(string(method)); err != nil {
		return err
	}
	if !p.IsEligible(method, total) {
		return fmt.Errorf("%w: %s above %.2f", ErrPaymentMethodIneligible, method, p.HighValueThreshold)
	}
	if p.RequiresReceipt(method) && !hasReceipt {
		return ErrReceiptRequired
	}
	return nil
}
