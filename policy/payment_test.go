package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentPolicy_EligibleMethods(t *testing.T) {
	p := DefaultPaymentPolicy()
	for _, total := range []float64{0, 250, 999.99, 1000} {
		assert.Contains(t, p.EligibleMethods(total), PaymentCash, "total %.2f", total)
	}
	for _, total := range []float64{1000.01, 1200, 50000} {
		methods := p.EligibleMethods(total)
		assert.NotContains(t, methods, PaymentCash, "total %.2f", total)
		assert.Equal(t, []PaymentMethod{PaymentGCash, PaymentSecurityBank}, methods)
	}
}

func TestPaymentPolicy_ThresholdComparedToTheCentavo(t *testing.T) {
	p := DefaultPaymentPolicy()
	total := 0.0
	for _, line := range []float64{0.10, 822.20, 127.70, 50} {
		total += line
	}
	assert.True(t, p.IsEligible(PaymentCash, total))
	assert.False(t, p.IsEligible(PaymentCash, 1000.01))
}

func TestPaymentPolicy_Reconcile(t *testing.T) {
	p := DefaultPaymentPolicy()

	method, switched := p.Reconcile(PaymentCash, 1200)
	assert.True(t, switched)
	assert.Equal(t, PaymentGCash, method)

	method, switched = p.Reconcile(PaymentCash, 800)
	assert.False(t, switched)
	assert.Equal(t, PaymentCash, method)

	method, switched = p.Reconcile(PaymentSecurityBank, 5000)
	assert.False(t, switched)
	assert.Equal(t, PaymentSecurityBank, method)
}

func TestPaymentPolicy_HighValueScenario(t *testing.T) {
	p := DefaultPaymentPolicy()

	assert.ErrorIs(t, p.Validate(PaymentCash, 1200, false), ErrPaymentMethodIneligible)
	assert.ErrorIs(t, p.Validate(PaymentGCash, 1200, false), ErrReceiptRequired)
	assert.NoError(t, p.Validate(PaymentGCash, 1200, true))
	assert.NoError(t, p.Validate(PaymentSecurityBank, 1200, true))
}

func TestPaymentPolicy_CashNeedsNoReceipt(t *testing.T) {
	p := DefaultPaymentPolicy()
	assert.False(t, p.RequiresReceipt(PaymentCash))
	assert.True(t, p.RequiresReceipt(PaymentGCash))
	assert.NoError(t, p.Validate(PaymentCash, 1000, false))
}

func TestPaymentPolicy_UnknownMethod(t *testing.T) {
	p := DefaultPaymentPolicy()
	assert.ErrorIs(t, p.Validate("paypal", 10, true), ErrUnknownPaymentMethod)
	assert.ErrorIs(t, p.Validate("", 10, true), ErrMissingRequiredField)

	method, err := ParsePaymentMethod(" GCash ")
	require.NoError(t, err)
	assert.Equal(t, PaymentGCash, method)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, CategoryPolicy, Classify(ErrReceiptRequired))
	assert.Equal(t, CategoryPolicy, Classify(ErrDailyLimitReached))
	assert.Equal(t, CategoryTransition, Classify(&TransitionError{Err: ErrForbidden}))
	assert.Equal(t, CategoryValidation, Classify(MissingField("customer_name")))
	assert.Equal(t, CategoryTransport, Classify(assert.AnError))
}
