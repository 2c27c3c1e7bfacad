package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-portal/models"
	"github.com/yeremiapane/restaurant-portal/policy"
)

type wizardFixture struct {
	wizard   *ReservationWizard
	store    *fakeStore
	recovery *ReceiptRecovery
}

func newTestWizard(t *testing.T) wizardFixture {
	t.Helper()
	manila, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	db := newTestDB(t)
	store := newFakeStore()
	recovery := NewReceiptRecovery(db, store)
	wizard := NewReservationWizard(db, store, NewDailyLimitGuard(store, 2), policy.DefaultFeeSchedule(), recovery, NewInFlight(), manila)
	wizard.SetClock(func() time.Time { return time.Date(2025, 11, 30, 10, 0, 0, 0, manila) })
	return wizardFixture{wizard: wizard, store: store, recovery: recovery}
}

var (
	scheduleStage = StageInput{Date: "2025-12-01", Time: "19:00", Guests: 6, DiningPreference: "indoor"}
	contactStage  = StageInput{Name: "Ana Cruz", Email: "ana@example.com", Phone: "(0917) 123-4567"}
	occasionStage = StageInput{OccasionType: "Business Meeting", SpecialRequests: "quiet corner"}
	paymentStage  = StageInput{PaymentMethod: "gcash", PaymentReference: "GC-99812"}
)

func (f wizardFixture) advanceToPayment(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for stage, in := range []StageInput{scheduleStage, contactStage, occasionStage} {
		_, err := f.wizard.SaveStage(ctx, customer, stage+1, in)
		require.NoError(t, err)
	}
}

func TestWizard_StartsSeededFromSession(t *testing.T) {
	f := newTestWizard(t)

	view, err := f.wizard.Current(context.Background(), customer)
	require.NoError(t, err)
	assert.Equal(t, StageSchedule, view.Draft.Stage)
	assert.Equal(t, customer.Name, view.Draft.Name)
	assert.Equal(t, customer.Email, view.Draft.Email)
	assert.False(t, view.CanGoBack)
	assert.Equal(t, 2, view.DailyLimit)
}

func TestWizard_StagesAreSequential(t *testing.T) {
	f := newTestWizard(t)
	ctx := context.Background()

	_, err := f.wizard.SaveStage(ctx, customer, StageContact, contactStage)
	assert.ErrorIs(t, err, policy.ErrInvalidField)

	view, err := f.wizard.SaveStage(ctx, customer, StageSchedule, scheduleStage)
	require.NoError(t, err)
	assert.Equal(t, StageContact, view.Draft.Stage)
	assert.Equal(t, 400.0, view.Draft.ReservationFee, "base 0 + (6-4)*200")

	view, err = f.wizard.Back(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, StageSchedule, view.Draft.Stage)

	view, err = f.wizard.Back(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, StageSchedule, view.Draft.Stage)
}

func TestWizard_ScheduleValidation(t *testing.T) {
	tests := []struct {
		name    string
		in      StageInput
		wantErr error
	}{
		{"past date", StageInput{Date: "2025-11-29", Time: "19:00", Guests: 2, DiningPreference: "indoor"}, policy.ErrInvalidField},
		{"earlier today", StageInput{Date: "2025-11-30", Time: "09:30", Guests: 2, DiningPreference: "indoor"}, policy.ErrInvalidField},
		{"exactly now", StageInput{Date: "2025-11-30", Time: "10:00", Guests: 2, DiningPreference: "indoor"}, policy.ErrInvalidField},
		{"no guests", StageInput{Date: "2025-12-01", Time: "19:00", Guests: 0, DiningPreference: "indoor"}, policy.ErrInvalidGuests},
		{"missing time", StageInput{Date: "2025-12-01", Guests: 2, DiningPreference: "indoor"}, policy.ErrMissingRequiredField},
		{"missing area", StageInput{Date: "2025-12-01", Time: "19:00", Guests: 2}, policy.ErrMissingRequiredField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestWizard(t)
			view, err := f.wizard.SaveStage(context.Background(), customer, StageSchedule, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
			require.NotNil(t, view)
			assert.Equal(t, StageSchedule, view.Draft.Stage)
			assert.Equal(t, tt.in.Date, view.Draft.Date)
		})
	}
}

func TestWizard_LaterTodayIsAccepted(t *testing.T) {
	f := newTestWizard(t)
	in := scheduleStage
	in.Date, in.Time = "2025-11-30", "10:30"

	view, err := f.wizard.SaveStage(context.Background(), customer, StageSchedule, in)
	require.NoError(t, err)
	assert.Equal(t, StageContact, view.Draft.Stage)
}

func TestWizard_DailyLimitBlocksScheduleStage(t *testing.T) {
	f := newTestWizard(t)
	f.store.dailyCounts["2025-12-01"] = 2

	view, err := f.wizard.SaveStage(context.Background(), customer, StageSchedule, scheduleStage)
	assert.ErrorIs(t, err, policy.ErrDailyLimitReached)
	assert.Equal(t, StageSchedule, view.Draft.Stage)

	in := scheduleStage
	in.Date = "2025-12-02"
	view, err = f.wizard.SaveStage(context.Background(), customer, StageSchedule, in)
	require.NoError(t, err)
	assert.Equal(t, StageContact, view.Draft.Stage)
}

func TestWizard_ContactValidation(t *testing.T) {
	f := newTestWizard(t)
	ctx := context.Background()
	_, err := f.wizard.SaveStage(ctx, customer, StageSchedule, scheduleStage)
	require.NoError(t, err)

	_, err = f.wizard.SaveStage(ctx, customer, StageContact, StageInput{Name: "Ana", Email: "ana@example", Phone: "09171234567"})
	assert.ErrorIs(t, err, policy.ErrInvalidField)

	_, err = f.wizard.SaveStage(ctx, customer, StageContact, StageInput{Name: "Ana", Email: "ana@example.com", Phone: "0917-123-456"})
	assert.ErrorIs(t, err, policy.ErrInvalidField)

	view, err := f.wizard.SaveStage(ctx, customer, StageContact, contactStage)
	require.NoError(t, err)
	assert.Equal(t, StageOccasion, view.Draft.Stage)
	assert.Equal(t, "09171234567", view.Draft.Phone)
}

func TestWizard_OccasionRecomputesFee(t *testing.T) {
	f := newTestWizard(t)
	f.advanceToPayment(t)

	view, err := f.wizard.Current(context.Background(), customer)
	require.NoError(t, err)
	assert.Equal(t, StagePayment, view.Draft.Stage)
	assert.Equal(t, 1400.0, view.Draft.ReservationFee)
	assert.Equal(t, 1000.0, view.FeeBase)
	assert.Equal(t, 400.0, view.FeeExtra)
	assert.Equal(t, "₱1,400.00", view.FeeDisplay)
	assert.True(t, view.FinalStage)
}

func TestWizard_SubmitPreconditions(t *testing.T) {
	f := newTestWizard(t)
	ctx := context.Background()

	_, err := f.wizard.Submit(ctx, customer, paymentStage, receipt)
	assert.ErrorIs(t, err, policy.ErrInvalidField)

	f.advanceToPayment(t)

	_, err = f.wizard.Submit(ctx, customer, StageInput{PaymentMethod: "cash", PaymentReference: "x"}, receipt)
	assert.ErrorIs(t, err, policy.ErrPaymentMethodIneligible)

	_, err = f.wizard.Submit(ctx, customer, StageInput{PaymentMethod: "gcash"}, receipt)
	assert.ErrorIs(t, err, policy.ErrMissingRequiredField)

	_, err = f.wizard.Submit(ctx, customer, paymentStage, nil)
	assert.ErrorIs(t, err, policy.ErrReceiptRequired)

	f.store.dailyCounts["2025-12-01"] = 2
	_, err = f.wizard.Submit(ctx, customer, paymentStage, receipt)
	assert.ErrorIs(t, err, policy.ErrDailyLimitReached)

	assert.Empty(t, f.store.createdReservations)

	view, err := f.wizard.Current(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, StagePayment, view.Draft.Stage)
	assert.Equal(t, "GC-99812", view.Draft.PaymentReference)
	assert.Equal(t, "Business Meeting", view.Draft.OccasionType)
}

func TestWizard_SubmitSuccess(t *testing.T) {
	f := newTestWizard(t)
	ctx := context.Background()
	f.advanceToPayment(t)

	result, err := f.wizard.Submit(ctx, customer, paymentStage, receipt)
	require.NoError(t, err)
	assert.Empty(t, result.Warning)
	assert.Equal(t, 1400.0, result.ReservationFee)

	require.Len(t, f.store.createdReservations, 1)
	sent := f.store.createdReservations[0]
	assert.Equal(t, "2025-12-01", sent.Date)
	assert.Equal(t, 1400.0, sent.ReservationFee)
	assert.Equal(t, policy.PaymentGCash, sent.PaymentMethod)
	assert.Equal(t, "GC-99812", sent.PaymentReference)
	assert.Equal(t, []uint{result.ReservationID}, f.store.uploads)

	require.NotNil(t, result.Next)
	assert.Equal(t, StageSchedule, result.Next.Draft.Stage)
	assert.Equal(t, customer.Phone, result.Next.Draft.Phone)
	assert.Empty(t, result.Next.Draft.Date)

	stored, err := f.store.GetReservation(ctx, customer.Token, result.ReservationID, false)
	require.NoError(t, err)
	assert.Equal(t, 1400.0, stored.ReservationFee)
}

func TestWizard_SubmitFailureKeepsDraft(t *testing.T) {
	f := newTestWizard(t)
	ctx := context.Background()
	f.advanceToPayment(t)

	f.store.createErr = errors.New("reservation service unavailable")
	_, err := f.wizard.Submit(ctx, customer, paymentStage, receipt)

	var submitErr *SubmissionError
	require.True(t, errors.As(err, &submitErr))
	assert.Equal(t, "reservation service unavailable", submitErr.Message)

	view, err := f.wizard.Current(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, StagePayment, view.Draft.Stage)
	assert.Equal(t, "2025-12-01", view.Draft.Date)
}

func TestWizard_ReceiptUploadFailureIsFlagged(t *testing.T) {
	f := newTestWizard(t)
	ctx := context.Background()
	f.advanceToPayment(t)

	f.store.uploadErr = errors.New("upload timed out")
	result, err := f.wizard.Submit(ctx, customer, paymentStage, &models.Attachment{Filename: "r.jpg", ContentType: "image/jpeg", Data: []byte("jpg")})
	require.NoError(t, err)
	assert.NotZero(t, result.ReservationID)
	assert.Contains(t, result.Warning, "flagged for review")
	assert.NotEmpty(t, result.PendingReceiptID)

	pending, err := f.recovery.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, result.ReservationID, pending[0].ReservationID)
	assert.Equal(t, "upload timed out", pending[0].LastError)
	assert.Equal(t, []byte("jpg"), pending[0].Data)
}
