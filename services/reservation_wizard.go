package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-portal/models"
	"github.com/yeremiapane/restaurant-portal/policy"
	"github.com/yeremiapane/restaurant-portal/utils"
)

// Wizard stages, in the order they must be completed.
const (
	StageSchedule = 1
	StageContact  = 2
	StageOccasion = 3
	StagePayment  = 4
)

// StageInput carries the fields of any one stage; fields of other stages
// are ignored.
type StageInput struct {
	Date             string `form:"date" json:"date"`
	Time             string `form:"time" json:"time"`
	Guests           int    `form:"guests" json:"guests"`
	DiningPreference string `form:"dining_preference" json:"dining_preference"`

	Name  string `form:"name" json:"name"`
	Email string `form:"email" json:"email"`
	Phone string `form:"phone" json:"phone"`

	OccasionType         string `form:"occasion_type" json:"occasion_type"`
	OccasionInstructions string `form:"occasion_instructions" json:"occasion_instructions"`
	SpecialRequests      string `form:"special_requests" json:"special_requests"`

	PaymentMethod    string `form:"payment_method" json:"payment_method"`
	PaymentReference string `form:"payment_reference" json:"payment_reference"`
}

// WizardView is the draft plus its read-only fee breakdown.
type WizardView struct {
	Draft       *models.ReservationDraft `json:"draft"`
	FeeBase     float64                  `json:"fee_base"`
	FeeExtra    float64                  `json:"fee_surcharge"`
	FeeDisplay  string                   `json:"fee_display"`
	DailyLimit  int                      `json:"daily_limit"`
	CanGoBack   bool                     `json:"can_go_back"`
	FinalStage  bool                     `json:"final_stage"`
	StageTitles []string                 `json:"stage_titles"`
}

// WizardResult is returned by a successful submission.
type WizardResult struct {
	ReservationID    uint        `json:"reservation_id"`
	ReservationFee   float64     `json:"reservation_fee"`
	FeeDisplay       string      `json:"fee_display"`
	Warning          string      `json:"warning,omitempty"`
	PendingReceiptID string      `json:"pending_receipt_id,omitempty"`
	Next             *WizardView `json:"next"`
}

var stageTitles = []string{"Schedule", "Contact", "Occasion", "Payment"}

// ReservationWizard walks one user through the four reservation stages. The
// draft lives in the local database so a reload resumes where the user left
// off.
type ReservationWizard struct {
	db       *gorm.DB
	store    ReservationStore
	guard    *DailyLimitGuard
	fees     policy.FeeSchedule
	recovery *ReceiptRecovery
	inflight *InFlight
	loc      *time.Location
	now      func() time.Time
	log      *logrus.Entry
}

func NewReservationWizard(db *gorm.DB, store ReservationStore, guard *DailyLimitGuard, fees policy.FeeSchedule,
	recovery *ReceiptRecovery, inflight *InFlight, loc *time.Location) *ReservationWizard {
	if loc == nil {
		loc = time.Local
	}
	return &ReservationWizard{
		db:       db,
		store:    store,
		guard:    guard,
		fees:     fees,
		recovery: recovery,
		inflight: inflight,
		loc:      loc,
		now:      time.Now,
		log:      utils.Component("reservation-wizard"),
	}
}

// SetClock replaces the wall clock used for date checks.
func (w *ReservationWizard) SetClock(now func() time.Time) {
	w.now = now
}

// Current returns the caller's draft, starting one seeded from the session
// profile when none exists.
func (w *ReservationWizard) Current(ctx context.Context, sess models.Session) (*WizardView, error) {
	draft, err := w.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	return w.view(draft), nil
}

// SaveStage validates and stores one stage. Only the draft's current stage
// may be saved; a valid save advances to the next stage. Entered values are
// kept even when validation fails.
func (w *ReservationWizard) SaveStage(ctx context.Context, sess models.Session, stage int, in StageInput) (*WizardView, error) {
	draft, err := w.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	if stage != draft.Stage {
		return w.view(draft), policy.InvalidField("stage", fmt.Sprintf("stage %d is not open, continue from stage %d", stage, draft.Stage))
	}

	var stageErr error
	switch stage {
	case StageSchedule:
		stageErr = w.saveSchedule(ctx, sess, draft, in)
	case StageContact:
		stageErr = saveContact(draft, in)
	case StageOccasion:
		stageErr = w.saveOccasion(draft, in)
	case StagePayment:
		stageErr = savePayment(draft, in)
	default:
		return w.view(draft), policy.InvalidField("stage", "must be between 1 and 4")
	}

	if stageErr == nil && draft.Stage < StagePayment {
		draft.Stage++
	}
	draft.UpdatedAt = w.now()
	if err := w.db.WithContext(ctx).Save(draft).Error; err != nil {
		return nil, err
	}
	return w.view(draft), stageErr
}

// Back returns to the previous stage; stage 1 stays put.
func (w *ReservationWizard) Back(ctx context.Context, sess models.Session) (*WizardView, error) {
	draft, err := w.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	if draft.Stage > StageSchedule {
		draft.Stage--
		draft.UpdatedAt = w.now()
		if err := w.db.WithContext(ctx).Save(draft).Error; err != nil {
			return nil, err
		}
	}
	return w.view(draft), nil
}

// Submit runs the final checks, creates the reservation and then uploads the
// receipt. A failed upload leaves the reservation in place; the file is kept
// for admin review and the result carries a warning.
func (w *ReservationWizard) Submit(ctx context.Context, sess models.Session, in StageInput, receipt *models.Attachment) (*WizardResult, error) {
	draft, err := w.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	if draft.Stage != StagePayment {
		return nil, policy.InvalidField("stage", fmt.Sprintf("complete stage %d before submitting", draft.Stage))
	}

	if strings.TrimSpace(in.PaymentMethod) != "" || strings.TrimSpace(in.PaymentReference) != "" {
		payErr := savePayment(draft, in)
		draft.UpdatedAt = w.now()
		if err := w.db.WithContext(ctx).Save(draft).Error; err != nil {
			return nil, err
		}
		if payErr != nil {
			return nil, payErr
		}
	}
	if err := w.checkSubmission(ctx, sess, draft, receipt); err != nil {
		return nil, err
	}

	key := ActionKey("reservation", draft.ID, "submit")
	res, err := w.inflight.Do(ctx, key, func() (interface{}, error) {
		return w.submit(ctx, sess, draft, receipt)
	})
	if err != nil {
		return nil, err
	}
	return res.(*WizardResult), nil
}

func (w *ReservationWizard) submit(ctx context.Context, sess models.Session, draft *models.ReservationDraft, receipt *models.Attachment) (*WizardResult, error) {
	req := draft.Request()
	created, err := w.store.CreateReservation(ctx, sess.Token, req)
	if err != nil {
		w.log.WithError(err).WithField("user", sess.UserID).Warn("reservation submission failed")
		return nil, submissionFailed(err)
	}

	result := &WizardResult{
		ReservationID:  created.ReservationID,
		ReservationFee: req.ReservationFee,
		FeeDisplay:     utils.FormatPeso(req.ReservationFee),
	}

	if uploadErr := w.store.UploadReservationReceipt(ctx, sess.Token, created.ReservationID, receipt); uploadErr != nil {
		result.Warning = fmt.Sprintf("reservation %d was created but the receipt upload failed; it has been flagged for review", created.ReservationID)
		pending, err := w.recovery.Record(ctx, sess, created.ReservationID, receipt, uploadErr)
		if err != nil {
			w.log.WithError(err).WithField("reservation", created.ReservationID).Error("could not keep receipt for review")
		} else {
			result.PendingReceiptID = pending.ID
		}
	}

	fresh := seededDraft(sess, w.now())
	fresh.ID = draft.ID
	fresh.CreatedAt = draft.CreatedAt
	if err := w.db.WithContext(ctx).Save(fresh).Error; err != nil {
		w.log.WithError(err).WithField("user", sess.UserID).Error("reservation created but draft not reset")
	}
	result.Next = w.view(fresh)

	w.log.WithFields(logrus.Fields{
		"reservation": created.ReservationID,
		"user":        sess.UserID,
		"fee":         req.ReservationFee,
		"date":        req.Date,
	}).Info("reservation submitted")
	return result, nil
}

func (w *ReservationWizard) checkSubmission(ctx context.Context, sess models.Session, draft *models.ReservationDraft, receipt *models.Attachment) error {
	if draft.PaymentMethod == "" {
		return policy.MissingField("payment_method")
	}
	if strings.TrimSpace(draft.PaymentReference) == "" {
		return policy.MissingField("payment_reference")
	}
	if !receipt.Present() {
		return policy.ErrReceiptRequired
	}

	at, err := policy.ValidateSchedule(draft.Date, draft.Time, w.now(), w.loc)
	if err != nil {
		return err
	}
	fee, err := w.fees.Fee(draft.OccasionType, draft.Guests)
	if err != nil {
		return err
	}
	if fee < 0 {
		return policy.InvalidField("reservation_fee", "must not be negative")
	}
	draft.ReservationFee = fee

	return w.guard.Check(ctx, sess, at)
}

func (w *ReservationWizard) saveSchedule(ctx context.Context, sess models.Session, draft *models.ReservationDraft, in StageInput) error {
	draft.Date = strings.TrimSpace(in.Date)
	draft.Time = strings.TrimSpace(in.Time)
	draft.Guests = in.Guests
	draft.DiningPreference = strings.TrimSpace(in.DiningPreference)

	at, err := policy.ValidateSchedule(draft.Date, draft.Time, w.now(), w.loc)
	if err != nil {
		return err
	}
	fee, err := w.fees.Fee(draft.OccasionType, draft.Guests)
	if err != nil {
		return err
	}
	draft.ReservationFee = fee
	if draft.DiningPreference == "" {
		return policy.MissingField("dining_preference")
	}
	// The count is asked again on every save since the date may have changed.
	return w.guard.Check(ctx, sess, at)
}

func saveContact(draft *models.ReservationDraft, in StageInput) error {
	draft.Name = utils.SanitizeText(in.Name)
	draft.Email = strings.TrimSpace(in.Email)
	draft.Phone = strings.TrimSpace(in.Phone)

	if draft.Name == "" {
		return policy.MissingField("name")
	}
	if err := policy.ValidateEmail(draft.Email); err != nil {
		return err
	}
	if err := policy.ValidatePhone(draft.Phone); err != nil {
		return err
	}
	draft.Phone = policy.NormalizePhone(draft.Phone)
	return nil
}

func (w *ReservationWizard) saveOccasion(draft *models.ReservationDraft, in StageInput) error {
	draft.OccasionType = strings.TrimSpace(in.OccasionType)
	draft.OccasionInstructions = utils.SanitizeText(in.OccasionInstructions)
	draft.SpecialRequests = utils.SanitizeText(in.SpecialRequests)

	fee, err := w.fees.Fee(draft.OccasionType, draft.Guests)
	if err != nil {
		return err
	}
	draft.ReservationFee = fee
	return nil
}

// savePayment accepts only non-cash methods: a reservation is always paid
// ahead with a receipt.
func savePayment(draft *models.ReservationDraft, in StageInput) error {
	draft.PaymentReference = strings.TrimSpace(in.PaymentReference)
	if strings.TrimSpace(in.PaymentMethod) == "" {
		draft.PaymentMethod = ""
		return policy.MissingField("payment_method")
	}
	method, err := policy.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return err
	}
	if method == policy.PaymentCash {
		return fmt.Errorf("%w: reservations are paid in advance", policy.ErrPaymentMethodIneligible)
	}
	draft.PaymentMethod = method
	if draft.PaymentReference == "" {
		return policy.MissingField("payment_reference")
	}
	return nil
}

func (w *ReservationWizard) load(ctx context.Context, sess models.Session) (*models.ReservationDraft, error) {
	var draft models.ReservationDraft
	err := w.db.WithContext(ctx).Where("user_id = ?", sess.UserID).First(&draft).Error
	if err == nil {
		return &draft, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := seededDraft(sess, w.now())
	if err := w.db.WithContext(ctx).Create(fresh).Error; err != nil {
		return nil, err
	}
	return fresh, nil
}

func seededDraft(sess models.Session, now time.Time) *models.ReservationDraft {
	return &models.ReservationDraft{
		UserID:    sess.UserID,
		Stage:     StageSchedule,
		Name:      sess.Name,
		Email:     sess.Email,
		Phone:     sess.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (w *ReservationWizard) view(draft *models.ReservationDraft) *WizardView {
	view := &WizardView{
		Draft:       draft,
		FeeDisplay:  utils.FormatPeso(draft.ReservationFee),
		CanGoBack:   draft.Stage > StageSchedule,
		FinalStage:  draft.Stage == StagePayment,
		StageTitles: stageTitles,
	}
	if w.guard != nil {
		view.DailyLimit = w.guard.Limit()
	}
	if draft.Guests > 0 {
		view.FeeBase = w.fees.Base(draft.OccasionType)
		view.FeeExtra = w.fees.Surcharge(draft.Guests)
	}
	return view
}
