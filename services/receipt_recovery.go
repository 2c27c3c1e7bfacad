package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-portal/models"
	"github.com/yeremiapane/restaurant-portal/utils"
)

var (
	ErrPendingReceiptNotFound = errors.New("pending receipt not found")
	ErrReceiptAlreadyUploaded = errors.New("receipt was already uploaded")
)

// ReceiptUploader sends a receipt to the store.
type ReceiptUploader interface {
	UploadReservationReceipt(ctx context.Context, token string, id uint, file *models.Attachment) error
}

// ReceiptMetrics counts what happened to receipts that missed their first upload.
type ReceiptMetrics struct {
	Recorded       int64 `json:"recorded"`
	Recovered      int64 `json:"recovered"`
	FailedRetries  int64 `json:"failed_retries"`
	AwaitingReview int64 `json:"awaiting_review"`
}

// ReceiptRecovery keeps receipts whose upload failed after the reservation was
// created. Nothing is retried on a timer; an admin reviews the list and
// retries by hand.
type ReceiptRecovery struct {
	db       *gorm.DB
	uploader ReceiptUploader
	metrics  ReceiptMetrics
	mutex    sync.Mutex
	log      *logrus.Entry
}

func NewReceiptRecovery(db *gorm.DB, uploader ReceiptUploader) *ReceiptRecovery {
	return &ReceiptRecovery{
		db:       db,
		uploader: uploader,
		log:      utils.Component("receipt-recovery"),
	}
}

// Record stores the file for review.
func (r *ReceiptRecovery) Record(ctx context.Context, sess models.Session, reservationID uint, file *models.Attachment, cause error) (*models.PendingReceipt, error) {
	now := time.Now()
	pending := &models.PendingReceipt{
		ID:            uuid.NewString(),
		ReservationID: reservationID,
		UserID:        sess.UserID,
		Filename:      file.Filename,
		ContentType:   file.ContentType,
		Data:          file.Data,
		Status:        models.ReceiptNeedsReview,
		Attempts:      1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if cause != nil {
		pending.LastError = cause.Error()
	}
	if err := r.db.WithContext(ctx).Create(pending).Error; err != nil {
		return nil, err
	}

	r.mutex.Lock()
	r.metrics.Recorded++
	r.metrics.AwaitingReview++
	r.mutex.Unlock()

	r.log.WithFields(logrus.Fields{
		"upload":      pending.ID,
		"reservation": reservationID,
	}).Warnf("receipt upload failed, flagged for review: %v", cause)
	return pending, nil
}

// ListPending returns receipts still awaiting review, oldest first.
func (r *ReceiptRecovery) ListPending(ctx context.Context) ([]models.PendingReceipt, error) {
	var out []models.PendingReceipt
	err := r.db.WithContext(ctx).
		Where("status = ?", models.ReceiptNeedsReview).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// Retry uploads a stored receipt again with the caller's credentials.
func (r *ReceiptRecovery) Retry(ctx context.Context, sess models.Session, id string) (*models.PendingReceipt, error) {
	var pending models.PendingReceipt
	if err := r.db.WithContext(ctx).First(&pending, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPendingReceiptNotFound
		}
		return nil, err
	}
	if pending.Status == models.ReceiptUploaded {
		return &pending, ErrReceiptAlreadyUploaded
	}

	uploadErr := r.uploader.UploadReservationReceipt(ctx, sess.Token, pending.ReservationID, pending.Attachment())

	pending.Attempts++
	pending.UpdatedAt = time.Now()
	if uploadErr != nil {
		pending.LastError = uploadErr.Error()
	} else {
		pending.Status = models.ReceiptUploaded
		pending.LastError = ""
	}
	if err := r.db.WithContext(ctx).Save(&pending).Error; err != nil {
		return nil, err
	}
	r.updateMetrics(uploadErr == nil)

	if uploadErr != nil {
		r.log.WithError(uploadErr).WithField("upload", pending.ID).Warn("receipt retry failed")
		return &pending, uploadErr
	}
	r.log.WithField("upload", pending.ID).Infof("receipt for reservation %d uploaded after %d attempts", pending.ReservationID, pending.Attempts)
	return &pending, nil
}

func (r *ReceiptRecovery) updateMetrics(recovered bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if recovered {
		r.metrics.Recovered++
		if r.metrics.AwaitingReview > 0 {
			r.metrics.AwaitingReview--
		}
		return
	}
	r.metrics.FailedRetries++
}

// Metrics returns a snapshot of the counters since start-up.
func (r *ReceiptRecovery) Metrics() ReceiptMetrics {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.metrics
}
