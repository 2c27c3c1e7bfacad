package models

import (
	"encoding/base64"
	"fmt"
	"time"
)

// Attachment is an uploaded proof-of-payment image.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Present reports whether an attachment was actually supplied.
func (a *Attachment) Present() bool {
	return a != nil && len(a.Data) > 0
}

// DataURL encodes the attachment for JSON bodies that carry the file inline.
func (a *Attachment) DataURL() string {
	if !a.Present() {
		return ""
	}
	contentType := a.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(a.Data))
}

// Pending receipt states.
const (
	ReceiptNeedsReview = "needs_review"
	ReceiptUploaded    = "uploaded"
)

// PendingReceipt holds a reservation receipt whose upload failed after the
// reservation itself was created. Admins review and retry it by hand.
type PendingReceipt struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ReservationID uint      `gorm:"index;not null" json:"reservation_id"`
	UserID        uint      `gorm:"index;not null" json:"user_id"`
	Filename      string    `gorm:"type:varchar(255)" json:"filename"`
	ContentType   string    `gorm:"type:varchar(100)" json:"content_type"`
	Data          []byte    `json:"-"`
	Status        string    `gorm:"type:varchar(20);not null;default:'needs_review'" json:"status"`
	Attempts      int       `gorm:"not null;default:1" json:"attempts"`
	LastError     string    `gorm:"type:text" json:"last_error"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

// Attachment rebuilds the stored file.
func (p PendingReceipt) Attachment() *Attachment {
	return &Attachment{Filename: p.Filename, ContentType: p.ContentType, Data: p.Data}
}
