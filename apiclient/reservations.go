package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/yeremiapane/restaurant-portal/models"
	"github.com/yeremiapane/restaurant-portal/policy"
)

// receiptField is the multipart field the store reads the file from.
const receiptField = "receipt"

// CountReservationsOn returns how many reservations the token's user holds
// on date.
func (c *Client) CountReservationsOn(ctx context.Context, token string, date time.Time) (int, error) {
	path := "/reservations/check-daily?date=" + url.QueryEscape(date.Format(policy.DateLayout))
	body, err := c.doJSON(ctx, http.MethodGet, path, token, false, nil)
	if err != nil {
		return 0, err
	}
	var out struct {
		Count *int `json:"count"`
	}
	if err := decode(body, "", &out); err != nil {
		return 0, err
	}
	if out.Count == nil {
		return 0, fmt.Errorf("apiclient: check-daily response has no count")
	}
	return *out.Count, nil
}

// CreateReservation submits a finished wizard.
func (c *Client) CreateReservation(ctx context.Context, token string, req models.ReservationRequest) (*models.CreatedReservation, error) {
	body, err := c.doJSON(ctx, http.MethodPost, "/reservations", token, false, req)
	if err != nil {
		return nil, err
	}
	var created models.CreatedReservation
	if err := decode(body, "", &created); err != nil {
		return nil, err
	}
	if created.ReservationID == 0 {
		return nil, fmt.Errorf("apiclient: create reservation response has no reservation_id")
	}
	return &created, nil
}

// UploadReservationReceipt attaches proof of payment to a created reservation.
func (c *Client) UploadReservationReceipt(ctx context.Context, token string, id uint, file *models.Attachment) error {
	if !file.Present() {
		return policy.ErrReceiptRequired
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, receiptField, file.Filename))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return errors.Wrap(err, "apiclient: build receipt upload")
	}
	if _, err := part.Write(file.Data); err != nil {
		return errors.Wrap(err, "apiclient: build receipt upload")
	}
	if err := mw.Close(); err != nil {
		return errors.Wrap(err, "apiclient: build receipt upload")
	}

	_, err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        fmt.Sprintf("/reservations/upload-receipt/%d", id),
		token:       token,
		body:        &buf,
		contentType: mw.FormDataContentType(),
	})
	return err
}

// GetReservation fetches a reservation, including the fee stored at creation.
func (c *Client) GetReservation(ctx context.Context, token string, id uint, admin bool) (*models.Reservation, error) {
	body, err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/reservations/%d", id), token, admin, nil)
	if err != nil {
		return nil, err
	}
	var reservation models.Reservation
	if err := decode(body, "reservation", &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// UpdateReservationStatus applies an admin transition.
func (c *Client) UpdateReservationStatus(ctx context.Context, token string, id uint, status policy.Status) (*models.Reservation, error) {
	body, err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/reservations/%d", id), token, true, models.StatusUpdate{Status: status})
	if err != nil {
		return nil, err
	}
	var reservation models.Reservation
	if err := decode(body, "reservation", &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// CancelReservation is the customer's self-service cancellation.
func (c *Client) CancelReservation(ctx context.Context, token string, id uint) error {
	_, err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/reservations/%d/cancel", id), token, false, nil)
	return err
}
