package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-portal/models"
	"github.com/yeremiapane/restaurant-portal/policy"
)

const maxReceiptSize = 5 << 20

var receiptTypes = []string{"image/jpeg", "image/png", "image/webp", "application/pdf"}

// readAttachment loads an optional uploaded file. A missing file is not an
// error here; the services decide whether one is required.
func readAttachment(c *gin.Context, field string) (*models.Attachment, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, policy.InvalidField(field, err.Error())
	}
	if header.Size > maxReceiptSize {
		return nil, policy.InvalidField(field, fmt.Sprintf("must be at most %d MB", maxReceiptSize>>20))
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxReceiptSize+1))
	if err != nil {
		return nil, err
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !allowedReceiptType(contentType) {
		return nil, policy.InvalidField(field, "must be a JPEG, PNG, WebP image or a PDF")
	}

	return &models.Attachment{Filename: header.Filename, ContentType: contentType, Data: data}, nil
}

func allowedReceiptType(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	for _, allowed := range receiptTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}
