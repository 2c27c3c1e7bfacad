package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email   string
		wantErr bool
	}{
		{"juan@example.com", false},
		{"a.b+c@mail.co.ph", false},
		{"", true},
		{"juan@example", true},
		{"juan example.com", true},
		{"@example.com", true},
	}
	for _, tt := range tests {
		err := ValidateEmail(tt.email)
		assert.Equal(t, tt.wantErr, err != nil, "email %q", tt.email)
	}
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone   string
		wantErr bool
	}{
		{"09171234567", false},
		{"+0917-123-4567", false},
		{"(0917) 123 4567", false},
		{"0917123456", true},
		{"091712345678", true},
		{"0917abc4567", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidatePhone(tt.phone)
		assert.Equal(t, tt.wantErr, err != nil, "phone %q", tt.phone)
	}
	assert.Equal(t, "09171234567", NormalizePhone("(0917) 123-4567"))
}

func TestValidateSchedule(t *testing.T) {
	loc := time.FixedZone("PHT", 8*3600)
	now := time.Date(2025, 11, 30, 18, 30, 0, 0, loc)

	_, err := ValidateSchedule("2025-11-29", "19:00", now, loc)
	assert.ErrorIs(t, err, ErrInvalidField)

	_, err = ValidateSchedule("2025-11-30", "18:30", now, loc)
	assert.ErrorIs(t, err, ErrInvalidField)

	at, err := ValidateSchedule("2025-11-30", "18:45", now, loc)
	require.NoError(t, err)
	assert.Equal(t, 18, at.Hour())

	_, err = ValidateSchedule("2025-12-01", "09:00", now, loc)
	assert.NoError(t, err)

	_, err = ValidateSchedule("12/01/2025", "09:00", now, loc)
	assert.ErrorIs(t, err, ErrInvalidField)

	_, err = ValidateSchedule("", "09:00", now, loc)
	assert.ErrorIs(t, err, ErrMissingRequiredField)
}

func TestRequireFields(t *testing.T) {
	values := map[string]string{"customer_name": "Ana", "delivery_city": " "}
	err := RequireFields([]string{"customer_name", "delivery_city", "delivery_zip_code"}, values)
	require.Error(t, err)

	var ferr *FieldError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "delivery_city", ferr.Field)
}
