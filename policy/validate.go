package policy

import (
	"regexp"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	phoneDigits = 11
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var phoneSeparators = strings.NewReplacer("+", "", "-", "", "(", "", ")", "", " ", "")

// ValidateEmail checks the local@domain.tld shape.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return MissingField("email")
	}
	if !emailPattern.MatchString(email) {
		return InvalidField("email", "must look like name@domain.tld")
	}
	return nil
}

// NormalizePhone strips the separators customers usually type.
func NormalizePhone(phone string) string {
	return phoneSeparators.Replace(strings.TrimSpace(phone))
}

// ValidatePhone requires exactly 11 digits once separators are removed.
func ValidatePhone(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return MissingField("phone")
	}
	digits := NormalizePhone(phone)
	if len(digits) != phoneDigits {
		return InvalidField("phone", "must contain exactly 11 digits")
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return InvalidField("phone", "may only contain digits")
		}
	}
	return nil
}

// ParseSchedule reads a YYYY-MM-DD date and HH:MM time in loc.
func ParseSchedule(date, clock string, loc *time.Location) (time.Time, error) {
	if strings.TrimSpace(date) == "" {
		return time.Time{}, MissingField("date")
	}
	if strings.TrimSpace(clock) == "" {
		return time.Time{}, MissingField("time")
	}
	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, InvalidField("date", "must use YYYY-MM-DD")
	}
	tod, err := time.ParseInLocation(TimeLayout, strings.TrimSpace(clock), loc)
	if err != nil {
		return time.Time{}, InvalidField("time", "must use HH:MM")
	}
	return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, loc), nil
}

// ValidateSchedule rejects past dates, and past or current times on today.
func ValidateSchedule(date, clock string, now time.Time, loc *time.Location) (time.Time, error) {
	at, err := ParseSchedule(date, clock, loc)
	if err != nil {
		return time.Time{}, err
	}
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, loc)
	if day.Before(today) {
		return time.Time{}, InvalidField("date", "cannot be in the past")
	}
	if day.Equal(today) && !at.After(now) {
		return time.Time{}, InvalidField("time", "must be later than the current time")
	}
	return at, nil
}

// RequireFields returns MissingRequiredField for the first blank value, in
// the order the names are given.
func RequireFields(names []string, values map[string]string) error {
	for _, name := range names {
		if strings.TrimSpace(values[name]) == "" {
			return MissingField(name)
		}
	}
	return nil
}
