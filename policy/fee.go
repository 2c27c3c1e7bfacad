package policy

import "strings"

// Occasion types offered by the reservation form.
const (
	OccasionBirthday        = "Birthday"
	OccasionAnniversary     = "Anniversary"
	OccasionBusinessMeeting = "Business Meeting"
	OccasionCasualDinner    = "Casual Dinner"
	OccasionOther           = "Other"
)

// FeeSchedule holds the constants of the reservation fee.
type FeeSchedule struct {
	BaseFees          map[string]float64 `yaml:"base_fees"`
	SurchargePerGuest float64            `yaml:"surcharge_per_guest"`
	IncludedGuests    int                `yaml:"included_guests"`
}

// DefaultFeeSchedule returns the house fee table.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		BaseFees: map[string]float64{
			OccasionBirthday:        500,
			OccasionAnniversary:     700,
			OccasionBusinessMeeting: 1000,
			OccasionCasualDinner:    0,
			OccasionOther:           300,
		},
		SurchargePerGuest: 200,
		IncludedGuests:    4,
	}
}

// Base returns the occasion's base fee; unknown or empty types cost nothing.
func (s FeeSchedule) Base(occasion string) float64 {
	return s.BaseFees[strings.TrimSpace(occasion)]
}

// Surcharge returns the charge for guests beyond the included party size.
func (s FeeSchedule) Surcharge(guests int) float64 {
	extra := guests - s.IncludedGuests
	if extra <= 0 {
		return 0
	}
	return float64(extra) * s.SurchargePerGuest
}

// Fee computes base + surcharge. Guest count must be positive.
func (s FeeSchedule) Fee(occasion string, guests int) (float64, error) {
	if guests <= 0 {
		return 0, &FieldError{Field: "guests", Reason: ErrInvalidGuests.Error(), Err: ErrInvalidGuests}
	}
	return s.Base(occasion) + s.Surcharge(guests), nil
}
