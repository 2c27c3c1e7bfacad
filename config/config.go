package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/yeremiapane/restaurant-portal/policy"
	"github.com/yeremiapane/restaurant-portal/utils"
)

// Config is read from PORTAL_* environment variables.
type Config struct {
	Port       string `envconfig:"PORT" default:"8080"`
	GinMode    string `envconfig:"GIN_MODE" default:"debug"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	APIBaseURL string `envconfig:"API_BASE_URL" required:"true"`
	JWTSecret  string `envconfig:"JWT_SECRET" required:"true"`
	DBDriver   string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBDSN      string `envconfig:"DB_DSN" default:"portal.db"`
	Timezone   string `envconfig:"TIMEZONE" default:"Asia/Manila"`
	LoginPath  string `envconfig:"LOGIN_PATH" default:"/login"`
	CORSOrigin string `envconfig:"CORS_ORIGIN" default:"http://127.0.0.1:5500"`
	PolicyFile string `envconfig:"POLICY_FILE"`

	DeliveryFee float64 `envconfig:"DELIVERY_FEE" default:"50"`
}

// Policy holds the business constants a deployment may override.
type Policy struct {
	Fees               policy.FeeSchedule `yaml:"fees"`
	HighValueThreshold float64            `yaml:"high_value_threshold"`
	DailyReservations  int                `yaml:"daily_reservation_limit"`
}

// DefaultDailyReservations is how many reservations one user may hold per date.
const DefaultDailyReservations = 2

// DefaultPolicy returns the house rules.
func DefaultPolicy() Policy {
	return Policy{
		Fees:               policy.DefaultFeeSchedule(),
		HighValueThreshold: policy.DefaultHighValueThreshold,
		DailyReservations:  DefaultDailyReservations,
	}
}

// PaymentPolicy builds the payment rules from the loaded constants.
func (p Policy) PaymentPolicy() policy.PaymentPolicy {
	pp := policy.DefaultPaymentPolicy()
	pp.HighValueThreshold = p.HighValueThreshold
	return pp
}

// Load reads .env (when present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Debugf(".env not loaded: %v", err)
	}

	var cfg Config
	if err := envconfig.Process("portal", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Location resolves the restaurant timezone used for date checks.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LoadPolicy reads the optional YAML policy file. Keys that are absent keep
// their default values.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("config: read policy: %w", err)
	}
	if err := ParsePolicy(raw, &p); err != nil {
		return p, err
	}
	return p, nil
}

// ParsePolicy overlays YAML onto p and validates the result.
func ParsePolicy(raw []byte, p *Policy) error {
	var overlay struct {
		Fees struct {
			BaseFees          map[string]float64 `yaml:"base_fees"`
			SurchargePerGuest *float64           `yaml:"surcharge_per_guest"`
			IncludedGuests    *int               `yaml:"included_guests"`
		} `yaml:"fees"`
		HighValueThreshold *float64 `yaml:"high_value_threshold"`
		DailyReservations  *int     `yaml:"daily_reservation_limit"`
	}
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return fmt.Errorf("config: parse policy: %w", err)
	}

	for occasion, fee := range overlay.Fees.BaseFees {
		p.Fees.BaseFees[occasion] = fee
	}
	if overlay.Fees.SurchargePerGuest != nil {
		p.Fees.SurchargePerGuest = *overlay.Fees.SurchargePerGuest
	}
	if overlay.Fees.IncludedGuests != nil {
		p.Fees.IncludedGuests = *overlay.Fees.IncludedGuests
	}
	if overlay.HighValueThreshold != nil {
		p.HighValueThreshold = *overlay.HighValueThreshold
	}
	if overlay.DailyReservations != nil {
		p.DailyReservations = *overlay.DailyReservations
	}

	for occasion, fee := range p.Fees.BaseFees {
		if fee < 0 {
			return fmt.Errorf("config: base fee for %q is negative", occasion)
		}
	}
	if p.Fees.SurchargePerGuest < 0 || p.Fees.IncludedGuests < 0 {
		return fmt.Errorf("config: surcharge settings must not be negative")
	}
	if p.HighValueThreshold < 0 {
		return fmt.Errorf("config: high_value_threshold must not be negative")
	}
	if p.DailyReservations < 1 {
		return fmt.Errorf("config: daily_reservation_limit must be at least 1")
	}
	return nil
}
