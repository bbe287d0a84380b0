package extension

import "time"

// Config holds the Tally extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.tally" or "tally" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// PaymentTerms is how long after issuing a bill falls due (default: 336h,
	// fourteen days).
	PaymentTerms time.Duration `json:"payment_terms" mapstructure:"payment_terms" yaml:"payment_terms"`

	// OverdueSweepInterval is how frequently open bills are re-checked and
	// flipped to overdue (default: 1h).
	OverdueSweepInterval time.Duration `json:"overdue_sweep_interval" mapstructure:"overdue_sweep_interval" yaml:"overdue_sweep_interval"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PaymentTerms:         14 * 24 * time.Hour,
		OverdueSweepInterval: time.Hour,
	}
}
