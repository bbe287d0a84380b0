package extension

import (
	"time"

	"github.com/xraph/grove"

	tally "github.com/xraph/tally"
	"github.com/xraph/tally/plugin"
	"github.com/xraph/tally/store"
)

// Option configures the Tally Forge extension.
type Option func(*Extension)

// WithStore sets the store for the billing engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithGroveStore builds the store from the given grove database using the
// provided backend constructor, e.g. sqlite.New, postgres.New, or mongo.New.
func WithGroveStore(db *grove.DB, factory func(*grove.DB) store.Store) Option {
	return func(e *Extension) {
		e.store = factory(db)
	}
}

// WithTallyOption passes a tally.Option through to the underlying engine.
func WithTallyOption(opt tally.Option) Option {
	return func(e *Extension) {
		e.tallyOpts = append(e.tallyOpts, opt)
	}
}

// WithPlugin registers a tally plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.tallyOpts = append(e.tallyOpts, tally.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithPaymentTerms sets how long after issuing a bill falls due.
func WithPaymentTerms(d time.Duration) Option {
	return func(e *Extension) { e.config.PaymentTerms = d }
}

// WithOverdueSweepInterval sets how frequently open bills are re-checked.
func WithOverdueSweepInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.OverdueSweepInterval = d }
}
