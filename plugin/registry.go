package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit            []OnInit
	onShutdown        []OnShutdown
	onBillCreated     []OnBillCreated
	onBillIssued      []OnBillIssued
	onBillPaid        []OnBillPaid
	onBillVoided      []OnBillVoided
	onBillWrittenOff  []OnBillWrittenOff
	onBillCancelled   []OnBillCancelled
	onBillOverdue     []OnBillOverdue
	onPaymentApplied  []OnPaymentApplied
	onPaymentRejected []OnPaymentRejected
	onReportGenerated []OnReportGenerated
	paymentValidators []PaymentValidator
	billFormatters    map[string]BillFormatter
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:         slog.Default(),
		billFormatters: make(map[string]BillFormatter),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnBillCreated); ok {
		r.onBillCreated = append(r.onBillCreated, v)
	}
	if v, ok := p.(OnBillIssued); ok {
		r.onBillIssued = append(r.onBillIssued, v)
	}
	if v, ok := p.(OnBillPaid); ok {
		r.onBillPaid = append(r.onBillPaid, v)
	}
	if v, ok := p.(OnBillVoided); ok {
		r.onBillVoided = append(r.onBillVoided, v)
	}
	if v, ok := p.(OnBillWrittenOff); ok {
		r.onBillWrittenOff = append(r.onBillWrittenOff, v)
	}
	if v, ok := p.(OnBillCancelled); ok {
		r.onBillCancelled = append(r.onBillCancelled, v)
	}
	if v, ok := p.(OnBillOverdue); ok {
		r.onBillOverdue = append(r.onBillOverdue, v)
	}
	if v, ok := p.(OnPaymentApplied); ok {
		r.onPaymentApplied = append(r.onPaymentApplied, v)
	}
	if v, ok := p.(OnPaymentRejected); ok {
		r.onPaymentRejected = append(r.onPaymentRejected, v)
	}
	if v, ok := p.(OnReportGenerated); ok {
		r.onReportGenerated = append(r.onReportGenerated, v)
	}
	if v, ok := p.(PaymentValidator); ok {
		r.paymentValidators = append(r.paymentValidators, v)
	}
	if v, ok := p.(BillFormatter); ok {
		r.billFormatters[v.Format()] = v
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnBillCreated)(nil)).Elem(), "OnBillCreated")
	checkInterface(reflect.TypeOf((*OnBillIssued)(nil)).Elem(), "OnBillIssued")
	checkInterface(reflect.TypeOf((*OnBillPaid)(nil)).Elem(), "OnBillPaid")
	checkInterface(reflect.TypeOf((*OnPaymentApplied)(nil)).Elem(), "OnPaymentApplied")
	checkInterface(reflect.TypeOf((*OnReportGenerated)(nil)).Elem(), "OnReportGenerated")
	checkInterface(reflect.TypeOf((*PaymentValidator)(nil)).Elem(), "PaymentValidator")
	checkInterface(reflect.TypeOf((*BillFormatter)(nil)).Elem(), "BillFormatter")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBillCreated emits a bill created event.
func (r *Registry) EmitBillCreated(ctx context.Context, b interface{}) {
	r.mu.RLock()
	plugins := r.onBillCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBillCreated(ctx, b)
		}); err != nil {
			r.logger.Warn("plugin OnBillCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBillIssued emits a bill issued event.
func (r *Registry) EmitBillIssued(ctx context.Context, b interface{}) {
	r.mu.RLock()
	plugins := r.onBillIssued
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBillIssued(ctx, b)
		}); err != nil {
			r.logger.Warn("plugin OnBillIssued failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBillPaid emits a bill paid event.
func (r *Registry) EmitBillPaid(ctx context.Context, b interface{}) {
	r.mu.RLock()
	plugins := r.onBillPaid
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBillPaid(ctx, b)
		}); err != nil {
			r.logger.Warn("plugin OnBillPaid failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBillVoided emits a bill voided event.
func (r *Registry) EmitBillVoided(ctx context.Context, b interface{}, reason string) {
	r.mu.RLock()
	plugins := r.onBillVoided
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBillVoided(ctx, b, reason)
		}); err != nil {
			r.logger.Warn("plugin OnBillVoided failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBillWrittenOff emits a bill written off event.
func (r *Registry) EmitBillWrittenOff(ctx context.Context, b interface{}, reason string) {
	r.mu.RLock()
	plugins := r.onBillWrittenOff
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBillWrittenOff(ctx, b, reason)
		}); err != nil {
			r.logger.Warn("plugin OnBillWrittenOff failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBillCancelled emits a bill cancelled event.
func (r *Registry) EmitBillCancelled(ctx context.Context, b interface{}, reason string) {
	r.mu.RLock()
	plugins := r.onBillCancelled
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBillCancelled(ctx, b, reason)
		}); err != nil {
			r.logger.Warn("plugin OnBillCancelled failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBillOverdue emits a bill overdue event.
func (r *Registry) EmitBillOverdue(ctx context.Context, b interface{}) {
	r.mu.RLock()
	plugins := r.onBillOverdue
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBillOverdue(ctx, b)
		}); err != nil {
			r.logger.Warn("plugin OnBillOverdue failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPaymentApplied emits a payment applied event.
func (r *Registry) EmitPaymentApplied(ctx context.Context, b interface{}, payment interface{}) {
	r.mu.RLock()
	plugins := r.onPaymentApplied
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPaymentApplied(ctx, b, payment)
		}); err != nil {
			r.logger.Warn("plugin OnPaymentApplied failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPaymentRejected emits a payment rejected event.
func (r *Registry) EmitPaymentRejected(ctx context.Context, billID string, reason error) {
	r.mu.RLock()
	plugins := r.onPaymentRejected
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPaymentRejected(ctx, billID, reason)
		}); err != nil {
			r.logger.Warn("plugin OnPaymentRejected failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitReportGenerated emits a report generated event.
func (r *Registry) EmitReportGenerated(ctx context.Context, report interface{}, elapsed time.Duration) {
	r.mu.RLock()
	plugins := r.onReportGenerated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnReportGenerated(ctx, report, elapsed)
		}); err != nil {
			r.logger.Warn("plugin OnReportGenerated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// ValidatePayment runs all registered payment validators. The first
// validator to return an error rejects the payment.
func (r *Registry) ValidatePayment(ctx context.Context, b interface{}, payment interface{}) error {
	r.mu.RLock()
	validators := r.paymentValidators
	r.mu.RUnlock()

	for _, v := range validators {
		if err := r.callWithTimeout(ctx, v.Name(), func() error {
			return v.ValidatePayment(ctx, b, payment)
		}); err != nil {
			return fmt.Errorf("plugin %s rejected payment: %w", v.Name(), err)
		}
	}
	return nil
}

// GetBillFormatter returns a bill formatter by format name.
func (r *Registry) GetBillFormatter(format string) BillFormatter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.billFormatters[format]
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the billing pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
