package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/zfogg/citysearch/internal/logger"
	"go.uber.org/zap"
)

// Check probes one backing service
type Check func(ctx context.Context) error

// ServiceValidator runs startup checks. Required services abort startup when
// their check fails; optional ones only log a warning.
type ServiceValidator struct {
	checks   map[string]Check
	required map[string]bool
	order    []string
	timeout  time.Duration
}

// NewServiceValidator creates a validator with a 10s per-check timeout
func NewServiceValidator() *ServiceValidator {
	return &ServiceValidator{
		checks:   make(map[string]Check),
		required: make(map[string]bool),
		timeout:  10 * time.Second,
	}
}

// Register adds a named check
func (sv *ServiceValidator) Register(name string, required bool, check Check) *ServiceValidator {
	if _, ok := sv.checks[name]; !ok {
		sv.order = append(sv.order, name)
	}
	sv.checks[name] = check
	sv.required[name] = required
	return sv
}

// WithTimeout overrides the per-check timeout
func (sv *ServiceValidator) WithTimeout(d time.Duration) *ServiceValidator {
	if d > 0 {
		sv.timeout = d
	}
	return sv
}

// ValidateServices runs every registered check in registration order and
// returns the first failure of a required service.
func (sv *ServiceValidator) ValidateServices(ctx context.Context) error {
	if len(sv.order) == 0 {
		logger.Log.Info("No services configured for validation")
		return nil
	}

	logger.Log.Info("Validating services", zap.Strings("services", sv.order))

	for _, name := range sv.order {
		timeoutCtx, cancel := context.WithTimeout(ctx, sv.timeout)
		err := sv.checks[name](timeoutCtx)
		cancel()

		if err == nil {
			logger.Log.Info("Service validated successfully", zap.String("service", name))
			continue
		}
		if sv.required[name] {
			logger.Log.Error("Required service validation failed", zap.String("service", name), zap.Error(err))
			return fmt.Errorf("required service '%s' validation failed: %w", name, err)
		}
		logger.Log.Warn("Optional service unavailable", zap.String("service", name), zap.Error(err))
	}

	return nil
}
