package launcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/Iron-Ham/callbridge/internal/errors"
	"github.com/Iron-Ham/callbridge/internal/event"
	"github.com/Iron-Ham/callbridge/internal/logging"
)

const serviceName = "launcher"

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBus publishes a launch.completed event after every launch.
func WithBus(bus *event.Bus) Option {
	return func(s *Service) {
		s.bus = bus
	}
}

// WithPolicy sets the launch policy. The default allows every id.
func WithPolicy(p *Policy) Option {
	return func(s *Service) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithStrategies replaces the strategy list.
func WithStrategies(strategies ...Strategy) Option {
	return func(s *Service) {
		if len(strategies) > 0 {
			s.strategies = strategies
		}
	}
}

// Outcome describes a successful launch.
type Outcome struct {
	ApplicationID string
	Strategy      string
}

// Service launches applications through a Platform.
type Service struct {
	platform   Platform
	policy     *Policy
	strategies []Strategy
	logger     *logging.Logger
	bus        *event.Bus
}

// NewService creates a Service. platform must be non-nil.
func NewService(platform Platform, opts ...Option) *Service {
	if platform == nil {
		panic("launcher: Platform must not be nil")
	}

	s := &Service{
		platform:   platform,
		policy:     AllowAll(),
		strategies: DefaultStrategies(),
		logger:     logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(serviceName)
	return s
}

// Attempt launches appID with the first strategy that resolves a target.
// It returns ErrLaunchDenied when the policy rejects the id,
// ErrNoLaunchTarget when no strategy resolves one, and a *errors.HostError
// when the platform fails or panics.
func (s *Service) Attempt(ctx context.Context, appID string) (out Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = Outcome{}, errors.FromPanic(serviceName, "launch", r).WithTarget(appID)
		}
	}()

	if strings.TrimSpace(appID) == "" {
		return Outcome{}, fmt.Errorf("empty application id: %w", errors.ErrNoLaunchTarget)
	}
	if !s.policy.Allowed(appID) {
		return Outcome{}, fmt.Errorf("%s: %w", appID, errors.ErrLaunchDenied)
	}

	for _, strategy := range s.strategies {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}

		in, found, err := strategy.Resolve(ctx, s.platform, appID)
		if err != nil {
			return Outcome{}, errors.NewHostError(serviceName, strategy.Name(), err).WithTarget(appID)
		}
		if !found {
			s.logger.Debug("strategy found no target", "app_id", appID, "strategy", strategy.Name())
			continue
		}

		if err := s.platform.Start(ctx, in); err != nil {
			cause := fmt.Errorf("%w: %w", errors.ErrStartFailed, err)
			return Outcome{}, errors.NewHostError(serviceName, "start", cause).WithTarget(appID)
		}
		return Outcome{ApplicationID: appID, Strategy: strategy.Name()}, nil
	}

	return Outcome{}, fmt.Errorf("%s: %w", appID, errors.ErrNoLaunchTarget)
}

// Launch is the boundary adapter for Attempt: it reports whether the
// application was started and never fails.
func (s *Service) Launch(ctx context.Context, appID string) bool {
	out, err := s.Attempt(ctx, appID)
	launched := err == nil

	switch {
	case launched:
		s.logger.Info("application launched", "app_id", appID, "strategy", out.Strategy)
	case errors.Is(err, errors.ErrNoLaunchTarget), errors.Is(err, errors.ErrLaunchDenied):
		s.logger.Info("application not launched", "app_id", appID, "reason", err.Error())
	default:
		s.logger.Warn("launch failed",
			"app_id", appID,
			"error", err.Error(),
			"severity", errors.GetSeverity(err).String())
	}

	if s.bus != nil {
		s.bus.Publish(event.NewLaunchCompletedEvent(appID, out.Strategy, launched))
	}
	return launched
}
