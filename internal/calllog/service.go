package calllog

import (
	"cmp"
	"context"
	"slices"

	"github.com/Iron-Ham/callbridge/internal/errors"
	"github.com/Iron-Ham/callbridge/internal/logging"
)

const serviceName = "calllog"

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

// Service answers call-history queries against a Store.
type Service struct {
	store  Store
	logger *logging.Logger
}

// NewService creates a Service. store must be non-nil.
func NewService(store Store, opts ...Option) *Service {
	if store == nil {
		panic("calllog: Store must not be nil")
	}

	s := &Service{store: store, logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(serviceName)
	return s
}

// Query returns the records at or after sinceMillis, newest first. Store
// failures and panics come back as *errors.HostError.
func (s *Service) Query(ctx context.Context, sinceMillis int64) (records []CallRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			records, err = nil, errors.FromPanic(serviceName, "query", r)
		}
	}()

	records, err = s.store.CallsSince(ctx, sinceMillis)
	if err != nil {
		return nil, errors.NewHostError(serviceName, "query", err)
	}

	// The store contract already guarantees this; enforce it so a lax
	// store cannot leak older rows or break the ordering.
	records = slices.DeleteFunc(records, func(r CallRecord) bool {
		return r.TimestampMillis < sinceMillis
	})
	slices.SortStableFunc(records, func(a, b CallRecord) int {
		return cmp.Compare(b.TimestampMillis, a.TimestampMillis)
	})
	return records, nil
}

// CallsSince is the boundary adapter for Query: it never fails and returns
// an empty, non-nil slice when the host store cannot be queried.
func (s *Service) CallsSince(ctx context.Context, sinceMillis int64) []CallRecord {
	records, err := s.Query(ctx, sinceMillis)
	if err != nil {
		s.logger.Warn("call history query failed, returning empty result",
			"since", sinceMillis,
			"error", err.Error(),
			"severity", errors.GetSeverity(err).String())
		return []CallRecord{}
	}
	if records == nil {
		records = []CallRecord{}
	}
	s.logger.Debug("call history queried", "since", sinceMillis, "count", len(records))
	return records
}
