package application

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sglre6355/venuevibe/internal/modules/health/domain"
)

// DefaultCheckTimeout bounds each component check.
const DefaultCheckTimeout = 2 * time.Second

// Checker reports whether a component is ready.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// ReadinessInteractor runs every registered check.
type ReadinessInteractor struct {
	checkers map[string]Checker
	timeout  time.Duration
	now      func() time.Time
}

// NewReadinessInteractor creates a new ReadinessInteractor.
func NewReadinessInteractor(checkers map[string]Checker, timeout time.Duration) *ReadinessInteractor {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	return &ReadinessInteractor{
		checkers: checkers,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Execute runs all checks concurrently and returns results sorted by name.
func (r *ReadinessInteractor) Execute(ctx context.Context) *domain.Report {
	names := make([]string, 0, len(r.checkers))
	for name := range r.checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]domain.CheckResult, len(names))
	var g errgroup.Group
	for i, name := range names {
		checker := r.checkers[name]
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()

			results[i] = domain.CheckResult{Name: name, Status: domain.StatusOK}
			if err := checker.HealthCheck(ctx); err != nil {
				results[i].Status = domain.StatusUnavailable
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	return domain.NewReport(results, r.now())
}

// LivenessInteractor reports that the process is serving requests.
type LivenessInteractor struct {
	now func() time.Time
}

// NewLivenessInteractor creates a new LivenessInteractor.
func NewLivenessInteractor() *LivenessInteractor {
	return &LivenessInteractor{now: time.Now}
}

// Execute returns an ok report.
func (l *LivenessInteractor) Execute() *domain.Report {
	return domain.NewReport(nil, l.now())
}
