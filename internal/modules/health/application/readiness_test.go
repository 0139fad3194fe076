package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sglre6355/venuevibe/internal/modules/health/domain"
)

type mockChecker struct {
	err   error
	block bool
}

func (m *mockChecker) HealthCheck(ctx context.Context) error {
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return m.err
}

func TestReadinessInteractor_Execute(t *testing.T) {
	tests := []struct {
		name           string
		checkers       map[string]Checker
		expectedStatus domain.Status
		expectedFailed []string
	}{
		{
			name:           "no checkers",
			checkers:       map[string]Checker{},
			expectedStatus: domain.StatusOK,
		},
		{
			name:           "all healthy",
			checkers:       map[string]Checker{"jukebox": &mockChecker{}, "other": &mockChecker{}},
			expectedStatus: domain.StatusOK,
		},
		{
			name: "one failing",
			checkers: map[string]Checker{
				"jukebox": &mockChecker{err: errors.New("database is locked")},
				"other":   &mockChecker{},
			},
			expectedStatus: domain.StatusUnavailable,
			expectedFailed: []string{"jukebox"},
		},
		{
			name:           "check exceeding timeout",
			checkers:       map[string]Checker{"slow": &mockChecker{block: true}},
			expectedStatus: domain.StatusUnavailable,
			expectedFailed: []string{"slow"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interactor := NewReadinessInteractor(tt.checkers, 50*time.Millisecond)

			report := interactor.Execute(context.Background())

			if report.Status != tt.expectedStatus {
				t.Errorf("expected status %q, got %q", tt.expectedStatus, report.Status)
			}
			if len(report.Checks) != len(tt.checkers) {
				t.Fatalf("expected %d checks, got %d", len(tt.checkers), len(report.Checks))
			}

			var failed []string
			for _, c := range report.Checks {
				if c.Status != domain.StatusOK {
					failed = append(failed, c.Name)
					if c.Error == "" {
						t.Errorf("expected error message for %s", c.Name)
					}
				}
			}
			if len(failed) != len(tt.expectedFailed) {
				t.Fatalf("expected failed %v, got %v", tt.expectedFailed, failed)
			}
			for i := range failed {
				if failed[i] != tt.expectedFailed[i] {
					t.Errorf("expected failed %v, got %v", tt.expectedFailed, failed)
				}
			}
		})
	}
}

func TestReadinessInteractor_SortsByName(t *testing.T) {
	interactor := NewReadinessInteractor(map[string]Checker{
		"zeta":  &mockChecker{},
		"alpha": &mockChecker{},
		"mu":    &mockChecker{},
	}, 0)

	report := interactor.Execute(context.Background())

	expected := []string{"alpha", "mu", "zeta"}
	for i, c := range report.Checks {
		if c.Name != expected[i] {
			t.Errorf("expected %s at %d, got %s", expected[i], i, c.Name)
		}
	}
}

func TestLivenessInteractor_Execute(t *testing.T) {
	report := NewLivenessInteractor().Execute()

	if !report.Healthy() {
		t.Errorf("expected ok, got %q", report.Status)
	}
	if report.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}
