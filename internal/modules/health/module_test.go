package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sglre6355/venuevibe/internal/server"
)

type stubHealthChecker struct {
	err error
}

func (s stubHealthChecker) HealthCheck(context.Context) error {
	return s.err
}

func TestHealthModule_Routes(t *testing.T) {
	m := &HealthModule{}
	err := m.Init(context.Background(), server.ModuleDependencies{
		HealthCheckers: map[string]server.HealthChecker{
			"jukebox": stubHealthChecker{err: errors.New("down")},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mux := http.NewServeMux()
	for pattern, h := range m.Routes() {
		mux.Handle(pattern, h)
	}

	tests := []struct {
		target         string
		expectedStatus int
	}{
		{target: "/healthz", expectedStatus: http.StatusOK},
		{target: "/readyz", expectedStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected %d, got %d", tt.expectedStatus, rec.Code)
			}
		})
	}
}
