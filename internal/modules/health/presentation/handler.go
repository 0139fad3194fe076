package presentation

import (
	"net/http"
	"time"

	"github.com/sglre6355/venuevibe/internal/modules/health/application"
	"github.com/sglre6355/venuevibe/internal/modules/health/domain"
	"github.com/sglre6355/venuevibe/internal/server"
)

type checkResponse struct {
	Status domain.Status `json:"status"`
	Error  string        `json:"error,omitempty"`
}

type reportResponse struct {
	Status    domain.Status            `json:"status"`
	Checks    map[string]checkResponse `json:"checks,omitempty"`
	Timestamp time.Time                `json:"timestamp"`
}

func newReportResponse(report *domain.Report) reportResponse {
	resp := reportResponse{
		Status:    report.Status,
		Timestamp: report.Timestamp.UTC(),
	}
	if len(report.Checks) > 0 {
		resp.Checks = make(map[string]checkResponse, len(report.Checks))
		for _, c := range report.Checks {
			resp.Checks[c.Name] = checkResponse{Status: c.Status, Error: c.Error}
		}
	}
	return resp
}

func writeReport(w http.ResponseWriter, report *domain.Report) {
	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	server.WriteJSON(w, status, newReportResponse(report))
}

// LivenessHandler handles GET /healthz.
type LivenessHandler struct {
	interactor *application.LivenessInteractor
}

// NewLivenessHandler creates a new LivenessHandler.
func NewLivenessHandler() *LivenessHandler {
	return &LivenessHandler{
		interactor: application.NewLivenessInteractor(),
	}
}

func (h *LivenessHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	writeReport(w, h.interactor.Execute())
}

// ReadinessHandler handles GET /readyz.
type ReadinessHandler struct {
	interactor *application.ReadinessInteractor
}

// NewReadinessHandler creates a new ReadinessHandler.
func NewReadinessHandler(interactor *application.ReadinessInteractor) *ReadinessHandler {
	return &ReadinessHandler{interactor: interactor}
}

func (h *ReadinessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeReport(w, h.interactor.Execute(r.Context()))
}
