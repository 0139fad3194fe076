package domain

import "time"

// Status is the health of the service or one of its components.
type Status string

const (
	StatusOK          Status = "ok"
	StatusUnavailable Status = "unavailable"
)

// CheckResult is the outcome of one component check.
type CheckResult struct {
	Name   string
	Status Status
	Error  string
}

// Report aggregates component checks.
type Report struct {
	Status    Status
	Checks    []CheckResult
	Timestamp time.Time
}

// NewReport builds a report that is ok only if every check is ok.
func NewReport(checks []CheckResult, now time.Time) *Report {
	status := StatusOK
	for _, c := range checks {
		if c.Status != StatusOK {
			status = StatusUnavailable
			break
		}
	}
	return &Report{
		Status:    status,
		Checks:    checks,
		Timestamp: now,
	}
}

// Healthy reports whether the aggregate status is ok.
func (r *Report) Healthy() bool {
	return r.Status == StatusOK
}
