package monitoring

import (
	"context"
	"errors"
	"time"
)

// ProbeStatus encodes the outcome of a health probe.
type ProbeStatus string

const (
	StatusUp       ProbeStatus = "up"
	StatusDown     ProbeStatus = "down"
	StatusDegraded ProbeStatus = "degraded"
)

// ProbeResult captures a single dependency check outcome.
type ProbeResult struct {
	Component string        `json:"component"`
	Status    ProbeStatus   `json:"status"`
	Details   string        `json:"details,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// HealthReport aggregates probe results.
type HealthReport struct {
	Status ProbeStatus   `json:"status"`
	Checks []ProbeResult `json:"checks"`
}

// Healthy reports whether every probe is up.
func (r HealthReport) Healthy() bool {
	return r.Status == StatusUp
}

// Check encapsulates a single dependency probe.
type Check struct {
	Name string
	Run  func(ctx context.Context) ProbeResult
}

// NewCheck constructs a health check with the provided name and function.
func NewCheck(name string, fn func(ctx context.Context) ProbeResult) Check {
	if fn == nil {
		fn = func(context.Context) ProbeResult {
			return ProbeResult{Status: StatusDown, Details: "probe not implemented"}
		}
	}
	return Check{Name: name, Run: fn}
}

// HealthManager runs the registered readiness probes. Register before serving;
// Evaluate is safe for concurrent use afterwards.
type HealthManager struct {
	checks []Check
}

// NewHealthManager constructs an empty health manager.
func NewHealthManager() *HealthManager {
	return &HealthManager{}
}

// Register appends a probe. Unnamed probes are ignored.
func (m *HealthManager) Register(check Check) {
	if check.Name == "" {
		return
	}
	m.checks = append(m.checks, check)
}

// Evaluate executes every probe in registration order. The report is down if
// any probe is down, otherwise degraded if any is degraded.
func (m *HealthManager) Evaluate(ctx context.Context) HealthReport {
	report := HealthReport{
		Status: StatusUp,
		Checks: make([]ProbeResult, 0, len(m.checks)),
	}

	for _, check := range m.checks {
		result := runCheck(ctx, check)
		report.Checks = append(report.Checks, result)

		switch result.Status {
		case StatusDown:
			report.Status = StatusDown
		case StatusDegraded:
			if report.Status != StatusDown {
				report.Status = StatusDegraded
			}
		}
	}
	return report
}

func runCheck(ctx context.Context, check Check) (result ProbeResult) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			details := "panic recovered"
			switch v := rec.(type) {
			case string:
				details = v
			case error:
				details = v.Error()
			}
			result = ProbeResult{Status: StatusDown, Details: details}
		}
		if result.Status == "" {
			result.Status = StatusDown
		}
		if result.Duration == 0 {
			result.Duration = time.Since(start)
		}
		result.Component = check.Name
	}()

	return check.Run(ctx)
}

// ResultFromError converts an error into a ProbeResult. Timeouts and
// cancellations count as degraded, anything else as down.
func ResultFromError(component string, err error, duration time.Duration) ProbeResult {
	if duration < 0 {
		duration = 0
	}
	if err == nil {
		return ProbeResult{Component: component, Status: StatusUp, Duration: duration}
	}

	status := StatusDown
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		status = StatusDegraded
	}

	return ProbeResult{
		Component: component,
		Status:    status,
		Details:   err.Error(),
		Duration:  duration,
	}
}
