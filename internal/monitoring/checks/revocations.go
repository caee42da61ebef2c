package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/charlesng35/accountd/internal/monitoring"
)

// SweepStatus reports the state of the revocation sweep job.
type SweepStatus interface {
	LastRun() (time.Time, error)
}

// Revocations reports the revocation registry size and degrades when the
// sweep has failed or not run within maxAge.
func Revocations(size func() int, sweep SweepStatus, maxAge time.Duration) monitoring.Check {
	return monitoring.NewCheck("revocations", func(context.Context) monitoring.ProbeResult {
		details := fmt.Sprintf("%d revoked tokens", size())
		if sweep == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: details}
		}

		last, err := sweep.LastRun()
		switch {
		case err != nil:
			return monitoring.ProbeResult{
				Status:  monitoring.StatusDegraded,
				Details: details + "; last sweep failed: " + err.Error(),
			}
		case last.IsZero():
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: details + "; sweep pending"}
		case maxAge > 0 && time.Since(last) > maxAge:
			return monitoring.ProbeResult{
				Status:  monitoring.StatusDegraded,
				Details: details + "; stale sweep " + last.UTC().Format(time.RFC3339),
			}
		}
		return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: details}
	})
}
