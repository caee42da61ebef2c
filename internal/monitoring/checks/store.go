package checks

import (
	"context"
	"time"

	"github.com/charlesng35/accountd/internal/monitoring"
)

const defaultStoreTimeout = 2 * time.Second

// Pinger is satisfied by every Credential Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store returns a readiness probe that pings one backend.
func Store(name string, st Pinger, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck(name, func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if st == nil {
			return monitoring.ProbeResult{
				Status:  monitoring.StatusDown,
				Details: "store not configured",
			}
		}

		probeCtx, cancel := context.WithTimeout(ctx, chooseTimeout(timeout, defaultStoreTimeout))
		defer cancel()

		return monitoring.ResultFromError(name, st.Ping(probeCtx), time.Since(start))
	})
}

func chooseTimeout(provided, fallback time.Duration) time.Duration {
	if provided <= 0 {
		return fallback
	}
	return provided
}
