package checks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/accountd/internal/monitoring"
)

type pinger struct{ err error }

func (p pinger) Ping(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("expected deadline")
	}
	return p.err
}

type sweepStatus struct {
	last time.Time
	err  error
}

func (s sweepStatus) LastRun() (time.Time, error) { return s.last, s.err }

func evaluate(check monitoring.Check) monitoring.ProbeResult {
	m := monitoring.NewHealthManager()
	m.Register(check)
	return m.Evaluate(context.Background()).Checks[0]
}

func TestStoreProbe(t *testing.T) {
	require.Equal(t, monitoring.StatusUp, evaluate(Store("postgres", pinger{}, 0)).Status)

	down := evaluate(Store("mongo", pinger{err: errors.New("no reachable servers")}, time.Second))
	require.Equal(t, monitoring.StatusDown, down.Status)
	require.Equal(t, "mongo", down.Component)
	require.Contains(t, down.Details, "no reachable servers")

	require.Equal(t, monitoring.StatusDown, evaluate(Store("mongo", nil, 0)).Status)
}

func TestRevocationsProbe(t *testing.T) {
	size := func() int { return 3 }

	res := evaluate(Revocations(size, nil, 0))
	require.Equal(t, monitoring.StatusUp, res.Status)
	require.Equal(t, "3 revoked tokens", res.Details)

	res = evaluate(Revocations(size, sweepStatus{}, time.Hour))
	require.Equal(t, monitoring.StatusUp, res.Status)
	require.Contains(t, res.Details, "pending")

	res = evaluate(Revocations(size, sweepStatus{last: time.Now().Add(-2 * time.Hour)}, time.Hour))
	require.Equal(t, monitoring.StatusDegraded, res.Status)

	res = evaluate(Revocations(size, sweepStatus{last: time.Now(), err: errors.New("boom")}, time.Hour))
	require.Equal(t, monitoring.StatusDegraded, res.Status)
	require.Contains(t, res.Details, "boom")

	res = evaluate(Revocations(size, sweepStatus{last: time.Now()}, time.Hour))
	require.Equal(t, monitoring.StatusUp, res.Status)
}
