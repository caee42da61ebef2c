// Package storetest opens throwaway Credential Stores for tests.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/accountd/internal/database"
	"github.com/charlesng35/accountd/internal/store"
	"github.com/charlesng35/accountd/internal/store/relational"
)

// OpenRelational returns a relational store over a private in-memory SQLite
// database. It is closed when the test finishes.
func OpenRelational(t testing.TB, opts ...relational.Option) *relational.Store {
	t.Helper()

	db, err := database.Open(database.Config{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	require.NoError(t, relational.InitSchema(context.Background(), db))

	st, err := relational.New(db, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st
}

// Registry returns a registry with both backend names bound to independent
// in-memory stores.
func Registry(t testing.TB) *store.Registry {
	t.Helper()
	return store.NewRegistry(map[string]store.Store{
		store.BackendMongo:    OpenRelational(t),
		store.BackendPostgres: OpenRelational(t),
	})
}

// FixedClock returns a clock pinned to at.
func FixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
