package cli

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "centimos", cmd.Use)

	for _, path := range [][]string{
		{"serve"},
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "version"},
		{"rates", "update"},
	} {
		found, _, err := cmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], found.Name())
	}
}

func TestMigrateDownFlags(t *testing.T) {
	down, _, err := NewRootCommand().Find([]string{"migrate", "down"})
	require.NoError(t, err)

	steps := down.Flags().Lookup("steps")
	require.NotNil(t, steps)
	assert.Equal(t, "n", steps.Shorthand)
	assert.Equal(t, "1", steps.DefValue)
}

func TestMigrateRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err = databaseURL()
	assert.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost/centimos")
	url, err := databaseURL()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/centimos", url)
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	healthHandler(stubPinger{})(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	healthHandler(stubPinger{err: errors.New("connection refused")})(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
