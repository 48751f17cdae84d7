package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticChecker struct {
	name string
	err  error
}

func (c staticChecker) Name() string                    { return c.name }
func (c staticChecker) Check(ctx context.Context) error { return c.err }

func TestCheckerRegistry_AllHealthy(t *testing.T) {
	registry := NewCheckerRegistry()
	registry.Register(staticChecker{name: "a"})
	registry.Register(staticChecker{name: "b"})

	result := registry.Check(context.Background())

	assert.Equal(t, StatusHealthy, result.Status)
	assert.Len(t, result.Checks, 2)
	assert.Equal(t, StatusHealthy, result.Checks["a"].Status)
}

func TestCheckerRegistry_OneUnhealthy(t *testing.T) {
	registry := NewCheckerRegistry()
	registry.Register(staticChecker{name: "ok"})
	registry.Register(staticChecker{name: "broken", err: errors.New("down")})

	result := registry.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Equal(t, StatusHealthy, result.Checks["ok"].Status)
	assert.Equal(t, StatusUnhealthy, result.Checks["broken"].Status)
	assert.Equal(t, "down", result.Checks["broken"].Message)
}

func TestCheckerRegistry_Empty(t *testing.T) {
	result := NewCheckerRegistry().Check(context.Background())
	assert.Equal(t, StatusHealthy, result.Status)
}

func TestLogFileChecker(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output_log.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	assert.NoError(t, NewLogFileChecker(path).Check(context.Background()))
	assert.Error(t, NewLogFileChecker(filepath.Join(dir, "absent.txt")).Check(context.Background()))
	assert.Error(t, NewLogFileChecker(dir).Check(context.Background()))
}

func TestAPIChecker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	// Any HTTP response means the host is reachable.
	assert.NoError(t, NewAPIChecker(srv.URL, time.Second).Check(context.Background()))
	assert.Error(t, NewAPIChecker("http://127.0.0.1:1", time.Second).Check(context.Background()))
}
