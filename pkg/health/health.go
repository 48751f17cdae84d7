package health

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

type Checker interface {
	Check(ctx context.Context) error
	Name() string
}

type Health struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

type CheckResult struct {
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type CheckerRegistry struct {
	checkers []Checker
}

func NewCheckerRegistry() *CheckerRegistry {
	return &CheckerRegistry{
		checkers: make([]Checker, 0),
	}
}

func (r *CheckerRegistry) Register(checker Checker) {
	r.checkers = append(r.checkers, checker)
}

func (r *CheckerRegistry) Check(ctx context.Context) Health {
	results := make(map[string]CheckResult)
	allHealthy := true

	for _, checker := range r.checkers {
		err := checker.Check(ctx)
		result := CheckResult{
			Timestamp: time.Now().UTC(),
		}

		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = err.Error()
			allHealthy = false
		} else {
			result.Status = StatusHealthy
		}

		results[checker.Name()] = result
	}

	overallStatus := StatusHealthy
	if !allHealthy {
		overallStatus = StatusUnhealthy
	}

	return Health{
		Status:    overallStatus,
		Timestamp: time.Now().UTC(),
		Checks:    results,
	}
}

// LogFileChecker reports whether the game log being followed still exists.
// The game removes and recreates the log on restart, so a missing file is a
// transient condition, but one worth surfacing.
type LogFileChecker struct {
	path string
}

func NewLogFileChecker(path string) *LogFileChecker {
	return &LogFileChecker{path: path}
}

func (c *LogFileChecker) Name() string {
	return "log_file"
}

func (c *LogFileChecker) Check(ctx context.Context) error {
	info, err := os.Stat(c.path)
	if err != nil {
		return fmt.Errorf("log file not readable: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("log path %s is a directory", c.path)
	}
	return nil
}

// APIChecker verifies the collection API host answers at all. Any HTTP
// response counts as reachable; only transport failures are unhealthy.
type APIChecker struct {
	host   string
	client *http.Client
}

func NewAPIChecker(host string, timeout time.Duration) *APIChecker {
	return &APIChecker{
		host: host,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *APIChecker) Name() string {
	return "collection_api"
}

func (c *APIChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.host, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("api host unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}
