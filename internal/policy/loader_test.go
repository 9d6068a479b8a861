package policy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Success(t *testing.T) {
	path := writeConfig(t, `
version: 1
policies:
  - name: business-hours
    priority: 10
    selector:
      match_tags:
        Environment: dev
    windows:
      - days: [mon, tue, wed, thu, fri]
        start: "08:00"
        end: "18:00"
        timezone: UTC
    state: running
    default_state: stopped
`)

	policies, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(policies) != 1 {
		t.Fatalf("expected 1 policy, got %d", len(policies))
	}

	p := policies[0]
	if p.Name != "business-hours" {
		t.Fatalf("expected name business-hours, got %q", p.Name)
	}
	if !p.Matches(map[string]string{"Environment": "dev"}) {
		t.Fatal("selector should match Environment=dev")
	}

	// Tuesday 09:00 UTC: inside.
	if got := p.Evaluate(time.Date(2025, 9, 2, 9, 0, 0, 0, time.UTC)); got != models.PowerRunning {
		t.Fatalf("expected RUNNING inside window, got %s", got)
	}
	// Saturday 09:00 UTC: outside.
	if got := p.Evaluate(time.Date(2025, 9, 6, 9, 0, 0, 0, time.UTC)); got != models.PowerStopped {
		t.Fatalf("expected STOPPED outside window, got %s", got)
	}
}

func TestLoad_MalformedWindowFailsFast(t *testing.T) {
	path := writeConfig(t, `
version: 1
policies:
  - name: backwards
    selector:
      match_tags:
        Environment: dev
    windows:
      - days: [mon]
        start: "18:00"
        end: "08:00"
    state: running
    default_state: stopped
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for end before start without overnight")
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
}

func TestLoad_PriorityOrder(t *testing.T) {
	path := writeConfig(t, `
version: 1
policies:
  - name: low-priority
    priority: 20
    selector:
      match_tags: {Environment: dev}
    state: running
    default_state: stopped
  - name: high-priority
    priority: 5
    selector:
      match_tags: {Environment: dev}
    state: stopped
    default_state: stopped
  - name: same-priority-later
    priority: 5
    selector:
      match_tags: {Environment: dev}
    state: running
    default_state: running
`)

	policies, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"high-priority", "same-priority-later", "low-priority"}
	for i, name := range want {
		if policies[i].Name != name {
			t.Fatalf("position %d: expected %q, got %q (order must be ascending priority, stable)", i, name, policies[i].Name)
		}
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_CollectsAllErrors(t *testing.T) {
	path := writeConfig(t, `
version: 2
policies:
  - name: broken
    selector: {}
    windows:
      - days: [funday]
        start: "08:00"
        end: "18:00"
    state: humming
    default_state: stopped
`)

	_, err := Load(path)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %v", err)
	}
	// version + empty selector + bad weekday + bad state.
	if len(cfgErr.Errs) != 4 {
		t.Fatalf("expected 4 collected errors, got %d: %v", len(cfgErr.Errs), cfgErr.Errs)
	}
}
