package policy

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/models"
)

// Policy is a compiled schedule rule. Policies are immutable once compiled;
// a loaded set is the snapshot a whole run evaluates against.
type Policy struct {
	Name     string
	Priority int

	selector Selector
	windows  []Window
	inWindow models.PowerState
	outside  models.PowerState
}

// Matches reports whether the policy's selector matches the given tag map.
func (p Policy) Matches(tags map[string]string) bool {
	return p.selector.Matches(tags)
}

// Evaluate returns the desired power state at the given instant. Overlapping
// windows are unioned: any containing window makes the policy active.
func (p Policy) Evaluate(now time.Time) models.PowerState {
	for _, w := range p.windows {
		if w.Contains(now) {
			return p.inWindow
		}
	}
	return p.outside
}

// parseState maps a document state string to a PowerState.
func parseState(s string) (models.PowerState, error) {
	switch strings.ToLower(s) {
	case "running":
		return models.PowerRunning, nil
	case "stopped":
		return models.PowerStopped, nil
	default:
		return "", fmt.Errorf("invalid state %q; must be \"running\" or \"stopped\"", s)
	}
}

// Compile turns a validated Config into an ordered policy set: ascending
// Priority, document order within equal priorities. Evaluation order is the
// tie-break contract, so the sort must be stable.
func Compile(cfg *Config) ([]Policy, error) {
	policies := make([]Policy, 0, len(cfg.Policies))

	for i, spec := range cfg.Policies {
		inWindow, err := parseState(spec.State)
		if err != nil {
			return nil, fmt.Errorf("policies[%d] %q: state: %w", i, spec.Name, err)
		}
		outside, err := parseState(spec.DefaultState)
		if err != nil {
			return nil, fmt.Errorf("policies[%d] %q: default_state: %w", i, spec.Name, err)
		}

		windows := make([]Window, 0, len(spec.Windows))
		for j, ws := range spec.Windows {
			w, err := compileWindow(ws)
			if err != nil {
				return nil, fmt.Errorf("policies[%d] %q: windows[%d]: %w", i, spec.Name, j, err)
			}
			windows = append(windows, w)
		}

		policies = append(policies, Policy{
			Name:     spec.Name,
			Priority: spec.Priority,
			selector: compileSelector(spec.Selector),
			windows:  windows,
			inWindow: inWindow,
			outside:  outside,
		})
	}

	sort.SliceStable(policies, func(i, j int) bool {
		return policies[i].Priority < policies[j].Priority
	})

	return policies, nil
}
