package policy

import (
	"fmt"
	"strings"
)

// validStates is the set of allowed desired-state strings (lower-case
// canonical form).
var validStates = map[string]struct{}{
	"running": {},
	"stopped": {},
}

// Validate checks cfg for semantic correctness and returns all validation
// errors found. An empty slice means the config is valid.
//
// Checks performed:
//   - version must be 1
//   - at least one policy must be defined
//   - policy names must be non-empty and unique
//   - selectors must carry at least one predicate
//   - state and default_state must be "running" or "stopped"
//   - window days must be known weekday names
//   - window start/end must parse as HH:MM
//   - end must be after start unless overnight is set
//   - window timezones must be loadable IANA names
//
// All errors are collected before returning; Validate never stops at the
// first error.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{fmt.Errorf("policy config is nil")}
	}

	var errs []error

	if cfg.Version != 1 {
		errs = append(errs, fmt.Errorf("version: unsupported value %d; must be 1", cfg.Version))
	}

	if len(cfg.Policies) == 0 {
		errs = append(errs, fmt.Errorf("policies: at least one policy is required"))
	}

	seen := make(map[string]struct{}, len(cfg.Policies))
	for i, p := range cfg.Policies {
		prefix := fmt.Sprintf("policies[%d]", i)
		if p.Name != "" {
			prefix = fmt.Sprintf("policies[%d] %q", i, p.Name)
		}

		if p.Name == "" {
			errs = append(errs, fmt.Errorf("%s: name is required", prefix))
		} else if _, dup := seen[p.Name]; dup {
			errs = append(errs, fmt.Errorf("%s: duplicate policy name", prefix))
		} else {
			seen[p.Name] = struct{}{}
		}

		if p.Selector.Empty() {
			errs = append(errs, fmt.Errorf("%s: selector: match_tags or match_any is required", prefix))
		}

		if _, ok := validStates[strings.ToLower(p.State)]; !ok {
			errs = append(errs, fmt.Errorf("%s: state: invalid value %q; valid values: running, stopped", prefix, p.State))
		}
		if _, ok := validStates[strings.ToLower(p.DefaultState)]; !ok {
			errs = append(errs, fmt.Errorf("%s: default_state: invalid value %q; valid values: running, stopped", prefix, p.DefaultState))
		}

		for j, w := range p.Windows {
			if _, err := compileWindow(w); err != nil {
				errs = append(errs, fmt.Errorf("%s: windows[%d]: %w", prefix, j, err))
			}
		}
	}

	return errs
}
