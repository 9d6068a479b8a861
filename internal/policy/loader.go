package policy

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigError is the fatal load-time error for a malformed schedule
// document. It carries every validation error found so operators can fix
// the file in one pass. The process must not start scheduling with a
// ConfigError pending.
type ConfigError struct {
	Path string
	Errs []error
}

func (e *ConfigError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid policy config %s: %s", e.Path, strings.Join(msgs, "; "))
}

func (e *ConfigError) Unwrap() []error { return e.Errs }

// Load reads, parses, validates, and compiles the schedule document at
// path. Any structural or semantic problem returns a *ConfigError; malformed
// windows are never silently skipped.
func Load(path string) ([]Policy, error) {
	cfg, err := Parse(path)
	if err != nil {
		return nil, err
	}

	if errs := Validate(cfg); len(errs) > 0 {
		return nil, &ConfigError{Path: path, Errs: errs}
	}

	policies, err := Compile(cfg)
	if err != nil {
		return nil, &ConfigError{Path: path, Errs: []error{err}}
	}
	return policies, nil
}

// Parse reads and unmarshals the document without validating it. The
// validate command uses this to report all semantic errors itself.
func Parse(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Path: path, Errs: []error{fmt.Errorf("parse YAML: %w", err)}}
	}
	return &cfg, nil
}
