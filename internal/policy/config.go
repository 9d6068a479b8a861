package policy

// Config is the raw, unvalidated schedule-policy document as unmarshalled
// from YAML. Use Load to obtain compiled policies; Config is exported only
// for the validate command.
type Config struct {
	Version  int          `yaml:"version"`
	Policies []PolicySpec `yaml:"policies"`
}

// PolicySpec is one named schedule rule in the document.
type PolicySpec struct {
	Name string `yaml:"name"`

	// Priority orders policy evaluation: lower values are evaluated first,
	// ties keep document order. The first policy whose selector matches a
	// resource wins.
	Priority int `yaml:"priority"`

	Selector SelectorSpec `yaml:"selector"`

	Windows []WindowSpec `yaml:"windows"`

	// State is the desired power state while inside any window
	// ("running" or "stopped").
	State string `yaml:"state"`

	// DefaultState is the desired power state outside all windows.
	DefaultState string `yaml:"default_state"`
}

// SelectorSpec is the declarative tag predicate. MatchTags entries must all
// match (AND); MatchAny is a list of alternative tag sets, any of which may
// match (OR of ANDs). A selector with both blocks matches when MatchTags
// matches and at least one MatchAny alternative matches.
type SelectorSpec struct {
	MatchTags map[string]string   `yaml:"match_tags,omitempty"`
	MatchAny  []map[string]string `yaml:"match_any,omitempty"`
}

// Empty reports whether the selector has no predicate at all. Empty
// selectors are rejected at load so a policy can never match the whole
// fleet by accident.
func (s SelectorSpec) Empty() bool {
	return len(s.MatchTags) == 0 && len(s.MatchAny) == 0
}

// WindowSpec is one active-time window.
type WindowSpec struct {
	// Days lists weekday names ("mon".."sun" or full names, case-insensitive).
	Days []string `yaml:"days"`

	// Start and End are wall-clock times in "15:04" form. The window is
	// inclusive of Start and exclusive of End.
	Start string `yaml:"start"`
	End   string `yaml:"end"`

	// Timezone is an IANA zone name; defaults to UTC when empty.
	Timezone string `yaml:"timezone,omitempty"`

	// Overnight marks a window that crosses midnight: it covers
	// [Start, 24:00) on each listed day plus [00:00, End) on the following
	// day. Without this flag, End <= Start is a configuration error.
	Overnight bool `yaml:"overnight,omitempty"`
}
