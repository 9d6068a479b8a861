package models

import "time"

// TransitionOutcome records one attempted state transition.
type TransitionOutcome struct {
	ResourceID   string       `json:"resource_id"`
	ResourceType ResourceType `json:"resource_type"`
	Region       string       `json:"region"`
	From         PowerState   `json:"from"`
	To           PowerState   `json:"to"`

	// Error is the failure reason, empty on success.
	Error string `json:"error,omitempty"`
}

// OK reports whether the transition succeeded.
func (o TransitionOutcome) OK() bool { return o.Error == "" }

// RunSummary is the structured result of one scheduler pass. It is the
// run's only output artefact; delivery to any alerting side-channel is a
// collaborator's responsibility.
type RunSummary struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	AccountID string   `json:"account_id,omitempty"`
	Profile   string   `json:"profile,omitempty"`
	Regions   []string `json:"regions,omitempty"`

	// ResourcesEvaluated counts every resource the decision engine saw,
	// including ones left untouched.
	ResourcesEvaluated int `json:"resources_evaluated"`

	// TransitionsAttempted counts resources where desired != current and a
	// transition request was issued (or would have been, under dry-run).
	TransitionsAttempted int `json:"transitions_attempted"`

	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`

	// Skipped counts resources excluded from the batch: transitioning at
	// list time, unknown state, or cancelled before their worker started.
	Skipped int `json:"skipped"`

	DryRun bool `json:"dry_run,omitempty"`

	Outcomes []TransitionOutcome `json:"outcomes,omitempty"`
}

// FailedIDs returns the resource IDs of all failed transitions, in outcome
// order.
func (s *RunSummary) FailedIDs() []string {
	var ids []string
	for _, o := range s.Outcomes {
		if !o.OK() {
			ids = append(ids, o.ResourceID)
		}
	}
	return ids
}
