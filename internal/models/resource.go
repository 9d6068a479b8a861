package models

import "time"

// PowerState is the observed or desired power state of a schedulable resource.
type PowerState string

const (
	PowerRunning PowerState = "RUNNING"
	PowerStopped PowerState = "STOPPED"

	// PowerTransitioning covers provider states between running and stopped
	// (pending, stopping, starting, rebooting). Resources in this state are
	// evaluated but never handed to the reconciler.
	PowerTransitioning PowerState = "TRANSITIONING"

	// PowerUnknown is reported when the provider returns a state this tool
	// does not recognise. Unknown resources are skipped, never transitioned.
	PowerUnknown PowerState = "UNKNOWN"
)

// ResourceType identifies the kind of cloud resource being scheduled.
type ResourceType string

const (
	ResourceAWSEC2 ResourceType = "EC2_INSTANCE"
	ResourceAWSRDS ResourceType = "RDS_INSTANCE"
)

// Resource is a single schedulable compute resource as read from the
// provider during one run. Records are read fresh each run; nothing is
// cached across invocations.
type Resource struct {
	// ID is the provider-assigned identifier (instance ID or DB identifier).
	ID string `json:"id"`

	Type   ResourceType `json:"type"`
	Region string       `json:"region"`

	// State is the power state observed at list time.
	State PowerState `json:"state"`

	// Tags holds the resource's tags as a plain key/value map.
	Tags map[string]string `json:"tags,omitempty"`
}

// EvaluationResult is the decision engine's output for one resource.
// It is ephemeral: produced per run, consumed by the reconciler, never
// persisted.
type EvaluationResult struct {
	ResourceID   string       `json:"resource_id"`
	ResourceType ResourceType `json:"resource_type"`
	Region       string       `json:"region"`

	// Current is the state observed at list time.
	Current PowerState `json:"current"`

	// Desired is the state the matching policy calls for. Equal to Current
	// when no policy matched.
	Desired PowerState `json:"desired"`

	// Policy is the name of the matching policy, empty when none matched.
	Policy string `json:"policy,omitempty"`

	EvaluatedAt time.Time `json:"evaluated_at"`
}
