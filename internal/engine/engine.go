package engine

import (
	"context"

	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/models"
)

// Inventory reads the schedulable fleet from the provider. Implementations
// must read fresh on every call; no caching across runs.
type Inventory interface {
	// ListResources returns every schedulable resource visible to the run.
	// Implementations retry transient provider failures internally with
	// bounded backoff before returning an error.
	ListResources(ctx context.Context) ([]models.Resource, error)
}

// Reconciler applies desired-vs-actual differences from a batch of
// evaluation results and reports per-resource outcomes.
type Reconciler interface {
	Apply(ctx context.Context, results []models.EvaluationResult) []models.TransitionOutcome
}

// RunOptions configures a single scheduler pass.
// It is the sole input to Engine.Run.
type RunOptions struct {
	// DryRun computes and reports transitions without calling the provider.
	DryRun bool
}

// Engine is the central orchestration interface: one Run is one full
// inventory → evaluate → reconcile pass. Engines hold no state between
// invocations and must not call the cloud SDK directly; they delegate to
// the Inventory and Reconciler collaborators.
type Engine interface {
	Run(ctx context.Context, opts RunOptions) (*models.RunSummary, error)
}
