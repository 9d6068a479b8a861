package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/models"
	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/policy"
)

// DefaultEngine is the production implementation of Engine. It coordinates
// inventory, decision, and reconciliation for one pass and assembles the
// run summary. Policies are compiled before construction and treated as an
// immutable snapshot for the whole run.
type DefaultEngine struct {
	inventory  Inventory
	reconciler Reconciler
	policies   []policy.Policy
	logger     zerolog.Logger

	// now is the clock; replaced in tests.
	now func() time.Time
}

// NewDefaultEngine constructs a DefaultEngine wired to the supplied
// inventory, reconciler, and compiled policy set.
func NewDefaultEngine(inv Inventory, rec Reconciler, policies []policy.Policy, logger zerolog.Logger) *DefaultEngine {
	return &DefaultEngine{
		inventory:  inv,
		reconciler: rec,
		policies:   policies,
		logger:     logger.With().Str("component", "engine").Logger(),
		now:        time.Now,
	}
}

// Run implements Engine. A fatal error (inventory unreachable after
// retries) returns a nil summary; per-resource transition failures do not:
// they are recorded in the summary and the run is still considered
// processed.
func (e *DefaultEngine) Run(ctx context.Context, opts RunOptions) (*models.RunSummary, error) {
	started := e.now()

	resources, err := e.inventory.ListResources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	e.logger.Info().Int("resources", len(resources)).Msg("inventory collected")

	results := DecideAll(resources, e.policies, e.now(), e.logger)

	batch, skipped := partition(results)
	for _, r := range batch {
		e.logger.Debug().
			Str("resource_id", r.ResourceID).
			Str("policy", r.Policy).
			Str("from", string(r.Current)).
			Str("to", string(r.Desired)).
			Msg("transition planned")
	}

	var outcomes []models.TransitionOutcome
	if opts.DryRun {
		outcomes = planOnly(batch)
	} else {
		outcomes = e.reconciler.Apply(ctx, batch)
	}

	// Transitions the reconciler never started (cancellation observed) are
	// counted as skipped, not failed; the next trigger picks them up.
	skipped += len(batch) - len(outcomes)

	summary := buildSummary(started, e.now(), len(results), skipped, outcomes, opts.DryRun)

	e.logger.Info().
		Int("evaluated", summary.ResourcesEvaluated).
		Int("attempted", summary.TransitionsAttempted).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Bool("dry_run", summary.DryRun).
		Msg("run complete")

	return summary, nil
}

// partition splits evaluation results into the actionable transition batch
// and a count of skipped resources. A resource is actionable when its
// desired state differs from current and the current state is settled;
// transitioning or unknown resources wait for the next trigger.
func partition(results []models.EvaluationResult) (batch []models.EvaluationResult, skipped int) {
	for _, r := range results {
		if r.Desired == r.Current {
			continue
		}
		switch r.Current {
		case models.PowerRunning, models.PowerStopped:
			batch = append(batch, r)
		default:
			skipped++
		}
	}
	return batch, skipped
}

// planOnly synthesizes successful outcomes for a dry run without touching
// the provider.
func planOnly(batch []models.EvaluationResult) []models.TransitionOutcome {
	outcomes := make([]models.TransitionOutcome, 0, len(batch))
	for _, r := range batch {
		outcomes = append(outcomes, models.TransitionOutcome{
			ResourceID:   r.ResourceID,
			ResourceType: r.ResourceType,
			Region:       r.Region,
			From:         r.Current,
			To:           r.Desired,
		})
	}
	return outcomes
}

func buildSummary(started, finished time.Time, evaluated, skipped int, outcomes []models.TransitionOutcome, dryRun bool) *models.RunSummary {
	s := &models.RunSummary{
		StartedAt:            started,
		FinishedAt:           finished,
		ResourcesEvaluated:   evaluated,
		TransitionsAttempted: len(outcomes),
		Skipped:              skipped,
		DryRun:               dryRun,
		Outcomes:             outcomes,
	}
	for _, o := range outcomes {
		if o.OK() {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}
