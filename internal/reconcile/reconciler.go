// Package reconcile converts desired-vs-actual state differences into the
// minimal set of transition requests. Failures are isolated per resource:
// one resource's failure never aborts the rest of the batch.
package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/models"
)

// Transitioner issues a single idempotent state-transition request.
// Requesting the state a resource already holds must succeed as a no-op.
type Transitioner interface {
	SetState(ctx context.Context, res models.EvaluationResult) error
}

const (
	defaultWorkers = 8
	defaultTimeout = 2 * time.Minute
)

// Reconciler applies a batch of evaluation results on a bounded worker
// pool. Transitions between different resources are independent and
// idempotent, so no ordering is guaranteed or required.
type Reconciler struct {
	trans   Transitioner
	workers int
	timeout time.Duration
	logger  zerolog.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithWorkers bounds the number of concurrent transitions.
func WithWorkers(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithTimeout sets the per-resource transition timeout. Expiry is recorded
// as that resource's failure; it is never fatal to the batch.
func WithTimeout(d time.Duration) Option {
	return func(r *Reconciler) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// New constructs a Reconciler around the supplied Transitioner.
func New(trans Transitioner, logger zerolog.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		trans:   trans,
		workers: defaultWorkers,
		timeout: defaultTimeout,
		logger:  logger.With().Str("component", "reconciler").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Apply issues exactly one transition request for every result in the
// batch. The caller passes only results where desired != current. Outcomes
// cover every started transition, success or failure; results whose worker
// never started because cancellation was observed are omitted, so callers
// can count them as deferred to the next trigger.
func (r *Reconciler) Apply(ctx context.Context, results []models.EvaluationResult) []models.TransitionOutcome {
	if len(results) == 0 {
		return nil
	}

	var (
		mu       sync.Mutex
		outcomes []models.TransitionOutcome
	)

	// The group context is deliberately not used for the workers: worker
	// errors are captured in outcomes, and in-flight transitions must be
	// allowed to complete even after external cancellation.
	g := new(errgroup.Group)
	g.SetLimit(r.workers)

	for _, res := range results {
		if ctx.Err() != nil {
			// Cancellation observed: start no new transitions.
			break
		}

		g.Go(func() error {
			outcome := r.apply(ctx, res)
			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()
			return nil
		})
	}

	g.Wait()
	return outcomes
}

// apply performs one transition under the per-resource timeout and records
// the outcome.
func (r *Reconciler) apply(ctx context.Context, res models.EvaluationResult) models.TransitionOutcome {
	outcome := models.TransitionOutcome{
		ResourceID:   res.ResourceID,
		ResourceType: res.ResourceType,
		Region:       res.Region,
		From:         res.Current,
		To:           res.Desired,
	}

	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	if err := r.trans.SetState(tctx, res); err != nil {
		outcome.Error = err.Error()
		r.logger.Error().
			Err(err).
			Str("resource_id", res.ResourceID).
			Str("to", string(res.Desired)).
			Msg("transition failed")
		return outcome
	}

	r.logger.Info().
		Str("resource_id", res.ResourceID).
		Str("from", string(res.Current)).
		Str("to", string(res.Desired)).
		Str("policy", res.Policy).
		Msg("transition applied")
	return outcome
}
