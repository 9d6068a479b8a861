package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/models"
)

type fakeInventory struct {
	resources []models.Resource
	err       error
	calls     int
}

func (f *fakeInventory) ListResources(ctx context.Context) ([]models.Resource, error) {
	f.calls++
	return f.resources, f.err
}

type fakeReconciler struct {
	batches [][]models.EvaluationResult
}

func (f *fakeReconciler) Apply(ctx context.Context, results []models.EvaluationResult) []models.TransitionOutcome {
	f.batches = append(f.batches, results)
	outcomes := make([]models.TransitionOutcome, 0, len(results))
	for _, r := range results {
		outcomes = append(outcomes, models.TransitionOutcome{
			ResourceID: r.ResourceID,
			From:       r.Current,
			To:         r.Desired,
		})
	}
	return outcomes
}

func newTestEngine(t *testing.T, inv *fakeInventory, rec *fakeReconciler) *DefaultEngine {
	t.Helper()
	eng := NewDefaultEngine(inv, rec, businessHours(t), zerolog.Nop())
	eng.now = func() time.Time { return tuesday9am }
	return eng
}

func TestRun_TransitionsOnlyWhatDiffers(t *testing.T) {
	inv := &fakeInventory{resources: []models.Resource{
		devInstance(models.PowerStopped), // wants RUNNING -> transition
		{
			ID: "i-already-running", Type: models.ResourceAWSEC2,
			State: models.PowerRunning, Tags: map[string]string{"Environment": "dev"},
		}, // already desired -> no-op
	}}
	rec := &fakeReconciler{}

	summary, err := newTestEngine(t, inv, rec).Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.ResourcesEvaluated != 2 {
		t.Fatalf("expected 2 evaluated, got %d", summary.ResourcesEvaluated)
	}
	if summary.TransitionsAttempted != 1 || summary.Succeeded != 1 {
		t.Fatalf("expected exactly 1 successful transition, got %+v", summary)
	}
	if len(rec.batches) != 1 || len(rec.batches[0]) != 1 {
		t.Fatalf("reconciler should receive a single-item batch, got %+v", rec.batches)
	}
	if rec.batches[0][0].ResourceID != "i-0123456789abcdef0" {
		t.Fatalf("wrong resource in batch: %q", rec.batches[0][0].ResourceID)
	}
}

func TestRun_AllSatisfiedIssuesZeroTransitions(t *testing.T) {
	inv := &fakeInventory{resources: []models.Resource{
		devInstance(models.PowerRunning), // Tuesday 09:00: desired RUNNING already
	}}
	rec := &fakeReconciler{}

	summary, err := newTestEngine(t, inv, rec).Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.TransitionsAttempted != 0 {
		t.Fatalf("no-op stability broken: %d transitions attempted", summary.TransitionsAttempted)
	}
	if len(rec.batches[0]) != 0 {
		t.Fatalf("reconciler batch should be empty, got %v", rec.batches[0])
	}
}

func TestRun_SkipsTransitioningResources(t *testing.T) {
	res := devInstance(models.PowerTransitioning)
	inv := &fakeInventory{resources: []models.Resource{res}}
	rec := &fakeReconciler{}

	summary, err := newTestEngine(t, inv, rec).Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 1 || summary.TransitionsAttempted != 0 {
		t.Fatalf("transitioning resource must be skipped, got %+v", summary)
	}
}

func TestRun_DryRunBypassesReconciler(t *testing.T) {
	inv := &fakeInventory{resources: []models.Resource{devInstance(models.PowerStopped)}}
	rec := &fakeReconciler{}

	summary, err := newTestEngine(t, inv, rec).Run(context.Background(), RunOptions{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.batches) != 0 {
		t.Fatal("dry run must not invoke the reconciler")
	}
	if !summary.DryRun || summary.TransitionsAttempted != 1 || summary.Succeeded != 1 {
		t.Fatalf("dry run should report the planned transition, got %+v", summary)
	}
}

func TestRun_InventoryFailureIsFatal(t *testing.T) {
	inv := &fakeInventory{err: errors.New("throttled")}
	rec := &fakeReconciler{}

	summary, err := newTestEngine(t, inv, rec).Run(context.Background(), RunOptions{})
	if err == nil {
		t.Fatal("expected error when inventory is unreachable")
	}
	if summary != nil {
		t.Fatal("fatal run must not produce a partial summary")
	}
}

func TestRun_NoMatchingPolicyNeverChangesState(t *testing.T) {
	prod := models.Resource{
		ID: "i-prod", Type: models.ResourceAWSEC2,
		State: models.PowerRunning, Tags: map[string]string{"Environment": "prod"},
	}
	inv := &fakeInventory{resources: []models.Resource{prod}}
	rec := &fakeReconciler{}
	eng := newTestEngine(t, inv, rec)

	for range 3 {
		summary, err := eng.Run(context.Background(), RunOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if summary.TransitionsAttempted != 0 {
			t.Fatalf("unmatched resource must never transition, got %+v", summary)
		}
	}
}
