package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/models"
	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/policy"
)

// Decide computes the desired state for one resource. It is a pure function
// of (resource tags, policy set, now): policies are consulted in their
// compiled priority order and the first selector match wins. A resource with
// no matching policy keeps its current state and is never transitioned.
func Decide(res models.Resource, policies []policy.Policy, now time.Time) (models.EvaluationResult, error) {
	if res.ID == "" {
		return models.EvaluationResult{}, fmt.Errorf("resource has empty ID")
	}
	if now.IsZero() {
		return models.EvaluationResult{}, fmt.Errorf("zero evaluation time")
	}

	result := models.EvaluationResult{
		ResourceID:   res.ID,
		ResourceType: res.Type,
		Region:       res.Region,
		Current:      res.State,
		Desired:      res.State,
		EvaluatedAt:  now,
	}

	for _, p := range policies {
		if !p.Matches(res.Tags) {
			continue
		}
		result.Desired = p.Evaluate(now)
		result.Policy = p.Name
		break
	}

	return result, nil
}

// DecideAll evaluates the whole fleet against the policy snapshot. A
// per-resource evaluation failure is logged with the resource identity and
// the resource is excluded from the returned batch; it never aborts the
// other decisions.
func DecideAll(resources []models.Resource, policies []policy.Policy, now time.Time, logger zerolog.Logger) []models.EvaluationResult {
	results := make([]models.EvaluationResult, 0, len(resources))
	for _, res := range resources {
		r, err := Decide(res, policies, now)
		if err != nil {
			logger.Error().
				Err(err).
				Str("resource_id", res.ID).
				Str("resource_type", string(res.Type)).
				Msg("evaluation failed; resource excluded from batch")
			continue
		}
		results = append(results, r)
	}
	return results
}
