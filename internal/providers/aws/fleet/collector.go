// Package fleet is the AWS inventory adapter and transitioner: it lists
// schedulable EC2 and RDS resources across regions and issues idempotent
// start/stop requests against them.
package fleet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/models"
	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/providers/aws/common"
)

// listAttempts bounds the backoff retry budget for transient listing
// failures: the initial call plus two retries.
const listAttempts = 3

// Collector reads the schedulable fleet fresh on every call and applies
// state transitions. It satisfies the engine's Inventory and the
// reconciler's Transitioner contracts.
type Collector struct {
	profile  *common.ProfileConfig
	provider common.AWSClientProvider
	factory  fleetClientFactory
	regions  []string
	logger   zerolog.Logger

	includeRDS  bool
	instanceIDs []string
	tagFilters  map[string]string

	mu      sync.Mutex
	clients map[string]*fleetClients // keyed by region, built lazily
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithRDS enables RDS database instances as a second schedulable resource
// kind.
func WithRDS() CollectorOption {
	return func(c *Collector) { c.includeRDS = true }
}

// WithInstanceIDs restricts the EC2 inventory to specific instance IDs.
func WithInstanceIDs(ids []string) CollectorOption {
	return func(c *Collector) { c.instanceIDs = ids }
}

// WithTagFilters narrows the inventory to resources carrying every given
// tag. EC2 applies the filter server-side; RDS client-side.
func WithTagFilters(filters map[string]string) CollectorOption {
	return func(c *Collector) { c.tagFilters = filters }
}

// withClientFactory swaps the SDK client factory; tests use this to inject
// mocks.
func withClientFactory(f fleetClientFactory) CollectorOption {
	return func(c *Collector) { c.factory = f }
}

// NewCollector constructs a Collector for the given profile and region set.
func NewCollector(
	profile *common.ProfileConfig,
	provider common.AWSClientProvider,
	regions []string,
	logger zerolog.Logger,
	opts ...CollectorOption,
) *Collector {
	c := &Collector{
		profile:  profile,
		provider: provider,
		factory:  newDefaultFleetClients,
		regions:  regions,
		logger:   logger.With().Str("component", "fleet").Logger(),
		clients:  make(map[string]*fleetClients),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// clientsFor returns the cached regional clients, constructing them on
// first use.
func (c *Collector) clientsFor(region string) *fleetClients {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cl, ok := c.clients[region]; ok {
		return cl
	}
	cl := c.factory(c.provider.ConfigForRegion(c.profile, region))
	c.clients[region] = cl
	return cl
}

// ListResources reads the whole fleet across all configured regions.
// Each region's listing retries transient failures with exponential backoff
// (3 attempts); when the budget is exhausted the run fails whole with an
// *InventoryError, so callers never evaluate a partially delivered fleet.
func (c *Collector) ListResources(ctx context.Context) ([]models.Resource, error) {
	var all []models.Resource
	for _, region := range c.regions {
		resources, err := c.listRegion(ctx, region)
		if err != nil {
			return nil, err
		}
		all = append(all, resources...)
	}
	return all, nil
}

func (c *Collector) listRegion(ctx context.Context, region string) ([]models.Resource, error) {
	clients := c.clientsFor(region)

	ec2Resources, err := c.withRetry(ctx, region, "ec2", func() ([]models.Resource, error) {
		return collectEC2Instances(ctx, clients.EC2, region, c.instanceIDs, c.tagFilters)
	})
	if err != nil {
		return nil, err
	}

	if !c.includeRDS {
		return ec2Resources, nil
	}

	rdsResources, err := c.withRetry(ctx, region, "rds", func() ([]models.Resource, error) {
		return collectRDSInstances(ctx, clients.RDS, region, c.tagFilters)
	})
	if err != nil {
		return nil, err
	}

	return append(ec2Resources, rdsResources...), nil
}

// withRetry runs list under the bounded backoff budget. Partial pages from
// a failed attempt are discarded; every retry lists from scratch.
func (c *Collector) withRetry(
	ctx context.Context,
	region, service string,
	list func() ([]models.Resource, error),
) ([]models.Resource, error) {
	var resources []models.Resource

	op := func() error {
		var err error
		resources, err = list()
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn().
			Err(err).
			Str("region", region).
			Str("service", service).
			Dur("retry_in", wait).
			Msg("inventory listing failed; retrying")
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), listAttempts-1), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, &InventoryError{Region: region, Service: service, Err: err}
	}
	return resources, nil
}

// SetState implements the reconciler's Transitioner. It issues one
// start/stop request for the resource, treating provider "wrong state"
// rejections as no-op successes: between list time and now the resource may
// already have reached the desired state, and repeating an idempotent
// transition must not count as a failure.
func (c *Collector) SetState(ctx context.Context, res models.EvaluationResult) error {
	if res.Desired == res.Current {
		return nil
	}

	clients := c.clientsFor(res.Region)

	var err error
	switch res.ResourceType {
	case models.ResourceAWSEC2:
		err = c.setEC2State(ctx, clients.EC2, res)
	case models.ResourceAWSRDS:
		err = c.setRDSState(ctx, clients.RDS, res)
	default:
		err = fmt.Errorf("unsupported resource type %q", res.ResourceType)
	}

	if err != nil {
		if isAlreadySatisfied(err) {
			c.logger.Debug().
				Str("resource_id", res.ResourceID).
				Str("desired", string(res.Desired)).
				Msg("provider reports target state already holds")
			return nil
		}
		return &TransitionError{ResourceID: res.ResourceID, Err: err}
	}
	return nil
}

func (c *Collector) setEC2State(ctx context.Context, client fleetEC2Client, res models.EvaluationResult) error {
	switch res.Desired {
	case models.PowerRunning:
		return startEC2Instance(ctx, client, res.ResourceID)
	case models.PowerStopped:
		return stopEC2Instance(ctx, client, res.ResourceID)
	default:
		return fmt.Errorf("cannot transition to state %q", res.Desired)
	}
}

func (c *Collector) setRDSState(ctx context.Context, client fleetRDSClient, res models.EvaluationResult) error {
	switch res.Desired {
	case models.PowerRunning:
		return startRDSInstance(ctx, client, res.ResourceID)
	case models.PowerStopped:
		return stopRDSInstance(ctx, client, res.ResourceID)
	default:
		return fmt.Errorf("cannot transition to state %q", res.Desired)
	}
}

// isAlreadySatisfied recognises the provider error codes returned when a
// start/stop request targets a resource that is already in (or moving to)
// the requested state. EC2 start/stop are natively idempotent; RDS rejects
// with InvalidDBInstanceState instead.
func isAlreadySatisfied(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "InvalidDBInstanceState", "InvalidDBInstanceStateFault", "IncorrectInstanceState":
		return true
	default:
		return false
	}
}
