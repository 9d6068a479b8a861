// Package metrics publishes run-summary counters to CloudWatch so external
// alerting can watch scheduler health without parsing logs.
package metrics

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/models"
)

// cwClient covers the single CloudWatch operation this package uses.
// The real *cloudwatch.Client satisfies it; tests use a stub.
type cwClient interface {
	PutMetricData(
		ctx context.Context,
		params *cloudwatch.PutMetricDataInput,
		optFns ...func(*cloudwatch.Options),
	) (*cloudwatch.PutMetricDataOutput, error)
}

// Publisher emits one datum per run-summary counter under a configurable
// namespace. Publishing is best-effort: a failed put is the caller's to log,
// never to fail the run over.
type Publisher struct {
	client    cwClient
	namespace string
}

// NewPublisher constructs a Publisher from a region-scoped aws.Config.
func NewPublisher(cfg aws.Config, namespace string) *Publisher {
	return &Publisher{
		client:    cloudwatch.NewFromConfig(cfg),
		namespace: namespace,
	}
}

// newPublisherWithClient is the test constructor.
func newPublisherWithClient(client cwClient, namespace string) *Publisher {
	return &Publisher{client: client, namespace: namespace}
}

// Publish sends the summary counters as CloudWatch metric data.
func (p *Publisher) Publish(ctx context.Context, summary *models.RunSummary) error {
	data := []cwtypes.MetricDatum{
		datum("ResourcesEvaluated", summary.ResourcesEvaluated),
		datum("TransitionsAttempted", summary.TransitionsAttempted),
		datum("TransitionsSucceeded", summary.Succeeded),
		datum("TransitionsFailed", summary.Failed),
		datum("ResourcesSkipped", summary.Skipped),
	}

	_, err := p.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(p.namespace),
		MetricData: data,
	})
	if err != nil {
		return fmt.Errorf("PutMetricData: %w", err)
	}
	return nil
}

func datum(name string, value int) cwtypes.MetricDatum {
	return cwtypes.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(float64(value)),
		Unit:       cwtypes.StandardUnitCount,
	}
}
