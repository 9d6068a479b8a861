package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/models"
)

type mockCW struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (m *mockCW) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestPublish_OneDatumPerCounter(t *testing.T) {
	cw := &mockCW{}
	p := newPublisherWithClient(cw, "InstanceScheduler")

	summary := &models.RunSummary{
		ResourcesEvaluated:   10,
		TransitionsAttempted: 4,
		Succeeded:            3,
		Failed:               1,
		Skipped:              2,
	}

	if err := p.Publish(context.Background(), summary); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cw.inputs) != 1 {
		t.Fatalf("expected a single PutMetricData call, got %d", len(cw.inputs))
	}
	input := cw.inputs[0]
	if aws.ToString(input.Namespace) != "InstanceScheduler" {
		t.Fatalf("wrong namespace %q", aws.ToString(input.Namespace))
	}
	if len(input.MetricData) != 5 {
		t.Fatalf("expected 5 data points, got %d", len(input.MetricData))
	}

	values := make(map[string]float64, len(input.MetricData))
	for _, d := range input.MetricData {
		values[aws.ToString(d.MetricName)] = aws.ToFloat64(d.Value)
	}
	if values["ResourcesEvaluated"] != 10 || values["TransitionsFailed"] != 1 {
		t.Fatalf("counter values wrong: %v", values)
	}
}

func TestPublish_SurfacesClientError(t *testing.T) {
	cw := &mockCW{err: errors.New("throttled")}
	p := newPublisherWithClient(cw, "InstanceScheduler")

	if err := p.Publish(context.Background(), &models.RunSummary{}); err == nil {
		t.Fatal("expected error from failed put")
	}
}
