package fleet

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/models"
)

// collectEC2Instances pages through the region's schedulable EC2 instances
// and converts them to internal models. Terminated and terminating
// instances are excluded by the server-side state filter; optional instance
// IDs and tag filters narrow the query further.
func collectEC2Instances(
	ctx context.Context,
	client fleetEC2Client,
	region string,
	instanceIDs []string,
	tagFilters map[string]string,
) ([]models.Resource, error) {
	filters := []ec2types.Filter{
		{
			Name:   aws.String("instance-state-name"),
			Values: []string{"running", "stopped", "pending", "stopping"},
		},
	}
	for key, value := range tagFilters {
		filters = append(filters, ec2types.Filter{
			Name:   aws.String("tag:" + key),
			Values: []string{value},
		})
	}

	input := &ec2svc.DescribeInstancesInput{Filters: filters}
	if len(instanceIDs) > 0 {
		input.InstanceIds = instanceIDs
	}

	paginator := ec2svc.NewDescribeInstancesPaginator(client, input)

	var resources []models.Resource
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("DescribeInstances page: %w", err)
		}
		for _, reservation := range page.Reservations {
			for _, inst := range reservation.Instances {
				resources = append(resources, toEC2Resource(inst, region))
			}
		}
	}
	return resources, nil
}

// toEC2Resource converts an SDK EC2 instance to the internal model.
func toEC2Resource(inst ec2types.Instance, region string) models.Resource {
	var state ec2types.InstanceStateName
	if inst.State != nil {
		state = inst.State.Name
	}

	return models.Resource{
		ID:     aws.ToString(inst.InstanceId),
		Type:   models.ResourceAWSEC2,
		Region: region,
		State:  powerStateFromEC2(state),
		Tags:   tagsFromEC2(inst.Tags),
	}
}

// powerStateFromEC2 maps the EC2 instance lifecycle state onto the
// scheduler's power states. shutting-down and terminated never appear here
// because the describe filter excludes them.
func powerStateFromEC2(state ec2types.InstanceStateName) models.PowerState {
	switch state {
	case ec2types.InstanceStateNameRunning:
		return models.PowerRunning
	case ec2types.InstanceStateNameStopped:
		return models.PowerStopped
	case ec2types.InstanceStateNamePending, ec2types.InstanceStateNameStopping:
		return models.PowerTransitioning
	default:
		return models.PowerUnknown
	}
}

// tagsFromEC2 converts EC2 SDK tags to a plain string map.
func tagsFromEC2(tags []ec2types.Tag) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		if t.Key != nil && t.Value != nil {
			m[*t.Key] = *t.Value
		}
	}
	return m
}

// startEC2Instance issues StartInstances for one instance. The EC2 API is
// idempotent here: starting a running instance succeeds without effect.
func startEC2Instance(ctx context.Context, client fleetEC2Client, instanceID string) error {
	_, err := client.StartInstances(ctx, &ec2svc.StartInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return fmt.Errorf("StartInstances: %w", err)
	}
	return nil
}

// stopEC2Instance issues StopInstances for one instance. Stopping a stopped
// instance succeeds without effect.
func stopEC2Instance(ctx context.Context, client fleetEC2Client, instanceID string) error {
	_, err := client.StopInstances(ctx, &ec2svc.StopInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return fmt.Errorf("StopInstances: %w", err)
	}
	return nil
}
