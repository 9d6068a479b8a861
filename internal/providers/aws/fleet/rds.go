package fleet

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/models"
)

// collectRDSInstances pages through the region's RDS database instances and
// converts them to internal models. DescribeDBInstances has no server-side
// tag filter, so tag filters are applied client-side for parity with EC2.
// Aurora cluster members cannot be stopped individually and are excluded.
func collectRDSInstances(
	ctx context.Context,
	client fleetRDSClient,
	region string,
	tagFilters map[string]string,
) ([]models.Resource, error) {
	paginator := rds.NewDescribeDBInstancesPaginator(client, &rds.DescribeDBInstancesInput{})

	var resources []models.Resource
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("DescribeDBInstances page: %w", err)
		}
		for _, db := range page.DBInstances {
			if aws.ToString(db.DBClusterIdentifier) != "" {
				continue
			}
			res := toRDSResource(db, region)
			if !matchesTagFilters(res.Tags, tagFilters) {
				continue
			}
			resources = append(resources, res)
		}
	}
	return resources, nil
}

// toRDSResource converts an SDK DB instance to the internal model.
func toRDSResource(db rdstypes.DBInstance, region string) models.Resource {
	return models.Resource{
		ID:     aws.ToString(db.DBInstanceIdentifier),
		Type:   models.ResourceAWSRDS,
		Region: region,
		State:  powerStateFromRDS(aws.ToString(db.DBInstanceStatus)),
		Tags:   tagsFromRDS(db.TagList),
	}
}

// powerStateFromRDS maps the RDS instance status string onto the
// scheduler's power states. RDS has dozens of statuses; anything that is
// neither settled nor a recognised in-between state is UNKNOWN and is never
// transitioned.
func powerStateFromRDS(status string) models.PowerState {
	switch status {
	case "available":
		return models.PowerRunning
	case "stopped":
		return models.PowerStopped
	case "starting", "stopping", "rebooting", "backing-up", "modifying",
		"maintenance", "configuring-enhanced-monitoring", "upgrading":
		return models.PowerTransitioning
	default:
		return models.PowerUnknown
	}
}

// tagsFromRDS converts RDS SDK tags to a plain string map.
func tagsFromRDS(tags []rdstypes.Tag) map[string]string {
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

// matchesTagFilters reports whether tags carry every filter entry.
// An empty filter set matches everything.
func matchesTagFilters(tags, filters map[string]string) bool {
	for k, v := range filters {
		if tags[k] != v {
			return false
		}
	}
	return true
}

// startRDSInstance issues StartDBInstance for one database.
func startRDSInstance(ctx context.Context, client fleetRDSClient, id string) error {
	_, err := client.StartDBInstance(ctx, &rds.StartDBInstanceInput{
		DBInstanceIdentifier: aws.String(id),
	})
	if err != nil {
		return fmt.Errorf("StartDBInstance: %w", err)
	}
	return nil
}

// stopRDSInstance issues StopDBInstance for one database.
func stopRDSInstance(ctx context.Context, client fleetRDSClient, id string) error {
	_, err := client.StopDBInstance(ctx, &rds.StopDBInstanceInput{
		DBInstanceIdentifier: aws.String(id),
	})
	if err != nil {
		return fmt.Errorf("StopDBInstance: %w", err)
	}
	return nil
}
