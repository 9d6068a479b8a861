package fleet

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/rds"
)

// Narrow client interfaces: each lists only the SDK operations this package
// uses. The real *ec2.Client and *rds.Client satisfy them automatically;
// tests replace any field in fleetClients with a stub struct.

// fleetEC2Client covers the EC2 operations required for inventory and
// transitions. A single *ec2.Client satisfies all three; DescribeInstances
// also satisfies ec2.DescribeInstancesAPIClient, enabling the SDK v2
// paginator.
type fleetEC2Client interface {
	DescribeInstances(
		ctx context.Context,
		params *ec2svc.DescribeInstancesInput,
		optFns ...func(*ec2svc.Options),
	) (*ec2svc.DescribeInstancesOutput, error)

	StartInstances(
		ctx context.Context,
		params *ec2svc.StartInstancesInput,
		optFns ...func(*ec2svc.Options),
	) (*ec2svc.StartInstancesOutput, error)

	StopInstances(
		ctx context.Context,
		params *ec2svc.StopInstancesInput,
		optFns ...func(*ec2svc.Options),
	) (*ec2svc.StopInstancesOutput, error)
}

// fleetRDSClient covers the RDS operations required for inventory and
// transitions. DescribeDBInstances satisfies the SDK v2 paginator contract.
type fleetRDSClient interface {
	DescribeDBInstances(
		ctx context.Context,
		params *rds.DescribeDBInstancesInput,
		optFns ...func(*rds.Options),
	) (*rds.DescribeDBInstancesOutput, error)

	StartDBInstance(
		ctx context.Context,
		params *rds.StartDBInstanceInput,
		optFns ...func(*rds.Options),
	) (*rds.StartDBInstanceOutput, error)

	StopDBInstance(
		ctx context.Context,
		params *rds.StopDBInstanceInput,
		optFns ...func(*rds.Options),
	) (*rds.StopDBInstanceOutput, error)
}

// fleetClients holds the regional service clients for one region's
// inventory and transitions. All fields are interfaces so tests can swap
// any of them for a mock.
type fleetClients struct {
	EC2 fleetEC2Client
	RDS fleetRDSClient
}

// fleetClientFactory creates a fleetClients from a region-scoped aws.Config.
type fleetClientFactory func(cfg aws.Config) *fleetClients

// newDefaultFleetClients is the production fleetClientFactory.
func newDefaultFleetClients(cfg aws.Config) *fleetClients {
	return &fleetClients{
		EC2: ec2svc.NewFromConfig(cfg),
		RDS: rds.NewFromConfig(cfg),
	}
}
