// Package aws implements the provision.Client interface against AWS:
// CloudFormation for stacks, RDS for data-store snapshots, and STS for
// account identity resolution.
package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/stacklift/stacklift/internal/provision"
)

// cfnAPI is the subset of the CloudFormation client used here.
type cfnAPI interface {
	DescribeStacks(ctx context.Context, in *cloudformation.DescribeStacksInput, opts ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
	CreateStack(ctx context.Context, in *cloudformation.CreateStackInput, opts ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error)
	UpdateStack(ctx context.Context, in *cloudformation.UpdateStackInput, opts ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error)
	DeleteStack(ctx context.Context, in *cloudformation.DeleteStackInput, opts ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error)
	CancelUpdateStack(ctx context.Context, in *cloudformation.CancelUpdateStackInput, opts ...func(*cloudformation.Options)) (*cloudformation.CancelUpdateStackOutput, error)
	ContinueUpdateRollback(ctx context.Context, in *cloudformation.ContinueUpdateRollbackInput, opts ...func(*cloudformation.Options)) (*cloudformation.ContinueUpdateRollbackOutput, error)
}

// rdsAPI is the subset of the RDS client used here.
type rdsAPI interface {
	CreateDBSnapshot(ctx context.Context, in *rds.CreateDBSnapshotInput, opts ...func(*rds.Options)) (*rds.CreateDBSnapshotOutput, error)
	DescribeDBSnapshots(ctx context.Context, in *rds.DescribeDBSnapshotsInput, opts ...func(*rds.Options)) (*rds.DescribeDBSnapshotsOutput, error)
	RestoreDBInstanceFromDBSnapshot(ctx context.Context, in *rds.RestoreDBInstanceFromDBSnapshotInput, opts ...func(*rds.Options)) (*rds.RestoreDBInstanceFromDBSnapshotOutput, error)
	DeleteDBInstance(ctx context.Context, in *rds.DeleteDBInstanceInput, opts ...func(*rds.Options)) (*rds.DeleteDBInstanceOutput, error)
	DescribeDBInstances(ctx context.Context, in *rds.DescribeDBInstancesInput, opts ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
}

// stsAPI is the subset of the STS client used here.
type stsAPI interface {
	GetCallerIdentity(ctx context.Context, in *sts.GetCallerIdentityInput, opts ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Client implements provision.Client against CloudFormation, RDS, and STS.
type Client struct {
	cfn    cfnAPI
	rds    rdsAPI
	sts    stsAPI
	region string
}

var _ provision.Client = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithCloudFormationAPI sets a custom CloudFormation client (useful for testing).
func WithCloudFormationAPI(api cfnAPI) ClientOption {
	return func(c *Client) { c.cfn = api }
}

// WithRDSAPI sets a custom RDS client (useful for testing).
func WithRDSAPI(api rdsAPI) ClientOption {
	return func(c *Client) { c.rds = api }
}

// WithSTSAPI sets a custom STS client (useful for testing).
func WithSTSAPI(api stsAPI) ClientOption {
	return func(c *Client) { c.sts = api }
}

// NewClient creates a provisioning client for the given region using the
// default AWS credential chain.
func NewClient(ctx context.Context, region string, opts ...ClientOption) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	c := &Client{
		cfn:    cloudformation.NewFromConfig(awsCfg),
		rds:    rds.NewFromConfig(awsCfg),
		sts:    sts.NewFromConfig(awsCfg),
		region: region,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AccountIdentity resolves the AWS account ID of the active credentials.
func (c *Client) AccountIdentity(ctx context.Context) (string, error) {
	out, err := c.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("failed to resolve caller identity: %w", err)
	}
	return awssdk.ToString(out.Account), nil
}
