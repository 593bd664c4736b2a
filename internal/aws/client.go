package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Client wraps the AWS SDK service clients this tool talks to. CFN and
// SSM are held behind narrow interfaces so the stack and parameter
// operations are testable, same as the EC2 surface.
type Client struct {
	EC2 *ec2.Client
	CFN CFNAPI
	SSM SSMAPI
	STS *sts.Client

	ctx     context.Context
	profile string
	region  string
}

// ClientOption allows customizing the AWS Client
type ClientOption func(*Client)

// WithProfile sets the AWS profile for the client
func WithProfile(profile string) ClientOption {
	return func(c *Client) {
		c.profile = profile
	}
}

// WithRegion sets the AWS region for the client
func WithRegion(region string) ClientOption {
	return func(c *Client) {
		c.region = region
	}
}

// NewClient creates a new AWS Client with the given options
func NewClient(ctx context.Context, opts ...ClientOption) (*Client, error) {
	c := &Client{
		ctx: ctx,
	}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	// Build config options
	var configOpts []func(*config.LoadOptions) error

	if c.profile != "" {
		configOpts = append(configOpts, config.WithSharedConfigProfile(c.profile))
	}

	if c.region != "" {
		configOpts = append(configOpts, config.WithRegion(c.region))
	}

	// Load AWS config
	cfg, err := config.LoadDefaultConfig(c.ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	c.EC2 = ec2.NewFromConfig(cfg)
	c.CFN = cloudformation.NewFromConfig(cfg)
	c.SSM = ssm.NewFromConfig(cfg)
	c.STS = sts.NewFromConfig(cfg)
	c.region = cfg.Region

	return c, nil
}

// Context returns the client's context
func (c *Client) Context() context.Context {
	return c.ctx
}

// Region returns the region the client resolved to
func (c *Client) Region() string {
	return c.region
}
