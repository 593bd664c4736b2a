package aws

import (
	"context"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgtypes "github.com/skarthickct/cloud-formation/pkg/types"
)

func managedVpcFake() *fakeEC2 {
	fake := newFakeEC2()
	fake.vpcs = []ec2types.Vpc{
		{
			VpcId: awssdk.String("vpc-0001"),
			Tags: []ec2types.Tag{
				{Key: awssdk.String(pkgtypes.TagEnvironment), Value: awssdk.String("Production")},
			},
		},
	}
	fake.natGateways = []ec2types.NatGateway{
		{NatGatewayId: awssdk.String("nat-0001"), State: ec2types.NatGatewayStateAvailable},
		{NatGatewayId: awssdk.String("nat-gone"), State: ec2types.NatGatewayStateDeleted},
	}
	fake.addresses = []ec2types.Address{
		{AllocationId: awssdk.String("eipalloc-0001"), PublicIp: awssdk.String("203.0.113.10")},
		{
			AllocationId:       awssdk.String("eipalloc-used"),
			PublicIp:           awssdk.String("203.0.113.20"),
			NetworkInterfaceId: awssdk.String("eni-0001"),
		},
	}
	fake.subnets = []ec2types.Subnet{
		{SubnetId: awssdk.String("subnet-0001")},
		{SubnetId: awssdk.String("subnet-0002")},
	}
	fake.routeTables = []ec2types.RouteTable{
		{
			RouteTableId: awssdk.String("rtb-main"),
			Associations: []ec2types.RouteTableAssociation{{Main: awssdk.Bool(true)}},
		},
		{RouteTableId: awssdk.String("rtb-0001")},
		{RouteTableId: awssdk.String("rtb-0002")},
	}
	fake.internetGWs = []ec2types.InternetGateway{
		{InternetGatewayId: awssdk.String("igw-0001")},
	}
	return fake
}

func TestDestroyOrder(t *testing.T) {
	fake := managedVpcFake()
	td := NewTeardown(fake)

	env, err := td.Destroy(context.Background(), "vpc-0001")
	require.NoError(t, err)
	assert.Equal(t, "Production", env)

	// NAT gateways go first, the VPC itself last.
	want := []string{
		"DescribeVpcs",
		"DescribeNatGateways",
		"DeleteNatGateway",
		"DescribeNatGateways", // deletion waiter
		"DescribeAddresses",
		"ReleaseAddress",
		"DescribeSubnets",
		"DeleteSubnet", "DeleteSubnet",
		"DescribeRouteTables",
		"DeleteRouteTable", "DeleteRouteTable",
		"DescribeInternetGateways",
		"DetachInternetGateway", "DeleteInternetGateway",
		"DeleteVpc",
	}
	assert.Equal(t, want, fake.calls)
}

func TestDestroySkipsDeletedNatAndAttachedEIPs(t *testing.T) {
	fake := managedVpcFake()
	td := NewTeardown(fake)

	_, err := td.Destroy(context.Background(), "vpc-0001")
	require.NoError(t, err)

	// Only the live NAT gateway is deleted, and only the unattached
	// Elastic IP is released.
	assert.Equal(t, []string{"nat-0001"}, fake.deletedNatIDs)
	assert.Equal(t, []string{"eipalloc-0001"}, fake.releasedAllocs)
}

func TestDestroyUnknownVPC(t *testing.T) {
	fake := newFakeEC2() // no VPCs
	td := NewTeardown(fake)

	_, err := td.Destroy(context.Background(), "vpc-missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.Equal(t, []string{"DescribeVpcs"}, fake.calls)
}

func TestDestroyWithoutNatGateways(t *testing.T) {
	fake := managedVpcFake()
	fake.natGateways = nil
	td := NewTeardown(fake)

	_, err := td.Destroy(context.Background(), "vpc-0001")
	require.NoError(t, err)

	assert.NotContains(t, fake.calls, "DeleteNatGateway")
	// No deletion waiter poll either: only the initial listing call.
	polls := 0
	for _, call := range fake.calls {
		if call == "DescribeNatGateways" {
			polls++
		}
	}
	assert.Equal(t, 1, polls)
}
