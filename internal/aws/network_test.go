package aws

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skarthickct/cloud-formation/internal/netplan"
	pkgtypes "github.com/skarthickct/cloud-formation/pkg/types"
)

// fakeEC2 records every control-plane call and hands out synthetic
// identifiers, so tests can assert the exact provisioning sequence
// without touching AWS.
type fakeEC2 struct {
	calls []string

	azCount int
	failOn  string // method name that should return an error
	subnetN int
	rtN     int

	// captured inputs
	createdVpc     *ec2.CreateVpcInput
	createdSubnets []*ec2.CreateSubnetInput
	natInput       *ec2.CreateNatGatewayInput
	routes         []*ec2.CreateRouteInput
	associations   []*ec2.AssociateRouteTableInput

	// canned teardown state
	natGateways    []ec2types.NatGateway
	addresses      []ec2types.Address
	subnets        []ec2types.Subnet
	routeTables    []ec2types.RouteTable
	internetGWs    []ec2types.InternetGateway
	vpcs           []ec2types.Vpc
	deletedNatIDs  []string
	releasedAllocs []string
}

func newFakeEC2() *fakeEC2 {
	return &fakeEC2{azCount: 3}
}

func (f *fakeEC2) record(name string) error {
	f.calls = append(f.calls, name)
	if f.failOn == name {
		return fmt.Errorf("%s: simulated failure", name)
	}
	return nil
}

func (f *fakeEC2) CreateVpc(ctx context.Context, params *ec2.CreateVpcInput, optFns ...func(*ec2.Options)) (*ec2.CreateVpcOutput, error) {
	if err := f.record("CreateVpc"); err != nil {
		return nil, err
	}
	f.createdVpc = params
	return &ec2.CreateVpcOutput{Vpc: &ec2types.Vpc{VpcId: awssdk.String("vpc-0001")}}, nil
}

func (f *fakeEC2) ModifyVpcAttribute(ctx context.Context, params *ec2.ModifyVpcAttributeInput, optFns ...func(*ec2.Options)) (*ec2.ModifyVpcAttributeOutput, error) {
	if err := f.record("ModifyVpcAttribute"); err != nil {
		return nil, err
	}
	return &ec2.ModifyVpcAttributeOutput{}, nil
}

func (f *fakeEC2) DeleteVpc(ctx context.Context, params *ec2.DeleteVpcInput, optFns ...func(*ec2.Options)) (*ec2.DeleteVpcOutput, error) {
	if err := f.record("DeleteVpc"); err != nil {
		return nil, err
	}
	return &ec2.DeleteVpcOutput{}, nil
}

func (f *fakeEC2) DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
	if err := f.record("DescribeVpcs"); err != nil {
		return nil, err
	}
	return &ec2.DescribeVpcsOutput{Vpcs: f.vpcs}, nil
}

func (f *fakeEC2) DescribeAvailabilityZones(ctx context.Context, params *ec2.DescribeAvailabilityZonesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeAvailabilityZonesOutput, error) {
	if err := f.record("DescribeAvailabilityZones"); err != nil {
		return nil, err
	}
	out := &ec2.DescribeAvailabilityZonesOutput{}
	for i := 0; i < f.azCount; i++ {
		out.AvailabilityZones = append(out.AvailabilityZones, ec2types.AvailabilityZone{
			ZoneName: awssdk.String(fmt.Sprintf("ap-south-1%c", 'a'+i)),
		})
	}
	return out, nil
}

func (f *fakeEC2) CreateInternetGateway(ctx context.Context, params *ec2.CreateInternetGatewayInput, optFns ...func(*ec2.Options)) (*ec2.CreateInternetGatewayOutput, error) {
	if err := f.record("CreateInternetGateway"); err != nil {
		return nil, err
	}
	return &ec2.CreateInternetGatewayOutput{
		InternetGateway: &ec2types.InternetGateway{InternetGatewayId: awssdk.String("igw-0001")},
	}, nil
}

func (f *fakeEC2) AttachInternetGateway(ctx context.Context, params *ec2.AttachInternetGatewayInput, optFns ...func(*ec2.Options)) (*ec2.AttachInternetGatewayOutput, error) {
	if err := f.record("AttachInternetGateway"); err != nil {
		return nil, err
	}
	return &ec2.AttachInternetGatewayOutput{}, nil
}

func (f *fakeEC2) DetachInternetGateway(ctx context.Context, params *ec2.DetachInternetGatewayInput, optFns ...func(*ec2.Options)) (*ec2.DetachInternetGatewayOutput, error) {
	if err := f.record("DetachInternetGateway"); err != nil {
		return nil, err
	}
	return &ec2.DetachInternetGatewayOutput{}, nil
}

func (f *fakeEC2) DeleteInternetGateway(ctx context.Context, params *ec2.DeleteInternetGatewayInput, optFns ...func(*ec2.Options)) (*ec2.DeleteInternetGatewayOutput, error) {
	if err := f.record("DeleteInternetGateway"); err != nil {
		return nil, err
	}
	return &ec2.DeleteInternetGatewayOutput{}, nil
}

func (f *fakeEC2) DescribeInternetGateways(ctx context.Context, params *ec2.DescribeInternetGatewaysInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInternetGatewaysOutput, error) {
	if err := f.record("DescribeInternetGateways"); err != nil {
		return nil, err
	}
	return &ec2.DescribeInternetGatewaysOutput{InternetGateways: f.internetGWs}, nil
}

func (f *fakeEC2) CreateSubnet(ctx context.Context, params *ec2.CreateSubnetInput, optFns ...func(*ec2.Options)) (*ec2.CreateSubnetOutput, error) {
	if err := f.record("CreateSubnet"); err != nil {
		return nil, err
	}
	f.createdSubnets = append(f.createdSubnets, params)
	f.subnetN++
	return &ec2.CreateSubnetOutput{
		Subnet: &ec2types.Subnet{SubnetId: awssdk.String(fmt.Sprintf("subnet-%04d", f.subnetN))},
	}, nil
}

func (f *fakeEC2) ModifySubnetAttribute(ctx context.Context, params *ec2.ModifySubnetAttributeInput, optFns ...func(*ec2.Options)) (*ec2.ModifySubnetAttributeOutput, error) {
	if err := f.record("ModifySubnetAttribute"); err != nil {
		return nil, err
	}
	return &ec2.ModifySubnetAttributeOutput{}, nil
}

func (f *fakeEC2) DeleteSubnet(ctx context.Context, params *ec2.DeleteSubnetInput, optFns ...func(*ec2.Options)) (*ec2.DeleteSubnetOutput, error) {
	if err := f.record("DeleteSubnet"); err != nil {
		return nil, err
	}
	return &ec2.DeleteSubnetOutput{}, nil
}

func (f *fakeEC2) DescribeSubnets(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error) {
	if err := f.record("DescribeSubnets"); err != nil {
		return nil, err
	}
	return &ec2.DescribeSubnetsOutput{Subnets: f.subnets}, nil
}

func (f *fakeEC2) AllocateAddress(ctx context.Context, params *ec2.AllocateAddressInput, optFns ...func(*ec2.Options)) (*ec2.AllocateAddressOutput, error) {
	if err := f.record("AllocateAddress"); err != nil {
		return nil, err
	}
	return &ec2.AllocateAddressOutput{
		AllocationId: awssdk.String("eipalloc-0001"),
		PublicIp:     awssdk.String("203.0.113.10"),
	}, nil
}

func (f *fakeEC2) ReleaseAddress(ctx context.Context, params *ec2.ReleaseAddressInput, optFns ...func(*ec2.Options)) (*ec2.ReleaseAddressOutput, error) {
	if err := f.record("ReleaseAddress"); err != nil {
		return nil, err
	}
	f.releasedAllocs = append(f.releasedAllocs, deref(params.AllocationId))
	return &ec2.ReleaseAddressOutput{}, nil
}

func (f *fakeEC2) DescribeAddresses(ctx context.Context, params *ec2.DescribeAddressesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeAddressesOutput, error) {
	if err := f.record("DescribeAddresses"); err != nil {
		return nil, err
	}
	return &ec2.DescribeAddressesOutput{Addresses: f.addresses}, nil
}

func (f *fakeEC2) CreateNatGateway(ctx context.Context, params *ec2.CreateNatGatewayInput, optFns ...func(*ec2.Options)) (*ec2.CreateNatGatewayOutput, error) {
	if err := f.record("CreateNatGateway"); err != nil {
		return nil, err
	}
	f.natInput = params
	return &ec2.CreateNatGatewayOutput{
		NatGateway: &ec2types.NatGateway{NatGatewayId: awssdk.String("nat-0001")},
	}, nil
}

func (f *fakeEC2) DeleteNatGateway(ctx context.Context, params *ec2.DeleteNatGatewayInput, optFns ...func(*ec2.Options)) (*ec2.DeleteNatGatewayOutput, error) {
	if err := f.record("DeleteNatGateway"); err != nil {
		return nil, err
	}
	f.deletedNatIDs = append(f.deletedNatIDs, deref(params.NatGatewayId))
	return &ec2.DeleteNatGatewayOutput{}, nil
}

func (f *fakeEC2) DescribeNatGateways(ctx context.Context, params *ec2.DescribeNatGatewaysInput, optFns ...func(*ec2.Options)) (*ec2.DescribeNatGatewaysOutput, error) {
	if err := f.record("DescribeNatGateways"); err != nil {
		return nil, err
	}

	// Waiter polls by ID; listing by VPC filter returns the canned set.
	if len(params.NatGatewayIds) > 0 {
		state := ec2types.NatGatewayStateAvailable
		if len(f.deletedNatIDs) > 0 {
			state = ec2types.NatGatewayStateDeleted
		}
		var gws []ec2types.NatGateway
		for _, id := range params.NatGatewayIds {
			gws = append(gws, ec2types.NatGateway{
				NatGatewayId: awssdk.String(id),
				State:        state,
			})
		}
		return &ec2.DescribeNatGatewaysOutput{NatGateways: gws}, nil
	}

	return &ec2.DescribeNatGatewaysOutput{NatGateways: f.natGateways}, nil
}

func (f *fakeEC2) CreateRouteTable(ctx context.Context, params *ec2.CreateRouteTableInput, optFns ...func(*ec2.Options)) (*ec2.CreateRouteTableOutput, error) {
	if err := f.record("CreateRouteTable"); err != nil {
		return nil, err
	}
	f.rtN++
	return &ec2.CreateRouteTableOutput{
		RouteTable: &ec2types.RouteTable{RouteTableId: awssdk.String(fmt.Sprintf("rtb-%04d", f.rtN))},
	}, nil
}

func (f *fakeEC2) DeleteRouteTable(ctx context.Context, params *ec2.DeleteRouteTableInput, optFns ...func(*ec2.Options)) (*ec2.DeleteRouteTableOutput, error) {
	if err := f.record("DeleteRouteTable"); err != nil {
		return nil, err
	}
	return &ec2.DeleteRouteTableOutput{}, nil
}

func (f *fakeEC2) DescribeRouteTables(ctx context.Context, params *ec2.DescribeRouteTablesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRouteTablesOutput, error) {
	if err := f.record("DescribeRouteTables"); err != nil {
		return nil, err
	}
	return &ec2.DescribeRouteTablesOutput{RouteTables: f.routeTables}, nil
}

func (f *fakeEC2) CreateRoute(ctx context.Context, params *ec2.CreateRouteInput, optFns ...func(*ec2.Options)) (*ec2.CreateRouteOutput, error) {
	if err := f.record("CreateRoute"); err != nil {
		return nil, err
	}
	f.routes = append(f.routes, params)
	return &ec2.CreateRouteOutput{Return: awssdk.Bool(true)}, nil
}

func (f *fakeEC2) AssociateRouteTable(ctx context.Context, params *ec2.AssociateRouteTableInput, optFns ...func(*ec2.Options)) (*ec2.AssociateRouteTableOutput, error) {
	if err := f.record("AssociateRouteTable"); err != nil {
		return nil, err
	}
	f.associations = append(f.associations, params)
	return &ec2.AssociateRouteTableOutput{AssociationId: awssdk.String("rtbassoc-0001")}, nil
}

func testNetPlan(t *testing.T) *netplan.Plan {
	t.Helper()
	plan, err := netplan.Compute("10.0.0.0/16", "Production")
	require.NoError(t, err)
	return plan
}

func TestProvisionSequence(t *testing.T) {
	fake := newFakeEC2()
	p := NewProvisioner(fake)

	var out bytes.Buffer
	p.Out = &out

	net, err := p.Provision(context.Background(), testNetPlan(t))
	require.NoError(t, err)

	want := []string{
		"CreateVpc",
		"ModifyVpcAttribute", "ModifyVpcAttribute",
		"CreateInternetGateway", "AttachInternetGateway",
		"DescribeAvailabilityZones",
		"CreateSubnet", "ModifySubnetAttribute",
		"CreateSubnet", "ModifySubnetAttribute",
		"CreateSubnet", "ModifySubnetAttribute",
		"CreateSubnet", "CreateSubnet", "CreateSubnet",
		"AllocateAddress",
		"CreateNatGateway",
		"DescribeNatGateways", // NAT availability waiter
		"CreateRouteTable", "CreateRoute",
		"AssociateRouteTable", "AssociateRouteTable", "AssociateRouteTable",
		"CreateRouteTable", "CreateRoute",
		"AssociateRouteTable", "AssociateRouteTable", "AssociateRouteTable",
	}
	assert.Equal(t, want, fake.calls)

	assert.Equal(t, "vpc-0001", net.VPCID)
	assert.Equal(t, "igw-0001", net.InternetGateway)
	assert.Equal(t, []string{"subnet-0001", "subnet-0002", "subnet-0003"}, net.PublicSubnets)
	assert.Equal(t, []string{"subnet-0004", "subnet-0005", "subnet-0006"}, net.PrivateSubnets)
	assert.Equal(t, "nat-0001", net.NatGatewayID)
	assert.Equal(t, "eipalloc-0001", net.EIPAllocationID)
	assert.Equal(t, "rtb-0001", net.PublicRouteTable)
	assert.Equal(t, "rtb-0002", net.PrivateRouteTable)

	assert.Contains(t, out.String(), "VPC created: vpc-0001")
	assert.Contains(t, out.String(), "NAT Gateway is now available")
}

func TestProvisionNatGatewayPlacement(t *testing.T) {
	fake := newFakeEC2()
	p := NewProvisioner(fake)

	net, err := p.Provision(context.Background(), testNetPlan(t))
	require.NoError(t, err)

	// The NAT gateway lives in the first public subnet.
	require.NotNil(t, fake.natInput)
	assert.Equal(t, net.PublicSubnets[0], deref(fake.natInput.SubnetId))
	assert.Equal(t, net.EIPAllocationID, deref(fake.natInput.AllocationId))

	// Public default route goes to the IGW, private to the NAT gateway.
	require.Len(t, fake.routes, 2)
	assert.Equal(t, net.InternetGateway, deref(fake.routes[0].GatewayId))
	assert.Equal(t, "0.0.0.0/0", deref(fake.routes[0].DestinationCidrBlock))
	assert.Equal(t, net.NatGatewayID, deref(fake.routes[1].NatGatewayId))
	assert.Equal(t, "0.0.0.0/0", deref(fake.routes[1].DestinationCidrBlock))
}

func TestProvisionSubnetLayout(t *testing.T) {
	fake := newFakeEC2()
	p := NewProvisioner(fake)

	_, err := p.Provision(context.Background(), testNetPlan(t))
	require.NoError(t, err)

	require.Len(t, fake.createdSubnets, 6)
	wantCIDRs := []string{
		"10.0.1.0/24", "10.0.2.0/24", "10.0.3.0/24",
		"10.0.11.0/24", "10.0.12.0/24", "10.0.13.0/24",
	}
	wantAZs := []string{
		"ap-south-1a", "ap-south-1b", "ap-south-1c",
		"ap-south-1a", "ap-south-1b", "ap-south-1c",
	}
	for i, in := range fake.createdSubnets {
		assert.Equal(t, wantCIDRs[i], deref(in.CidrBlock))
		assert.Equal(t, wantAZs[i], deref(in.AvailabilityZone))
		assert.Equal(t, "vpc-0001", deref(in.VpcId))
	}
}

func TestProvisionTagsResources(t *testing.T) {
	fake := newFakeEC2()
	p := NewProvisioner(fake)

	_, err := p.Provision(context.Background(), testNetPlan(t))
	require.NoError(t, err)

	require.NotNil(t, fake.createdVpc)
	require.Len(t, fake.createdVpc.TagSpecifications, 1)

	tags := map[string]string{}
	for _, tag := range fake.createdVpc.TagSpecifications[0].Tags {
		tags[deref(tag.Key)] = deref(tag.Value)
	}
	assert.Equal(t, "Production-VPC", tags[pkgtypes.TagName])
	assert.Equal(t, pkgtypes.ManagedTagValue, tags[pkgtypes.TagManaged])
	assert.Equal(t, "Production", tags[pkgtypes.TagEnvironment])
}

func TestProvisionPartialFailureKeepsIdentifiers(t *testing.T) {
	fake := newFakeEC2()
	fake.failOn = "CreateNatGateway"
	p := NewProvisioner(fake)

	net, err := p.Provision(context.Background(), testNetPlan(t))
	require.Error(t, err)

	// Everything created before the failure is still reported so the
	// operator can tear it down; nothing after it was attempted.
	require.NotNil(t, net)
	assert.Equal(t, "vpc-0001", net.VPCID)
	assert.Len(t, net.PublicSubnets, 3)
	assert.Len(t, net.PrivateSubnets, 3)
	assert.Equal(t, "eipalloc-0001", net.EIPAllocationID)
	assert.Empty(t, net.NatGatewayID)
	assert.Empty(t, net.PublicRouteTable)
	assert.NotContains(t, fake.calls, "CreateRouteTable")
}

func TestProvisionRequiresThreeAZs(t *testing.T) {
	fake := newFakeEC2()
	fake.azCount = 2
	p := NewProvisioner(fake)

	_, err := p.Provision(context.Background(), testNetPlan(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "availability zones")
	assert.NotContains(t, fake.calls, "CreateSubnet")
}

func TestProvisionVpcFailureStopsImmediately(t *testing.T) {
	fake := newFakeEC2()
	fake.failOn = "CreateVpc"
	p := NewProvisioner(fake)

	net, err := p.Provision(context.Background(), testNetPlan(t))
	require.Error(t, err)
	assert.Empty(t, net.VPCID)
	assert.Equal(t, []string{"CreateVpc"}, fake.calls)
}
