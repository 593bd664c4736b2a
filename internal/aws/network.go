package aws

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/skarthickct/cloud-formation/internal/netplan"
	pkgtypes "github.com/skarthickct/cloud-formation/pkg/types"
)

// natGatewayWaitTimeout bounds the wait for a NAT gateway to come up;
// AWS usually takes one to two minutes.
const natGatewayWaitTimeout = 10 * time.Minute

// EC2API is the slice of the EC2 control plane the provisioner and the
// teardown path call. *ec2.Client satisfies it.
type EC2API interface {
	CreateVpc(ctx context.Context, params *ec2.CreateVpcInput, optFns ...func(*ec2.Options)) (*ec2.CreateVpcOutput, error)
	ModifyVpcAttribute(ctx context.Context, params *ec2.ModifyVpcAttributeInput, optFns ...func(*ec2.Options)) (*ec2.ModifyVpcAttributeOutput, error)
	DeleteVpc(ctx context.Context, params *ec2.DeleteVpcInput, optFns ...func(*ec2.Options)) (*ec2.DeleteVpcOutput, error)
	DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error)
	DescribeAvailabilityZones(ctx context.Context, params *ec2.DescribeAvailabilityZonesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeAvailabilityZonesOutput, error)
	CreateInternetGateway(ctx context.Context, params *ec2.CreateInternetGatewayInput, optFns ...func(*ec2.Options)) (*ec2.CreateInternetGatewayOutput, error)
	AttachInternetGateway(ctx context.Context, params *ec2.AttachInternetGatewayInput, optFns ...func(*ec2.Options)) (*ec2.AttachInternetGatewayOutput, error)
	DetachInternetGateway(ctx context.Context, params *ec2.DetachInternetGatewayInput, optFns ...func(*ec2.Options)) (*ec2.DetachInternetGatewayOutput, error)
	DeleteInternetGateway(ctx context.Context, params *ec2.DeleteInternetGatewayInput, optFns ...func(*ec2.Options)) (*ec2.DeleteInternetGatewayOutput, error)
	DescribeInternetGateways(ctx context.Context, params *ec2.DescribeInternetGatewaysInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInternetGatewaysOutput, error)
	CreateSubnet(ctx context.Context, params *ec2.CreateSubnetInput, optFns ...func(*ec2.Options)) (*ec2.CreateSubnetOutput, error)
	ModifySubnetAttribute(ctx context.Context, params *ec2.ModifySubnetAttributeInput, optFns ...func(*ec2.Options)) (*ec2.ModifySubnetAttributeOutput, error)
	DeleteSubnet(ctx context.Context, params *ec2.DeleteSubnetInput, optFns ...func(*ec2.Options)) (*ec2.DeleteSubnetOutput, error)
	DescribeSubnets(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error)
	AllocateAddress(ctx context.Context, params *ec2.AllocateAddressInput, optFns ...func(*ec2.Options)) (*ec2.AllocateAddressOutput, error)
	ReleaseAddress(ctx context.Context, params *ec2.ReleaseAddressInput, optFns ...func(*ec2.Options)) (*ec2.ReleaseAddressOutput, error)
	DescribeAddresses(ctx context.Context, params *ec2.DescribeAddressesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeAddressesOutput, error)
	CreateNatGateway(ctx context.Context, params *ec2.CreateNatGatewayInput, optFns ...func(*ec2.Options)) (*ec2.CreateNatGatewayOutput, error)
	DeleteNatGateway(ctx context.Context, params *ec2.DeleteNatGatewayInput, optFns ...func(*ec2.Options)) (*ec2.DeleteNatGatewayOutput, error)
	DescribeNatGateways(ctx context.Context, params *ec2.DescribeNatGatewaysInput, optFns ...func(*ec2.Options)) (*ec2.DescribeNatGatewaysOutput, error)
	CreateRouteTable(ctx context.Context, params *ec2.CreateRouteTableInput, optFns ...func(*ec2.Options)) (*ec2.CreateRouteTableOutput, error)
	DeleteRouteTable(ctx context.Context, params *ec2.DeleteRouteTableInput, optFns ...func(*ec2.Options)) (*ec2.DeleteRouteTableOutput, error)
	DescribeRouteTables(ctx context.Context, params *ec2.DescribeRouteTablesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRouteTablesOutput, error)
	CreateRoute(ctx context.Context, params *ec2.CreateRouteInput, optFns ...func(*ec2.Options)) (*ec2.CreateRouteOutput, error)
	AssociateRouteTable(ctx context.Context, params *ec2.AssociateRouteTableInput, optFns ...func(*ec2.Options)) (*ec2.AssociateRouteTableOutput, error)
}

// Provisioner runs the fixed resource-creation sequence for one network.
// Progress is narrated to Out as each resource is acknowledged.
type Provisioner struct {
	api EC2API

	// Out receives progress lines; defaults to io.Discard.
	Out io.Writer
}

// NewProvisioner returns a Provisioner backed by the given EC2 API.
func NewProvisioner(api EC2API) *Provisioner {
	return &Provisioner{api: api, Out: io.Discard}
}

// Provision creates the full topology described by plan, in order:
// VPC, internet gateway, subnets, NAT gateway, route tables. Each call
// blocks until the control plane acknowledges it, and the NAT gateway
// is awaited before the private route is created.
//
// There is no rollback: on failure the returned Network still carries
// every identifier created so far, so the operator can tear it down.
func (p *Provisioner) Provision(ctx context.Context, plan *netplan.Plan) (*pkgtypes.Network, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	net := &pkgtypes.Network{Environment: plan.Environment}

	if err := p.createVPC(ctx, plan, net); err != nil {
		return net, err
	}
	if err := p.createInternetGateway(ctx, plan, net); err != nil {
		return net, err
	}
	if err := p.createSubnets(ctx, plan, net); err != nil {
		return net, err
	}
	if err := p.createNatGateway(ctx, plan, net); err != nil {
		return net, err
	}
	if err := p.createRouteTables(ctx, plan, net); err != nil {
		return net, err
	}

	return net, nil
}

func (p *Provisioner) createVPC(ctx context.Context, plan *netplan.Plan, net *pkgtypes.Network) error {
	fmt.Fprintf(p.Out, "Creating VPC with CIDR %s...\n", plan.VPC)

	out, err := p.api.CreateVpc(ctx, &ec2.CreateVpcInput{
		CidrBlock:         aws.String(plan.VPC.String()),
		TagSpecifications: tagSpec(ec2types.ResourceTypeVpc, plan.Environment, plan.Environment+"-VPC"),
	})
	if err != nil {
		return fmt.Errorf("failed to create VPC: %w", err)
	}
	net.VPCID = deref(out.Vpc.VpcId)

	// DNS hostnames and support cannot be set at creation time.
	_, err = p.api.ModifyVpcAttribute(ctx, &ec2.ModifyVpcAttributeInput{
		VpcId:              aws.String(net.VPCID),
		EnableDnsHostnames: &ec2types.AttributeBooleanValue{Value: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to enable DNS hostnames on %s: %w", net.VPCID, err)
	}
	_, err = p.api.ModifyVpcAttribute(ctx, &ec2.ModifyVpcAttributeInput{
		VpcId:            aws.String(net.VPCID),
		EnableDnsSupport: &ec2types.AttributeBooleanValue{Value: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to enable DNS support on %s: %w", net.VPCID, err)
	}

	fmt.Fprintf(p.Out, "VPC created: %s\n", net.VPCID)
	return nil
}

func (p *Provisioner) createInternetGateway(ctx context.Context, plan *netplan.Plan, net *pkgtypes.Network) error {
	fmt.Fprintln(p.Out, "Creating Internet Gateway...")

	out, err := p.api.CreateInternetGateway(ctx, &ec2.CreateInternetGatewayInput{
		TagSpecifications: tagSpec(ec2types.ResourceTypeInternetGateway, plan.Environment, plan.Environment+"-IGW"),
	})
	if err != nil {
		return fmt.Errorf("failed to create internet gateway: %w", err)
	}
	net.InternetGateway = deref(out.InternetGateway.InternetGatewayId)

	_, err = p.api.AttachInternetGateway(ctx, &ec2.AttachInternetGatewayInput{
		InternetGatewayId: aws.String(net.InternetGateway),
		VpcId:             aws.String(net.VPCID),
	})
	if err != nil {
		return fmt.Errorf("failed to attach internet gateway %s: %w", net.InternetGateway, err)
	}

	fmt.Fprintf(p.Out, "Internet Gateway created and attached: %s\n", net.InternetGateway)
	return nil
}

func (p *Provisioner) createSubnets(ctx context.Context, plan *netplan.Plan, net *pkgtypes.Network) error {
	azs, err := p.availabilityZones(ctx)
	if err != nil {
		return err
	}

	for i, s := range plan.Public {
		fmt.Fprintf(p.Out, "Creating Public Subnet %d (%s in %s)...\n", i+1, s.CIDR, azs[s.AZ])

		out, err := p.api.CreateSubnet(ctx, &ec2.CreateSubnetInput{
			VpcId:             aws.String(net.VPCID),
			CidrBlock:         aws.String(s.CIDR.String()),
			AvailabilityZone:  aws.String(azs[s.AZ]),
			TagSpecifications: tagSpec(ec2types.ResourceTypeSubnet, plan.Environment, s.Name),
		})
		if err != nil {
			return fmt.Errorf("failed to create subnet %s: %w", s.Name, err)
		}
		subnetID := deref(out.Subnet.SubnetId)
		net.PublicSubnets = append(net.PublicSubnets, subnetID)

		// Instances launched in public subnets get a public IP.
		_, err = p.api.ModifySubnetAttribute(ctx, &ec2.ModifySubnetAttributeInput{
			SubnetId:            aws.String(subnetID),
			MapPublicIpOnLaunch: &ec2types.AttributeBooleanValue{Value: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("failed to enable public IP mapping on %s: %w", subnetID, err)
		}

		fmt.Fprintf(p.Out, "Public Subnet %d created: %s\n", i+1, subnetID)
	}

	for i, s := range plan.Private {
		fmt.Fprintf(p.Out, "Creating Private Subnet %d (%s in %s)...\n", i+1, s.CIDR, azs[s.AZ])

		out, err := p.api.CreateSubnet(ctx, &ec2.CreateSubnetInput{
			VpcId:             aws.String(net.VPCID),
			CidrBlock:         aws.String(s.CIDR.String()),
			AvailabilityZone:  aws.String(azs[s.AZ]),
			TagSpecifications: tagSpec(ec2types.ResourceTypeSubnet, plan.Environment, s.Name),
		})
		if err != nil {
			return fmt.Errorf("failed to create subnet %s: %w", s.Name, err)
		}
		subnetID := deref(out.Subnet.SubnetId)
		net.PrivateSubnets = append(net.PrivateSubnets, subnetID)

		fmt.Fprintf(p.Out, "Private Subnet %d created: %s\n", i+1, subnetID)
	}

	return nil
}

func (p *Provisioner) createNatGateway(ctx context.Context, plan *netplan.Plan, net *pkgtypes.Network) error {
	fmt.Fprintln(p.Out, "Allocating Elastic IP...")

	eip, err := p.api.AllocateAddress(ctx, &ec2.AllocateAddressInput{
		Domain:            ec2types.DomainTypeVpc,
		TagSpecifications: tagSpec(ec2types.ResourceTypeElasticIp, plan.Environment, plan.Environment+"-NAT-EIP"),
	})
	if err != nil {
		return fmt.Errorf("failed to allocate Elastic IP: %w", err)
	}
	net.EIPAllocationID = deref(eip.AllocationId)
	net.EIPPublicIP = deref(eip.PublicIp)
	fmt.Fprintf(p.Out, "Elastic IP allocated: %s\n", net.EIPPublicIP)

	fmt.Fprintln(p.Out, "Creating NAT Gateway...")
	out, err := p.api.CreateNatGateway(ctx, &ec2.CreateNatGatewayInput{
		SubnetId:          aws.String(net.PublicSubnets[0]),
		AllocationId:      aws.String(net.EIPAllocationID),
		TagSpecifications: tagSpec(ec2types.ResourceTypeNatgateway, plan.Environment, plan.Environment+"-NAT"),
	})
	if err != nil {
		return fmt.Errorf("failed to create NAT gateway: %w", err)
	}
	net.NatGatewayID = deref(out.NatGateway.NatGatewayId)
	fmt.Fprintf(p.Out, "NAT Gateway created: %s\n", net.NatGatewayID)

	fmt.Fprintln(p.Out, "Waiting for NAT Gateway to become available...")
	waiter := ec2.NewNatGatewayAvailableWaiter(p.api)
	err = waiter.Wait(ctx, &ec2.DescribeNatGatewaysInput{
		NatGatewayIds: []string{net.NatGatewayID},
	}, natGatewayWaitTimeout)
	if err != nil {
		return fmt.Errorf("NAT gateway %s did not become available: %w", net.NatGatewayID, err)
	}
	fmt.Fprintln(p.Out, "NAT Gateway is now available")

	return nil
}

func (p *Provisioner) createRouteTables(ctx context.Context, plan *netplan.Plan, net *pkgtypes.Network) error {
	fmt.Fprintln(p.Out, "Creating Public Route Table...")

	pub, err := p.api.CreateRouteTable(ctx, &ec2.CreateRouteTableInput{
		VpcId:             aws.String(net.VPCID),
		TagSpecifications: tagSpec(ec2types.ResourceTypeRouteTable, plan.Environment, plan.Environment+"-Public-RT"),
	})
	if err != nil {
		return fmt.Errorf("failed to create public route table: %w", err)
	}
	net.PublicRouteTable = deref(pub.RouteTable.RouteTableId)

	_, err = p.api.CreateRoute(ctx, &ec2.CreateRouteInput{
		RouteTableId:         aws.String(net.PublicRouteTable),
		DestinationCidrBlock: aws.String("0.0.0.0/0"),
		GatewayId:            aws.String(net.InternetGateway),
	})
	if err != nil {
		return fmt.Errorf("failed to create internet route: %w", err)
	}

	for _, subnetID := range net.PublicSubnets {
		_, err = p.api.AssociateRouteTable(ctx, &ec2.AssociateRouteTableInput{
			RouteTableId: aws.String(net.PublicRouteTable),
			SubnetId:     aws.String(subnetID),
		})
		if err != nil {
			return fmt.Errorf("failed to associate subnet %s with public route table: %w", subnetID, err)
		}
	}
	fmt.Fprintf(p.Out, "Public Route Table created and associated: %s\n", net.PublicRouteTable)

	fmt.Fprintln(p.Out, "Creating Private Route Table...")
	priv, err := p.api.CreateRouteTable(ctx, &ec2.CreateRouteTableInput{
		VpcId:             aws.String(net.VPCID),
		TagSpecifications: tagSpec(ec2types.ResourceTypeRouteTable, plan.Environment, plan.Environment+"-Private-RT"),
	})
	if err != nil {
		return fmt.Errorf("failed to create private route table: %w", err)
	}
	net.PrivateRouteTable = deref(priv.RouteTable.RouteTableId)

	_, err = p.api.CreateRoute(ctx, &ec2.CreateRouteInput{
		RouteTableId:         aws.String(net.PrivateRouteTable),
		DestinationCidrBlock: aws.String("0.0.0.0/0"),
		NatGatewayId:         aws.String(net.NatGatewayID),
	})
	if err != nil {
		return fmt.Errorf("failed to create NAT route: %w", err)
	}

	for _, subnetID := range net.PrivateSubnets {
		_, err = p.api.AssociateRouteTable(ctx, &ec2.AssociateRouteTableInput{
			RouteTableId: aws.String(net.PrivateRouteTable),
			SubnetId:     aws.String(subnetID),
		})
		if err != nil {
			return fmt.Errorf("failed to associate subnet %s with private route table: %w", subnetID, err)
		}
	}
	fmt.Fprintf(p.Out, "Private Route Table created and associated: %s\n", net.PrivateRouteTable)

	return nil
}

// availabilityZones returns the names of the first three available AZs
// in the region.
func (p *Provisioner) availabilityZones(ctx context.Context) ([]string, error) {
	out, err := p.api.DescribeAvailabilityZones(ctx, &ec2.DescribeAvailabilityZonesInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("state"), Values: []string{"available"}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe availability zones: %w", err)
	}

	var azs []string
	for _, az := range out.AvailabilityZones {
		azs = append(azs, deref(az.ZoneName))
	}
	if len(azs) < netplan.AZCount {
		return nil, fmt.Errorf("region has only %d availability zones, need %d", len(azs), netplan.AZCount)
	}

	return azs[:netplan.AZCount], nil
}

// tagSpec builds the tag specification shared by every created resource.
func tagSpec(resourceType ec2types.ResourceType, environment, name string) []ec2types.TagSpecification {
	return []ec2types.TagSpecification{
		{
			ResourceType: resourceType,
			Tags: []ec2types.Tag{
				{Key: aws.String(pkgtypes.TagName), Value: aws.String(name)},
				{Key: aws.String(pkgtypes.TagManaged), Value: aws.String(pkgtypes.ManagedTagValue)},
				{Key: aws.String(pkgtypes.TagEnvironment), Value: aws.String(environment)},
			},
		},
	}
}
