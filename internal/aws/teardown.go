package aws

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	pkgtypes "github.com/skarthickct/cloud-formation/pkg/types"
)

const natGatewayDeleteTimeout = 10 * time.Minute

// Teardown deletes a provisioned network in reverse creation order:
// NAT gateways, Elastic IPs, subnets, route tables, internet gateway,
// VPC. Only resources belonging to the target VPC are touched; Elastic
// IPs are additionally required to carry this tool's managed tag.
type Teardown struct {
	api EC2API

	// Out receives progress lines; defaults to io.Discard.
	Out io.Writer
}

// NewTeardown returns a Teardown backed by the given EC2 API.
func NewTeardown(api EC2API) *Teardown {
	return &Teardown{api: api, Out: io.Discard}
}

// Destroy removes the VPC and everything this tool created inside it.
// It returns the environment tag found on the VPC so the caller can
// clean up exported parameters.
func (t *Teardown) Destroy(ctx context.Context, vpcID string) (string, error) {
	environment, err := t.vpcEnvironment(ctx, vpcID)
	if err != nil {
		return "", err
	}

	fmt.Fprintf(t.Out, "Deleting VPC: %s\n", vpcID)

	if err := t.deleteNatGateways(ctx, vpcID); err != nil {
		return environment, err
	}
	if err := t.releaseAddresses(ctx, environment); err != nil {
		return environment, err
	}
	if err := t.deleteSubnets(ctx, vpcID); err != nil {
		return environment, err
	}
	if err := t.deleteRouteTables(ctx, vpcID); err != nil {
		return environment, err
	}
	if err := t.deleteInternetGateways(ctx, vpcID); err != nil {
		return environment, err
	}

	if _, err := t.api.DeleteVpc(ctx, &ec2.DeleteVpcInput{VpcId: aws.String(vpcID)}); err != nil {
		return environment, fmt.Errorf("failed to delete VPC %s: %w", vpcID, err)
	}
	fmt.Fprintf(t.Out, "VPC deleted: %s\n", vpcID)

	return environment, nil
}

// vpcEnvironment verifies the VPC exists and returns its environment tag.
func (t *Teardown) vpcEnvironment(ctx context.Context, vpcID string) (string, error) {
	out, err := t.api.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{VpcIds: []string{vpcID}})
	if err != nil {
		return "", fmt.Errorf("failed to describe VPC %s: %w", vpcID, err)
	}
	if len(out.Vpcs) == 0 {
		return "", fmt.Errorf("VPC %s not found", vpcID)
	}

	for _, tag := range out.Vpcs[0].Tags {
		if deref(tag.Key) == pkgtypes.TagEnvironment {
			return deref(tag.Value), nil
		}
	}
	return "", nil
}

func (t *Teardown) deleteNatGateways(ctx context.Context, vpcID string) error {
	fmt.Fprintln(t.Out, "Deleting NAT Gateways...")

	out, err := t.api.DescribeNatGateways(ctx, &ec2.DescribeNatGatewaysInput{
		Filter: []ec2types.Filter{vpcFilter(vpcID)},
	})
	if err != nil {
		return fmt.Errorf("failed to list NAT gateways: %w", err)
	}

	var pending []string
	for _, nat := range out.NatGateways {
		if nat.State == ec2types.NatGatewayStateDeleted {
			continue
		}
		id := deref(nat.NatGatewayId)
		fmt.Fprintf(t.Out, "  Deleting NAT Gateway: %s\n", id)
		if _, err := t.api.DeleteNatGateway(ctx, &ec2.DeleteNatGatewayInput{NatGatewayId: aws.String(id)}); err != nil {
			return fmt.Errorf("failed to delete NAT gateway %s: %w", id, err)
		}
		pending = append(pending, id)
	}

	if len(pending) > 0 {
		fmt.Fprintln(t.Out, "  Waiting for NAT Gateways to delete (this takes 1-2 minutes)...")
		waiter := ec2.NewNatGatewayDeletedWaiter(t.api)
		err := waiter.Wait(ctx, &ec2.DescribeNatGatewaysInput{NatGatewayIds: pending}, natGatewayDeleteTimeout)
		if err != nil {
			return fmt.Errorf("NAT gateways did not finish deleting: %w", err)
		}
	}

	return nil
}

// releaseAddresses releases unassociated Elastic IPs carrying this
// tool's tags. Addresses still attached to a network interface are left
// alone.
func (t *Teardown) releaseAddresses(ctx context.Context, environment string) error {
	fmt.Fprintln(t.Out, "Releasing Elastic IPs...")

	filters := []ec2types.Filter{
		{Name: aws.String("tag:" + pkgtypes.TagManaged), Values: []string{pkgtypes.ManagedTagValue}},
	}
	if environment != "" {
		filters = append(filters, ec2types.Filter{
			Name:   aws.String("tag:" + pkgtypes.TagEnvironment),
			Values: []string{environment},
		})
	}

	out, err := t.api.DescribeAddresses(ctx, &ec2.DescribeAddressesInput{Filters: filters})
	if err != nil {
		return fmt.Errorf("failed to list Elastic IPs: %w", err)
	}

	for _, addr := range out.Addresses {
		if addr.NetworkInterfaceId != nil {
			continue
		}
		fmt.Fprintf(t.Out, "  Releasing EIP: %s\n", deref(addr.PublicIp))
		if _, err := t.api.ReleaseAddress(ctx, &ec2.ReleaseAddressInput{AllocationId: addr.AllocationId}); err != nil {
			return fmt.Errorf("failed to release Elastic IP %s: %w", deref(addr.PublicIp), err)
		}
	}

	return nil
}

func (t *Teardown) deleteSubnets(ctx context.Context, vpcID string) error {
	fmt.Fprintln(t.Out, "Deleting Subnets...")

	out, err := t.api.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
		Filters: []ec2types.Filter{vpcFilter(vpcID)},
	})
	if err != nil {
		return fmt.Errorf("failed to list subnets: %w", err)
	}

	for _, subnet := range out.Subnets {
		id := deref(subnet.SubnetId)
		fmt.Fprintf(t.Out, "  Deleting Subnet: %s\n", id)
		if _, err := t.api.DeleteSubnet(ctx, &ec2.DeleteSubnetInput{SubnetId: aws.String(id)}); err != nil {
			return fmt.Errorf("failed to delete subnet %s: %w", id, err)
		}
	}

	return nil
}

// deleteRouteTables removes all route tables except the VPC's main one,
// which is deleted together with the VPC.
func (t *Teardown) deleteRouteTables(ctx context.Context, vpcID string) error {
	fmt.Fprintln(t.Out, "Deleting Route Tables...")

	out, err := t.api.DescribeRouteTables(ctx, &ec2.DescribeRouteTablesInput{
		Filters: []ec2types.Filter{vpcFilter(vpcID)},
	})
	if err != nil {
		return fmt.Errorf("failed to list route tables: %w", err)
	}

	for _, rt := range out.RouteTables {
		if isMainRouteTable(rt) {
			continue
		}
		id := deref(rt.RouteTableId)
		fmt.Fprintf(t.Out, "  Deleting Route Table: %s\n", id)
		if _, err := t.api.DeleteRouteTable(ctx, &ec2.DeleteRouteTableInput{RouteTableId: aws.String(id)}); err != nil {
			return fmt.Errorf("failed to delete route table %s: %w", id, err)
		}
	}

	return nil
}

func (t *Teardown) deleteInternetGateways(ctx context.Context, vpcID string) error {
	fmt.Fprintln(t.Out, "Deleting Internet Gateways...")

	out, err := t.api.DescribeInternetGateways(ctx, &ec2.DescribeInternetGatewaysInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("attachment.vpc-id"), Values: []string{vpcID}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to list internet gateways: %w", err)
	}

	for _, igw := range out.InternetGateways {
		id := deref(igw.InternetGatewayId)

		fmt.Fprintf(t.Out, "  Detaching IGW: %s\n", id)
		_, err := t.api.DetachInternetGateway(ctx, &ec2.DetachInternetGatewayInput{
			InternetGatewayId: aws.String(id),
			VpcId:             aws.String(vpcID),
		})
		if err != nil {
			return fmt.Errorf("failed to detach internet gateway %s: %w", id, err)
		}

		fmt.Fprintf(t.Out, "  Deleting IGW: %s\n", id)
		if _, err := t.api.DeleteInternetGateway(ctx, &ec2.DeleteInternetGatewayInput{InternetGatewayId: aws.String(id)}); err != nil {
			return fmt.Errorf("failed to delete internet gateway %s: %w", id, err)
		}
	}

	return nil
}

func vpcFilter(vpcID string) ec2types.Filter {
	return ec2types.Filter{
		Name:   aws.String("vpc-id"),
		Values: []string{vpcID},
	}
}

func isMainRouteTable(rt ec2types.RouteTable) bool {
	for _, assoc := range rt.Associations {
		if derefBool(assoc.Main) {
			return true
		}
	}
	return false
}
