package cfn

import (
	"fmt"

	"github.com/skarthickct/cloud-formation/internal/netplan"
	"github.com/skarthickct/cloud-formation/pkg/types"
)

// NetworkTemplate builds the CloudFormation template encoding the same
// topology the imperative path provisions: one VPC, an internet gateway,
// three public and three private subnets across three AZs, one NAT
// gateway, and the two route tables. Subnet CIDRs come from the plan;
// availability zones are bound at deploy time via Fn::GetAZs.
func NetworkTemplate(plan *netplan.Plan) *Template {
	t := NewTemplate("Standard VPC topology: 3 public + 3 private subnets across 3 AZs with a single NAT gateway")

	t.Parameters["EnvironmentName"] = Parameter{
		Type:        "String",
		Default:     plan.Environment,
		Description: "Environment name prefixed to resource Name tags",
	}

	t.Resources["VPC"] = &Resource{
		Type: "AWS::EC2::VPC",
		Properties: map[string]any{
			"CidrBlock":          plan.VPC.String(),
			"EnableDnsSupport":   true,
			"EnableDnsHostnames": true,
			"Tags":               nameTags("${EnvironmentName}-VPC"),
		},
	}

	t.Resources["InternetGateway"] = &Resource{
		Type: "AWS::EC2::InternetGateway",
		Properties: map[string]any{
			"Tags": nameTags("${EnvironmentName}-IGW"),
		},
	}

	t.Resources["VPCGatewayAttachment"] = &Resource{
		Type: "AWS::EC2::VPCGatewayAttachment",
		Properties: map[string]any{
			"VpcId":             Ref("VPC"),
			"InternetGatewayId": Ref("InternetGateway"),
		},
	}

	for i, s := range plan.Public {
		t.Resources[publicSubnetID(i)] = &Resource{
			Type: "AWS::EC2::Subnet",
			Properties: map[string]any{
				"VpcId":               Ref("VPC"),
				"CidrBlock":           s.CIDR.String(),
				"AvailabilityZone":    SelectAZ(s.AZ),
				"MapPublicIpOnLaunch": true,
				"Tags":                nameTags(fmt.Sprintf("${EnvironmentName}-Public-Subnet-AZ%d", i+1)),
			},
		}
	}

	for i, s := range plan.Private {
		t.Resources[privateSubnetID(i)] = &Resource{
			Type: "AWS::EC2::Subnet",
			Properties: map[string]any{
				"VpcId":            Ref("VPC"),
				"CidrBlock":        s.CIDR.String(),
				"AvailabilityZone": SelectAZ(s.AZ),
				"Tags":             nameTags(fmt.Sprintf("${EnvironmentName}-Private-Subnet-AZ%d", i+1)),
			},
		}
	}

	// The EIP and NAT gateway need the gateway attachment in place;
	// CloudFormation cannot infer that from references alone.
	t.Resources["NatEIP"] = &Resource{
		Type:      "AWS::EC2::EIP",
		DependsOn: []string{"VPCGatewayAttachment"},
		Properties: map[string]any{
			"Domain": "vpc",
			"Tags":   nameTags("${EnvironmentName}-NAT-EIP"),
		},
	}

	t.Resources["NatGateway"] = &Resource{
		Type: "AWS::EC2::NatGateway",
		Properties: map[string]any{
			"AllocationId": GetAtt("NatEIP", "AllocationId"),
			"SubnetId":     Ref(publicSubnetID(0)),
			"Tags":         nameTags("${EnvironmentName}-NAT"),
		},
	}

	t.Resources["PublicRouteTable"] = &Resource{
		Type: "AWS::EC2::RouteTable",
		Properties: map[string]any{
			"VpcId": Ref("VPC"),
			"Tags":  nameTags("${EnvironmentName}-Public-RT"),
		},
	}

	t.Resources["PublicRoute"] = &Resource{
		Type:      "AWS::EC2::Route",
		DependsOn: []string{"VPCGatewayAttachment"},
		Properties: map[string]any{
			"RouteTableId":         Ref("PublicRouteTable"),
			"DestinationCidrBlock": "0.0.0.0/0",
			"GatewayId":            Ref("InternetGateway"),
		},
	}

	t.Resources["PrivateRouteTable"] = &Resource{
		Type: "AWS::EC2::RouteTable",
		Properties: map[string]any{
			"VpcId": Ref("VPC"),
			"Tags":  nameTags("${EnvironmentName}-Private-RT"),
		},
	}

	t.Resources["PrivateRoute"] = &Resource{
		Type: "AWS::EC2::Route",
		Properties: map[string]any{
			"RouteTableId":         Ref("PrivateRouteTable"),
			"DestinationCidrBlock": "0.0.0.0/0",
			"NatGatewayId":         Ref("NatGateway"),
		},
	}

	for i := range plan.Public {
		t.Resources[publicSubnetID(i)+"RouteTableAssociation"] = &Resource{
			Type: "AWS::EC2::SubnetRouteTableAssociation",
			Properties: map[string]any{
				"SubnetId":     Ref(publicSubnetID(i)),
				"RouteTableId": Ref("PublicRouteTable"),
			},
		}
	}
	for i := range plan.Private {
		t.Resources[privateSubnetID(i)+"RouteTableAssociation"] = &Resource{
			Type: "AWS::EC2::SubnetRouteTableAssociation",
			Properties: map[string]any{
				"SubnetId":     Ref(privateSubnetID(i)),
				"RouteTableId": Ref("PrivateRouteTable"),
			},
		}
	}

	t.Outputs["VpcId"] = Output{
		Description: "ID of the created VPC",
		Value:       Ref("VPC"),
	}
	t.Outputs["InternetGatewayId"] = Output{
		Description: "ID of the internet gateway",
		Value:       Ref("InternetGateway"),
	}
	t.Outputs["NatGatewayId"] = Output{
		Description: "ID of the NAT gateway",
		Value:       Ref("NatGateway"),
	}
	t.Outputs["PublicSubnetIds"] = Output{
		Description: "Public subnet IDs, one per AZ",
		Value: Join(",", []any{
			Ref(publicSubnetID(0)), Ref(publicSubnetID(1)), Ref(publicSubnetID(2)),
		}),
	}
	t.Outputs["PrivateSubnetIds"] = Output{
		Description: "Private subnet IDs, one per AZ",
		Value: Join(",", []any{
			Ref(privateSubnetID(0)), Ref(privateSubnetID(1)), Ref(privateSubnetID(2)),
		}),
	}

	return t
}

func publicSubnetID(i int) string {
	return fmt.Sprintf("PublicSubnetAZ%d", i+1)
}

func privateSubnetID(i int) string {
	return fmt.Sprintf("PrivateSubnetAZ%d", i+1)
}

// nameTags builds the tag list shared by every resource: a Sub-based
// Name plus the managed-by markers the imperative path also applies.
func nameTags(name string) []any {
	return []any{
		map[string]any{"Key": types.TagName, "Value": Sub(name)},
		map[string]any{"Key": types.TagManaged, "Value": types.ManagedTagValue},
		map[string]any{"Key": types.TagEnvironment, "Value": Ref("EnvironmentName")},
	}
}
