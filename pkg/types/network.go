package types

// Network holds the identifiers of a provisioned VPC topology.
// Fields are filled in creation order, so a partially provisioned
// network carries everything created before the failure.
type Network struct {
	Environment string
	Region      string

	VPCID             string
	InternetGateway   string
	PublicSubnets     []string
	PrivateSubnets    []string
	EIPAllocationID   string
	EIPPublicIP       string
	NatGatewayID      string
	PublicRouteTable  string
	PrivateRouteTable string
}
