package aws

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	pkgtypes "github.com/skarthickct/cloud-formation/pkg/types"
)

// SSMAPI is the slice of the Parameter Store API the export and cleanup
// paths call. *ssm.Client satisfies it.
type SSMAPI interface {
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
	DeleteParameters(ctx context.Context, params *ssm.DeleteParametersInput, optFns ...func(*ssm.Options)) (*ssm.DeleteParametersOutput, error)
}

// paramPrefix returns the Parameter Store path for an environment's
// network outputs, e.g. /vpcctl/Production/.
func paramPrefix(environment string) string {
	return "/vpcctl/" + environment + "/"
}

// networkParams maps parameter names (relative to the prefix) to values.
// Subnet ID lists are stored as StringList parameters.
func networkParams(net *pkgtypes.Network) map[string]string {
	return map[string]string{
		"vpc-id":              net.VPCID,
		"internet-gateway-id": net.InternetGateway,
		"nat-gateway-id":      net.NatGatewayID,
		"public-subnet-ids":   strings.Join(net.PublicSubnets, ","),
		"private-subnet-ids":  strings.Join(net.PrivateSubnets, ","),
	}
}

// ExportNetwork publishes the created network identifiers to SSM
// Parameter Store under /vpcctl/{environment}/ so downstream stacks can
// look them up.
func (c *Client) ExportNetwork(net *pkgtypes.Network) error {
	prefix := paramPrefix(net.Environment)

	for name, value := range networkParams(net) {
		if value == "" {
			continue
		}

		paramType := ssmtypes.ParameterTypeString
		if strings.Contains(value, ",") {
			paramType = ssmtypes.ParameterTypeStringList
		}

		_, err := c.SSM.PutParameter(c.ctx, &ssm.PutParameterInput{
			Name:      aws.String(prefix + name),
			Value:     aws.String(value),
			Type:      paramType,
			Overwrite: aws.Bool(true),
		})
		if err != nil {
			return fmt.Errorf("failed to export parameter %s: %w", prefix+name, err)
		}
	}

	return nil
}

// NetworkParam is one exported network parameter.
type NetworkParam struct {
	Name  string
	Value string
}

// ListNetworkParams returns the parameters exported for an environment.
func (c *Client) ListNetworkParams(environment string) ([]NetworkParam, error) {
	prefix := paramPrefix(environment)

	var params []NetworkParam
	paginator := ssm.NewGetParametersByPathPaginator(c.SSM, &ssm.GetParametersByPathInput{
		Path: aws.String(strings.TrimSuffix(prefix, "/")),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(c.ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list parameters under %s: %w", prefix, err)
		}
		for _, p := range page.Parameters {
			params = append(params, NetworkParam{
				Name:  deref(p.Name),
				Value: deref(p.Value),
			})
		}
	}

	return params, nil
}

// DeleteNetworkParams removes the parameters exported for an environment.
// Missing parameters are not an error.
func (c *Client) DeleteNetworkParams(environment string) error {
	params, err := c.ListNetworkParams(environment)
	if err != nil {
		return err
	}
	if len(params) == 0 {
		return nil
	}

	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, p.Name)
	}

	_, err = c.SSM.DeleteParameters(c.ctx, &ssm.DeleteParametersInput{Names: names})
	if err != nil {
		return fmt.Errorf("failed to delete parameters for %s: %w", environment, err)
	}

	return nil
}
