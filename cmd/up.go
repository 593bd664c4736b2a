package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skarthickct/cloud-formation/internal/aws"
	"github.com/skarthickct/cloud-formation/internal/netplan"
	"github.com/skarthickct/cloud-formation/internal/ui"
)

var (
	upCIDR   string
	upEnv    string
	upExport bool
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Provision the VPC topology imperatively",
	Long: `Create the full VPC topology with direct EC2 calls, in a fixed order:
VPC, internet gateway, 3 public + 3 private subnets, NAT gateway, and
route tables. Each call blocks until AWS acknowledges the resource.

There is no rollback on failure: the identifiers created so far are
printed so they can be removed with 'vpcctl down'.

Examples:
  vpcctl up
  vpcctl up --cidr 10.42.0.0/16 --env Staging
  vpcctl up --export               # also publish IDs to SSM Parameter Store`,
	RunE: runUp,
}

func init() {
	rootCmd.AddCommand(upCmd)

	upCmd.Flags().StringVar(&upCIDR, "cidr", "", "VPC CIDR block (default 10.0.0.0/16)")
	upCmd.Flags().StringVar(&upEnv, "env", "", "Environment name (default Production)")
	upCmd.Flags().BoolVar(&upExport, "export", false, "Export created identifiers to SSM Parameter Store")
}

func runUp(cmd *cobra.Command, args []string) error {
	plan, err := netplan.Compute(resolveCIDR(upCIDR), resolveEnvironment(upEnv))
	if err != nil {
		return err
	}

	client, err := aws.NewClient(
		context.Background(),
		aws.WithProfile(GetProfile()),
		aws.WithRegion(GetRegion()),
	)
	if err != nil {
		return fmt.Errorf("failed to create AWS client: %w", err)
	}

	// Credential preflight; failing here beats failing mid-sequence.
	identity, err := client.GetCallerIdentity()
	if err != nil {
		return fmt.Errorf("not authenticated: %w", err)
	}
	fmt.Printf("Account: %s (%s)\n", identity.Account, client.Region())

	provisioner := aws.NewProvisioner(client.EC2)
	provisioner.Out = os.Stdout

	net, err := provisioner.Provision(client.Context(), plan)
	if err != nil {
		if net != nil && net.VPCID != "" {
			ui.PrintPartialNetwork(net)
		}
		return err
	}
	net.Region = client.Region()

	ui.PrintNetworkSummary(net)

	if upExport {
		fmt.Println("Exporting identifiers to SSM Parameter Store...")
		if err := client.ExportNetwork(net); err != nil {
			return err
		}
		fmt.Printf("Parameters written under /vpcctl/%s/\n", net.Environment)
	}

	return nil
}
