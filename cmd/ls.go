package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skarthickct/cloud-formation/internal/aws"
	"github.com/skarthickct/cloud-formation/internal/ui"
)

var lsManaged bool

var lsCmd = &cobra.Command{
	Use:   "ls [vpc-id]",
	Short: "List VPCs, or the subnets of one VPC",
	Long: `List VPCs with their CIDR, environment, and state. With a VPC ID,
list that VPC's subnets instead.

Examples:
  vpcctl ls                  # All VPCs
  vpcctl ls --managed        # Only VPCs created by this tool
  vpcctl ls vpc-12345678     # Subnets of a specific VPC`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLs,
}

func init() {
	rootCmd.AddCommand(lsCmd)

	lsCmd.Flags().BoolVar(&lsManaged, "managed", false, "Only show VPCs created by this tool")
}

func runLs(cmd *cobra.Command, args []string) error {
	client, err := aws.NewClient(
		context.Background(),
		aws.WithProfile(GetProfile()),
		aws.WithRegion(GetRegion()),
	)
	if err != nil {
		return fmt.Errorf("failed to create AWS client: %w", err)
	}

	if len(args) > 0 {
		subnets, err := client.ListSubnets(args[0])
		if err != nil {
			return fmt.Errorf("failed to list subnets: %w", err)
		}
		if len(subnets) == 0 {
			fmt.Println("No subnets found in this VPC")
			return nil
		}
		ui.PrintSubnetTable(subnets)
		return nil
	}

	list := client.ListVPCs
	if lsManaged {
		list = client.ListManagedVPCs
	}
	vpcs, err := list()
	if err != nil {
		return fmt.Errorf("failed to list VPCs: %w", err)
	}
	if len(vpcs) == 0 {
		fmt.Println("No VPCs found")
		return nil
	}

	ui.PrintVPCTable(vpcs)
	return nil
}
