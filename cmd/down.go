package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skarthickct/cloud-formation/internal/aws"
	"github.com/skarthickct/cloud-formation/internal/ui"
)

var (
	downYes        bool
	downKeepParams bool
)

var downCmd = &cobra.Command{
	Use:   "down [vpc-id]",
	Short: "Tear down a provisioned VPC topology",
	Long: `Delete a VPC and everything this tool created inside it, in reverse
creation order: NAT gateways, Elastic IPs, subnets, route tables,
internet gateway, then the VPC itself. Exported SSM parameters are
removed as well unless --keep-params is given.

If no VPC ID is provided, an interactive selector over the VPCs this
tool created is shown.

Examples:
  vpcctl down                      # Interactive selector
  vpcctl down vpc-12345678 --yes   # No confirmation prompt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDown,
}

func init() {
	rootCmd.AddCommand(downCmd)

	downCmd.Flags().BoolVarP(&downYes, "yes", "y", false, "Skip the confirmation prompt")
	downCmd.Flags().BoolVar(&downKeepParams, "keep-params", false, "Leave exported SSM parameters in place")
}

func runDown(cmd *cobra.Command, args []string) error {
	client, err := aws.NewClient(
		context.Background(),
		aws.WithProfile(GetProfile()),
		aws.WithRegion(GetRegion()),
	)
	if err != nil {
		return fmt.Errorf("failed to create AWS client: %w", err)
	}

	var vpcID string

	if len(args) > 0 {
		vpcID = args[0]
	} else {
		vpcs, err := client.ListManagedVPCs()
		if err != nil {
			return fmt.Errorf("failed to list VPCs: %w", err)
		}
		if len(vpcs) == 0 {
			fmt.Println("No managed VPCs found")
			return nil
		}

		selected, err := ui.SelectVPC(vpcs)
		if err != nil {
			return err
		}
		vpcID = selected.ID
	}

	if !downYes && !confirm(fmt.Sprintf("Delete VPC %s and all its resources?", vpcID)) {
		fmt.Println("Aborted")
		return nil
	}

	teardown := aws.NewTeardown(client.EC2)
	teardown.Out = os.Stdout

	environment, err := teardown.Destroy(client.Context(), vpcID)
	if err != nil {
		return err
	}

	if environment != "" && !downKeepParams {
		fmt.Println("Removing exported SSM parameters...")
		if err := client.DeleteNetworkParams(environment); err != nil {
			return err
		}
	}

	fmt.Println("\nVPC Infrastructure Deleted Successfully!")
	return nil
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
