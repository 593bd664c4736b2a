package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skarthickct/cloud-formation/internal/aws"
	"github.com/skarthickct/cloud-formation/internal/cfn"
	"github.com/skarthickct/cloud-formation/internal/netplan"
	"github.com/skarthickct/cloud-formation/internal/ui"
)

var (
	stackName string
	stackCIDR string
	stackEnv  string
	stackYes  bool
)

var stackCmd = &cobra.Command{
	Use:   "stack",
	Short: "Manage the topology as a CloudFormation stack",
	Long: `Deploy, inspect, or delete the topology through CloudFormation.
CloudFormation owns resource ordering and rolls back on failure, so
this path never leaves partial infrastructure behind.`,
}

var stackDeployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Create or update the stack",
	Long: `Render the topology template and hand it to CloudFormation, creating
the stack if it does not exist and updating it otherwise. Blocks until
the stack settles.

Examples:
  vpcctl stack deploy
  vpcctl stack deploy --stack-name staging-network --env Staging`,
	RunE: runStackDeploy,
}

var stackDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the stack and all its resources",
	RunE:  runStackDelete,
}

var stackStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stack's state and outputs",
	RunE:  runStackStatus,
}

func init() {
	rootCmd.AddCommand(stackCmd)
	stackCmd.AddCommand(stackDeployCmd)
	stackCmd.AddCommand(stackDeleteCmd)
	stackCmd.AddCommand(stackStatusCmd)

	stackCmd.PersistentFlags().StringVar(&stackName, "stack-name", "vpcctl-network", "CloudFormation stack name")

	stackDeployCmd.Flags().StringVar(&stackCIDR, "cidr", "", "VPC CIDR block (default 10.0.0.0/16)")
	stackDeployCmd.Flags().StringVar(&stackEnv, "env", "", "Environment name (default Production)")

	stackDeleteCmd.Flags().BoolVarP(&stackYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runStackDeploy(cmd *cobra.Command, args []string) error {
	plan, err := netplan.Compute(resolveCIDR(stackCIDR), resolveEnvironment(stackEnv))
	if err != nil {
		return err
	}

	body, err := cfn.NetworkTemplate(plan).YAML()
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

	fmt.Printf("Deploying stack %s (this can take several minutes)...\n", stackName)
	action, err := client.DeployStack(stackName, string(body), plan.Environment)
	if err != nil {
		return err
	}

	switch action {
	case aws.StackUnchanged:
		fmt.Printf("Stack %s is already up to date\n", stackName)
	default:
		fmt.Printf("Stack %s %s\n", stackName, action)
	}

	info, err := client.DescribeStack(stackName)
	if err != nil {
		return err
	}
	printStackOutputs(info)
	return nil
}

func runStackDelete(cmd *cobra.Command, args []string) error {
	if !stackYes && !confirm(fmt.Sprintf("Delete stack %s and all its resources?", stackName)) {
		fmt.Println("Aborted")
		return nil
	}

	client, err := aws.NewClient(
		context.Background(),
		aws.WithProfile(GetProfile()),
		aws.WithRegion(GetRegion()),
	)
	if err != nil {
		return fmt.Errorf("failed to create AWS client: %w", err)
	}

	fmt.Printf("Deleting stack %s (this can take several minutes)...\n", stackName)
	if err := client.DeleteStack(stackName); err != nil {
		return err
	}

	fmt.Printf("Stack %s deleted\n", stackName)
	return nil
}

func runStackStatus(cmd *cobra.Command, args []string) error {
	client, err := aws.NewClient(
		context.Background(),
		aws.WithProfile(GetProfile()),
		aws.WithRegion(GetRegion()),
	)
	if err != nil {
		return fmt.Errorf("failed to create AWS client: %w", err)
	}

	info, err := client.DescribeStack(stackName)
	if err != nil {
		return err
	}

	fmt.Printf("Stack:  %s\n", info.Name)
	fmt.Printf("Status: %s\n", formatStackStatus(info.Status))
	if info.Reason != "" {
		fmt.Printf("Reason: %s\n", ui.MutedStyle.Render(info.Reason))
	}
	printStackOutputs(info)
	return nil
}

func printStackOutputs(info *aws.StackInfo) {
	if len(info.Outputs) == 0 {
		return
	}
	fmt.Println("\nOutputs:")
	for _, out := range info.Outputs {
		fmt.Printf("  %-20s %s\n", out.Key, ui.IDStyle.Render(out.Value))
	}
}

func formatStackStatus(status string) string {
	switch status {
	case "CREATE_COMPLETE", "UPDATE_COMPLETE":
		return ui.RunningStyle.Render(status)
	case "CREATE_IN_PROGRESS", "UPDATE_IN_PROGRESS", "DELETE_IN_PROGRESS":
		return ui.PendingStyle.Render(status)
	default:
		return ui.StoppedStyle.Render(status)
	}
}
