package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skarthickct/cloud-formation/internal/netplan"
	"github.com/skarthickct/cloud-formation/internal/ui"
)

var (
	planCIDR string
	planEnv  string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Preview the subnet layout without creating anything",
	Long: `Compute and display the subnet layout that 'up' would provision.
No AWS calls are made; the layout is a pure function of the VPC CIDR.

Examples:
  vpcctl plan
  vpcctl plan --cidr 10.42.0.0/16 --env Staging`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVar(&planCIDR, "cidr", "", "VPC CIDR block (default 10.0.0.0/16)")
	planCmd.Flags().StringVar(&planEnv, "env", "", "Environment name (default Production)")
}

func runPlan(cmd *cobra.Command, args []string) error {
	plan, err := netplan.Compute(resolveCIDR(planCIDR), resolveEnvironment(planEnv))
	if err != nil {
		return err
	}
	if err := plan.Validate(); err != nil {
		return err
	}

	fmt.Printf("Environment: %s\n", plan.Environment)
	ui.PrintPlanTable(plan)
	return nil
}
