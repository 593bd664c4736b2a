package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skarthickct/cloud-formation/internal/aws"
	"github.com/skarthickct/cloud-formation/internal/config"
	"github.com/skarthickct/cloud-formation/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show saved defaults and authentication status",
	Long: `Display the saved provisioning defaults and verify that the current
AWS credentials are valid.

Examples:
  vpcctl status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println("Current Status")
	fmt.Println(ui.MutedStyle.Render("─────────────────────────────────"))
	fmt.Println()

	fmt.Printf("Profile:     %s\n", orUnset(GetProfile()))
	fmt.Printf("Region:      %s\n", orUnset(GetRegion()))
	fmt.Printf("Environment: %s\n", ui.EnvStyle.Render(resolveEnvironment("")))
	fmt.Printf("VPC CIDR:    %s\n", resolveCIDR(""))
	if cfg.Environment == "" && cfg.VPCCIDR == "" {
		fmt.Println(ui.MutedStyle.Render("             (defaults; nothing saved in ~/.vpcctl/config.yaml)"))
	}
	fmt.Println()

	fmt.Print("Auth:        ")
	client, err := aws.NewClient(
		context.Background(),
		aws.WithProfile(GetProfile()),
		aws.WithRegion(GetRegion()),
	)
	if err != nil {
		fmt.Println(ui.StoppedStyle.Render("✗ Not authenticated"))
		fmt.Printf("             %s\n", ui.MutedStyle.Render(err.Error()))
		return nil
	}

	identity, err := client.GetCallerIdentity()
	if err != nil {
		fmt.Println(ui.StoppedStyle.Render("✗ Not authenticated"))
		fmt.Printf("             %s\n", ui.MutedStyle.Render(err.Error()))
		fmt.Println()
		fmt.Println("To authenticate:")
		if GetProfile() != "" {
			fmt.Printf("  aws sso login --profile %s\n", GetProfile())
		} else {
			fmt.Println("  aws configure")
		}
		return nil
	}

	fmt.Println(ui.RunningStyle.Render("✓ Authenticated"))
	fmt.Printf("Account:     %s\n", identity.Account)
	fmt.Printf("Identity:    %s\n", ui.MutedStyle.Render(identity.Arn))
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return ui.MutedStyle.Render("(not set)")
	}
	return s
}
