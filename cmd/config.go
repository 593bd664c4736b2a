package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skarthickct/cloud-formation/internal/config"
)

var (
	cfgSetProfile string
	cfgSetRegion  string
	cfgSetEnv     string
	cfgSetCIDR    string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage saved defaults",
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save default profile, region, environment, or CIDR",
	Long: `Persist defaults to ~/.vpcctl/config.yaml so they no longer need to
be passed as flags. Only the flags given are changed.

Examples:
  vpcctl config set --profile prod --region ap-south-1
  vpcctl config set --env Staging --cidr 10.42.0.0/16`,
	RunE: runConfigSet,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd)

	configSetCmd.Flags().StringVar(&cfgSetProfile, "profile", "", "AWS profile to save")
	configSetCmd.Flags().StringVar(&cfgSetRegion, "region", "", "AWS region to save")
	configSetCmd.Flags().StringVar(&cfgSetEnv, "env", "", "Environment name to save")
	configSetCmd.Flags().StringVar(&cfgSetCIDR, "cidr", "", "VPC CIDR block to save")
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if cfgSetProfile == "" && cfgSetRegion == "" && cfgSetEnv == "" && cfgSetCIDR == "" {
		return fmt.Errorf("nothing to save: pass at least one of --profile, --region, --env, --cidr")
	}

	if err := config.SetDefaults(cfgSetProfile, cfgSetRegion, cfgSetEnv, cfgSetCIDR); err != nil {
		return err
	}

	fmt.Printf("Defaults saved to %s\n", config.GetConfigPath())
	return nil
}
