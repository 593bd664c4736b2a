package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skarthickct/cloud-formation/internal/config"
)

var (
	// Global flags
	profile string
	region  string
)

// Defaults used when neither flags, config, nor environment provide a
// value; they mirror the standard production topology.
const (
	defaultEnvironment = "Production"
	defaultCIDR        = "10.0.0.0/16"
)

var rootCmd = &cobra.Command{
	Use:   "vpcctl",
	Short: "vpcctl - provision a standard AWS VPC topology",
	Long: `vpcctl provisions a standard AWS VPC topology: 3 public and 3 private
subnets across 3 availability zones, one internet gateway, one NAT
gateway, and the matching route tables.

Two independent paths encode the same topology:

Imperative (direct EC2 calls):
  vpcctl plan                      # Preview the subnet layout offline
  vpcctl up --env Production       # Create the topology call by call
  vpcctl down vpc-12345678         # Tear it down again

Declarative (CloudFormation):
  vpcctl template render           # Emit the CloudFormation template
  vpcctl stack deploy              # Let CloudFormation orchestrate it
  vpcctl stack status              # Stack state and outputs

Inspection:
  vpcctl ls                        # List VPCs
  vpcctl status                    # Saved defaults and caller identity`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "AWS profile to use")
	rootCmd.PersistentFlags().StringVarP(&region, "region", "r", "", "AWS region to use")

	// Bind flags to viper
	_ = viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
	_ = viper.BindPFlag("region", rootCmd.PersistentFlags().Lookup("region"))
}

func initConfig() {
	// Read from environment variables
	viper.SetEnvPrefix("VPCCTL")
	viper.AutomaticEnv()

	// Priority for profile: --profile flag > ~/.vpcctl/config.yaml > AWS_PROFILE env
	if profile == "" {
		if saved := config.GetSavedProfile(); saved != "" {
			profile = saved
		} else {
			profile = os.Getenv("AWS_PROFILE")
		}
	}

	// Priority for region: --region flag > ~/.vpcctl/config.yaml > AWS_* env
	if region == "" {
		if saved := config.GetSavedRegion(); saved != "" {
			region = saved
		} else {
			region = os.Getenv("AWS_REGION")
			if region == "" {
				region = os.Getenv("AWS_DEFAULT_REGION")
			}
		}
	}
}

// GetProfile returns the AWS profile
func GetProfile() string {
	return profile
}

// GetRegion returns the AWS region
func GetRegion() string {
	return region
}

// resolveEnvironment applies the flag > config > default chain for the
// environment name.
func resolveEnvironment(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg, err := config.Load(); err == nil && cfg.Environment != "" {
		return cfg.Environment
	}
	return defaultEnvironment
}

// resolveCIDR applies the flag > config > default chain for the VPC CIDR.
func resolveCIDR(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg, err := config.Load(); err == nil && cfg.VPCCIDR != "" {
		return cfg.VPCCIDR
	}
	return defaultCIDR
}
