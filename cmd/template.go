package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skarthickct/cloud-formation/internal/cfn"
	"github.com/skarthickct/cloud-formation/internal/netplan"
)

var (
	templateCIDR   string
	templateEnv    string
	templateFormat string
	templateOutput string
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Work with the CloudFormation template",
}

var templateRenderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the CloudFormation template for the topology",
	Long: `Render the CloudFormation template that describes the same topology
'up' provisions imperatively. No AWS calls are made.

Examples:
  vpcctl template render
  vpcctl template render --format json
  vpcctl template render --cidr 10.42.0.0/16 --output network.yaml`,
	RunE: runTemplateRender,
}

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.AddCommand(templateRenderCmd)

	templateRenderCmd.Flags().StringVar(&templateCIDR, "cidr", "", "VPC CIDR block (default 10.0.0.0/16)")
	templateRenderCmd.Flags().StringVar(&templateEnv, "env", "", "Environment name (default Production)")
	templateRenderCmd.Flags().StringVar(&templateFormat, "format", "yaml", "Output format: yaml or json")
	templateRenderCmd.Flags().StringVarP(&templateOutput, "output", "o", "", "Write to a file instead of stdout")
}

func runTemplateRender(cmd *cobra.Command, args []string) error {
	plan, err := netplan.Compute(resolveCIDR(templateCIDR), resolveEnvironment(templateEnv))
	if err != nil {
		return err
	}

	body, err := renderTemplate(plan, templateFormat)
	if err != nil {
		return err
	}

	if templateOutput == "" {
		fmt.Print(string(body))
		return nil
	}

	if err := os.WriteFile(templateOutput, body, 0o644); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	fmt.Printf("Template written to %s\n", templateOutput)
	return nil
}

func renderTemplate(plan *netplan.Plan, format string) ([]byte, error) {
	template := cfn.NetworkTemplate(plan)
	switch format {
	case "yaml":
		return template.YAML()
	case "json":
		return template.JSON()
	default:
		return nil, fmt.Errorf("unknown format %q (want yaml or json)", format)
	}
}
