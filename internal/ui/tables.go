package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/skarthickct/cloud-formation/internal/netplan"
	pkgtypes "github.com/skarthickct/cloud-formation/pkg/types"
)

// Cell is one styled table cell.
type Cell struct {
	Text  string
	Style lipgloss.Style
}

// renderBoxTable renders headers and rows inside a rounded box. Every
// row must have exactly len(widths) cells.
func renderBoxTable(headers []string, widths []int, rows [][]Cell) string {
	var sb strings.Builder

	border := func(left, mid, right string) {
		sb.WriteString(BorderStyle.Render(left))
		for i, w := range widths {
			sb.WriteString(BorderStyle.Render(strings.Repeat(Horizontal, w+2)))
			if i < len(widths)-1 {
				sb.WriteString(BorderStyle.Render(mid))
			}
		}
		sb.WriteString(BorderStyle.Render(right))
		sb.WriteString("\n")
	}

	border(TopLeft, TopT, TopRight)

	sb.WriteString(BorderStyle.Render(Vertical))
	for i, h := range headers {
		cell := " " + padRight(h, widths[i]) + " "
		sb.WriteString(HeaderStyle.Render(cell))
		sb.WriteString(BorderStyle.Render(Vertical))
	}
	sb.WriteString("\n")

	border(LeftT, Cross, RightT)

	for _, row := range rows {
		sb.WriteString(BorderStyle.Render(Vertical))
		for i, c := range row {
			cell := " " + padRight(c.Text, widths[i]) + " "
			sb.WriteString(c.Style.Render(cell))
			sb.WriteString(BorderStyle.Render(Vertical))
		}
		sb.WriteString("\n")
	}

	border(BottomLeft, BottomT, BottomRight)

	return sb.String()
}

// stateCell renders a resource state with a colored indicator.
func stateCell(state string) Cell {
	switch state {
	case "available":
		return Cell{"● " + state, RunningStyle}
	case "pending":
		return Cell{"◐ " + state, PendingStyle}
	default:
		return Cell{"○ " + state, StoppedStyle}
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// PrintVPCTable prints VPCs in a styled box table
func PrintVPCTable(vpcs []pkgtypes.VPC) {
	headers := []string{"ID", "Name", "CIDR", "Environment", "State", "Default"}
	widths := []int{24, 28, 18, 14, 12, 8}

	var rows [][]Cell
	for _, vpc := range vpcs {
		rows = append(rows, []Cell{
			{vpc.ID, IDStyle},
			{vpc.Name, NameStyle},
			{vpc.CIDR, IPStyle},
			{vpc.Environment, EnvStyle},
			stateCell(vpc.State),
			{yesNo(vpc.IsDefault), MutedStyle},
		})
	}

	fmt.Print(renderBoxTable(headers, widths, rows))
	fmt.Printf("  %d VPCs\n", len(vpcs))
}

// PrintSubnetTable prints subnets in a styled box table
func PrintSubnetTable(subnets []pkgtypes.Subnet) {
	headers := []string{"ID", "Name", "CIDR", "AZ", "IPs", "State", "Public"}
	widths := []int{26, 30, 18, 14, 8, 12, 8}

	var rows [][]Cell
	for _, subnet := range subnets {
		rows = append(rows, []Cell{
			{subnet.ID, IDStyle},
			{subnet.Name, NameStyle},
			{subnet.CIDR, IPStyle},
			{subnet.AZ, MutedStyle},
			{fmt.Sprintf("%d", subnet.AvailableIPs), MutedStyle},
			stateCell(subnet.State),
			{yesNo(subnet.Public), MutedStyle},
		})
	}

	fmt.Print(renderBoxTable(headers, widths, rows))
	fmt.Printf("  %d subnets\n", len(subnets))
}

// PrintPlanTable prints a computed subnet layout before anything is
// created. AZs are shown positionally since the plan is region-agnostic.
func PrintPlanTable(plan *netplan.Plan) {
	headers := []string{"Name", "CIDR", "Tier", "AZ"}
	widths := []int{34, 18, 9, 5}

	var rows [][]Cell
	for _, s := range plan.Subnets() {
		tier := Cell{"private", MutedStyle}
		if s.Public {
			tier = Cell{"public", RunningStyle}
		}
		rows = append(rows, []Cell{
			{s.Name, NameStyle},
			{s.CIDR.String(), IPStyle},
			tier,
			{fmt.Sprintf("AZ%d", s.AZ+1), MutedStyle},
		})
	}

	fmt.Printf("VPC CIDR: %s\n", IPStyle.Render(plan.VPC.String()))
	fmt.Print(renderBoxTable(headers, widths, rows))
	fmt.Printf("  %d subnets planned\n", len(plan.Subnets()))
}

// PrintNetworkSummary prints the identifiers of a provisioned network.
func PrintNetworkSummary(net *pkgtypes.Network) {
	rule := MutedStyle.Render(strings.Repeat("═", 60))

	fmt.Println()
	fmt.Println(rule)
	fmt.Println(HeaderStyle.Render("VPC Infrastructure Created Successfully!"))
	fmt.Println(rule)
	fmt.Printf("VPC ID:           %s\n", IDStyle.Render(net.VPCID))
	fmt.Printf("Internet Gateway: %s\n", IDStyle.Render(net.InternetGateway))
	fmt.Printf("NAT Gateway:      %s\n", IDStyle.Render(net.NatGatewayID))
	fmt.Printf("NAT Elastic IP:   %s\n", IPStyle.Render(net.EIPPublicIP))
	fmt.Printf("Public Subnets:   %s\n", NameStyle.Render(strings.Join(net.PublicSubnets, ", ")))
	fmt.Printf("Private Subnets:  %s\n", NameStyle.Render(strings.Join(net.PrivateSubnets, ", ")))
	fmt.Printf("Public RT:        %s\n", IDStyle.Render(net.PublicRouteTable))
	fmt.Printf("Private RT:       %s\n", IDStyle.Render(net.PrivateRouteTable))
	fmt.Println(rule)
}

// PrintPartialNetwork lists what was created before a provisioning
// failure so the operator can clean up.
func PrintPartialNetwork(net *pkgtypes.Network) {
	fmt.Println()
	fmt.Println(StoppedStyle.Render("Provisioning failed; resources created so far:"))
	if net.VPCID != "" {
		fmt.Printf("  VPC:              %s\n", net.VPCID)
	}
	if net.InternetGateway != "" {
		fmt.Printf("  Internet Gateway: %s\n", net.InternetGateway)
	}
	for _, id := range net.PublicSubnets {
		fmt.Printf("  Public Subnet:    %s\n", id)
	}
	for _, id := range net.PrivateSubnets {
		fmt.Printf("  Private Subnet:   %s\n", id)
	}
	if net.EIPAllocationID != "" {
		fmt.Printf("  Elastic IP:       %s (%s)\n", net.EIPAllocationID, net.EIPPublicIP)
	}
	if net.NatGatewayID != "" {
		fmt.Printf("  NAT Gateway:      %s\n", net.NatGatewayID)
	}
	if net.PublicRouteTable != "" {
		fmt.Printf("  Public RT:        %s\n", net.PublicRouteTable)
	}
	if net.PrivateRouteTable != "" {
		fmt.Printf("  Private RT:       %s\n", net.PrivateRouteTable)
	}
	if net.VPCID != "" {
		fmt.Printf("\nRun 'vpcctl down %s' to remove them.\n", net.VPCID)
	}
}
