// Package netplan computes the subnet layout carved out of a VPC CIDR:
// three public and three private /24 subnets spread across three
// availability zones. The layout is a pure function of the input, so the
// same CIDR always yields the same plan.
package netplan

import (
	"encoding/binary"
	"fmt"
	"net/netip"
)

// AZCount is the number of availability zones the topology spans.
const AZCount = 3

// Subnet /24 slots within the VPC CIDR. Public subnets occupy the first
// three slots after the reserved zeroth /24; private subnets start at
// slot 11, leaving room to grow either tier without renumbering.
var (
	publicSlots  = []int{1, 2, 3}
	privateSlots = []int{11, 12, 13}
)

// maxPrefixBits is the longest VPC prefix that still fits all slots:
// slot 13 requires at least fourteen /24 blocks, so a /20 is the minimum.
const maxPrefixBits = 20

// Subnet is one planned subnet.
type Subnet struct {
	Name   string
	CIDR   netip.Prefix
	AZ     int // zero-based index into the region's availability zones
	Public bool
}

// Plan is the full subnet layout for one VPC.
type Plan struct {
	Environment string
	VPC         netip.Prefix
	Public      []Subnet
	Private     []Subnet
}

// Compute carves the subnet layout out of cidr. The CIDR must be a
// canonical IPv4 prefix no longer than /20.
func Compute(cidr, environment string) (*Plan, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid VPC CIDR %q: %w", cidr, err)
	}
	if !prefix.Addr().Is4() {
		return nil, fmt.Errorf("invalid VPC CIDR %q: must be IPv4", cidr)
	}
	if prefix.Masked() != prefix {
		return nil, fmt.Errorf("invalid VPC CIDR %q: host bits set, expected %s", cidr, prefix.Masked())
	}
	if prefix.Bits() > maxPrefixBits {
		return nil, fmt.Errorf("VPC CIDR %q is too small: need a /%d or larger to fit six /24 subnets", cidr, maxPrefixBits)
	}

	p := &Plan{
		Environment: environment,
		VPC:         prefix,
	}

	for i, slot := range publicSlots {
		p.Public = append(p.Public, Subnet{
			Name:   fmt.Sprintf("%s-Public-Subnet-AZ%d", environment, i+1),
			CIDR:   nthBlock(prefix, slot),
			AZ:     i,
			Public: true,
		})
	}
	for i, slot := range privateSlots {
		p.Private = append(p.Private, Subnet{
			Name: fmt.Sprintf("%s-Private-Subnet-AZ%d", environment, i+1),
			CIDR: nthBlock(prefix, slot),
			AZ:   i,
		})
	}

	return p, nil
}

// Subnets returns all planned subnets, public first.
func (p *Plan) Subnets() []Subnet {
	out := make([]Subnet, 0, len(p.Public)+len(p.Private))
	out = append(out, p.Public...)
	out = append(out, p.Private...)
	return out
}

// Validate checks the invariants every plan must hold: each subnet is
// contained in the VPC CIDR and no two subnets overlap.
func (p *Plan) Validate() error {
	subnets := p.Subnets()
	for i, s := range subnets {
		if !p.VPC.Contains(s.CIDR.Addr()) || s.CIDR.Bits() < p.VPC.Bits() {
			return fmt.Errorf("subnet %s (%s) is not contained in VPC CIDR %s", s.Name, s.CIDR, p.VPC)
		}
		for _, t := range subnets[i+1:] {
			if s.CIDR.Overlaps(t.CIDR) {
				return fmt.Errorf("subnets %s (%s) and %s (%s) overlap", s.Name, s.CIDR, t.Name, t.CIDR)
			}
		}
	}
	return nil
}

// nthBlock returns the nth /24 inside prefix.
func nthBlock(prefix netip.Prefix, n int) netip.Prefix {
	base := prefix.Addr().As4()
	addr := binary.BigEndian.Uint32(base[:]) + uint32(n)<<8

	var b [4]byte
	binary.BigEndian.PutUint32(b[:], addr)
	return netip.PrefixFrom(netip.AddrFrom4(b), 24)
}
