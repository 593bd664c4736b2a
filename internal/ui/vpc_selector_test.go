package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgtypes "github.com/skarthickct/cloud-formation/pkg/types"
)

func selectorVPCs() []pkgtypes.VPC {
	return []pkgtypes.VPC{
		{ID: "vpc-0001", Name: "Production-VPC", CIDR: "10.0.0.0/16", Environment: "Production"},
		{ID: "vpc-0002", Name: "Staging-VPC", CIDR: "10.1.0.0/16", Environment: "Staging"},
	}
}

func TestVPCModelEnterSelects(t *testing.T) {
	m := NewVPCModel(selectorVPCs())

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	updated, _ = updated.(VPCModel).Update(tea.KeyMsg{Type: tea.KeyEnter})

	selected, err := updated.(VPCModel).selection()
	require.NoError(t, err)
	assert.Equal(t, "vpc-0002", selected.ID)
}

func TestVPCModelEscCancels(t *testing.T) {
	m := NewVPCModel(selectorVPCs())

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	_, err := updated.(VPCModel).selection()
	assert.Error(t, err)
}

func TestVPCModelInterruptedWithoutChoice(t *testing.T) {
	// No Enter, no Esc: the program was torn down externally and there
	// is no selection to return.
	m := NewVPCModel(selectorVPCs())

	_, err := m.selection()
	assert.Error(t, err)
}

func TestVPCModelFilterByEnvironment(t *testing.T) {
	m := NewVPCModel(selectorVPCs())

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("stag")})

	result := updated.(VPCModel)
	require.Len(t, result.filtered, 1)
	assert.Equal(t, "vpc-0002", result.filtered[0].ID)
}
