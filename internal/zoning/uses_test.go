package zoning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUseRights_CodeSpecific(t *testing.T) {
	c := Default()

	got := c.UseRights("GR2")
	assert.Equal(t, []string{"Multi-family dwellings", "Townhouses", "Flats", "Residential buildings"}, got.PermittedUses)
	assert.Equal(t, []string{"Height limit: 4-5 stories", "Setback: 4.5m from street", "Coverage: 60% max"}, got.Restrictions)

	got = c.UseRights("tr2")
	assert.Equal(t, []string{"Special restrictions apply", "Contact municipality for details"}, got.Restrictions)
}

func TestUseRights_CategoryFallback(t *testing.T) {
	c := Default()

	tests := []struct {
		code      string
		firstUse  string
		heightCap string
	}{
		{"gr4", "Single-family homes", "Height limit: 3 stories"},
		{"sr2", "Single-family homes", "Height limit: 3 stories"},
		{"gb3", "Retail stores", "Height limit: 5 stories"},
		{"lb1", "Retail stores", "Height limit: 5 stories"},
		{"gi1", "Factories", "Height limit: 4 stories"},
		{"mu2", "Residential units", "Height limit: 6 stories"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got := c.UseRights(tt.code)
			assert.Equal(t, tt.firstUse, got.PermittedUses[0])
			assert.Equal(t, tt.heightCap, got.Restrictions[0])
		})
	}
}

func TestUseRights_NotAvailable(t *testing.T) {
	c := Default()

	for _, code := range []string{"", "os1", "ut", "zz9"} {
		got := c.UseRights(code)
		assert.Equal(t, []string{NotAvailable}, got.PermittedUses, code)
		assert.Equal(t, []string{NotAvailable}, got.Restrictions, code)
	}
}

func TestUseRights_ReturnsCopies(t *testing.T) {
	c := Default()

	got := c.UseRights("sr1")
	got.PermittedUses[0] = "mutated"

	assert.Equal(t, "Single-family homes", c.UseRights("sr1").PermittedUses[0])
}

func TestFillColor(t *testing.T) {
	assert.Equal(t, "#ffff00", FillColor("SR1"))
	assert.Equal(t, "#ff9900", FillColor("gr2"))
	assert.Equal(t, "#cccccc", FillColor(" TR2 "))
	assert.Equal(t, "#33cc33", FillColor("OS3"))
	assert.Equal(t, DefaultFill, FillColor("GB1"))
	assert.Equal(t, DefaultFill, FillColor(""))
}
