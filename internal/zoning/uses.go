package zoning

import (
	"slices"
	"strings"
)

// NotAvailable is the single entry returned when no use rights are known.
const NotAvailable = "Information not available"

// UseRights lists what a zone permits and what constrains it.
type UseRights struct {
	PermittedUses []string `json:"permittedUses"`
	Restrictions  []string `json:"restrictions"`
}

// codeUseRights is keyed by lowercase zone code.
var codeUseRights = map[string]UseRights{
	"sr1": {
		PermittedUses: []string{"Single-family homes", "Home occupation (with restrictions)", "Second dwelling (with restrictions)"},
		Restrictions:  []string{"Height limit: 2-3 stories", "Setback: 3-5m from street", "Coverage: 60% max"},
	},
	"gr2": {
		PermittedUses: []string{"Multi-family dwellings", "Townhouses", "Flats", "Residential buildings"},
		Restrictions:  []string{"Height limit: 4-5 stories", "Setback: 4.5m from street", "Coverage: 60% max"},
	},
	"tr2": {
		PermittedUses: []string{"Public roads", "Public parking", "Transport facilities"},
		Restrictions:  []string{"Special restrictions apply", "Contact municipality for details"},
	},
	"os3": {
		PermittedUses: []string{"Special open space", "Environmental conservation", "Cultural and historical sites"},
		Restrictions:  []string{"Development restrictions apply", "Environmental impact assessment required", "Heritage approval may be required"},
	},
}

var (
	residentialRights = UseRights{
		PermittedUses: []string{"Single-family homes", "Multi-family dwellings", "Townhouses"},
		Restrictions:  []string{"Height limit: 3 stories", "Setback: 5m from street", "Coverage: 60% max"},
	}
	commercialRights = UseRights{
		PermittedUses: []string{"Retail stores", "Offices", "Restaurants", "Hotels"},
		Restrictions:  []string{"Height limit: 5 stories", "Setback: 3m from street", "Coverage: 80% max"},
	}
	industrialRights = UseRights{
		PermittedUses: []string{"Factories", "Warehouses", "Distribution centers"},
		Restrictions:  []string{"Height limit: 4 stories", "Setback: 10m from street", "Coverage: 70% max"},
	}
	mixedUseRights = UseRights{
		PermittedUses: []string{"Residential units", "Retail on ground floor", "Offices"},
		Restrictions:  []string{"Height limit: 6 stories", "Setback: 4m from street", "Coverage: 75% max"},
	}
)

// categoryUseRights are the family defaults for codes without an entry above.
var categoryUseRights = map[string]UseRights{
	"single_residential":  residentialRights,
	"general_residential": residentialRights,
	"general_business":    commercialRights,
	"local_business":      commercialRights,
	"general_industrial":  industrialRights,
	"mixed_use":           mixedUseRights,
}

// UseRights returns code-specific rights, then the category family's
// defaults, then a single NotAvailable entry. Slices are copies.
func (c *Catalog) UseRights(zoneCode string) UseRights {
	code := normalizeCode(zoneCode)
	if r, ok := codeUseRights[code]; ok {
		return r.clone()
	}
	if r, ok := categoryUseRights[c.Category(code)]; ok {
		return r.clone()
	}
	return UseRights{
		PermittedUses: []string{NotAvailable},
		Restrictions:  []string{NotAvailable},
	}
}

func (u UseRights) clone() UseRights {
	return UseRights{
		PermittedUses: slices.Clone(u.PermittedUses),
		Restrictions:  slices.Clone(u.Restrictions),
	}
}

// DefaultFill is the parcel layer colour for codes without their own.
const DefaultFill = "#3388ff"

var zoneFills = map[string]string{
	"SR1": "#ffff00",
	"GR2": "#ff9900",
	"TR2": "#cccccc",
	"OS3": "#33cc33",
}

// FillColor returns the parcel layer fill colour for a zone code.
func FillColor(zoneCode string) string {
	if c, ok := zoneFills[strings.ToUpper(strings.TrimSpace(zoneCode))]; ok {
		return c
	}
	return DefaultFill
}
