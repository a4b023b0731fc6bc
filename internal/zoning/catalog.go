// Package zoning maps raw zoning codes to canonical categories and their
// static investment-intelligence records.
package zoning

import (
	_ "embed"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// UnknownCategory is the fallback category for empty or unmapped codes.
const UnknownCategory = "unknown"

//go:embed catalog.yaml
var embeddedCatalog []byte

// Dimensions is the fixed scoring dimension set, in display order.
var Dimensions = []string{
	"rights_flexibility",
	"accessibility",
	"amenity_edge",
	"infra_resilience",
	"overlay_constraints",
}

// Factor is one uplift driver or headwind with its impact range.
type Factor struct {
	Factor string `yaml:"factor" json:"factor"`
	Impact string `yaml:"impact" json:"impactRange"`
}

// Record is one category's intelligence plus the codes that select it.
type Record struct {
	Category               string         `yaml:"category"`
	Label                  string         `yaml:"label"`
	Codes                  []string       `yaml:"codes"`
	Prefixes               []string       `yaml:"prefixes"`
	BaseScore              int            `yaml:"score"`
	Thesis                 string         `yaml:"thesis"`
	UpliftDrivers          []Factor       `yaml:"uplift_drivers"`
	Headwinds              []Factor       `yaml:"headwinds"`
	RecommendedDevelopment []string       `yaml:"recommended_development"`
	KPIs                   []string       `yaml:"kpis"`
	DimensionScores        map[string]int `yaml:"dimension_scores"`
}

type catalogFile struct {
	Dimensions []string `yaml:"dimensions"`
	Unknown    Record   `yaml:"unknown"`
	Rules      []Record `yaml:"rules"`
}

// Catalog is an ordered rule table. It is immutable after Parse and safe for
// concurrent use.
type Catalog struct {
	rules   []Record
	unknown Record
	exact   map[string]int
	index   map[string]int
}

// Parse builds a catalog from YAML. Rules whose prefixes could never fire
// because an earlier rule's prefix already covers them are rejected.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "zoning: parse catalog")
	}

	if len(f.Dimensions) > 0 && !slices.Equal(f.Dimensions, Dimensions) {
		return nil, eris.Errorf("zoning: catalog dimensions %v do not match %v", f.Dimensions, Dimensions)
	}
	if len(f.Rules) == 0 {
		return nil, eris.New("zoning: catalog has no rules")
	}

	f.Unknown.Category = UnknownCategory
	if err := normalizeRecord(&f.Unknown); err != nil {
		return nil, err
	}

	c := &Catalog{
		rules:   make([]Record, 0, len(f.Rules)),
		unknown: f.Unknown,
		exact:   make(map[string]int),
		index:   make(map[string]int, len(f.Rules)),
	}

	for i := range f.Rules {
		r := f.Rules[i]
		if err := normalizeRecord(&r); err != nil {
			return nil, err
		}
		if r.Category == UnknownCategory {
			return nil, eris.Errorf("zoning: rule %d uses the reserved category %q", i, UnknownCategory)
		}
		if _, dup := c.index[r.Category]; dup {
			return nil, eris.Errorf("zoning: duplicate category %q", r.Category)
		}
		if len(r.Codes) == 0 && len(r.Prefixes) == 0 {
			return nil, eris.Errorf("zoning: category %q has no codes or prefixes", r.Category)
		}
		for _, code := range r.Codes {
			if prev, dup := c.exact[code]; dup {
				return nil, eris.Errorf("zoning: code %q claimed by %q and %q", code, c.rules[prev].Category, r.Category)
			}
			c.exact[code] = i
		}
		c.index[r.Category] = i
		c.rules = append(c.rules, r)
	}

	if err := checkMasking(c.rules); err != nil {
		return nil, err
	}
	return c, nil
}

// normalizeRecord lowercases codes and prefixes, fills the label and checks
// scores.
func normalizeRecord(r *Record) error {
	r.Category = strings.TrimSpace(r.Category)
	if r.Category == "" {
		return eris.New("zoning: record without category")
	}
	if r.Label == "" {
		r.Label = categoryLabel(r.Category)
	}
	for i, code := range r.Codes {
		r.Codes[i] = normalizeCode(code)
	}
	for i, p := range r.Prefixes {
		r.Prefixes[i] = normalizeCode(p)
		if r.Prefixes[i] == "" {
			return eris.Errorf("zoning: category %q has an empty prefix", r.Category)
		}
	}
	if r.BaseScore < 0 || r.BaseScore > 100 {
		return eris.Errorf("zoning: category %q score %d outside 0-100", r.Category, r.BaseScore)
	}
	for _, d := range Dimensions {
		v, ok := r.DimensionScores[d]
		if !ok {
			return eris.Errorf("zoning: category %q missing dimension %s", r.Category, d)
		}
		if v < 0 || v > 100 {
			return eris.Errorf("zoning: category %q dimension %s=%d outside 0-100", r.Category, d, v)
		}
	}
	if len(r.DimensionScores) != len(Dimensions) {
		return eris.Errorf("zoning: category %q has unknown dimensions", r.Category)
	}
	return nil
}

// checkMasking rejects a later prefix that starts with an earlier one.
func checkMasking(rules []Record) error {
	for i, earlier := range rules {
		for _, later := range rules[i+1:] {
			for _, p := range earlier.Prefixes {
				for _, q := range later.Prefixes {
					if strings.HasPrefix(q, p) {
						return eris.Errorf("zoning: prefix %q of %q masks prefix %q of %q",
							p, earlier.Category, q, later.Category)
					}
				}
			}
		}
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// categoryLabel turns "general_residential" into "General Residential".
// Casers hold state, so each call gets its own.
func categoryLabel(category string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(category, "_", " "))
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "zoning: read catalog %s", path)
	}
	return Parse(data)
}

// Default returns the embedded catalog. It panics if the embedded document is
// invalid, which the package tests guard against.
var Default = sync.OnceValue(func() *Catalog {
	c, err := Parse(embeddedCatalog)
	if err != nil {
		panic(err)
	}
	return c
})

// Category returns the canonical category for a raw code: exact match first,
// then the first rule in declared order with a matching prefix.
func (c *Catalog) Category(zoneCode string) string {
	r := c.match(zoneCode)
	return r.Category
}

func (c *Catalog) match(zoneCode string) *Record {
	code := normalizeCode(zoneCode)
	if code == "" {
		return &c.unknown
	}
	if i, ok := c.exact[code]; ok {
		return &c.rules[i]
	}
	for i := range c.rules {
		for _, p := range c.rules[i].Prefixes {
			if strings.HasPrefix(code, p) {
				return &c.rules[i]
			}
		}
	}
	return &c.unknown
}

// Classify never fails; unmapped input yields the unknown record.
func (c *Catalog) Classify(zoneCode string) Insights {
	return newInsights(c.match(zoneCode))
}

// Lookup returns the record for a canonical category name.
func (c *Catalog) Lookup(category string) (Insights, bool) {
	category = strings.TrimSpace(strings.ToLower(category))
	if category == UnknownCategory {
		return newInsights(&c.unknown), true
	}
	i, ok := c.index[category]
	if !ok {
		return Insights{}, false
	}
	return newInsights(&c.rules[i]), true
}

// Categories lists the canonical categories in rule order, without unknown.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.Category
	}
	return out
}
