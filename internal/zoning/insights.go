package zoning

import (
	"fmt"
	"slices"
)

// DimensionScore is one named score, kept in Dimensions order.
type DimensionScore struct {
	Dimension string `json:"dimension"`
	Score     int    `json:"score"`
}

// Insights is the presentation view of a Record with its derived values.
type Insights struct {
	Category               string           `json:"category"`
	Label                  string           `json:"label"`
	BaseScore              int              `json:"baseScore"`
	NormalizedScore        string           `json:"normalizedScore"`
	Grade                  string           `json:"grade"`
	GradeLabel             string           `json:"gradeLabel"`
	InvestmentThesis       string           `json:"investmentThesis"`
	UpliftDrivers          []Factor         `json:"upliftDrivers"`
	Headwinds              []Factor         `json:"headwinds"`
	RecommendedDevelopment []string         `json:"recommendedDevelopment"`
	KPIs                   []string         `json:"kpis"`
	DimensionScores        []DimensionScore `json:"dimensionScores"`
}

// newInsights copies r so callers cannot mutate catalog state.
func newInsights(r *Record) Insights {
	dims := make([]DimensionScore, 0, len(Dimensions))
	for _, d := range Dimensions {
		dims = append(dims, DimensionScore{Dimension: d, Score: r.DimensionScores[d]})
	}
	return Insights{
		Category:               r.Category,
		Label:                  r.Label,
		BaseScore:              r.BaseScore,
		NormalizedScore:        NormalizedScore(r.BaseScore),
		Grade:                  Grade(r.BaseScore),
		GradeLabel:             GradeLabel(r.BaseScore),
		InvestmentThesis:       r.Thesis,
		UpliftDrivers:          slices.Clone(r.UpliftDrivers),
		Headwinds:              slices.Clone(r.Headwinds),
		RecommendedDevelopment: slices.Clone(r.RecommendedDevelopment),
		KPIs:                   slices.Clone(r.KPIs),
		DimensionScores:        dims,
	}
}

// Known reports whether the insights came from a real category.
func (i Insights) Known() bool {
	return i.Category != "" && i.Category != UnknownCategory
}

// NormalizedScore renders base/100 with exactly two decimals.
func NormalizedScore(base int) string {
	return fmt.Sprintf("%.2f", float64(base)/100)
}

// Grade maps a base score to a letter. Boundaries belong to the higher grade.
func Grade(base int) string {
	switch {
	case base >= 80:
		return "A"
	case base >= 70:
		return "B"
	case base >= 60:
		return "C"
	case base >= 50:
		return "D"
	default:
		return "E"
	}
}

var gradeDescriptors = map[string]string{
	"A": "Excellent",
	"B": "Good",
	"C": "Fair",
	"D": "Weak",
	"E": "Poor",
}

// GradeLabel is the grade with its descriptor, e.g. "B - Good".
func GradeLabel(base int) string {
	g := Grade(base)
	return g + " - " + gradeDescriptors[g]
}
