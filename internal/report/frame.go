// Package report turns a lookup result into presentation frames that can be
// revealed one at a time or rendered all at once.
package report

import (
	"fmt"
	"time"

	"github.com/PhelelaniM/UrbanMind/internal/lookup"
	"github.com/PhelelaniM/UrbanMind/internal/zoning"
)

// Section identifies what a frame shows.
type Section string

const (
	SectionError        Section = "error"
	SectionLocation     Section = "location"
	SectionZoning       Section = "zoning"
	SectionUses         Section = "uses"
	SectionRestrictions Section = "restrictions"
	SectionInsights     Section = "insights"
	SectionDisclaimer   Section = "disclaimer"
)

// Disclaimer closes every successful report.
const Disclaimer = "Commentary is illustrative, not authoritative. Confirm zoning rights with the municipality before acting on them."

const noInformation = "No information available"

// Frame is one block of the report. Delay is how long to wait before
// showing it.
type Frame struct {
	Section Section       `json:"section"`
	Title   string        `json:"title"`
	Lines   []string      `json:"lines"`
	Delay   time.Duration `json:"delay"`
}

// Build lays out resp as frames. The first frame has no delay and every
// later one waits delay. A failed response yields a single error frame.
func Build(resp lookup.Response, delay time.Duration) []Frame {
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = lookup.MsgTransport
		}
		return []Frame{{Section: SectionError, Title: "Error", Lines: []string{msg}}}
	}

	frames := append([]Frame{locationFrame(resp)},
		body(resp.ZoneCode, resp.ZoneDescription, resp.PermittedUses, resp.Restrictions, resp.Insights)...)
	for i := 1; i < len(frames); i++ {
		frames[i].Delay = delay
	}
	return frames
}

// BuildInsights lays out a catalog entry on its own, without a parcel.
func BuildInsights(zoneCode string, in zoning.Insights, uses zoning.UseRights) []Frame {
	return body(zoneCode, "", uses.PermittedUses, uses.Restrictions, &in)
}

func body(zoneCode, description string, uses, restrictions []string, in *zoning.Insights) []Frame {
	frames := []Frame{
		zoningFrame(zoneCode, description, in),
		listFrame(SectionUses, "Permitted Uses", uses),
		listFrame(SectionRestrictions, "Restrictions", restrictions),
	}
	if in != nil {
		frames = append(frames, insightsFrame(*in))
	}
	return append(frames, Frame{Section: SectionDisclaimer, Title: "Disclaimer", Lines: []string{Disclaimer}})
}

func locationFrame(resp lookup.Response) Frame {
	f := Frame{Section: SectionLocation, Title: "GPS Location"}
	if resp.Kind == lookup.KindKey && resp.ParcelKey != "" {
		f.Title = "ERF: " + resp.ParcelKey
	}
	if resp.ParcelKey != "" {
		f.Lines = append(f.Lines, "ERF Number:\t"+resp.ParcelKey)
	}
	if resp.Location != nil {
		f.Lines = append(f.Lines, "Coordinates:\t"+resp.Location.String())
	}
	return f
}

func zoningFrame(zoneCode, description string, in *zoning.Insights) Frame {
	f := Frame{Section: SectionZoning, Title: "Zoning Type: " + displayCode(zoneCode)}
	if description != "" {
		f.Lines = append(f.Lines, description)
	}
	if in != nil {
		f.Lines = append(f.Lines, "Category:\t"+in.Label)
	}
	return f
}

func displayCode(code string) string {
	if code == "" {
		return "Unknown"
	}
	return code
}

func listFrame(section Section, title string, items []string) Frame {
	f := Frame{Section: section, Title: title}
	if len(items) == 0 {
		f.Lines = []string{noInformation}
		return f
	}
	for _, item := range items {
		f.Lines = append(f.Lines, "- "+item)
	}
	return f
}

func insightsFrame(in zoning.Insights) Frame {
	lines := []string{
		fmt.Sprintf("Score:\t%d (%s)", in.BaseScore, in.NormalizedScore),
		"Grade:\t" + in.GradeLabel,
		in.InvestmentThesis,
	}
	lines = appendFactors(lines, "Uplift drivers", "+", in.UpliftDrivers)
	lines = appendFactors(lines, "Headwinds", "-", in.Headwinds)

	if len(in.RecommendedDevelopment) > 0 {
		lines = append(lines, "Recommended development:")
		for _, r := range in.RecommendedDevelopment {
			lines = append(lines, "  * "+r)
		}
	}
	if len(in.KPIs) > 0 {
		lines = append(lines, "KPIs:")
		for _, k := range in.KPIs {
			lines = append(lines, "  * "+k)
		}
	}
	if len(in.DimensionScores) > 0 {
		lines = append(lines, "Dimension scores:")
		for _, d := range in.DimensionScores {
			lines = append(lines, fmt.Sprintf("  %s\t%d", d.Dimension, d.Score))
		}
	}

	return Frame{Section: SectionInsights, Title: "Investment Intelligence: " + in.Label, Lines: lines}
}

func appendFactors(lines []string, heading, sign string, factors []zoning.Factor) []string {
	if len(factors) == 0 {
		return lines
	}
	lines = append(lines, heading+":")
	for _, f := range factors {
		lines = append(lines, fmt.Sprintf("  %s %s\t%s", sign, f.Factor, f.Impact))
	}
	return lines
}
