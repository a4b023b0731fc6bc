package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/PhelelaniM/UrbanMind/internal/api"
	"github.com/PhelelaniM/UrbanMind/internal/report"
	"github.com/PhelelaniM/UrbanMind/internal/zoning"
)

var insightsCmd = &cobra.Command{
	Use:   "insights [zone-code]",
	Short: "Show the intelligence record for a zoning code",
	Long:  "Classifies a zoning code such as SR1 or GR2 and prints its record. Without a code, lists every category with its score and grade.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		catalog, err := loadCatalog(cfg)
		if err != nil {
			return err
		}

		if len(args) == 0 {
			return writeCategories(os.Stdout, catalog, asJSON)
		}
		return writeInsights(os.Stdout, catalog, args[0], asJSON)
	},
}

func writeInsights(out io.Writer, catalog *zoning.Catalog, code string, asJSON bool) error {
	in := catalog.Classify(code)
	uses := catalog.UseRights(code)

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(api.InsightsResponse{
			ZoneCode:      code,
			Category:      in.Category,
			Fill:          zoning.FillColor(code),
			PermittedUses: uses.PermittedUses,
			Restrictions:  uses.Restrictions,
			Insights:      in,
		})
	}
	return report.Render(out, report.BuildInsights(code, in, uses))
}

// writeCategories lists the catalog's categories in rule order.
func writeCategories(out io.Writer, catalog *zoning.Catalog, asJSON bool) error {
	var all []zoning.Insights
	for _, category := range catalog.Categories() {
		if in, ok := catalog.Lookup(category); ok {
			all = append(all, in)
		}
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(all)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CATEGORY\tLABEL\tSCORE\tGRADE")
	_, _ = fmt.Fprintln(w, "--------\t-----\t-----\t-----")
	for _, in := range all {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", in.Category, in.Label, in.BaseScore, in.GradeLabel)
	}
	return w.Flush()
}

func init() {
	insightsCmd.Flags().Bool("json", false, "print JSON instead of a report")
	rootCmd.AddCommand(insightsCmd)
}
