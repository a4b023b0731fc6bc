package main

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/PhelelaniM/UrbanMind/internal/db"
	"github.com/PhelelaniM/UrbanMind/internal/parcel"
	"github.com/PhelelaniM/UrbanMind/internal/zoning"
)

var parcelsCmd = &cobra.Command{
	Use:   "parcels",
	Short: "Inspect and import the parcel collection",
}

// -- parcels stats --

var parcelsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count loaded parcels per category and zone code",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("lookup"); err != nil {
			return err
		}
		catalog, err := loadCatalog(cfg)
		if err != nil {
			return err
		}
		parcels, err := loadParcels(cmd.Context(), cfg)
		if err != nil {
			return eris.Wrap(err, "parcels stats")
		}

		formatParcelStats(os.Stdout, computeParcelStats(parcels, catalog))
		return nil
	},
}

// -- parcels import --

var parcelsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace the PostGIS parcel table with the configured files",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if table, _ := cmd.Flags().GetString("table"); table != "" {
			cfg.Parcels.Table = table
		}
		if err := cfg.Validate("import"); err != nil {
			return err
		}

		parcels, err := fileSource(cfg).Load(ctx)
		if err != nil {
			return eris.Wrap(err, "parcels import: load files")
		}

		pool, err := db.Connect(ctx, cfg.Parcels.DatabaseURL, &db.PoolConfig{MaxConns: cfg.Parcels.MaxConns})
		if err != nil {
			return err
		}
		defer pool.Close()

		n, err := parcel.Store(ctx, pool, cfg.Parcels.Table, parcels.Features())
		if err != nil {
			return eris.Wrap(err, "parcels import")
		}

		zap.L().Info("parcels imported", zap.String("table", cfg.Parcels.Table), zap.Int64("rows", n))
		fmt.Fprintf(os.Stdout, "Imported %d parcels into %s\n", n, cfg.Parcels.Table) //nolint:errcheck
		return nil
	},
}

// countRow is one line of the stats table.
type countRow struct {
	Name  string
	Count int
}

// parcelStats summarises a collection.
type parcelStats struct {
	Total      int
	Categories []countRow
	ZoneCodes  []countRow
}

// computeParcelStats counts features per canonical category and raw zone
// code, most frequent first.
func computeParcelStats(parcels *parcel.Collection, catalog *zoning.Catalog) parcelStats {
	byCategory := make(map[string]int)
	byCode := make(map[string]int)
	for _, f := range parcels.Features() {
		byCategory[catalog.Category(f.ZoneCode)]++
		code := f.ZoneCode
		if code == "" {
			code = "(none)"
		}
		byCode[code]++
	}

	return parcelStats{
		Total:      parcels.Len(),
		Categories: sortedCounts(byCategory),
		ZoneCodes:  sortedCounts(byCode),
	}
}

func sortedCounts(m map[string]int) []countRow {
	rows := make([]countRow, 0, len(m))
	for name, n := range m {
		rows = append(rows, countRow{Name: name, Count: n})
	}
	slices.SortFunc(rows, func(a, b countRow) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return rows
}

// formatParcelStats writes the stats tables to w.
func formatParcelStats(out io.Writer, s parcelStats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total parcels:\t%d\n\n", s.Total)

	_, _ = fmt.Fprintln(w, "CATEGORY\tPARCELS")
	_, _ = fmt.Fprintln(w, "--------\t-------")
	for _, r := range s.Categories {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", r.Name, r.Count)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "ZONE CODE\tPARCELS")
	_, _ = fmt.Fprintln(w, "---------\t-------")
	for _, r := range s.ZoneCodes {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", r.Name, r.Count)
	}
	_ = w.Flush()
}

func init() {
	parcelsImportCmd.Flags().String("table", "", "target table (default from config)")

	parcelsCmd.AddCommand(parcelsStatsCmd)
	parcelsCmd.AddCommand(parcelsImportCmd)
	rootCmd.AddCommand(parcelsCmd)
}
