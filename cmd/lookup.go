package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/PhelelaniM/UrbanMind/internal/lookup"
	"github.com/PhelelaniM/UrbanMind/internal/report"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Look up the zoning of one parcel",
	Long:  "Resolves an ERF number (--erf) or a GPS position (--coords \"lat, lng\" or DMS) and prints the zoning report.",
	Example: `  urbanmind lookup --erf 12345
  urbanmind lookup --coords "-33.919578, 18.432544" --staged
  urbanmind lookup --coords "33°55'10.5\"S, 18°25'57.2\"E" --json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		erf, _ := cmd.Flags().GetString("erf")
		coordsRaw, _ := cmd.Flags().GetString("coords")
		asJSON, _ := cmd.Flags().GetBool("json")
		staged, _ := cmd.Flags().GetBool("staged")

		req, err := lookupRequest(cmd, erf, coordsRaw)
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true

		env, err := initLookup(cmd.Context(), cfg, "lookup")
		if err != nil {
			return err
		}

		resp := env.Service.Lookup(cmd.Context(), req)
		opts := outputOptions{JSON: asJSON}
		if staged {
			opts.Player = report.NewPlayer()
			opts.Delay = cfg.Report.StageDelay()
		}
		if err := writeLookup(cmd.Context(), os.Stdout, resp, opts); err != nil {
			return err
		}
		if !resp.Success {
			return eris.Errorf("lookup failed: %s", resp.ErrorCode)
		}
		return nil
	},
}

// lookupRequest builds the request from whichever identifier flag was set.
func lookupRequest(cmd *cobra.Command, erf, coordsRaw string) (lookup.Request, error) {
	erfSet := cmd.Flags().Changed("erf")
	coordsSet := cmd.Flags().Changed("coords")
	switch {
	case erfSet && coordsSet:
		return lookup.Request{}, eris.New("use either --erf or --coords, not both")
	case coordsSet:
		return lookup.CoordinatesRequest(coordsRaw), nil
	case erfSet:
		return lookup.KeyRequest(erf), nil
	default:
		return lookup.Request{}, eris.New("one of --erf or --coords is required")
	}
}

// outputOptions controls how a lookup result is printed.
type outputOptions struct {
	JSON   bool
	Player *report.Player // nil renders everything at once
	Delay  time.Duration
}

// writeLookup prints resp as JSON, as a staged report or as a plain report.
func writeLookup(ctx context.Context, out io.Writer, resp lookup.Response, opts outputOptions) error {
	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if opts.Player == nil {
		return report.Render(out, report.Build(resp, 0))
	}

	first := true
	return opts.Player.Play(ctx, report.Build(resp, opts.Delay), func(f report.Frame) error {
		if !first {
			if _, err := io.WriteString(out, "\n"); err != nil {
				return err
			}
		}
		first = false
		return report.RenderFrame(out, f)
	})
}

func init() {
	lookupCmd.Flags().String("erf", "", "ERF (parcel) number")
	lookupCmd.Flags().String("coords", "", `GPS position, decimal "lat, lng" or DMS`)
	lookupCmd.Flags().Bool("json", false, "print the raw JSON payload")
	lookupCmd.Flags().Bool("staged", false, "reveal the report section by section")
	rootCmd.AddCommand(lookupCmd)
}
