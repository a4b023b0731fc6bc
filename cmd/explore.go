package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/PhelelaniM/UrbanMind/internal/lookup"
	"github.com/PhelelaniM/UrbanMind/internal/report"
)

const exploreHelp = `Commands:
  erf <number>      look up a parcel by ERF number
  gps <lat, lng>    look up the parcel at a GPS position (decimal or DMS)
  where             show the current map marker
  help              show this help
  quit              leave`

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Interactive zoning lookups with a persistent map marker",
	RunE: func(cmd *cobra.Command, _ []string) error {
		staged, _ := cmd.Flags().GetBool("staged")

		env, err := initLookup(cmd.Context(), cfg, "lookup")
		if err != nil {
			return err
		}

		opts := outputOptions{}
		if staged {
			opts.Player = report.NewPlayer()
			opts.Delay = cfg.Report.StageDelay()
		}
		return runExplore(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), lookup.NewSession(env.Service), opts)
	},
}

// runExplore reads commands from in until quit or EOF. Each lookup goes
// through the session so the marker only moves on success.
func runExplore(ctx context.Context, in io.Reader, out io.Writer, s *lookup.Session, opts outputOptions) error {
	_, _ = fmt.Fprintf(out, "Session %s. Type help for commands.\n", s.ID)

	scanner := bufio.NewScanner(in)
	for {
		_, _ = fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		verb, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)

		switch strings.ToLower(verb) {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "help":
			_, _ = fmt.Fprintln(out, exploreHelp)
		case "where":
			writeMarker(out, s)
		case "erf":
			if err := submit(ctx, out, s, lookup.KeyRequest(arg), opts); err != nil {
				return err
			}
		case "gps":
			if err := submit(ctx, out, s, lookup.CoordinatesRequest(arg), opts); err != nil {
				return err
			}
		default:
			_, _ = fmt.Fprintf(out, "Unknown command %q. Type help for commands.\n", verb)
		}
	}

	if err := scanner.Err(); err != nil {
		return eris.Wrap(err, "explore: read input")
	}
	_, _ = fmt.Fprintln(out)
	return nil
}

func submit(ctx context.Context, out io.Writer, s *lookup.Session, req lookup.Request, opts outputOptions) error {
	resp := s.Submit(ctx, req)
	if err := writeLookup(ctx, out, resp, opts); err != nil {
		return err
	}
	if resp.Success {
		writeMarker(out, s)
	}
	return nil
}

func writeMarker(out io.Writer, s *lookup.Session) {
	m, ok := s.Marker()
	if !ok {
		_, _ = fmt.Fprintln(out, "No marker placed yet.")
		return
	}
	_, _ = fmt.Fprintf(out, "Marker: %s at %s (zoom %d)\n", m.Label, m.Location, m.Zoom)
}

func init() {
	exploreCmd.Flags().Bool("staged", false, "reveal each report section by section")
	rootCmd.AddCommand(exploreCmd)
}
