package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PhelelaniM/UrbanMind/internal/lookup"
	"github.com/PhelelaniM/UrbanMind/internal/report"
)

func newLookupFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "lookup"}
	cmd.Flags().String("erf", "", "")
	cmd.Flags().String("coords", "", "")
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestLookupRequest(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    lookup.Request
		wantErr string
	}{
		{name: "erf", args: []string{"--erf", "12345"}, want: lookup.KeyRequest("12345")},
		{name: "coords", args: []string{"--coords", "-33.925, 18.405"}, want: lookup.CoordinatesRequest("-33.925, 18.405")},
		{name: "empty erf still counts", args: []string{"--erf", ""}, want: lookup.KeyRequest("")},
		{name: "both", args: []string{"--erf", "1", "--coords", "1, 2"}, wantErr: "not both"},
		{name: "neither", wantErr: "is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newLookupFlags(t, tt.args...)
			erf, _ := cmd.Flags().GetString("erf")
			coordsRaw, _ := cmd.Flags().GetString("coords")

			got, err := lookupRequest(cmd, erf, coordsRaw)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteLookup_JSON(t *testing.T) {
	env := testEnv(t)
	resp := env.Service.Lookup(context.Background(), lookup.KeyRequest("12345"))

	var buf bytes.Buffer
	require.NoError(t, writeLookup(context.Background(), &buf, resp, outputOptions{JSON: true}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, true, decoded["success"])
	assert.Equal(t, "GR2", decoded["zoneCode"])
}

func TestWriteLookup_Plain(t *testing.T) {
	env := testEnv(t)
	resp := env.Service.Lookup(context.Background(), lookup.CoordinatesRequest("-33.925, 18.405"))

	var buf bytes.Buffer
	require.NoError(t, writeLookup(context.Background(), &buf, resp, outputOptions{}))

	out := buf.String()
	assert.Contains(t, out, "GPS Location")
	assert.Contains(t, out, "Zoning Type: GR2")
	assert.Contains(t, out, "illustrative, not authoritative")
}

func TestWriteLookup_Failure(t *testing.T) {
	env := testEnv(t)
	resp := env.Service.Lookup(context.Background(), lookup.KeyRequest("99999"))

	var buf bytes.Buffer
	require.NoError(t, writeLookup(context.Background(), &buf, resp, outputOptions{}))
	assert.Contains(t, buf.String(), "ERF number 99999 not found in the zoning data.")
	assert.NotContains(t, buf.String(), "Zoning Type")
}

func TestWriteLookup_Staged(t *testing.T) {
	env := testEnv(t)
	resp := env.Service.Lookup(context.Background(), lookup.KeyRequest("12345"))

	var slept []time.Duration
	player := report.NewPlayer(report.WithSleep(func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}))

	var staged, plain bytes.Buffer
	require.NoError(t, writeLookup(context.Background(), &staged, resp, outputOptions{Player: player, Delay: 300 * time.Millisecond}))
	require.NoError(t, writeLookup(context.Background(), &plain, resp, outputOptions{}))

	assert.Equal(t, plain.String(), staged.String())
	require.NotEmpty(t, slept)
	for _, d := range slept {
		assert.Equal(t, 300*time.Millisecond, d)
	}
}

func TestWriteLookup_StagedCancelled(t *testing.T) {
	env := testEnv(t)
	resp := env.Service.Lookup(context.Background(), lookup.KeyRequest("12345"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := writeLookup(ctx, &buf, resp, outputOptions{Player: report.NewPlayer(), Delay: time.Hour})
	assert.ErrorIs(t, err, context.Canceled)
}
