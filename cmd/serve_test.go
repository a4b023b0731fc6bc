package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PhelelaniM/UrbanMind/internal/api"
	"github.com/PhelelaniM/UrbanMind/internal/config"
)

func TestBuildHandler_Local(t *testing.T) {
	c := testConfig(t)
	useConfig(t, c)
	env := testEnv(t)

	srv := httptest.NewServer(buildHandler(env))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health api.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 4, health.Parcels)

	layer, err := http.Get(srv.URL + "/api/parcels")
	require.NoError(t, err)
	defer layer.Body.Close()
	assert.Equal(t, http.StatusOK, layer.StatusCode)

	lookupResp, err := http.Post(srv.URL+"/get_information", "application/json", strings.NewReader(`{"parcelKey": 12345}`))
	require.NoError(t, err)
	defer lookupResp.Body.Close()
	assert.Equal(t, http.StatusOK, lookupResp.StatusCode)

	metricsResp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	assert.Equal(t, http.StatusOK, metricsResp.StatusCode)
}

func TestBuildHandler_RemoteHasNoParcelLayer(t *testing.T) {
	upstream := testEnv(t)
	up := httptest.NewServer(api.New(upstream.Service).Router())
	defer up.Close()

	c := testConfig(t)
	c.Resolve.Strategy = config.StrategyRemote
	c.Remote.BaseURL = up.URL
	useConfig(t, c)

	env, err := initLookup(t.Context(), c, "serve")
	require.NoError(t, err)

	srv := httptest.NewServer(buildHandler(env))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/parcels")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServeCommand_InvalidPort(t *testing.T) {
	c := testConfig(t)
	c.Server.Port = 70000
	useConfig(t, c)

	serveCmd.SetContext(t.Context())
	err := serveCmd.RunE(serveCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}
