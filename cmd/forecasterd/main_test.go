package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aouyang1/go-forecaster-server/config"
	"github.com/aouyang1/go-forecaster-server/forecast"
	"github.com/aouyang1/go-forecaster-server/server"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioBody = `{"features": [["2023-01-01", 10], ["2023-01-02", 12], ["2023-01-03", 11]], "forecastLength": 2}`

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestPredict(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	stdout, _, err := execute(t, scenarioBody, "predict")
	require.Nil(t, err)

	var res server.ForecastResponse
	require.Nil(t, json.Unmarshal([]byte(stdout), &res))
	require.Len(t, res.Prediction, 2)
	assert.Equal(t, "2023-01-04", res.Prediction[0].Date)
	assert.Equal(t, "2023-01-05", res.Prediction[1].Date)
}

func TestPredictModel(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	input := filepath.Join(dir, "req.json")
	require.Nil(t, os.WriteFile(input, []byte(scenarioBody), 0o644))
	modelOut := filepath.Join(dir, "model.json")

	_, stderr, err := execute(t, "", "predict", "--input", input, "--model", "--model-out", modelOut)
	require.Nil(t, err)
	assert.Contains(t, stderr, "Forecast:")
	assert.Contains(t, stderr, "Weights:")
	assert.Contains(t, stderr, "y ~ ")

	body, err := os.ReadFile(modelOut)
	require.Nil(t, err)
	var m forecast.Model
	require.Nil(t, json.Unmarshal(body, &m))
	f, err := forecast.NewFromModel(m)
	require.Nil(t, err)
	assert.NotEmpty(t, f.FeatureLabels())
}

func TestPredictDefaultHorizonFlag(t *testing.T) {
	t.Chdir(t.TempDir())

	body := `{"features": [["2023-01-01", 10], ["2023-01-02", 12], ["2023-01-03", 11]]}`
	stdout, _, err := execute(t, body, "predict", "--default-horizon", "5")
	require.Nil(t, err)

	var res server.ForecastResponse
	require.Nil(t, json.Unmarshal([]byte(stdout), &res))
	assert.Len(t, res.Prediction, 5)
}

func TestPredictErrors(t *testing.T) {
	t.Chdir(t.TempDir())

	testData := map[string]struct {
		stdin string
		args  []string
	}{
		"empty features": {stdin: `{"features": []}`, args: []string{"predict"}},
		"malformed":      {stdin: `{"features": [`, args: []string{"predict"}},
		"missing file":   {args: []string{"predict", "--input", "does-not-exist.json"}},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			stdout, _, err := execute(t, td.stdin, td.args...)
			assert.NotNil(t, err)

			var res server.ErrorResponse
			require.Nil(t, json.Unmarshal([]byte(stdout), &res))
			assert.NotEmpty(t, res.Error)
		})
	}
}

func TestPlot(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	out := filepath.Join(dir, "forecast.html")
	_, _, err := execute(t, scenarioBody, "plot", "--out", out)
	require.Nil(t, err)

	page, err := os.ReadFile(out)
	require.Nil(t, err)
	assert.Contains(t, string(page), "Forecast Components")
	assert.Contains(t, string(page), "2023-01-05")
}

func TestSimulateThenPredict(t *testing.T) {
	t.Chdir(t.TempDir())

	body, _, err := execute(t, "", "simulate", "--days", "60", "--horizon", "14", "--start", "2024-01-01")
	require.Nil(t, err)

	var req struct {
		Features       [][2]any `json:"features"`
		ForecastLength int      `json:"forecastLength"`
	}
	require.Nil(t, json.Unmarshal([]byte(body), &req))
	require.Len(t, req.Features, 60)
	assert.Equal(t, "2024-01-01", req.Features[0][0])
	assert.Equal(t, 14, req.ForecastLength)

	stdout, _, err := execute(t, body, "predict")
	require.Nil(t, err)
	var res server.ForecastResponse
	require.Nil(t, json.Unmarshal([]byte(stdout), &res))
	require.Len(t, res.Prediction, 14)
	assert.Equal(t, "2024-03-01", res.Prediction[0].Date)

	_, _, err = execute(t, "", "simulate", "--start", "yesterday")
	assert.NotNil(t, err)
}

func TestRootErrors(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := execute(t, scenarioBody, "predict", "--profile", "disk")
	assert.ErrorIs(t, err, ErrUnknownProfile)

	_, _, err = execute(t, scenarioBody, "predict", "--config", "missing.yaml")
	assert.NotNil(t, err)
}

func TestServerOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Addr = ":1234"
	cfg.Server.AccessLog = true
	cfg.Forecast.DefaultHorizon = 30

	opt := serverOptions(cfg)
	assert.Equal(t, ":1234", opt.Addr)
	assert.Equal(t, ":9090", opt.AdminAddr)
	assert.Equal(t, 30, opt.DefaultHorizon)
	assert.Equal(t, cfg.Server.MaxBodyBytes, opt.MaxBodyBytes)
	assert.Equal(t, os.Stdout, opt.AccessLog)
	assert.True(t, opt.Compress)
}
