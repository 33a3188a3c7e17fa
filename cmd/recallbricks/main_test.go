package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/recallbricks"
	"github.com/BaSui01/recallbricks/config"
	"github.com/BaSui01/recallbricks/testutil/fixtures"
	"github.com/BaSui01/recallbricks/testutil/mocks"
	"github.com/BaSui01/recallbricks/types"
)

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

// run 执行一次命令并返回标准输出
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runApp(t, args...)
	return out, err
}

func runApp(t *testing.T, args ...string) (string, *app, error) {
	t.Helper()
	var out bytes.Buffer
	a := newApp(recallbricks.WithRetrySleeper(noSleep))
	root := a.rootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := a.execute(context.Background(), root)
	return out.String(), a, err
}

func useMockAPI(t *testing.T, api *mocks.MockAPI) {
	t.Helper()
	t.Setenv("RECALLBRICKS_CLIENT_API_KEY", "rb_cli_key")
	t.Setenv("RECALLBRICKS_CLIENT_SERVICE_TOKEN", "")
	t.Setenv("RECALLBRICKS_CLIENT_BASE_URL", api.URL())
	t.Setenv("RECALLBRICKS_LOG_LEVEL", "error")
}

func TestVersionCmd_NeedsNoCredentials(t *testing.T) {
	t.Setenv("RECALLBRICKS_CLIENT_API_KEY", "")
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "recallbricks "+recallbricks.Version)
}

func TestMissingCredentialsIsUserError(t *testing.T) {
	t.Setenv("RECALLBRICKS_CLIENT_API_KEY", "")
	t.Setenv("RECALLBRICKS_CLIENT_SERVICE_TOKEN", "")
	_, err := run(t, "health")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrValidation))
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitUserError, exitCode(types.NewValidationError("x", "x cannot be empty")))
	assert.Equal(t, exitSysError, exitCode(types.NewError(types.KindAPI, "boom")))
}

func TestLearnCmd(t *testing.T) {
	api := mocks.NewMockAPI(t).On(http.MethodPost, "/memories/learn").JSON(200, fixtures.LearnedJSON).Start()
	useMockAPI(t, api)

	out, err := run(t, "learn", "User prefers dark mode", "--tag", "ui", "--tag", "prefs")
	require.NoError(t, err)
	assert.Contains(t, out, "id: mem_learned")
	assert.Contains(t, out, "category: preferences")

	body := api.LastRequest().JSONBody()
	assert.Equal(t, []any{"ui", "prefs"}, body["tags"])
	assert.Equal(t, "rb_cli_key", api.LastRequest().Headers.Get("X-API-Key"))
}

func TestRecallCmd_JSON(t *testing.T) {
	api := mocks.NewMockAPI(t).On(http.MethodPost, "/memories/recall").JSON(200, fixtures.RecallJSON).Start()
	useMockAPI(t, api)

	out, err := run(t, "recall", "preferences", "--json", "--limit", "5", "--min-helpfulness", "0.4")
	require.NoError(t, err)

	var res types.RecallResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 2, res.Total)

	body := api.LastRequest().JSONBody()
	assert.Equal(t, float64(5), body["limit"])
	assert.Equal(t, 0.4, body["min_helpfulness_score"])
}

func TestSearchCmd_Relationships(t *testing.T) {
	api := mocks.NewMockAPI(t).
		On(http.MethodPost, "/memories/search").JSON(200, fixtures.SearchJSON("a")).
		On(http.MethodGet, "/relationships/memory/a").JSON(200, fixtures.RelationshipsJSON("a")).
		Start()
	useMockAPI(t, api)

	out, err := run(t, "search", "deploy", "--relationships")
	require.NoError(t, err)
	assert.Contains(t, out, "relationships: available")
}

func TestGraphCmd_DepthValidation(t *testing.T) {
	api := mocks.NewMockAPI(t).Start()
	useMockAPI(t, api)

	_, err := run(t, "graph", "m1", "--depth", "51")
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))
	assert.Empty(t, api.Requests())
}

func TestTeardownRunsOnFailure(t *testing.T) {
	api := mocks.NewMockAPI(t).On(http.MethodGet, "/memories/m1").Status(404).Start()
	useMockAPI(t, api)

	_, a, err := runApp(t, "get", "m1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrNotFound))
	require.NotNil(t, a.logger)
	assert.Nil(t, a.telemetry, "telemetry should be shut down after a failed command")

	_, a, err = runApp(t, "health")
	require.Error(t, err)
	assert.Nil(t, a.telemetry)
}

func TestMetricsEnabledIgnored(t *testing.T) {
	api := mocks.NewMockAPI(t).On(http.MethodGet, "/health").JSON(200, `{"status":"ok"}`).Start()
	useMockAPI(t, api)
	t.Setenv("RECALLBRICKS_METRICS_ENABLED", "true")
	t.Setenv("RECALLBRICKS_METRICS_NAMESPACE", "rb_cli_metrics")

	for i := 0; i < 2; i++ {
		_, err := run(t, "health")
		require.NoError(t, err)
	}

	n, err := promtestutil.GatherAndCount(prometheus.DefaultGatherer, "rb_cli_metrics_client_requests_total")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdateCmd_RequiresAField(t *testing.T) {
	api := mocks.NewMockAPI(t).Start()
	useMockAPI(t, api)

	_, err := run(t, "update", "m1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "At least one field must be provided for update")
}

func TestUserIDFlag(t *testing.T) {
	api := mocks.NewMockAPI(t).On(http.MethodGet, "/memories").JSON(200, fixtures.MemoriesJSON("a")).Start()
	t.Setenv("RECALLBRICKS_CLIENT_API_KEY", "")
	t.Setenv("RECALLBRICKS_CLIENT_SERVICE_TOKEN", "rb_service")
	t.Setenv("RECALLBRICKS_CLIENT_BASE_URL", api.URL())

	_, err := run(t, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user_id is required")

	out, err := run(t, "list", "--user-id", "u-7")
	require.NoError(t, err)
	assert.Contains(t, out, "a  memory a")
	assert.Equal(t, "u-7", api.LastRequest().Query.Get("user_id"))
}

func TestConfigFile(t *testing.T) {
	api := mocks.NewMockAPI(t).On(http.MethodGet, "/rate-limit").JSON(200, fixtures.RateLimitJSON).Start()
	t.Setenv("RECALLBRICKS_CLIENT_API_KEY", "")
	t.Setenv("RECALLBRICKS_CLIENT_BASE_URL", "")

	path := filepath.Join(t.TempDir(), "recallbricks.yaml")
	yaml := "client:\n  api_key: rb_from_file\n  base_url: " + api.URL() + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	out, err := run(t, "rate-limit", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "750/1000 remaining")
	assert.Equal(t, "rb_from_file", api.LastRequest().Headers.Get("X-API-Key"))
}

func TestInitLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := config.DefaultLogConfig()
		cfg.Format = format
		cfg.Level = "debug"
		logger := initLogger(cfg)
		require.NotNil(t, logger)
		assert.True(t, logger.Core().Enabled(-1))
	}

	logger := initLogger(config.LogConfig{Level: "bogus", OutputPaths: []string{"/nonexistent/dir/x.log"}})
	require.NotNil(t, logger)
}
