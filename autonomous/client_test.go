package autonomous

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/BaSui01/recallbricks/internal/retry"
	"github.com/BaSui01/recallbricks/internal/transport"
	"github.com/BaSui01/recallbricks/testutil/mocks"
	"github.com/BaSui01/recallbricks/types"
)

func newTestClient(t *testing.T, api *mocks.MockAPI) *Client {
	t.Helper()
	logger := zaptest.NewLogger(t)
	creds, err := transport.NewCredentials("rb_key", "")
	require.NoError(t, err)
	noSleep := func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	exec, err := transport.New(transport.Config{
		BaseURL:     api.URL(),
		Credentials: creds,
		Retryer:     retry.New(retry.DefaultPolicy(), logger, retry.WithSleeper(noSleep)),
		Logger:      logger,
	})
	require.NoError(t, err)
	return New(exec, logger)
}

func TestNew_WiresAllClients(t *testing.T) {
	c := newTestClient(t, mocks.NewMockAPI(t).Start())
	assert.NotNil(t, c.WorkingMemory)
	assert.NotNil(t, c.ProspectiveMemory)
	assert.NotNil(t, c.Metacognition)
	assert.NotNil(t, c.MemoryTypes)
	assert.NotNil(t, c.Goals)
	assert.NotNil(t, c.Health)
	assert.NotNil(t, c.Uncertainty)
	assert.NotNil(t, c.Context)
	assert.NotNil(t, c.Search)
}

func TestAgentIDValidation(t *testing.T) {
	api := mocks.NewMockAPI(t).Start()
	c := newTestClient(t, api)
	ctx := context.Background()

	calls := map[string]func(string) error{
		"working memory store": func(a string) error { _, err := c.WorkingMemory.Store(ctx, a, "x", StoreOptions{}); return err },
		"prospective check":    func(a string) error { _, err := c.ProspectiveMemory.CheckTriggers(ctx, a); return err },
		"metacognition biases": func(a string) error { _, err := c.Metacognition.GetBiases(ctx, a); return err },
		"memory statistics":    func(a string) error { _, err := c.MemoryTypes.GetStatistics(ctx, a); return err },
		"goals list":           func(a string) error { _, err := c.Goals.List(ctx, a, ListGoalsOptions{}); return err },
		"health check":         func(a string) error { _, err := c.Health.Check(ctx, a); return err },
		"uncertainty summary":  func(a string) error { _, err := c.Uncertainty.GetSummary(ctx, a, ""); return err },
		"context environment":  func(a string) error { _, err := c.Context.GetEnvironment(ctx, a); return err },
		"search filtered":      func(a string) error { _, err := c.Search.Filtered(ctx, a, FilteredSearchOptions{}); return err },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			for _, bad := range []string{"", "   ", "\x00\x01"} {
				err := call(bad)
				require.Error(t, err)
				assert.ErrorIs(t, err, types.ErrValidation)
				assert.Contains(t, err.Error(), "agent_id")
			}
		})
	}
	assert.Empty(t, api.Requests(), "validation must fail before any request")
}

func TestResponseMustBeObject(t *testing.T) {
	api := mocks.NewMockAPI(t).On("GET", "/api/autonomous/health/ping").JSON(200, `[1,2]`).Start()
	c := newTestClient(t, api)

	_, err := c.Health.Ping(context.Background())
	require.Error(t, err)
	assert.Equal(t, types.ErrCodeInvalidResponse, types.GetErrorCode(err))
}

func TestServerErrorsAreTyped(t *testing.T) {
	api := mocks.NewMockAPI(t).
		On("GET", "/api/autonomous/goals/g404").JSON(404, `{"error":{"code":"NOT_FOUND","message":"Goal not found","requestId":"req_9"}}`).
		Start()
	c := newTestClient(t, api)

	_, err := c.Goals.Get(context.Background(), "g404")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNotFound)
	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "req_9", e.RequestID)
	assert.Equal(t, 1, api.CallCount("GET", "/api/autonomous/goals/g404"))
}

func TestLimitRejectsNegative(t *testing.T) {
	c := newTestClient(t, mocks.NewMockAPI(t).Start())
	_, err := c.WorkingMemory.Retrieve(context.Background(), "agent", RetrieveOptions{Limit: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit must be non-negative")
}

func TestAgentIDIsTruncated(t *testing.T) {
	api := mocks.NewMockAPI(t).On("POST", "/api/autonomous/health/diagnostics").JSON(200, `{"ok":true}`).Start()
	c := newTestClient(t, api)

	_, err := c.Health.RunDiagnostics(context.Background(), strings.Repeat("a", 300))
	require.NoError(t, err)
	assert.Len(t, api.LastRequest().JSONBody()["agent_id"], 256)
}
