package autonomous

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/BaSui01/recallbricks/internal/parse"
	"github.com/BaSui01/recallbricks/internal/sanitize"
	"github.com/BaSui01/recallbricks/internal/transport"
	"github.com/BaSui01/recallbricks/internal/validate"
	"github.com/BaSui01/recallbricks/types"
)

// BasePath prefixes every autonomous endpoint.
const BasePath = "/api/autonomous"

// Client groups the autonomous agent clients.
type Client struct {
	WorkingMemory     *WorkingMemoryClient
	ProspectiveMemory *ProspectiveMemoryClient
	Metacognition     *MetacognitionClient
	MemoryTypes       *MemoryTypesClient
	Goals             *GoalsClient
	Health            *HealthClient
	Uncertainty       *UncertaintyClient
	Context           *ContextClient
	Search            *SearchClient
}

// New creates the autonomous clients on top of exec, whose base URL is the
// API host (paths start with BasePath).
func New(exec *transport.Executor, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &service{exec: exec, logger: logger.With(zap.String("component", "autonomous"))}
	return &Client{
		WorkingMemory:     &WorkingMemoryClient{s},
		ProspectiveMemory: &ProspectiveMemoryClient{s},
		Metacognition:     &MetacognitionClient{s},
		MemoryTypes:       &MemoryTypesClient{s},
		Goals:             &GoalsClient{s},
		Health:            &HealthClient{s},
		Uncertainty:       &UncertaintyClient{s},
		Context:           &ContextClient{s},
		Search:            &SearchClient{s},
	}
}

// service 是所有子客户端共享的请求通道
type service struct {
	exec   *transport.Executor
	logger *zap.Logger
}

func (s *service) call(ctx context.Context, op, method, path string, query url.Values, body any) (types.JSONMap, error) {
	raw, err := s.exec.Do(ctx, transport.RequestSpec{
		Operation: "autonomous." + op,
		Method:    method,
		Path:      path,
		Query:     query,
		Body:      body,
	})
	if err != nil {
		return nil, err
	}
	return parse.Map(raw)
}

func (s *service) get(ctx context.Context, op, path string, query url.Values) (types.JSONMap, error) {
	return s.call(ctx, op, http.MethodGet, path, query, nil)
}

func (s *service) post(ctx context.Context, op, path string, body any) (types.JSONMap, error) {
	return s.call(ctx, op, http.MethodPost, path, nil, body)
}

func (s *service) put(ctx context.Context, op, path string, body any) (types.JSONMap, error) {
	return s.call(ctx, op, http.MethodPut, path, nil, body)
}

func (s *service) delete(ctx context.Context, op, path string, query url.Values) (types.JSONMap, error) {
	return s.call(ctx, op, http.MethodDelete, path, query, nil)
}

// =============================================================================
// 参数辅助
// =============================================================================

// agentID validates and sanitizes an agent identifier.
func agentID(id string) (string, error) {
	if err := validate.Identifier("agent_id", id); err != nil {
		return "", err
	}
	clean := sanitize.AgentID(id)
	if err := validate.NonEmpty("agent_id", clean); err != nil {
		return "", err
	}
	return clean, nil
}

// required validates a required free-text field and returns it sanitized.
func required(field, v string, max int) (string, error) {
	if err := validate.NonEmpty(field, v); err != nil {
		return "", err
	}
	clean := sanitize.String(v, max)
	if err := validate.NonEmpty(field, clean); err != nil {
		return "", err
	}
	return clean, nil
}

// resourcePath validates id and appends it, escaped, to prefix.
func resourcePath(field, id, prefix string, suffix ...string) (string, error) {
	if err := validate.Identifier(field, id); err != nil {
		return "", err
	}
	p := transport.Path(prefix, id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p, nil
}

// limit returns def for 0 and rejects negative values.
func limit(v, def int) (int, error) {
	n, err := validate.NonNegativeInt("limit", v)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return def, nil
	}
	return n, nil
}

// unit clamps an optional score to [0,1], falling back to def.
func unit(p *float64, def float64) float64 {
	return validate.Clamp(types.ValueOr(p, def), 0, 1)
}

func agentQuery(id string) url.Values {
	return url.Values{"agent_id": {id}}
}

func itoa(n int) string { return strconv.Itoa(n) }

func btoa(b bool) string { return strconv.FormatBool(b) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
