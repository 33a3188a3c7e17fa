package recallbricks

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/recallbricks/internal/parse"
	"github.com/BaSui01/recallbricks/internal/sanitize"
	"github.com/BaSui01/recallbricks/internal/transport"
	"github.com/BaSui01/recallbricks/internal/validate"
	"github.com/BaSui01/recallbricks/types"
)

const (
	memoriesPath = "/memories"

	defaultLearnSource = "go-sdk"
	defaultSaveSource  = "api"
	defaultProjectID   = "default"
	defaultRecallLimit = 10
	maxResultLimit     = 100
)

var (
	memoryShape   = parse.ObjectShape(parse.Key("id", parse.String))
	memoriesShape = parse.ObjectShape(parse.Key("memories", parse.Array))
)

// =============================================================================
// 📝 写入
// =============================================================================

// LearnOptions configures Learn.
type LearnOptions struct {
	// Source defaults to "go-sdk".
	Source string
	// ProjectID defaults to "default".
	ProjectID string
	Tags      []string
	Metadata  types.JSONMap
	// UserID is required under service-token auth unless supplied through
	// the context or configuration.
	UserID string
}

// SaveOptions configures Save.
type SaveOptions struct {
	// Source defaults to "api".
	Source string
	// ProjectID defaults to "default".
	ProjectID string
	Tags      []string
	Metadata  types.JSONMap
	UserID    string
}

type writeRequest struct {
	Text      string        `json:"text"`
	Source    string        `json:"source"`
	ProjectID string        `json:"project_id"`
	Tags      []string      `json:"tags,omitempty"`
	Metadata  types.JSONMap `json:"metadata,omitempty"`
	UserID    string        `json:"user_id,omitempty"`
}

func (c *Client) writeRequest(ctx context.Context, text, source, project string, tags []string, meta types.JSONMap, userID, defSource string) (writeRequest, error) {
	var req writeRequest
	clean, err := requiredText("text", text)
	if err != nil {
		return req, err
	}
	if err := validate.StringSlice("tags", tags); err != nil {
		return req, err
	}
	uid, err := c.resolveUserID(ctx, userID)
	if err != nil {
		return req, err
	}
	req = writeRequest{
		Text:      clean,
		Source:    orDefault(source, defSource),
		ProjectID: orDefault(project, defaultProjectID),
		Tags:      sanitize.Strings(tags, sanitize.MaxStepLength),
		Metadata:  meta,
		UserID:    uid,
	}
	return req, nil
}

// Learn stores text and lets the server extract tags, category, entities,
// importance and a summary.
func (c *Client) Learn(ctx context.Context, text string, opts LearnOptions) (*types.LearnedMemory, error) {
	req, err := c.writeRequest(ctx, text, opts.Source, opts.ProjectID, opts.Tags, opts.Metadata, opts.UserID, defaultLearnSource)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, transport.RequestSpec{
		Operation: "learn",
		Method:    http.MethodPost,
		Path:      memoriesPath + "/learn",
		Body:      req,
	})
	if err != nil {
		return nil, err
	}
	learned, err := parse.Decode[types.LearnedMemory](raw, memoryShape)
	if err != nil {
		return nil, err
	}
	return &learned, nil
}

// Save stores text as a memory without metadata extraction.
func (c *Client) Save(ctx context.Context, text string, opts SaveOptions) (*types.Memory, error) {
	req, err := c.writeRequest(ctx, text, opts.Source, opts.ProjectID, opts.Tags, opts.Metadata, opts.UserID, defaultSaveSource)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, transport.RequestSpec{
		Operation: "save",
		Method:    http.MethodPost,
		Path:      memoriesPath,
		Body:      req,
	})
	if err != nil {
		return nil, err
	}
	mem, err := parse.Decode[types.Memory](raw, memoryShape)
	if err != nil {
		return nil, err
	}
	return &mem, nil
}

// SaveMemory is the previous name of Save.
//
// Deprecated: use Save or Learn.
func (c *Client) SaveMemory(ctx context.Context, text string, opts SaveOptions) (*types.Memory, error) {
	c.deprecatedSave.Do(func() {
		c.logger.Warn("SaveMemory is deprecated, use Save or Learn")
	})
	return c.Save(ctx, text, opts)
}

// =============================================================================
// 🔍 检索
// =============================================================================

// RecallOptions configures Recall.
type RecallOptions struct {
	// Limit defaults to 10 and must be within [1,100].
	Limit int
	// MinHelpfulnessScore filters out memories rated below it; within [0,1].
	MinHelpfulnessScore *float64
	// Organized groups results into categories with summaries.
	Organized bool
	ProjectID string
	UserID    string
}

type recallRequest struct {
	Query               string   `json:"query"`
	Limit               int      `json:"limit"`
	MinHelpfulnessScore *float64 `json:"min_helpfulness_score,omitempty"`
	Organized           bool     `json:"organized,omitempty"`
	ProjectID           string   `json:"project_id,omitempty"`
	UserID              string   `json:"user_id,omitempty"`
}

// Recall returns the memories most relevant to query.
func (c *Client) Recall(ctx context.Context, query string, opts RecallOptions) (*types.RecallResult, error) {
	q, err := requiredText("query", query)
	if err != nil {
		return nil, err
	}
	n, err := resultLimit(opts.Limit, defaultRecallLimit)
	if err != nil {
		return nil, err
	}
	if opts.MinHelpfulnessScore != nil {
		if err := validate.FloatRange("min_helpfulness_score", *opts.MinHelpfulnessScore, 0, 1); err != nil {
			return nil, err
		}
	}
	uid, err := c.resolveUserID(ctx, opts.UserID)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, transport.RequestSpec{
		Operation: "recall",
		Method:    http.MethodPost,
		Path:      memoriesPath + "/recall",
		Body: recallRequest{
			Query:               q,
			Limit:               n,
			MinHelpfulnessScore: opts.MinHelpfulnessScore,
			Organized:           opts.Organized,
			ProjectID:           opts.ProjectID,
			UserID:              uid,
		},
	})
	if err != nil {
		return nil, err
	}
	result, err := parse.Decode[types.RecallResult](raw, memoriesShape)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchOptions configures Search.
type SearchOptions struct {
	// Limit defaults to 10 and must be within [1,100].
	Limit int
	// IncludeRelationships fetches relationship data for every returned
	// result. A failed fetch marks that result AuxUnavailable instead of
	// failing the search.
	IncludeRelationships bool
	ProjectID            string
	UserID               string
}

type searchRequest struct {
	Query     string `json:"query"`
	Limit     int    `json:"limit"`
	ProjectID string `json:"project_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

// Search runs a text search. Results are cut to the limit before any
// relationship fetch, so at most limit auxiliary requests are made.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) ([]types.SearchResult, error) {
	q, err := requiredText("query", query)
	if err != nil {
		return nil, err
	}
	n, err := resultLimit(opts.Limit, defaultRecallLimit)
	if err != nil {
		return nil, err
	}
	uid, err := c.resolveUserID(ctx, opts.UserID)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, transport.RequestSpec{
		Operation: "search",
		Method:    http.MethodPost,
		Path:      memoriesPath + "/search",
		Body:      searchRequest{Query: q, Limit: n, ProjectID: opts.ProjectID, UserID: uid},
	})
	if err != nil {
		return nil, err
	}
	results, err := parse.DecodeKey[[]types.SearchResult](raw, memoriesShape, "memories")
	if err != nil {
		return nil, err
	}
	if len(results) > n {
		results = results[:n]
	}
	if results == nil {
		results = []types.SearchResult{}
	}

	if !opts.IncludeRelationships {
		for i := range results {
			results[i].RelationshipStatus = types.AuxNotRequested
		}
		return results, nil
	}
	if err := c.attachRelationships(ctx, results); err != nil {
		return nil, err
	}
	return results, nil
}

// attachRelationships fetches relationships for each result with bounded
// fan-out. Each goroutine writes only its own slot.
func (c *Client) attachRelationships(ctx context.Context, results []types.SearchResult) error {
	var g errgroup.Group
	g.SetLimit(max(1, c.auxLimit))
	for i := range results {
		g.Go(func() error {
			rels, err := c.GetRelationships(ctx, results[i].ID)
			if err != nil {
				results[i].Relationships = nil
				results[i].RelationshipStatus = types.AuxUnavailable
				c.metrics.RecordAuxUnavailable("search")
				c.logger.Warn("relationship fetch failed, result marked unavailable",
					zap.String("memory_id", results[i].ID),
					zap.Error(err),
				)
				return nil
			}
			results[i].Relationships = rels
			results[i].RelationshipStatus = types.AuxAvailable
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return types.NewError(types.KindGeneric, "search cancelled while fetching relationships").
			WithCode(types.ErrCodeCancelled).
			WithCause(err)
	}
	return nil
}

// GetAllOptions configures GetAll.
type GetAllOptions struct {
	// Limit caps the number of memories; 0 lets the server decide.
	Limit     int
	ProjectID string
	UserID    string
}

// GetAll lists stored memories.
func (c *Client) GetAll(ctx context.Context, opts GetAllOptions) ([]types.Memory, error) {
	n, err := validate.NonNegativeInt("limit", opts.Limit)
	if err != nil {
		return nil, err
	}
	uid, err := c.resolveUserID(ctx, opts.UserID)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	if n > 0 {
		q.Set("limit", strconv.Itoa(n))
	}
	if opts.ProjectID != "" {
		q.Set("project_id", opts.ProjectID)
	}
	if uid != "" {
		q.Set("user_id", uid)
	}
	raw, err := c.do(ctx, transport.RequestSpec{
		Operation: "get_all",
		Method:    http.MethodGet,
		Path:      memoriesPath,
		Query:     q,
	})
	if err != nil {
		return nil, err
	}
	memories, err := parse.DecodeKey[[]types.Memory](raw, memoriesShape, "memories")
	if err != nil {
		return nil, err
	}
	if memories == nil {
		memories = []types.Memory{}
	}
	return memories, nil
}

// Get returns one memory.
func (c *Client) Get(ctx context.Context, memoryID string) (*types.Memory, error) {
	if err := validate.Identifier("memory_id", memoryID); err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, transport.RequestSpec{
		Operation: "get",
		Method:    http.MethodGet,
		Path:      transport.Path(memoriesPath, memoryID),
	})
	if err != nil {
		return nil, err
	}
	mem, err := parse.Decode[types.Memory](raw, memoryShape)
	if err != nil {
		return nil, err
	}
	return &mem, nil
}

// UpdateOptions lists the mutable fields of a memory. At least one must be
// set.
type UpdateOptions struct {
	Text     *string
	Tags     []string
	Metadata types.JSONMap
}

type updateRequest struct {
	Text     *string       `json:"text,omitempty"`
	Tags     []string      `json:"tags,omitempty"`
	Metadata types.JSONMap `json:"metadata,omitempty"`
}

// Update changes a memory.
func (c *Client) Update(ctx context.Context, memoryID string, opts UpdateOptions) (*types.Memory, error) {
	if err := validate.Identifier("memory_id", memoryID); err != nil {
		return nil, err
	}
	var req updateRequest
	if opts.Text != nil {
		clean, err := requiredText("text", *opts.Text)
		if err != nil {
			return nil, err
		}
		req.Text = &clean
	}
	if opts.Tags != nil {
		if err := validate.StringSlice("tags", opts.Tags); err != nil {
			return nil, err
		}
		req.Tags = sanitize.Strings(opts.Tags, sanitize.MaxStepLength)
	}
	req.Metadata = opts.Metadata
	if req.Text == nil && req.Tags == nil && req.Metadata == nil {
		return nil, types.NewValidationError("update", "At least one field must be provided for update")
	}
	raw, err := c.do(ctx, transport.RequestSpec{
		Operation: "update",
		Method:    http.MethodPut,
		Path:      transport.Path(memoriesPath, memoryID),
		Body:      req,
	})
	if err != nil {
		return nil, err
	}
	mem, err := parse.Decode[types.Memory](raw, memoryShape)
	if err != nil {
		return nil, err
	}
	return &mem, nil
}

// Delete removes a memory and returns the server's confirmation, which is
// empty for 204 responses.
func (c *Client) Delete(ctx context.Context, memoryID string) (types.JSONMap, error) {
	if err := validate.Identifier("memory_id", memoryID); err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, transport.RequestSpec{
		Operation: "delete",
		Method:    http.MethodDelete,
		Path:      transport.Path(memoriesPath, memoryID),
	})
	if err != nil {
		return nil, err
	}
	return parse.Map(raw)
}

// =============================================================================
// 参数辅助
// =============================================================================

// requiredText rejects blank input and input that sanitizes to nothing.
func requiredText(field, s string) (string, error) {
	if err := validate.NonEmpty(field, s); err != nil {
		return "", err
	}
	clean := sanitize.Content(s)
	if err := validate.NonEmpty(field, clean); err != nil {
		return "", err
	}
	return clean, nil
}

// resultLimit applies def for 0 and requires [1, maxResultLimit].
func resultLimit(v, def int) (int, error) {
	if v == 0 {
		return def, nil
	}
	if err := validate.IntRange("limit", v, 1, maxResultLimit); err != nil {
		return 0, err
	}
	return v, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
