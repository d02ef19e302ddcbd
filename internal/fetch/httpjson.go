package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/oluwaseun-ajayi/postsync/internal/entity"
)

// payloadSchema is what a healthy upstream response must look like. The
// upstream occasionally serves interstitial HTML or checkpoint pages with a
// 200 status; schema validation catches those before decoding.
const payloadSchema = `{
	"type": "object",
	"required": ["account"],
	"properties": {
		"account":   {"type": "string", "minLength": 1},
		"likes":     {"type": "integer"},
		"comments":  {"type": "integer"},
		"views":     {"type": "integer"},
		"is_video":  {"type": "boolean"},
		"posted_at": {"type": "string"},
		"caption":   {"type": "string"},
		"tags_text": {"type": "string"},
		"location":  {"type": "string"}
	}
}`

type wirePayload struct {
	Account  string `json:"account"`
	Likes    int64  `json:"likes"`
	Comments int64  `json:"comments"`
	Views    int64  `json:"views"`
	IsVideo  bool   `json:"is_video"`
	PostedAt string `json:"posted_at"`
	Caption  string `json:"caption"`
	TagsText string `json:"tags_text"`
	Location string `json:"location"`
}

// HTTPJSONFactory builds fetchers that GET content attributes from a JSON
// endpoint. Each fetcher carries its identity's User-Agent on every request.
type HTTPJSONFactory struct {
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger

	schema *jsonschema.Schema
}

// NewHTTPJSONFactory validates the configuration and precompiles the payload
// schema.
func NewHTTPJSONFactory(baseURL string, timeout time.Duration, logger *slog.Logger) (*HTTPJSONFactory, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("fetch base URL is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("payload.json", strings.NewReader(payloadSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("payload.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &HTTPJSONFactory{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Timeout: timeout,
		Logger:  logger,
		schema:  schema,
	}, nil
}

// New builds a fetcher bound to the given identity.
func (f *HTTPJSONFactory) New(identity Identity) (Fetcher, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &httpJSONFetcher{
		base:     f.BaseURL,
		identity: identity,
		schema:   f.schema,
		logger:   f.Logger,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

type httpJSONFetcher struct {
	base     string
	identity Identity
	schema   *jsonschema.Schema
	logger   *slog.Logger
	client   *http.Client
}

func (h *httpJSONFetcher) Fetch(ctx context.Context, shortcode string) (*entity.RawAttributes, error) {
	reqID := uuid.New().String()
	start := time.Now()
	url := fmt.Sprintf("%s/%s", h.base, shortcode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewError(KindTransient, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", h.identity.UserAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Warn("fetch.http.send_error", "req_id", reqID, "shortcode", shortcode, "error", err)
		return nil, NewError(KindTransient, err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			h.logger.Warn("fetch.http.body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)

	h.logger.Info("fetch.http.response",
		"req_id", reqID,
		"shortcode", shortcode,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"session", h.identity.SessionTag,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if kind, ok := classifyStatus(resp.StatusCode); ok {
		return nil, NewError(kind, fmt.Errorf("status %d", resp.StatusCode))
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, NewError(KindTransient, fmt.Errorf("decode payload: %w", err))
	}
	if err := h.schema.Validate(v); err != nil {
		return nil, NewError(KindTransient, fmt.Errorf("payload does not match schema: %w", err))
	}

	var payload wirePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, NewError(KindTransient, fmt.Errorf("decode payload: %w", err))
	}
	return payload.toRawAttributes(), nil
}

// classifyStatus maps a non-2xx HTTP status to a failure kind.
func classifyStatus(status int) (FailureKind, bool) {
	switch {
	case status/100 == 2:
		return "", false
	case status == http.StatusTooManyRequests:
		return KindRateLimited, true
	case status == http.StatusNotFound || status == http.StatusGone:
		return KindNotFound, true
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAccessDenied, true
	default:
		return KindTransient, true
	}
}

func (p *wirePayload) toRawAttributes() *entity.RawAttributes {
	attrs := &entity.RawAttributes{
		Account:  p.Account,
		Likes:    p.Likes,
		Comments: p.Comments,
		Views:    p.Views,
		IsVideo:  p.IsVideo,
		Caption:  p.Caption,
		TagsText: p.TagsText,
		Location: p.Location,
	}
	if p.PostedAt != "" {
		if t, err := time.Parse(time.RFC3339, p.PostedAt); err == nil {
			attrs.PostedAt = t
		}
	}
	return attrs
}
