package infomaniak

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	httpclient "infomaniak-workers/internal/common/http"
	"infomaniak-workers/internal/common/logger"
	"infomaniak-workers/internal/common/metrics"
)

const (
	AuthAPIKey = "apiKey"
	AuthOAuth2 = "oauth2"

	DefaultBaseURL  = "https://api.infomaniak.com"
	DefaultPageSize = 100
	DefaultMaxPages = 500

	requestIDHeader = "X-Request-Id"
	maxErrorBody    = 64 << 10
)

// ClientConfig configures the API client.
type ClientConfig struct {
	BaseURL               string
	UserAgent             string
	PageSize              int
	MaxPages              int
	DefaultAuthentication string
}

// Client talks to the Infomaniak API. It holds one token source per
// authentication mode and implements TransportSource.
type Client struct {
	cfg    ClientConfig
	doer   httpclient.Doer
	tokens map[string]oauth2.TokenSource
	logger logger.Logger
}

type ClientOption func(*Client)

// WithTokenSource registers the token source used for an authentication mode.
func WithTokenSource(mode string, ts oauth2.TokenSource) ClientOption {
	return func(c *Client) {
		c.tokens[mode] = oauth2.ReuseTokenSource(nil, ts)
	}
}

// WithAPIToken registers a static bearer token for apiKey authentication.
func WithAPIToken(token string) ClientOption {
	return func(c *Client) {
		c.tokens[AuthAPIKey] = oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		})
	}
}

func NewClient(cfg ClientConfig, doer httpclient.Doer, log logger.Logger, opts ...ClientOption) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.DefaultAuthentication == "" {
		cfg.DefaultAuthentication = AuthAPIKey
	}

	c := &Client{
		cfg:    cfg,
		doer:   doer,
		tokens: make(map[string]oauth2.TokenSource),
		logger: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Transport returns a Transport authenticated with the given mode.
func (c *Client) Transport(authentication string) (Transport, error) {
	if authentication == "" {
		authentication = c.cfg.DefaultAuthentication
	}
	if authentication != AuthAPIKey && authentication != AuthOAuth2 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAuthentication, authentication)
	}
	ts, ok := c.tokens[authentication]
	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrNoCredentials, authentication)
	}
	return &authenticatedTransport{client: c, tokens: ts, mode: authentication}, nil
}

type authenticatedTransport struct {
	client *Client
	tokens oauth2.TokenSource
	mode   string
}

func (t *authenticatedTransport) Request(ctx context.Context, method Method, path string, body interface{}, query map[string]interface{}) (interface{}, error) {
	c := t.client

	reqURL := c.cfg.BaseURL + path
	if encoded := EncodeQuery(query); encoded != "" {
		reqURL += "?" + encoded
	}

	var reader io.Reader
	hasBody := !isEmptyBody(body)
	if hasBody {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, string(method), reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	token, err := t.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenUnavailable, err)
	}
	token.SetAuthHeader(req)

	c.logger.Debug("Infomaniak API request", map[string]interface{}{
		"method":         method,
		"path":           path,
		"requestId":      requestID,
		"authentication": t.mode,
	})

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, parseAPIError(resp.StatusCode, raw, requestID)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if m, ok := decoded.(map[string]interface{}); ok && m["result"] == "error" {
		return nil, parseAPIError(resp.StatusCode, raw, requestID)
	}
	return decoded, nil
}

// RequestAllItems pages with limit/skip starting at the caller's skip.
func (t *authenticatedTransport) RequestAllItems(ctx context.Context, method Method, path string, body interface{}, query map[string]interface{}) ([]interface{}, error) {
	c := t.client
	q := cloneQuery(query)

	skip, _ := toInt(q["skip"])
	pageSize := c.cfg.PageSize
	all := make([]interface{}, 0, pageSize)

	for page := 0; ; page++ {
		if page == c.cfg.MaxPages {
			c.logPageCap(path, PaginationLimitSkip, len(all))
			break
		}
		q["skip"] = skip
		q["limit"] = pageSize

		resp, err := t.Request(ctx, method, path, body, q)
		if err != nil {
			return nil, err
		}
		metrics.PagesFetched.WithLabelValues(PaginationLimitSkip.String()).Inc()

		items := pageItems(resp)
		all = append(all, items...)

		if len(items) == 0 {
			break
		}
		skip += len(items)
		if total, ok := envelopeInt(resp, "total"); ok {
			if skip >= total {
				break
			}
		} else if len(items) < pageSize {
			break
		}
	}
	return all, nil
}

// RequestAllPages pages with page/per_page starting at the caller's page.
func (t *authenticatedTransport) RequestAllPages(ctx context.Context, method Method, path string, body interface{}, query map[string]interface{}) ([]interface{}, error) {
	c := t.client
	q := cloneQuery(query)

	page, ok := toInt(q["page"])
	if !ok || page < 1 {
		page = 1
	}
	perPage := c.cfg.PageSize
	all := make([]interface{}, 0, perPage)

	for fetched := 0; ; fetched++ {
		if fetched == c.cfg.MaxPages {
			c.logPageCap(path, PaginationPagePerPage, len(all))
			break
		}
		q["page"] = page
		q["per_page"] = perPage

		resp, err := t.Request(ctx, method, path, body, q)
		if err != nil {
			return nil, err
		}
		metrics.PagesFetched.WithLabelValues(PaginationPagePerPage.String()).Inc()

		items := pageItems(resp)
		all = append(all, items...)

		if len(items) == 0 {
			break
		}
		if pages, ok := envelopeInt(resp, "pages"); ok {
			if page >= pages {
				break
			}
		} else if len(items) < perPage {
			break
		}
		page++
	}
	return all, nil
}

func (c *Client) logPageCap(path string, mode PaginationMode, items int) {
	c.logger.Warn("Stopped paging at max_pages", map[string]interface{}{
		"path":       path,
		"pagination": mode.String(),
		"maxPages":   c.cfg.MaxPages,
		"items":      items,
	})
}

// pageItems is what one page contributes to a returnAll listing.
func pageItems(resp interface{}) []interface{} {
	switch r := resp.(type) {
	case nil:
		return nil
	case []interface{}:
		return r
	case map[string]interface{}:
		data, ok := r["data"]
		if ok && data == nil {
			return nil
		}
		if list, isList := data.([]interface{}); isList {
			return list
		}
		return ExtractItems(r)
	default:
		return []interface{}{r}
	}
}

func parseAPIError(status int, raw []byte, requestID string) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Body:       string(raw),
		RequestID:  requestID,
	}

	var envelope struct {
		Result string `json:"result"`
		Error  struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Description = envelope.Error.Description
	}
	return apiErr
}

// EncodeQuery renders scalars as text, arrays comma-joined and objects as JSON.
// Null values are dropped. Keys are sorted.
func EncodeQuery(query map[string]interface{}) string {
	if len(query) == 0 {
		return ""
	}
	values := url.Values{}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := query[k].(type) {
		case nil:
			continue
		case []interface{}:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				parts = append(parts, formatScalar(item))
			}
			values.Set(k, strings.Join(parts, ","))
		case []string:
			values.Set(k, strings.Join(v, ","))
		case map[string]interface{}:
			encoded, err := json.Marshal(v)
			if err != nil {
				continue
			}
			values.Set(k, string(encoded))
		default:
			values.Set(k, formatScalar(v))
		}
	}
	return values.Encode()
}

func isEmptyBody(body interface{}) bool {
	switch b := body.(type) {
	case nil:
		return true
	case map[string]interface{}:
		return len(b) == 0
	default:
		return false
	}
}

func cloneQuery(query map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(query)+2)
	for k, v := range query {
		out[k] = v
	}
	return out
}
