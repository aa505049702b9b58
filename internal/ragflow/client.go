// Package ragflow is a lightweight client for the RAGFlow HTTP API.
//
// It covers the four operations the assistant needs: listing knowledge
// bases (datasets), creating a chat bound to a dataset selection, creating
// a session under a chat, and asking a question with streamed answers.
package ragflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/wang-junjian/RAGFlowAssistant/internal/log"
)

const (
	// apiBase is the URL prefix for all v1 endpoints.
	apiBase = "/api/v1"

	// datasetsCacheTTL bounds how stale the sidebar listing may be.
	// The UI refreshes the listing on every render cycle; the cache keeps
	// that from turning into a request storm against the server.
	datasetsCacheTTL = 5 * time.Second

	// datasetsCacheKey is the single cache entry for the listing.
	datasetsCacheKey = "datasets"

	// Default client-side throttling: sustained 5 req/s, burst of 10.
	defaultRateLimit = 5
	defaultRateBurst = 10
)

// Options configures optional Client behavior.
type Options struct {
	// Timeout bounds non-streaming requests. Zero uses 30s.
	Timeout time.Duration

	// Limiter throttles outgoing requests. Nil uses the default limiter.
	Limiter *rate.Limiter

	// Logger for request diagnostics. Nil uses a no-op logger.
	Logger log.Logger
}

// Client talks to a RAGFlow server.
// Safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string

	// httpClient serves bounded request/response calls; streamClient has
	// no client-side timeout because completions are open-ended and the
	// caller's context governs their lifetime.
	httpClient   *http.Client
	streamClient *http.Client

	limiter  *rate.Limiter
	datasets *cache.Cache
	logger   log.Logger
}

// New creates a RAGFlow client.
func New(baseURL, apiKey string, opts Options) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(defaultRateLimit, defaultRateBurst)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	return &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: timeout},
		streamClient: &http.Client{},
		limiter:      limiter,
		datasets:     cache.New(datasetsCacheTTL, time.Minute),
		logger:       logger,
	}, nil
}

// ListDatasets returns the knowledge bases available on the server.
// Results are cached briefly; see datasetsCacheTTL.
func (c *Client) ListDatasets(ctx context.Context) ([]Dataset, error) {
	if cached, ok := c.datasets.Get(datasetsCacheKey); ok {
		if ds, ok := cached.([]Dataset); ok {
			return ds, nil
		}
	}

	var ds []Dataset
	if err := c.makeRequest(ctx, http.MethodGet, apiBase+"/datasets", nil, &ds); err != nil {
		return nil, fmt.Errorf("listing datasets: %w", err)
	}

	c.datasets.SetDefault(datasetsCacheKey, ds)
	c.logger.Debug("listed datasets", "count", len(ds))
	return ds, nil
}

// CreateChat creates a chat bound to the given dataset ids and returns
// its id. A name collision surfaces as ErrDuplicateName.
func (c *Client) CreateChat(ctx context.Context, name string, datasetIDs []string) (string, error) {
	req := createChatRequest{Name: name, DatasetIDs: datasetIDs}

	var data idData
	if err := c.makeRequest(ctx, http.MethodPost, apiBase+"/chats", req, &data); err != nil {
		return "", fmt.Errorf("creating chat %q: %w", name, err)
	}

	c.logger.Debug("created chat", "chat_id", data.ID, "datasets", len(datasetIDs))
	return data.ID, nil
}

// CreateSession creates a message thread under the given chat and
// returns its id.
func (c *Client) CreateSession(ctx context.Context, chatID, name string) (string, error) {
	req := createSessionRequest{Name: name}

	var data idData
	path := fmt.Sprintf("%s/chats/%s/sessions", apiBase, chatID)
	if err := c.makeRequest(ctx, http.MethodPost, path, req, &data); err != nil {
		return "", fmt.Errorf("creating session %q: %w", name, err)
	}

	c.logger.Debug("created session", "session_id", data.ID, "chat_id", chatID)
	return data.ID, nil
}

// makeRequest performs a bounded JSON request/response call.
// Transport failures map to ErrUnreachable, auth failures to
// ErrUnauthorized, and application-level failures are classified via
// classifyAPIError.
func (c *Client) makeRequest(ctx context.Context, method, path string, body, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrUnreachable, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ragflow API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("unmarshaling response envelope: %w", err)
	}
	if env.Code != 0 {
		if sentinel := classifyAPIError(env.Code, env.Message); sentinel != nil {
			return fmt.Errorf("%w: %s", sentinel, env.Message)
		}
		return fmt.Errorf("ragflow API error (code %d): %s", env.Code, env.Message)
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("unmarshaling response data: %w", err)
		}
	}
	return nil
}
