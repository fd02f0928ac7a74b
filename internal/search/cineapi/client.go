package cineapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/kitbuilder587/cine-bot/internal/domain"
	"github.com/kitbuilder587/cine-bot/internal/metrics"
	"github.com/kitbuilder587/cine-bot/internal/search"
)

const (
	opInitial = "initial"
	opMore    = "more"

	maxBodySize  = 4 << 20
	maxErrorBody = 512
)

type Config struct {
	BaseURL string
	// PromptType уходит на бэкенд как есть
	PromptType string
	Timeout    time.Duration
	Transport  http.RoundTripper
}

type Client struct {
	baseURL    string
	promptType string
	client     *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

func New(cfg Config, logger *zap.Logger, m *metrics.Metrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://127.0.0.1:5000"
	}
	if cfg.PromptType == "" {
		cfg.PromptType = "initial"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Transport == nil {
		cfg.Transport = http.DefaultTransport
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		promptType: cfg.PromptType,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(cfg.Transport),
		},
		logger:  logger,
		metrics: m,
	}
}

func (c *Client) FetchInitial(ctx context.Context, query string) (*domain.SearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("prompt_type", c.promptType)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.do(httpReq, opInitial)
}

func (c *Client) FetchMore(ctx context.Context, query string, previousTitles []string) (*domain.SearchResponse, error) {
	if previousTitles == nil {
		previousTitles = []string{}
	}

	body, err := json.Marshal(moreRequest{Query: query, PreviousTitles: previousTitles})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/more", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq, opMore)
}

func (c *Client) do(httpReq *http.Request, op string) (resp *domain.SearchResponse, err error) {
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.RecordSearchRequest(op, search.StatusLabel(err), time.Since(start))
		}
	}()

	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", search.ErrTransport, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
		c.logger.Warn("search backend error",
			zap.String("op", op),
			zap.Int("status", httpResp.StatusCode),
		)
		return nil, fmt.Errorf("%w: status %d: %s", search.ErrBadStatus, httpResp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", search.ErrTransport, err)
	}

	resp, err = decodeResponse(respBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", search.ErrMalformedResponse, err)
	}

	c.logger.Debug("search backend responded",
		zap.String("op", op),
		zap.Int("results", len(resp.Results)),
		zap.Bool("bad_query", resp.BadQuery),
		zap.Duration("took", time.Since(start)),
	)

	return resp, nil
}
