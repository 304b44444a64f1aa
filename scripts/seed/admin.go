package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/iflis7/iyuc-store/pkg/httpclient"
)

// adminClient calls the commerce admin API under <base>/admin.
type adminClient struct {
	base    string
	auth    string
	doer    httpclient.Doer
	limiter *rate.Limiter
	logger  *slog.Logger
}

func newAdminClient(cfg *Config, doer httpclient.Doer, logger *slog.Logger) *adminClient {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &adminClient{
		base:    cfg.BaseURL() + "/admin",
		auth:    authorization(cfg.AdminAPIKey, cfg.UseBasic),
		doer:    doer,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// authorization builds the Authorization header value. Secret keys are sent
// as Bearer tokens, or as Basic credentials with an empty user name.
func authorization(key string, basic bool) string {
	switch {
	case key == "":
		return ""
	case basic:
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+key))
	default:
		return "Bearer " + key
	}
}

// do sends one request and returns the response body. Non-2xx responses are
// returned as AppErrors carrying the backend message.
func (c *adminClient) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.auth != "" {
		req.Header.Set("Authorization", c.auth)
	}

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, httpclient.TranslateError(err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpclient.ParseResponseError(resp)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, path, err)
	}
	return data, nil
}

func (c *adminClient) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *adminClient) post(ctx context.Context, path string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, body)
}
