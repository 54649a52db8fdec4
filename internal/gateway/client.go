package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/curesight/client-go/internal/metrics"
	"github.com/curesight/client-go/pkg/logger"
)

// Client issues typed requests against the CureSight backend and normalizes
// every outcome into either decoded JSON or a *Failure. It performs no
// retries; callers see exactly one outcome per call.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu            sync.RWMutex
	token         string
	onAuthFailure func()
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	logger.Info("Gateway client initialized",
		zap.String("base_url", baseURL),
		zap.Duration("timeout", timeout),
	)

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// UseToken arms the operator credential. Once set it is attached to every
// request as the token query parameter, which is how the backend expects it.
func (c *Client) UseToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) ClearToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetAuthFailureHook registers a callback fired whenever the backend rejects
// the credential (401 or 403), so session state can be invalidated.
func (c *Client) SetAuthFailureHook(fn func()) {
	c.mu.Lock()
	c.onAuthFailure = fn
	c.mu.Unlock()
}

func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path, query), nil)
	if err != nil {
		return transportFailure(err)
	}
	return c.do(req, path, out)
}

func (c *Client) PostJSON(ctx context.Context, path string, body any, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Client) PutJSON(ctx context.Context, path string, body any, out any) error {
	return c.sendJSON(ctx, http.MethodPut, path, body, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return transportFailure(fmt.Errorf("failed to encode body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, nil), bytes.NewReader(payload))
	if err != nil {
		return transportFailure(err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, path, out)
}

// PostMultipart sends a binary payload under the "file" field plus the given
// scalar fields, and nothing else.
func (c *Client) PostMultipart(ctx context.Context, path string, file io.Reader, filename string, fields map[string]string, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return transportFailure(fmt.Errorf("failed to build form: %w", err))
	}
	if _, err := io.Copy(part, file); err != nil {
		return transportFailure(fmt.Errorf("failed to read payload: %w", err))
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return transportFailure(fmt.Errorf("failed to build form: %w", err))
		}
	}
	if err := writer.Close(); err != nil {
		return transportFailure(fmt.Errorf("failed to build form: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(path, nil), &buf)
	if err != nil {
		return transportFailure(err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req, path, out)
}

// GetBytes fetches a raw payload, used for synthesized audio.
func (c *Client) GetBytes(ctx context.Context, path string, query url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path, query), nil)
	if err != nil {
		return nil, transportFailure(err)
	}

	resp, err := c.send(req, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportFailure(fmt.Errorf("failed to read response: %w", err))
	}
	return data, nil
}

func (c *Client) do(req *http.Request, endpoint string, out any) error {
	resp, err := c.send(req, endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return transportFailure(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// send runs one request and maps the outcome. A non-2xx response is drained
// for its detail string and returned as a remote Failure.
func (c *Client) send(req *http.Request, endpoint string) (*http.Response, error) {
	requestID := uuid.New().String()
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	metrics.RequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.RequestTotal.WithLabelValues(endpoint, "transport_error").Inc()
		logger.Warn("Backend request failed",
			zap.String("request_id", requestID),
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		return nil, transportFailure(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		failure := remoteFailure(resp.StatusCode, readDetail(resp.Body))

		metrics.RequestTotal.WithLabelValues(endpoint, "remote_error").Inc()
		logger.Warn("Backend request rejected",
			zap.String("request_id", requestID),
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", failure.Detail),
		)

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			c.notifyAuthFailure()
		}
		return nil, failure
	}

	metrics.RequestTotal.WithLabelValues(endpoint, "ok").Inc()
	logger.Debug("Backend request completed",
		zap.String("request_id", requestID),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp, nil
}

func (c *Client) notifyAuthFailure() {
	c.mu.RLock()
	fn := c.onAuthFailure
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (c *Client) buildURL(path string, query url.Values) string {
	params := url.Values{}
	for key, values := range query {
		for _, v := range values {
			params.Add(key, v)
		}
	}
	if token := c.Token(); token != "" {
		params.Set("token", token)
	}
	if len(params) == 0 {
		return c.baseURL + path
	}
	return c.baseURL + path + "?" + params.Encode()
}

func readDetail(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 1<<16))
	if err != nil {
		return ""
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return payload.Detail
}
