// Package relay performs the outbound HTTP call to a selected backend
// endpoint, buffered or streaming.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"modelgate/internal/core"
	"modelgate/internal/httpclient"
)

// Client forwards exported request bodies to backend endpoints. It keeps two
// pooled HTTP clients: the buffered one bounds the whole call with the
// configured timeout, the streaming one bounds only the response headers so
// long-lived streams are never cut off.
type Client struct {
	buffered  *http.Client
	streaming *http.Client
}

// NewClient creates a relay client. A zero timeout disables the limit on
// both profiles.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		buffered:  httpclient.NewBufferedClient(timeout),
		streaming: httpclient.NewStreamingClient(timeout),
	}
}

// buildRequest creates the outbound chat-completions request with bearer
// authentication.
func (c *Client) buildRequest(ctx context.Context, baseURL, apiKey string, body []byte, extraHeaders map[string]string) (*http.Request, error) {
	url := strings.TrimSuffix(baseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, core.NewConversionError("failed to create upstream request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	return req, nil
}

// Send issues a buffered call and parses the 2xx response as an
// OpenAI-shaped completion object. A non-2xx response is an upstream error
// carrying the response body verbatim.
func (c *Client) Send(ctx context.Context, baseURL, apiKey string, body []byte) (*core.ChatResponse, error) {
	httpReq, err := c.buildRequest(ctx, baseURL, apiKey, body, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.buffered.Do(httpReq)
	if err != nil {
		return nil, core.NewUpstreamError(http.StatusBadGateway, []byte(err.Error()))
	}
	defer func() {
		_ = resp.Body.Close() //nolint:errcheck
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewUpstreamError(resp.StatusCode, []byte("failed to read upstream response: "+err.Error()))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, core.NewUpstreamError(resp.StatusCode, respBody)
	}

	var chatResp core.ChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, core.NewConversionError("failed to parse upstream response", err)
	}

	return &chatResp, nil
}

// SendStream issues a streaming call and returns the raw response body
// (caller must close). A non-2xx response before any body is read is a
// structured upstream error.
func (c *Client) SendStream(ctx context.Context, baseURL, apiKey string, body []byte) (io.ReadCloser, error) {
	httpReq, err := c.buildRequest(ctx, baseURL, apiKey, body, map[string]string{
		"Accept": "text/event-stream",
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.streaming.Do(httpReq)
	if err != nil {
		return nil, core.NewUpstreamError(http.StatusBadGateway, []byte(err.Error()))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			respBody = []byte("failed to read upstream error response")
		}
		_ = resp.Body.Close() //nolint:errcheck
		return nil, core.NewUpstreamError(resp.StatusCode, respBody)
	}

	return resp.Body, nil
}
