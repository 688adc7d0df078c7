package autosave

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"portal-cms/models"
)

const autosavePath = "/api/v1/autosave"

// envelope mirrors the API response body.
type envelope struct {
	Code        int             `json:"code"`
	CodeType    string          `json:"code_type"`
	CodeMessage json.RawMessage `json:"code_message"`
	Data        json.RawMessage `json:"data"`
}

// Client is a DraftSaver talking to the CMS API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func NewClient(baseURL, token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SaveDraft(ctx context.Context, req models.AutosaveRequest) (models.AutosaveResult, error) {
	var result models.AutosaveResult

	body, err := json.Marshal(req)
	if err != nil {
		return result, fmt.Errorf("encode autosave request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+autosavePath, bytes.NewReader(body))
	if err != nil {
		return result, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return result, fmt.Errorf("autosave request: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return result, fmt.Errorf("decode autosave response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("autosave rejected with status %d: %s", resp.StatusCode, string(env.CodeMessage))
	}

	if err := json.Unmarshal(env.Data, &result); err != nil {
		return result, fmt.Errorf("decode autosave result: %w", err)
	}
	return result, nil
}
