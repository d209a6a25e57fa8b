package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"coop-intake-go/internal/domain/proposals"
)

const (
	initialPath = "/api/external/status_proposta"
	finalPath   = "/api/external/fimroadmap"
)

var ErrNotConfigured = errors.New("notifier base url not configured")

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client posts lifecycle notices to the messaging relay.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) SendInitial(ctx context.Context, notice proposals.InitialNotice) error {
	return c.post(ctx, initialPath, notice)
}

func (c *Client) SendFinal(ctx context.Context, notice proposals.FinalNotice) error {
	return c.post(ctx, finalPath, notice)
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notice: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("relay returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(text)))
	}
	return nil
}
