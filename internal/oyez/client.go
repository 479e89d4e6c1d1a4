package oyez

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JustJay7/courtdle-api/internal/models"
	"github.com/JustJay7/courtdle-api/pkg/logger"
)

var (
	// ErrFieldUnavailable is returned by a record accessor when the case
	// document does not carry that field.
	ErrFieldUnavailable = errors.New("field unavailable")
	ErrCaseNotFound     = errors.New("case not found")
)

// Config drives Oyez client behaviour.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client fetches case documents from the Oyez API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *logger.Logger
}

func NewClient(cfg Config, log *logger.Logger) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.oyez.org"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "courtdle-api/1.0"
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  userAgent,
		logger:     log,
	}
}

// Case returns a lazily loaded record for id. Nothing is fetched until the
// first accessor call; a failed fetch makes every accessor fail.
func (c *Client) Case(id models.CaseID) *Case {
	return &Case{client: c, id: id}
}

// Fetch downloads and decodes the case document for id.
func (c *Client) Fetch(ctx context.Context, id models.CaseID) (*Document, error) {
	endpoint := fmt.Sprintf("%s/cases/%s/%s", c.baseURL, url.PathEscape(id.Term), url.PathEscape(id.Docket))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oyez request %s: %w", id, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Oyez response", "case_id", id.String(), "status", resp.StatusCode, "latency", time.Since(start).String())

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oyez status %d for %s", resp.StatusCode, id)
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode case %s: %w", id, err)
	}
	return &doc, nil
}
