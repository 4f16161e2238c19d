// Package lms fetches assessment submissions from the LearnWorlds admin API.
package lms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"
)

// ResponseAnswer is one answered question inside a submission. Description
// carries the question label ("Pregunta 7"); Answer carries the selected
// alternative.
type ResponseAnswer struct {
	Description string `json:"description"`
	Answer      string `json:"answer"`
}

// AssessmentResponse is one user's submission as returned by the API.
type AssessmentResponse struct {
	ID      string           `json:"id"`
	UserID  string           `json:"userId"`
	Created int64            `json:"created"`
	Answers []ResponseAnswer `json:"answers"`
}

type pageMeta struct {
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
}

type responsePage struct {
	Data []AssessmentResponse `json:"data"`
	Meta pageMeta             `json:"meta"`
}

// Client fetches assessment responses.
type Client interface {
	// GetResponses downloads all responses for an assessment, newest first.
	// When sinceTimestamp > 0 the download stops as soon as it reaches a
	// record at or before that timestamp.
	GetResponses(ctx context.Context, assessmentID string, sinceTimestamp int64) ([]AssessmentResponse, error)

	// TestConnection verifies credentials against the assessments endpoint.
	TestConnection(ctx context.Context) error
}

type ClientConfig struct {
	Domain      string
	ClientID    string
	AccessToken string
	PageDelay   time.Duration
	MaxRetries  int
	BaseURL     string // overrides https://{Domain} when set, for tests
}

type client struct {
	cfg        ClientConfig
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg ClientConfig, logger *slog.Logger) Client {
	return &client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

func (c *client) GetResponses(ctx context.Context, assessmentID string, sinceTimestamp int64) ([]AssessmentResponse, error) {
	var all []AssessmentResponse
	page := 1

	for {
		url := fmt.Sprintf("%s/admin/api/v2/assessments/%s/responses?page=%d", c.baseURL(), assessmentID, page)

		body, err := c.getWithRetry(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch responses page %d: %w", page, err)
		}

		var pageData responsePage
		if err := json.Unmarshal(body, &pageData); err != nil {
			return nil, fmt.Errorf("failed to decode responses page %d: %w", page, err)
		}
		if len(pageData.Data) == 0 {
			break
		}

		reachedExisting := false
		for _, rec := range pageData.Data {
			if sinceTimestamp > 0 && rec.Created > 0 && rec.Created <= sinceTimestamp {
				reachedExisting = true
				break
			}
			all = append(all, rec)
		}

		c.logger.Info("downloaded responses page",
			"assessment_id", assessmentID,
			"page", page,
			"total_pages", pageData.Meta.TotalPages,
			"records", len(pageData.Data))

		if reachedExisting || page >= pageData.Meta.TotalPages {
			break
		}
		page++

		if c.cfg.PageDelay > 0 {
			select {
			case <-time.After(c.cfg.PageDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	c.logger.Info("responses download complete",
		"assessment_id", assessmentID,
		"total", len(all))
	return all, nil
}

func (c *client) TestConnection(ctx context.Context) error {
	url := c.baseURL() + "/admin/api/v2/assessments"
	_, err := c.getWithRetry(ctx, url)
	return err
}

// getWithRetry retries transient failures (network errors and 5xx) with a
// linear backoff. 4xx responses fail immediately.
func (c *client) getWithRetry(ctx context.Context, url string) ([]byte, error) {
	attempts := c.cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(attempt-1) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, retryable, err := c.get(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		c.logger.Warn("request failed, retrying", "url", url, "attempt", attempt, "error", err)
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", attempts, lastErr)
}

func (c *client) get(ctx context.Context, url string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Lw-Client", c.cfg.ClientID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return data, false, nil
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, true, fmt.Errorf("server error %d", resp.StatusCode)
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, false, fmt.Errorf("authentication failed: check the access token")
	case resp.StatusCode == http.StatusForbidden:
		return nil, false, fmt.Errorf("access denied: check API permissions")
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("resource not found: %s", url)
	default:
		return nil, false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

func (c *client) baseURL() string {
	if c.cfg.BaseURL != "" {
		return strings.TrimSuffix(c.cfg.BaseURL, "/")
	}
	return "https://" + c.cfg.Domain
}

// FilterLatest drops submissions whose last question is unanswered and keeps
// only the newest submission per user.
func FilterLatest(responses []AssessmentResponse) []AssessmentResponse {
	latest := make(map[string]AssessmentResponse)
	for _, r := range responses {
		if len(r.Answers) == 0 {
			continue
		}
		if strings.TrimSpace(r.Answers[len(r.Answers)-1].Answer) == "" {
			continue
		}
		if prev, ok := latest[r.UserID]; !ok || r.Created > prev.Created {
			latest[r.UserID] = r
		}
	}

	out := make([]AssessmentResponse, 0, len(latest))
	for _, r := range latest {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created > out[j].Created })
	return out
}
