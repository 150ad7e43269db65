package suggestions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vintrack/vintrack-backend/pkg/config"
	"github.com/vintrack/vintrack-backend/pkg/enums"
	pkgerrors "github.com/vintrack/vintrack-backend/pkg/errors"
	"github.com/vintrack/vintrack-backend/pkg/metrics"
)

const (
	suggestionPath              = "/suggestions/drinking-window"
	dateLayout                  = "2006-01-02"
	responseBodyReadLimit int64 = 1024

	// VintageMin and VintageMax bound the vintages the provider accepts.
	VintageMin = 1800
	VintageMax = 2100
)

// Failure reasons carried in upstream error details so callers can tell the
// provider outcomes apart.
const (
	ReasonNotConfigured = "not_configured"
	ReasonTimeout       = "timeout"
	ReasonRateLimited   = "rate_limited"
	ReasonUnavailable   = "unavailable"
	ReasonMalformed     = "malformed_response"
	ReasonUpstreamError = "upstream_error"
)

// Suggestion is a validated drinking window returned by the provider.
type Suggestion struct {
	DrinkAfterDate  string `json:"drink_after_date"`
	DrinkBeforeDate string `json:"drink_before_date"`
}

// Provider resolves drinking-window suggestions for a wine type and vintage.
type Provider interface {
	DrinkingWindow(ctx context.Context, wineType enums.WineType, vintage int) (*Suggestion, error)
}

// Client calls the external wine advisory API. A client built without a base
// URL is valid but reports a configuration failure on every call.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	metrics    *metrics.APIMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the advisory API client from configuration.
func NewClient(cfg config.WineAPIConfig, apiMetrics *metrics.APIMetrics, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		metrics:    apiMetrics,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// DrinkingWindow fetches and validates a suggested window. Provider failures
// come back as upstream errors with a reason detail; invalid input is a
// validation error and never reaches the provider.
func (c *Client) DrinkingWindow(ctx context.Context, wineType enums.WineType, vintage int) (*Suggestion, error) {
	if !wineType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid wine type %q", wineType))
	}
	if vintage < VintageMin || vintage > VintageMax {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("vintage must be between %d and %d", VintageMin, VintageMax))
	}

	suggestion, err := c.fetch(ctx, wineType, vintage)
	c.metrics.IncSuggestionCall(callOutcome(err))
	if err != nil {
		return nil, err
	}
	return suggestion, nil
}

func (c *Client) fetch(ctx context.Context, wineType enums.WineType, vintage int) (*Suggestion, error) {
	if c.baseURL == "" {
		return nil, upstreamError(ReasonNotConfigured, "wine advisory API is not configured")
	}

	query := url.Values{}
	query.Set("wine_type", wineType.String())
	query.Set("vintage", strconv.Itoa(vintage))
	endpoint := c.baseURL + suggestionPath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, upstreamError(ReasonUnavailable, "failed to build suggestion request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, upstreamError(ReasonTimeout, "wine advisory API timed out")
		}
		return nil, upstreamError(ReasonUnavailable, "wine advisory API is unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, upstreamError(ReasonRateLimited, "wine advisory API rate limit exceeded")
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, upstreamError(ReasonUnavailable,
			fmt.Sprintf("wine advisory API returned status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.New(pkgerrors.CodeUpstream,
			fmt.Sprintf("wine advisory API rejected the request with status %d", resp.StatusCode)).
			WithDetails(map[string]any{
				"reason":   ReasonUpstreamError,
				"upstream": strings.TrimSpace(string(msg)),
			})
	}

	var payload Suggestion
	if err := json.NewDecoder(io.LimitReader(resp.Body, responseBodyReadLimit)).Decode(&payload); err != nil {
		return nil, upstreamError(ReasonMalformed, "wine advisory API returned an unreadable body")
	}
	return validateSuggestion(payload)
}

// validateSuggestion rejects missing, unparsable or inverted date pairs.
func validateSuggestion(payload Suggestion) (*Suggestion, error) {
	after, err := time.Parse(dateLayout, payload.DrinkAfterDate)
	if err != nil {
		return nil, upstreamError(ReasonMalformed, "wine advisory API returned an invalid drink_after_date")
	}
	before, err := time.Parse(dateLayout, payload.DrinkBeforeDate)
	if err != nil {
		return nil, upstreamError(ReasonMalformed, "wine advisory API returned an invalid drink_before_date")
	}
	if !after.Before(before) {
		return nil, upstreamError(ReasonMalformed, "wine advisory API returned an inverted drinking window")
	}
	return &payload, nil
}

func upstreamError(reason, message string) error {
	return pkgerrors.New(pkgerrors.CodeUpstream, message).
		WithDetails(map[string]any{"reason": reason})
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func callOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	coded := pkgerrors.As(err)
	if coded == nil {
		return "error"
	}
	if details, ok := coded.Details().(map[string]any); ok {
		if reason, ok := details["reason"].(string); ok {
			return reason
		}
	}
	return "error"
}
