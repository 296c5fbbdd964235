package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// ErrNoAPIKey is returned when no translation credential is configured.
var ErrNoAPIKey = errors.New("translation API key not configured")

// ClientConfig carries the settings for the outbound translation boundary.
type ClientConfig struct {
	APIKey  string
	URL     string
	Target  string
	Referer string
	Timeout time.Duration
}

// Client calls the Google Translate v2 endpoint: form-encoded POST,
// API-key authenticated, JSON response with a translations array. A circuit
// breaker guards the boundary so a misbehaving endpoint sheds load fast;
// breaker-open failures follow the same silent-drop path as any other error.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewClient(config ClientConfig) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "translate",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "component", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		breaker:    breaker,
	}
}

func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	if c.config.APIKey == "" {
		return "", ErrNoAPIKey
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.translate(ctx, text)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Client) translate(ctx context.Context, text string) (string, error) {
	form := url.Values{}
	form.Set("key", c.config.APIKey)
	form.Set("q", text)
	form.Set("target", c.config.Target)
	form.Set("format", "text")

	req, err := http.NewRequestWithContext(ctx, "POST", c.config.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create translation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", c.config.Referer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute translation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation API returned status %d", resp.StatusCode)
	}

	var body struct {
		Data struct {
			Translations []struct {
				TranslatedText string `json:"translatedText"`
			} `json:"translations"`
		} `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode translation response: %w", err)
	}

	if len(body.Data.Translations) == 0 {
		return "", fmt.Errorf("translation response contained no translations")
	}

	return body.Data.Translations[0].TranslatedText, nil
}
