// Package avatar fetches generated identicon images from a DiceBear-style
// HTTP service. Images are generated once at user or guild creation and
// stored with the entity; a failed generation fails the enclosing creation.
package avatar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kyvexhq/kyvexserver/internal/config"
)

// Client calls the avatar generation service. Outbound requests are paced by
// a token bucket so a burst of registrations cannot hammer the service.
type Client struct {
	baseURL      string
	defaultStyle string
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       *zap.Logger
}

// backgroundRotations mirrors the gradient rotation set the frontend themes
// were designed against.
const backgroundRotations = "0,360,-360,-330,-300,-270,-240,-210,-180,-150,-120,-90,-60,-30,30,60,90,120,150,180,210,240,270,300,330"

// NewClient creates an avatar client from configuration.
func NewClient(cfg *config.AvatarConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:      cfg.BaseURL,
		defaultStyle: cfg.Style,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		limiter:      rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:       logger,
	}
}

// Generate fetches a PNG identicon for the given seed. An empty style uses
// the configured default.
func (c *Client) Generate(ctx context.Context, seed, style string) ([]byte, error) {
	if style == "" {
		style = c.defaultStyle
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("avatar rate limiter wait failed: %w", err)
	}

	params := url.Values{}
	params.Set("seed", seed)
	params.Set("radius", "10")
	params.Set("backgroundType", "gradientLinear")
	params.Set("backgroundRotation", backgroundRotations)

	reqURL := fmt.Sprintf("%s/7.x/%s/png?%s", c.baseURL, url.PathEscape(style), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build avatar request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("avatar request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("avatar service returned status %d", resp.StatusCode)
	}

	img, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read avatar response: %w", err)
	}

	c.logger.Debug("generated avatar",
		zap.String("seed", seed),
		zap.String("style", style),
		zap.Int("size_bytes", len(img)),
	)

	return img, nil
}
