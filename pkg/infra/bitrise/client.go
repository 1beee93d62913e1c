package bitrise

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/bitrise-notify/pkg/domain/interfaces"
	"github.com/m-mizutani/bitrise-notify/pkg/domain/types"
)

// DefaultBaseURL is the endpoint of the public Bitrise API
const DefaultBaseURL = "https://api.bitrise.io"

type config struct {
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for Client configuration
type Option func(*config)

// WithBaseURL overrides the Bitrise API endpoint
func WithBaseURL(baseURL string) Option {
	return func(c *config) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient replaces the HTTP client used for requests
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *config) {
		c.httpClient = httpClient
	}
}

type client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Bitrise API client. The token is sent as-is in the
// Authorization header, even when empty.
func NewClient(token string, opts ...Option) interfaces.AppRegistry {
	cfg := &config{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &client{
		token:      token,
		baseURL:    strings.TrimSuffix(cfg.baseURL, "/"),
		httpClient: cfg.httpClient,
	}
}

type appResponse struct {
	Data *struct {
		AvatarURL *string `json:"avatar_url"`
	} `json:"data"`
}

// GetAvatarURL fetches the application metadata and extracts its avatar URL
func (c *client) GetAvatarURL(ctx context.Context, appSlug string) (string, error) {
	logger := ctxlog.From(ctx)
	apiURL := c.baseURL + "/v0.1/apps/" + url.PathEscape(appSlug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create app request",
			goerr.V("url", apiURL),
			goerr.T(types.ErrTagRemoteCall))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to get app",
			goerr.V("url", apiURL),
			goerr.T(types.ErrTagRemoteCall))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read app response",
			goerr.V("url", apiURL),
			goerr.T(types.ErrTagRemoteCall))
	}

	logger.Debug("App avatar retrieval response",
		"status", resp.StatusCode,
		"body", string(body),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", goerr.New("unexpected status code from Bitrise API",
			goerr.V("url", apiURL),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)),
			goerr.T(types.ErrTagRemoteCall))
	}

	var app appResponse
	if err := json.Unmarshal(body, &app); err != nil {
		return "", goerr.Wrap(err, "failed to decode app response",
			goerr.V("url", apiURL),
			goerr.T(types.ErrTagRemoteCall))
	}
	if app.Data == nil {
		return "", goerr.New("app response has no data",
			goerr.V("url", apiURL),
			goerr.T(types.ErrTagRemoteCall))
	}
	if app.Data.AvatarURL == nil {
		return "", nil
	}

	logger.Debug("App avatar icon url", "avatar_url", *app.Data.AvatarURL)
	return *app.Data.AvatarURL, nil
}
