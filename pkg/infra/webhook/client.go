package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/bitrise-notify/pkg/domain/interfaces"
	"github.com/m-mizutani/bitrise-notify/pkg/domain/model"
	"github.com/m-mizutani/bitrise-notify/pkg/domain/types"
)

type client struct {
	httpClient *http.Client
}

// NewClient creates a webhook sender. A nil httpClient falls back to
// http.DefaultClient.
func NewClient(httpClient *http.Client) interfaces.WebhookSender {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &client{httpClient: httpClient}
}

// Send posts the notification as JSON to url
func (c *client) Send(ctx context.Context, url string, notification *model.Notification) error {
	logger := ctxlog.From(ctx)

	// Message is HTML, keep it readable on the wire
	var payload bytes.Buffer
	encoder := json.NewEncoder(&payload)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(notification); err != nil {
		return goerr.Wrap(err, "failed to encode webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &payload)
	if err != nil {
		return goerr.Wrap(err, "failed to create webhook request",
			goerr.V("url", url),
			goerr.T(types.ErrTagRemoteCall))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to send the webhook message",
			goerr.V("url", url),
			goerr.T(types.ErrTagRemoteCall))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return goerr.Wrap(err, "failed to read webhook response",
			goerr.V("url", url),
			goerr.V("status", resp.StatusCode),
			goerr.T(types.ErrTagRemoteCall))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return goerr.New("webhook returned unexpected status code",
			goerr.V("url", url),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)),
			goerr.T(types.ErrTagRemoteCall))
	}

	logger.Debug("Webhook response",
		"status", resp.StatusCode,
		"body", string(body),
	)

	return nil
}
