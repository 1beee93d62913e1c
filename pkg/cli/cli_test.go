package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/bitrise-notify/pkg/cli"
	"github.com/m-mizutani/bitrise-notify/pkg/domain/model"
	"github.com/m-mizutani/bitrise-notify/pkg/domain/types"
)

type fakeServers struct {
	registry *httptest.Server
	webhook  *httptest.Server

	registryCalls int
	authorization string
	received      []model.Notification
}

// newFakeServers starts a fake Bitrise API and a fake chat webhook
func newFakeServers(t *testing.T, registryStatus, webhookStatus int) *fakeServers {
	t.Helper()
	fs := &fakeServers{}

	registry := chi.NewRouter()
	registry.Get("/v0.1/apps/{appSlug}", func(w http.ResponseWriter, r *http.Request) {
		fs.registryCalls++
		fs.authorization = r.Header.Get("Authorization")
		w.WriteHeader(registryStatus)
		_, _ = w.Write([]byte(`{"data":{"slug":"` + chi.URLParam(r, "appSlug") + `","avatar_url":"https://cdn.example.com/icon.png"}}`))
	})
	fs.registry = httptest.NewServer(registry)
	t.Cleanup(fs.registry.Close)

	hook := chi.NewRouter()
	hook.Post("/hook", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		gt.NoError(t, err)

		var n model.Notification
		gt.NoError(t, json.Unmarshal(body, &n))
		fs.received = append(fs.received, n)

		w.WriteHeader(webhookStatus)
	})
	fs.webhook = httptest.NewServer(hook)
	t.Cleanup(fs.webhook.Close)

	return fs
}

func (fs *fakeServers) args(positional ...string) []string {
	args := []string{"bitrise-notify", "--log-level", "error", "--bitrise-api-url", fs.registry.URL}
	return append(args, positional...)
}

func setBuildEnv(t *testing.T) {
	t.Helper()
	env := map[string]string{
		"BITRISE_APP_TITLE":                "My App",
		"BITRISE_APP_URL":                  "https://app.bitrise.io/app/abc",
		"BITRISE_APP_SLUG":                 "abc",
		"BITRISE_TRIGGERED_WORKFLOW_TITLE": "deploy",
		"BITRISE_BUILD_NUMBER":             "128",
		"BITRISE_BUILD_URL":                "https://app.bitrise.io/build/xyz",
		"BITRISE_BUILD_TRIGGER_TIMESTAMP":  "1700000000",
		"BITRISE_BUILD_STATUS":             "0",
		"PR":                               "false",
		"BITRISE_PULL_REQUEST":             "",
		"BITRISE_GIT_TAG":                  "v1.2.0",
		"BITRISE_GIT_BRANCH":               "main",
		"BITRISEIO_GIT_BRANCH_DEST":        "",
		"BITRISE_GIT_COMMIT":               "abcdef1234567",
		"BITRISE_GIT_MESSAGE":              "Release 1.2.0",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}
}

func TestRun_Success(t *testing.T) {
	setBuildEnv(t)
	fs := newFakeServers(t, http.StatusOK, http.StatusOK)

	err := cli.Run(context.Background(), fs.args("no", fs.webhook.URL+"/hook", "team-1", "channel-1", "api-token", "auto"))
	gt.NoError(t, err)

	gt.Value(t, fs.registryCalls).Equal(1)
	gt.Value(t, fs.authorization).Equal("api-token")
	gt.Value(t, len(fs.received)).Equal(1)

	n := fs.received[0]
	gt.Value(t, n.TeamID).Equal("team-1")
	gt.Value(t, n.ChannelID).Equal("channel-1")
	gt.Value(t, n.Title).Equal("🎉  Success @ My App • 🏷  v1.2.0 → deploy")
	gt.String(t, n.Message).Contains("<img src='https://cdn.example.com/icon.png'")
	gt.String(t, n.Message).Contains("🔗  abcdef1 📝  Release 1.2.0")
	gt.String(t, n.Message).Contains("Triggered @ 23:13 - ")
	gt.String(t, n.Message).Contains("<a href='https://app.bitrise.io/build/xyz'>#128</a>")
}

// readLogs decodes JSON log lines written by the CLI
func readLogs(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var record map[string]any
		gt.NoError(t, json.Unmarshal([]byte(line), &record))
		records = append(records, record)
	}
	return records
}

func findLog(records []map[string]any, msg string) map[string]any {
	for _, r := range records {
		if r["msg"] == msg {
			return r
		}
	}
	return nil
}

func TestRun_DebugMode(t *testing.T) {
	setBuildEnv(t)
	fs := newFakeServers(t, http.StatusOK, http.StatusOK)

	var buf bytes.Buffer
	// debug argument wins over --log-level
	args := []string{"bitrise-notify", "--log-level", "error", "--log-format", "json", "--bitrise-api-url", fs.registry.URL,
		"yes", fs.webhook.URL + "/hook", "team-1", "channel-1", "very-secret-token", "running"}
	gt.NoError(t, cli.Run(context.Background(), args, cli.WithLogWriter(&buf)))

	gt.Value(t, len(fs.received)).Equal(1)
	gt.String(t, fs.received[0].Title).Contains("🛠  Running @ My App")
	gt.Value(t, fs.authorization).Equal("very-secret-token")

	gt.String(t, buf.String()).NotContains("very-secret-token")

	records := readLogs(t, &buf)

	inputLog := findLog(records, "Input parameters")
	gt.Value(t, inputLog).NotNil()
	gt.Value(t, inputLog["level"]).Equal("DEBUG")
	input, ok := inputLog["input"].(map[string]any)
	gt.Value(t, ok).Equal(true)
	gt.Value(t, input["APIToken"]).Equal("[REDACTED]")
	gt.Value(t, input["TeamID"]).Equal("team-1")

	responseLog := findLog(records, "Webhook response")
	gt.Value(t, responseLog).NotNil()
	gt.Value(t, responseLog["status"]).Equal(float64(http.StatusOK))
}

func TestRun_DebugDisabled(t *testing.T) {
	setBuildEnv(t)
	fs := newFakeServers(t, http.StatusOK, http.StatusOK)

	var buf bytes.Buffer
	args := []string{"bitrise-notify", "--log-format", "json", "--bitrise-api-url", fs.registry.URL,
		"no", fs.webhook.URL + "/hook", "team-1", "channel-1", "very-secret-token", "auto"}
	gt.NoError(t, cli.Run(context.Background(), args, cli.WithLogWriter(&buf)))
	gt.Value(t, len(fs.received)).Equal(1)

	records := readLogs(t, &buf)
	for _, r := range records {
		gt.Value(t, r["level"]).NotEqual("DEBUG")
	}
	gt.Value(t, findLog(records, "Input parameters")).Nil()
	gt.Value(t, findLog(records, "Webhook response")).Nil()

	// the send result is still reported at info level
	gt.Value(t, findLog(records, "Webhook message sent")).NotNil()
}

func TestRun_AvatarFailureStillSends(t *testing.T) {
	setBuildEnv(t)
	fs := newFakeServers(t, http.StatusUnauthorized, http.StatusOK)

	err := cli.Run(context.Background(), fs.args("no", fs.webhook.URL+"/hook", "team-1", "channel-1", "bad-token", "auto"))
	gt.NoError(t, err)

	gt.Value(t, fs.registryCalls).Equal(1)
	gt.Value(t, len(fs.received)).Equal(1)
	gt.String(t, fs.received[0].Message).NotContains("<img")
}

func TestRun_AvatarNetworkErrorStillSends(t *testing.T) {
	setBuildEnv(t)
	fs := newFakeServers(t, http.StatusOK, http.StatusOK)

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	args := []string{"bitrise-notify", "--log-level", "error", "--bitrise-api-url", closedURL,
		"no", fs.webhook.URL + "/hook", "team-1", "channel-1", "api-token", "auto"}
	gt.NoError(t, cli.Run(context.Background(), args))
	gt.Value(t, len(fs.received)).Equal(1)
}

func TestRun_EmptyToken(t *testing.T) {
	setBuildEnv(t)
	fs := newFakeServers(t, http.StatusOK, http.StatusOK)

	err := cli.Run(context.Background(), fs.args("no", fs.webhook.URL+"/hook", "team-1", "channel-1", "", "aborted"))
	gt.NoError(t, err)
	gt.Value(t, fs.authorization).Equal("")
	gt.String(t, fs.received[0].Title).Contains("✋  Aborted")
}

func TestRun_WebhookFailure(t *testing.T) {
	setBuildEnv(t)
	fs := newFakeServers(t, http.StatusOK, http.StatusInternalServerError)

	err := cli.Run(context.Background(), fs.args("no", fs.webhook.URL+"/hook", "team-1", "channel-1", "api-token", "auto"))
	gt.Error(t, err)
	gt.Value(t, goerr.HasTag(err, types.ErrTagRemoteCall)).Equal(true)
	gt.Value(t, len(fs.received)).Equal(1)
}

func TestRun_MissingArguments(t *testing.T) {
	tests := []struct {
		name       string
		positional []string
	}{
		{name: "no arguments", positional: nil},
		{name: "debug only", positional: []string{"no"}},
		{name: "missing team and channel", positional: []string{"no", "WEBHOOK"}},
		{name: "missing channel", positional: []string{"no", "WEBHOOK", "team-1"}},
		{name: "missing preset status", positional: []string{"no", "WEBHOOK", "team-1", "channel-1", "api-token"}},
		{name: "empty webhook url", positional: []string{"no", "", "team-1", "channel-1", "api-token", "auto"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBuildEnv(t)
			fs := newFakeServers(t, http.StatusOK, http.StatusOK)

			var positional []string
			for _, arg := range tt.positional {
				if arg == "WEBHOOK" {
					arg = fs.webhook.URL + "/hook"
				}
				positional = append(positional, arg)
			}

			err := cli.Run(context.Background(), fs.args(positional...))
			gt.Error(t, err)
			gt.Value(t, goerr.HasTag(err, types.ErrTagConfiguration)).Equal(true)

			gt.Value(t, fs.registryCalls).Equal(0)
			gt.Value(t, len(fs.received)).Equal(0)
		})
	}
}

func TestRun_InvalidTimestamp(t *testing.T) {
	setBuildEnv(t)
	t.Setenv("BITRISE_BUILD_TRIGGER_TIMESTAMP", "not-a-number")
	fs := newFakeServers(t, http.StatusOK, http.StatusOK)

	err := cli.Run(context.Background(), fs.args("no", fs.webhook.URL+"/hook", "team-1", "channel-1", "api-token", "auto"))
	gt.Error(t, err)
	gt.Value(t, goerr.HasTag(err, types.ErrTagConfiguration)).Equal(true)
	gt.Value(t, fs.registryCalls).Equal(0)
	gt.Value(t, len(fs.received)).Equal(0)
}

func TestRun_EnvFile(t *testing.T) {
	setBuildEnv(t)
	t.Setenv("BITRISE_GIT_TAG", "")
	os.Unsetenv("BITRISE_GIT_TAG")
	fs := newFakeServers(t, http.StatusOK, http.StatusOK)

	path := t.TempDir() + "/bitrise.env"
	gt.NoError(t, os.WriteFile(path, []byte("BITRISE_GIT_TAG=v9.9.9\n"), 0600))

	args := []string{"bitrise-notify", "--log-level", "error", "--bitrise-api-url", fs.registry.URL, "--env-file", path,
		"no", fs.webhook.URL + "/hook", "team-1", "channel-1", "api-token", "auto"}
	gt.NoError(t, cli.Run(context.Background(), args))
	gt.String(t, fs.received[0].Title).Contains("🏷  v9.9.9")
}
