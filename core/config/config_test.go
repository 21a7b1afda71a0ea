package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsToLongpoll(t *testing.T) {
	path := writeFile(t, "config.yaml", `
telegram:
  token: "123:abc"
  run_mode: polling
http:
  listen: " :9090 "
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, ":9090", cfg.HTTP.Listen)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("BOT_TOKEN", "from-env")
	t.Setenv("SENDER_WORKERS", "7")
	path := writeFile(t, "config.yaml", "telegram:\n  token: from-file\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.Equal(t, 7, cfg.Sender.Workers)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "missing token", cfg: Config{}, wantErr: "token is required"},
		{name: "bad run mode", cfg: Config{Telegram: TelegramConfig{Token: "t", RunMode: "carrier-pigeon"}}, wantErr: "invalid telegram.run_mode"},
		{name: "webhook without url", cfg: Config{Telegram: TelegramConfig{Token: "t", RunMode: "webhook"}}, wantErr: "webhook.url"},
		{name: "negative timeout", cfg: Config{Telegram: TelegramConfig{Token: "t", LongPollTimeoutSeconds: -1}}, wantErr: "longpoll_timeout_seconds"},
		{name: "negative sender", cfg: Config{Telegram: TelegramConfig{Token: "t"}, Sender: SenderConfig{Workers: -2}}, wantErr: "sender"},
		{name: "webhook ok", cfg: Config{
			Telegram: TelegramConfig{Token: "t", RunMode: "WEBHOOK"},
			Webhook:  WebhookConfig{URL: "https://example.org/hook", Listen: "0.0.0.0", Port: 8443},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Normalize(&tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoadDotEnv_MissingFileIsIgnored(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))

	path := writeFile(t, ".env", "ROYALDNS_DOTENV_PROBE=loaded\n")
	t.Cleanup(func() { os.Unsetenv("ROYALDNS_DOTENV_PROBE") })
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("ROYALDNS_DOTENV_PROBE"))
}
