package netbox_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/fivetwenty-io/netbox-client/pkg/netbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *netbox.Config
		wantErr string
	}{
		{name: "nil", config: nil, wantErr: "config is required"},
		{name: "valid", config: &netbox.Config{URL: "https://netbox.example.com", Token: "abc"}},
		{name: "missing url", config: &netbox.Config{Token: "abc"}, wantErr: "URL"},
		{name: "bad url", config: &netbox.Config{URL: "not a url", Token: "abc"}, wantErr: "URL"},
		{name: "missing token", config: &netbox.Config{URL: "https://netbox.example.com"}, wantErr: "Token"},
		{
			name:    "negative retries",
			config:  &netbox.Config{URL: "https://netbox.example.com", Token: "abc", RetryMax: -1},
			wantErr: "RetryMax",
		},
		{
			name:    "negative timeout",
			config:  &netbox.Config{URL: "https://netbox.example.com", Token: "abc", Timeout: -time.Second},
			wantErr: "Timeout",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := testCase.config.Validate()
			if testCase.wantErr == "" {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), testCase.wantErr)
		})
	}
}

func TestConfig_BaseURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://netbox.example.com/api", (&netbox.Config{URL: "https://netbox.example.com/"}).BaseURL())
	assert.Equal(t, "http://localhost:8000/api", (&netbox.Config{URL: "http://localhost:8000"}).BaseURL())
}

func TestSlogLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := netbox.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	logger.Debug("HTTP Request", map[string]interface{}{"url": "http://x/api/", "method": "GET"})
	logger.Warn("skipped", nil)

	out := buf.String()
	assert.Contains(t, out, `msg="HTTP Request" method=GET url=http://x/api/`)
	assert.Contains(t, out, "level=WARN msg=skipped")

	var nop netbox.Logger = netbox.NopLogger{}
	nop.Error("ignored", nil)
}
