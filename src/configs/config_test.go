package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: 9090
log:
  log_level: debug
selected_module:
  Recognizer: groq
detection:
  timeout: 12s
Recognizer:
  groq:
    type: openai
    model_name: llama-vision
    api_key_env: TEST_GROQ_KEY
  manual:
    items: [mouse, phone]
`

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "RECOGNIZER", "MIN_IMAGE_BYTES", "LOG_LEVEL", "AUTH_SECRET", "EWASTE_CONFIG"} {
		t.Setenv(k, "")
	}
}

func TestParse_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, DefaultMinImageBytes, cfg.Detection.MinImageBytes)
	require.Equal(t, int64(DefaultMaxRequestBytes), cfg.Detection.MaxRequestBytes)
	require.Equal(t, DefaultMaxSide, cfg.Detection.Image.MaxSide)
	require.Equal(t, 12*time.Second, cfg.DetectionTimeout())

	name, rc := cfg.SelectedRecognizer()
	require.Equal(t, "groq", name)
	require.Equal(t, "openai", rc.Type)
	require.InDelta(t, DefaultTemperature, rc.Temperature, 1e-9)

	// type falls back to the entry name
	require.Equal(t, "manual", cfg.Recognizer["manual"].Type)
}

func TestParse_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("RECOGNIZER", "manual")
	t.Setenv("MIN_IMAGE_BYTES", "1234")
	t.Setenv("PORT", "7000")

	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	name, _ := cfg.SelectedRecognizer()
	require.Equal(t, "manual", name)
	require.Equal(t, 1234, cfg.Detection.MinImageBytes)
	require.Equal(t, 7000, cfg.Server.Port)
}

func TestParse_BadEnvNumbers(t *testing.T) {
	tests := map[string]string{
		"PORT":            "eighty",
		"MIN_IMAGE_BYTES": "4k",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Parse([]byte(sampleConfig))
			require.ErrorContains(t, err, key)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "no selected recognizer",
			yaml: "Recognizer:\n  manual: {}\n",
		},
		{
			name: "unknown selected recognizer",
			yaml: "selected_module:\n  Recognizer: nope\nRecognizer:\n  manual: {}\n",
		},
		{
			name: "bad timeout",
			yaml: "selected_module:\n  Recognizer: manual\nRecognizer:\n  manual: {}\ndetection:\n  timeout: soon\n",
		},
		{
			name: "auth without secret",
			yaml: "selected_module:\n  Recognizer: manual\nRecognizer:\n  manual: {}\nserver:\n  auth:\n    enabled: true\n",
		},
		{
			name: "bad port",
			yaml: "selected_module:\n  Recognizer: manual\nRecognizer:\n  manual: {}\nserver:\n  port: 70000\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("TEST_GROQ_KEY", " secret ")

	require.Equal(t, "inline", RecognizerConfig{APIKey: "inline", APIKeyEnv: "TEST_GROQ_KEY"}.ResolveAPIKey())
	require.Equal(t, "secret", RecognizerConfig{APIKeyEnv: "TEST_GROQ_KEY"}.ResolveAPIKey())
	require.Empty(t, RecognizerConfig{}.ResolveAPIKey())
}

func TestLoadConfig_FromEnvPath(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0644))
	t.Setenv("EWASTE_CONFIG", path)

	cfg, used, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, path, used)
	require.Equal(t, 9090, cfg.Server.Port)
}
