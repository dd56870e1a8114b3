package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every SMSGLOBAL_* variable for the test's duration.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"HOST", "PROTOCOL", "PORT", "API_VERSION", "API_KEY", "SECRET_KEY", "HASH_ALGORITHM", "DEBUG"} {
		name := EnvPrefix + "_" + key
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func TestNew_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SMSGLOBAL_API_KEY", "key")
	t.Setenv("SMSGLOBAL_SECRET_KEY", "secret")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "api.smsglobal.com", cfg.Host)
	assert.Equal(t, "https", cfg.Protocol)
	assert.Equal(t, 443, cfg.Port)
	assert.Equal(t, "v2", cfg.APIVersion)
	assert.Equal(t, "sha256", cfg.HashAlgorithm)
	assert.False(t, cfg.Debug)
}

func TestNew_IgnoresUnprefixedVariables(t *testing.T) {
	clearEnv(t)
	t.Setenv("SMSGLOBAL_API_KEY", "key")
	t.Setenv("SMSGLOBAL_SECRET_KEY", "secret")
	t.Setenv("PORT", "8080")
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("PROTOCOL", "http")
	t.Setenv("API_VERSION", "v9")
	t.Setenv("API_KEY", "other-key")
	t.Setenv("HASH_ALGORITHM", "md5")
	t.Setenv("DEBUG", "true")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 443, cfg.Port)
	assert.Equal(t, "api.smsglobal.com", cfg.Host)
	assert.Equal(t, "https", cfg.Protocol)
	assert.Equal(t, "v2", cfg.APIVersion)
	assert.Equal(t, "key", cfg.APIKey)
	assert.Equal(t, "sha256", cfg.HashAlgorithm)
	assert.False(t, cfg.Debug)
}

func TestNew_SummaryLoggedOnlyInDebug(t *testing.T) {
	clearEnv(t)
	t.Setenv("SMSGLOBAL_API_KEY", "key")
	t.Setenv("SMSGLOBAL_SECRET_KEY", "secret")

	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	_, err := New()
	require.NoError(t, err)
	assert.Empty(t, buf.String())

	t.Setenv("SMSGLOBAL_DEBUG", "true")
	_, err = New()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "smsglobal configuration loaded")
	assert.NotContains(t, buf.String(), "secret")
}

func TestNew_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SMSGLOBAL_HOST", "sandbox.example.com")
	t.Setenv("SMSGLOBAL_PROTOCOL", "HTTP")
	t.Setenv("SMSGLOBAL_PORT", "8080")
	t.Setenv("SMSGLOBAL_API_VERSION", "v1")
	t.Setenv("SMSGLOBAL_API_KEY", "key")
	t.Setenv("SMSGLOBAL_SECRET_KEY", "secret")
	t.Setenv("SMSGLOBAL_HASH_ALGORITHM", "sha512")

	cfg, err := New()
	require.NoError(t, err)

	conn := cfg.Connection()
	assert.Equal(t, "sandbox.example.com", conn.Host)
	assert.Equal(t, "HTTP", conn.Protocol)
	assert.Equal(t, 8080, conn.Port)
	assert.Equal(t, "v1", conn.APIVersion)

	creds := cfg.Credentials()
	assert.Equal(t, "key", creds.APIKey)
	assert.Equal(t, "secret", creds.SecretKey)
	assert.Equal(t, "sha512", creds.HashAlgorithm)

	c, err := cfg.NewClient()
	require.NoError(t, err)
	assert.Equal(t, "http://sandbox.example.com/v1", c.BaseURL())
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing keys", env: map[string]string{}},
		{name: "bad protocol", env: map[string]string{"SMSGLOBAL_PROTOCOL": "gopher"}},
		{name: "bad port", env: map[string]string{"SMSGLOBAL_PORT": "70000"}},
		{name: "unparseable port", env: map[string]string{"SMSGLOBAL_PORT": "https"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if tt.name != "missing keys" {
				t.Setenv("SMSGLOBAL_API_KEY", "key")
				t.Setenv("SMSGLOBAL_SECRET_KEY", "secret")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := New()
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("SMSGLOBAL_SECRET_KEY", "from-env")
	t.Setenv("SMSGLOBAL_PORT", "8443")

	path := filepath.Join(t.TempDir(), "smsglobal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
host: api.example.net
apiKey: file-key
hashAlgorithm: sha3-256
debug: true
`), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "api.example.net", cfg.Host)
	assert.Equal(t, "file-key", cfg.APIKey)
	assert.Equal(t, "from-env", cfg.SecretKey)
	assert.Equal(t, 8443, cfg.Port)
	assert.Equal(t, "https", cfg.Protocol)
	assert.Equal(t, "sha3-256", cfg.HashAlgorithm)
	assert.True(t, cfg.Debug)
}

func TestLoadFile_Errors(t *testing.T) {
	clearEnv(t)

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: [unterminated"), 0o600))
	_, err = LoadFile(path)
	assert.Error(t, err)
}
