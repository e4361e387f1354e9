package httprecord

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile_YAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
allow_headers:
  - host
  - x-request-id
deny_headers:
  - authorization
skip_paths:
  - /health
debug: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	config, err := LoadConfigFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"host", "x-request-id"}, config.AllowHeaders)
	assert.Equal(t, []string{"authorization"}, config.DenyHeaders)
	assert.Equal(t, []string{"/health"}, config.SkipPaths)
	assert.True(t, config.Debug)
	assert.NoError(t, ValidateConfig(config))
}

func TestLoadConfigFromFile_JSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"deny_headers": ["cookie"], "skip_paths": ["/metrics"]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	config, err := LoadConfigFromFile(path)
	require.NoError(t, err)

	assert.Nil(t, config.AllowHeaders)
	assert.Equal(t, []string{"cookie"}, config.DenyHeaders)
	assert.Equal(t, []string{"/metrics"}, config.SkipPaths)
}

func TestLoadConfigFromFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := LoadConfigFromFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("allow_headers: [unterminated"), 0o600))
	_, err = LoadConfigFromFile(bad)
	assert.Error(t, err)
}

func TestSaveConfigToFile_RoundTrip(t *testing.T) {
	t.Parallel()

	config := &Config{
		Policy: Policy{
			AllowHeaders: []string{"host"},
			DenyHeaders:  []string{"authorization"},
		},
		SkipPaths:  []string{"/health"},
		Transforms: map[string]TransformFunc{"host": Redact("x")},
	}

	for _, format := range []string{"yaml", "json"} {
		format := format
		t.Run(format, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "config."+format)
			require.NoError(t, SaveConfigToFile(config, path, format))

			loaded, err := LoadConfigFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, config.Policy, loaded.Policy)
			assert.Equal(t, config.SkipPaths, loaded.SkipPaths)
			assert.Nil(t, loaded.Transforms)
		})
	}
}

func TestSaveConfigToFile_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	err := SaveConfigToFile(&Config{}, filepath.Join(t.TempDir(), "config.toml"), "toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{name: "nil", config: nil, wantErr: true},
		{name: "empty", config: &Config{}},
		{
			name: "allowed and denied overlap",
			config: &Config{Policy: Policy{
				AllowHeaders: []string{"host", "authorization"},
				DenyHeaders:  []string{"authorization"},
			}},
		},
		{
			name:    "empty header name",
			config:  &Config{Policy: Policy{AllowHeaders: []string{""}}},
			wantErr: true,
		},
		{
			name:    "relative skip path",
			config:  &Config{SkipPaths: []string{"health"}},
			wantErr: true,
		},
		{
			name:   "grpc method skip path",
			config: &Config{SkipPaths: []string{"/grpc.health.v1.Health/Check"}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateConfig(tt.config)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			assert.NoError(t, err)
		})
	}
}
