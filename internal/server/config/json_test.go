package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJson_LoadsFile(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	payload := `{
		"endpoint_addr_http": ":9999",
		"database_dsn": "postgres://example/db",
		"secret_key": "from-json",
		"access_token_validity_duration": "5m",
		"refresh_token_validity_duration": "48h"
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	os.Args = []string{"cmd", "-c", path}

	config := &Config{}
	config.LoadDefaults()
	parseJson(config)

	assert.Equal(t, ":9999", config.EndpointAddrHTTP)
	assert.Equal(t, "postgres://example/db", config.DatabaseDSN)
	assert.Equal(t, "from-json", config.SecretKey)
	assert.Equal(t, 5*time.Minute, config.AccessTokenValidityDuration)
	assert.Equal(t, 48*time.Hour, config.RefreshTokenValidityDuration)
}

func TestParseJson_NoFlagIsNoop(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"cmd"}

	config := &Config{}
	config.LoadDefaults()
	parseJson(config)

	assert.Equal(t, ":8080", config.EndpointAddrHTTP)
}

func TestParseJson_InvalidFilePanics(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o600))

	os.Args = []string{"cmd", "-c", path}

	config := &Config{}
	require.Panics(t, func() { parseJson(config) })
}
