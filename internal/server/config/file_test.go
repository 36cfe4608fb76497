package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseFile_JSON(t *testing.T) {
	path := writeTemp(t, "cfg.json", `{
		"endpoint_addr_http": "www.example:9000",
		"database_dsn": "postgres://db",
		"secret_key": "my_secret_key",
		"s3_root_user": "user",
		"s3_root_password": "password",
		"s3_bucket": "bucket",
		"s3_region": "region",
		"s3_base_endpoint": "base_endpoint",
		"s3_public_url": "https://cdn.example",
		"max_upload_size": 1024,
		"presign_ttl": "5m",
		"shutdown_timeout": "3s",
		"log_level": "warn"
	}`)
	setArgs(t, "-config", path)

	cfg := &Config{}
	parseFile(cfg)

	assert.Equal(t, "www.example:9000", cfg.EndpointAddrHTTP)
	assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
	assert.Equal(t, "my_secret_key", cfg.SecretKey)
	assert.Equal(t, "user", cfg.S3RootUser)
	assert.Equal(t, "password", cfg.S3RootPassword)
	assert.Equal(t, "bucket", cfg.S3Bucket)
	assert.Equal(t, "region", cfg.S3Region)
	assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
	assert.Equal(t, "https://cdn.example", cfg.S3PublicURL)
	assert.Equal(t, int64(1024), cfg.MaxUploadSize)
	assert.Equal(t, 5*time.Minute, cfg.PresignTTL)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestParseFile_YAMLPartial(t *testing.T) {
	path := writeTemp(t, "cfg.yml", "s3_bucket: media\npresign_ttl: 90s\n")
	setArgs(t, "-c", path)

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)

	assert.Equal(t, "media", cfg.S3Bucket)
	assert.Equal(t, 90*time.Second, cfg.PresignTTL)
	assert.Equal(t, ":8080", cfg.EndpointAddrHTTP, "keys absent from the file keep their value")
}

func TestParseFile_NoFile(t *testing.T) {
	setArgs(t)

	cfg := &Config{EndpointAddrHTTP: "defaults:1234"}
	parseFile(cfg)
	assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
}

func TestParseFile_Invalid(t *testing.T) {
	t.Run("bad json", func(t *testing.T) {
		setArgs(t, "-c", writeTemp(t, "bad.json", `{ not json`))
		require.Panics(t, func() { parseFile(&Config{}) })
	})
	t.Run("bad yaml duration", func(t *testing.T) {
		setArgs(t, "-c", writeTemp(t, "bad.yaml", "presign_ttl: soon\n"))
		require.Panics(t, func() { parseFile(&Config{}) })
	})
	t.Run("missing file", func(t *testing.T) {
		setArgs(t, "-c", filepath.Join(t.TempDir(), "nope.json"))
		require.Panics(t, func() { parseFile(&Config{}) })
	})
}
