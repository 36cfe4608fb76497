package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("DROPLY_HTTP_ADDR", ":9999")
	t.Setenv("DROPLY_SECRET_KEY", "env-secret")
	t.Setenv("DROPLY_S3_PUBLIC_URL", "https://files.example")
	t.Setenv("DROPLY_MAX_UPLOAD_SIZE", "2048")
	t.Setenv("DROPLY_PRESIGN_TTL", "2m")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, ":9999", cfg.EndpointAddrHTTP)
	assert.Equal(t, "env-secret", cfg.SecretKey)
	assert.Equal(t, "https://files.example", cfg.S3PublicURL)
	assert.Equal(t, int64(2048), cfg.MaxUploadSize)
	assert.Equal(t, 2*time.Minute, cfg.PresignTTL)
	assert.Equal(t, "droply", cfg.S3Bucket)
}

func TestParseEnv_Malformed(t *testing.T) {
	t.Setenv("DROPLY_MAX_UPLOAD_SIZE", "lots")
	require.Panics(t, func() { parseEnv(&Config{}) })
}

func TestParseEnv_MalformedDuration(t *testing.T) {
	t.Setenv("DROPLY_SHUTDOWN_TIMEOUT", "later")
	require.Panics(t, func() { parseEnv(&Config{}) })
}
