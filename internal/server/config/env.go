package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// parseEnv overlays DROPLY_* environment variables. Malformed numeric or
// duration values panic, like malformed config files.
func parseEnv(config *Config) {
	strs := map[string]*string{
		"DROPLY_HTTP_ADDR":        &config.EndpointAddrHTTP,
		"DROPLY_DATABASE_DSN":     &config.DatabaseDSN,
		"DROPLY_SECRET_KEY":       &config.SecretKey,
		"DROPLY_S3_ROOT_USER":     &config.S3RootUser,
		"DROPLY_S3_ROOT_PASSWORD": &config.S3RootPassword,
		"DROPLY_S3_BUCKET":        &config.S3Bucket,
		"DROPLY_S3_REGION":        &config.S3Region,
		"DROPLY_S3_BASE_ENDPOINT": &config.S3BaseEndpoint,
		"DROPLY_S3_PUBLIC_URL":    &config.S3PublicURL,
		"DROPLY_LOG_LEVEL":        &config.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("DROPLY_MAX_UPLOAD_SIZE"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(fmt.Errorf("DROPLY_MAX_UPLOAD_SIZE: %w", err))
		}
		config.MaxUploadSize = n
	}

	durations := map[string]*time.Duration{
		"DROPLY_PRESIGN_TTL":      &config.PresignTTL,
		"DROPLY_SHUTDOWN_TIMEOUT": &config.ShutdownTimeout,
	}
	for name, dst := range durations {
		if v, ok := os.LookupEnv(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(fmt.Errorf("%s: %w", name, err))
			}
			*dst = d
		}
	}
}
