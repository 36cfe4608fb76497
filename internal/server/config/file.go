package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/droply/internal/flagx"
	"github.com/dmitrijs2005/droply/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config for decoding config files. Unset keys leave the
// corresponding Config field untouched.
type FileConfig struct {
	EndpointAddrHTTP *string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	DatabaseDSN      *string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey        *string         `json:"secret_key" yaml:"secret_key"`
	S3RootUser       *string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword   *string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket         *string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region         *string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint   *string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	S3PublicURL      *string         `json:"s3_public_url" yaml:"s3_public_url"`
	MaxUploadSize    *int64          `json:"max_upload_size" yaml:"max_upload_size"`
	PresignTTL       *timex.Duration `json:"presign_ttl" yaml:"presign_ttl"`
	ShutdownTimeout  *timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel         *string         `json:"log_level" yaml:"log_level"`
}

// parseFile loads the file named by -c / -config, if any. Files ending in
// .yaml or .yml are decoded as YAML, anything else as JSON. A file that
// cannot be read or decoded is fatal, so parseFile panics.
func parseFile(config *Config) {
	path := flagx.ConfigFile(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(config)
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.SecretKey, fc.SecretKey)
	setString(&c.S3RootUser, fc.S3RootUser)
	setString(&c.S3RootPassword, fc.S3RootPassword)
	setString(&c.S3Bucket, fc.S3Bucket)
	setString(&c.S3Region, fc.S3Region)
	setString(&c.S3BaseEndpoint, fc.S3BaseEndpoint)
	setString(&c.S3PublicURL, fc.S3PublicURL)
	setString(&c.LogLevel, fc.LogLevel)
	if fc.MaxUploadSize != nil {
		c.MaxUploadSize = *fc.MaxUploadSize
	}
	if fc.PresignTTL != nil {
		c.PresignTTL = fc.PresignTTL.Duration
	}
	if fc.ShutdownTimeout != nil {
		c.ShutdownTimeout = fc.ShutdownTimeout.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
