package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/devquest/codenexus/internal/flagx"
	"github.com/devquest/codenexus/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config for config files. Durations use timex.Duration,
// so "90s" and integer nanoseconds are both accepted. Zero values leave the
// current setting untouched.
type FileConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http" toml:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc" toml:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	StorageBackend              string         `json:"storage_backend" toml:"storage_backend" yaml:"storage_backend"`
	DatabaseDSN                 string         `json:"database_dsn" toml:"database_dsn" yaml:"database_dsn"`
	SecretKey                   string         `json:"secret_key" toml:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" toml:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	SessionValidityDuration     timex.Duration `json:"session_validity_duration" toml:"session_validity_duration" yaml:"session_validity_duration"`
	SessionCleanupInterval      timex.Duration `json:"session_cleanup_interval" toml:"session_cleanup_interval" yaml:"session_cleanup_interval"`
	RedisAddr                   string         `json:"redis_addr" toml:"redis_addr" yaml:"redis_addr"`
	RedisPassword               string         `json:"redis_password" toml:"redis_password" yaml:"redis_password"`
	RedisDB                     int            `json:"redis_db" toml:"redis_db" yaml:"redis_db"`
	RateLimitRequests           int            `json:"rate_limit_requests" toml:"rate_limit_requests" yaml:"rate_limit_requests"`
	RateLimitWindow             timex.Duration `json:"rate_limit_window" toml:"rate_limit_window" yaml:"rate_limit_window"`
	S3RootUser                  string         `json:"s3_root_user" toml:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password" toml:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket" toml:"s3_bucket" yaml:"s3_bucket"`
	S3Region                    string         `json:"s3_region" toml:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint" toml:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	CORSOrigins                 []string       `json:"cors_origins" toml:"cors_origins" yaml:"cors_origins"`
	LogLevel                    string         `json:"log_level" toml:"log_level" yaml:"log_level"`
}

// decodeFile picks the decoder by file extension. Unknown extensions are
// read as JSON.
func decodeFile(path string, data []byte, fc *FileConfig) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, fc)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, fc)
	default:
		return json.Unmarshal(data, fc)
	}
}

// loadFile reads path and overlays every non-zero value onto config.
func loadFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	fc := &FileConfig{}
	if err := decodeFile(path, data, fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	setString(&config.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, fc.EndpointAddrGRPC)
	setString(&config.StorageBackend, fc.StorageBackend)
	setString(&config.DatabaseDSN, fc.DatabaseDSN)
	setString(&config.SecretKey, fc.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, fc.AccessTokenValidityDuration)
	setDuration(&config.SessionValidityDuration, fc.SessionValidityDuration)
	setDuration(&config.SessionCleanupInterval, fc.SessionCleanupInterval)
	setString(&config.RedisAddr, fc.RedisAddr)
	setString(&config.RedisPassword, fc.RedisPassword)
	if fc.RedisDB != 0 {
		config.RedisDB = fc.RedisDB
	}
	if fc.RateLimitRequests != 0 {
		config.RateLimitRequests = fc.RateLimitRequests
	}
	setDuration(&config.RateLimitWindow, fc.RateLimitWindow)
	setString(&config.S3RootUser, fc.S3RootUser)
	setString(&config.S3RootPassword, fc.S3RootPassword)
	setString(&config.S3Bucket, fc.S3Bucket)
	setString(&config.S3Region, fc.S3Region)
	setString(&config.S3BaseEndpoint, fc.S3BaseEndpoint)
	if len(fc.CORSOrigins) > 0 {
		config.CORSOrigins = fc.CORSOrigins
	}
	setString(&config.LogLevel, fc.LogLevel)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}

// parseFile loads the file named by -c or -config, if any. A file that
// cannot be read or parsed is fatal.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag(os.Args[1:])
	if path == "" {
		return
	}
	if err := loadFile(config, path); err != nil {
		panic(err)
	}
}
