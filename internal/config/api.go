package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ryanmio/actblue-jail/pkg/formatting"
	"github.com/ryanmio/actblue-jail/pkg/middleware"
	"github.com/ryanmio/actblue-jail/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled: "AJAIL_CORS_ENABLED",
	Origins: "AJAIL_CORS_ORIGINS",
}

// APIConfig holds API routing, upload, CORS, and pagination settings.
type APIConfig struct {
	BasePath        string                `toml:"base_path"`
	MaxUploadSize   string                `toml:"max_upload_size"`
	AllowlistDomain string                `toml:"allowlist_domain"`
	DispatchTimeout string                `toml:"dispatch_timeout"`
	CORS            middleware.CORSConfig `toml:"cors"`
	Pagination      pagination.Config     `toml:"pagination"`
}

func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 10 * 1024 * 1024 // 10MB fallback
	}
	return size
}

// DispatchTimeoutDuration returns DispatchTimeout as a time.Duration.
func (c *APIConfig) DispatchTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.DispatchTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := time.ParseDuration(c.DispatchTimeout); err != nil {
		return fmt.Errorf("invalid dispatch_timeout: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.AllowlistDomain != "" {
		c.AllowlistDomain = overlay.AllowlistDomain
	}
	if overlay.DispatchTimeout != "" {
		c.DispatchTimeout = overlay.DispatchTimeout
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "10MB"
	}
	if c.AllowlistDomain == "" {
		c.AllowlistDomain = "actblue.com"
	}
	if c.DispatchTimeout == "" {
		c.DispatchTimeout = "2m"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("AJAIL_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("AJAIL_API_MAX_UPLOAD_SIZE"); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv("AJAIL_API_ALLOWLIST_DOMAIN"); v != "" {
		c.AllowlistDomain = v
	}
	if v := os.Getenv("AJAIL_API_DISPATCH_TIMEOUT"); v != "" {
		c.DispatchTimeout = v
	}
}
