package ai

import (
	"fmt"
	"os"
)

// Config holds AI collaborator settings.
type Config struct {
	APIKey    string `toml:"api_key"`
	Model     string `toml:"model"`
	MaxTokens int64  `toml:"max_tokens"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	APIKey string
	Model  string
}

// Finalize applies defaults, environment variable overrides, and validation.
// An empty API key is valid: it means no collaborator is configured and
// pipeline operations that need one are rejected up front.
func (c *Config) Finalize(env *Env) error {
	if c.Model == "" {
		c.Model = "claude-sonnet-4-5-20250929"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4096
	}

	if env != nil {
		if env.APIKey != "" {
			if v := os.Getenv(env.APIKey); v != "" {
				c.APIKey = v
			}
		}
		if env.Model != "" {
			if v := os.Getenv(env.Model); v != "" {
				c.Model = v
			}
		}
	}

	if c.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be positive")
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.MaxTokens != 0 {
		c.MaxTokens = overlay.MaxTokens
	}
}

// Configured reports whether an API key is present.
func (c *Config) Configured() bool {
	return c.APIKey != ""
}
