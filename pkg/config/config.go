// Package config loads the process configuration from environment variables.
// It is read exactly once at startup; everything downstream receives plain
// values or constructed dependencies, never the environment.
package config

import (
	"github.com/caarlos0/env/v11"
)

// Config holds every environment-provided setting. Provider credentials may be
// absent; the affected provider is then reported as unconfigured when a login
// is attempted rather than failing startup.
type Config struct {
	SpotifyClientID     string `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET"`
	YouTubeClientID     string `env:"YOUTUBE_CLIENT_ID"`
	YouTubeClientSecret string `env:"YOUTUBE_CLIENT_SECRET"`

	// CookieSecret keys both the session codec and the signed state cookie.
	CookieSecret string `env:"COOKIE_SECRET,required,notEmpty"`

	// AppURL, when set, is the canonical external base address used to build
	// OAuth callback URLs. Without it the callback URL is derived per request.
	AppURL string `env:"APP_URL"`

	Environment  string `env:"APP_ENV" envDefault:"development"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"feelthebeats.db"`
	Port         int    `env:"PORT" envDefault:"4000"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Production reports whether the process runs in production mode, which
// forces secure cookies and HTTPS callback URLs.
func (c *Config) Production() bool {
	return c.Environment == "production"
}
