package config

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/law-makers/campaigner/internal/campaign"
	urlutil "github.com/law-makers/campaigner/internal/utils/url"
)

func validate(c *Config) error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0")
	}
	if c.NavigationRPS <= 0 || c.NavigationRPS > DefaultMaxNavigationRPS {
		return fmt.Errorf("navigation rps must be between 0 and %v", DefaultMaxNavigationRPS)
	}
	if c.NavigationBurst < 1 {
		return fmt.Errorf("navigation burst must be >= 1")
	}

	switch c.SecretBackend {
	case BackendKeyring, BackendFile, BackendSecretsManager:
	default:
		return fmt.Errorf("secret backend must be one of %s, %s, %s", BackendKeyring, BackendFile, BackendSecretsManager)
	}
	if c.SecretService == "" {
		return fmt.Errorf("secret service cannot be empty")
	}

	paces := map[string]campaign.Pace{
		"login_page":  c.Paces.LoginPage,
		"after_login": c.Paces.AfterLogin,
		"page":        c.Paces.Page,
		"click":       c.Paces.Click,
	}
	for name, p := range paces {
		if p.Spread < 0 || p.Minimum < 0 {
			return fmt.Errorf("paces.%s: spread and minimum must be >= 0", name)
		}
	}

	if c.Markers.DoneGlyph == "" {
		return fmt.Errorf("markers.done_glyph cannot be empty")
	}

	for name, l := range map[string]interface{ Validate() error }{
		"login.username": c.Login.Username,
		"login.password": c.Login.Password,
		"login.submit":   c.Login.Submit,
	} {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if err := urlutil.ValidateURL(c.Login.URL); err != nil {
		return fmt.Errorf("login.url: %w", err)
	}

	seen := make(map[string]bool, len(c.Surfaces))
	for _, s := range c.Surfaces {
		if seen[s.Name] {
			return fmt.Errorf("duplicate surface %q", s.Name)
		}
		seen[s.Name] = true
		if s.URL != "" {
			if err := urlutil.ValidateURL(s.URL); err != nil {
				return fmt.Errorf("surface %s: %w", s.Name, err)
			}
		}
		if _, err := s.Surface(); err != nil {
			return err
		}
	}
	for _, name := range c.Only {
		if !seen[name] {
			return fmt.Errorf("unknown surface %q", name)
		}
	}
	for name := range c.SurfaceURLs {
		if !seen[name] {
			return fmt.Errorf("surface_urls: unknown surface %q", name)
		}
	}
	return nil
}
