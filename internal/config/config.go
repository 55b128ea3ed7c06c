package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/law-makers/campaigner/internal/auth"
	"github.com/law-makers/campaigner/internal/campaign"
)

// Paces groups the delay parameters of each kind of wait
type Paces struct {
	LoginPage  campaign.Pace `yaml:"login_page"`
	AfterLogin campaign.Pace `yaml:"after_login"`
	Page       campaign.Pace `yaml:"page"`
	Click      campaign.Pace `yaml:"click"`
}

// Markers are the locale-specific status texts
type Markers struct {
	AlreadyEntered []string `yaml:"already_entered"`
	NoEntry        []string `yaml:"no_entry"`
	DoneGlyph      string   `yaml:"done_glyph"`
}

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level"`
	JSONLog  bool   `yaml:"json_log"`
	NoColor  bool   `yaml:"no_color"`

	// Browser
	Headless   bool          `yaml:"headless"`
	ChromePath string        `yaml:"chrome_path"`
	UserAgent  string        `yaml:"user_agent"`
	Proxy      string        `yaml:"proxy"`
	Timeout    time.Duration `yaml:"timeout"`

	// Navigation ceiling on top of the paces
	NavigationRPS   float64 `yaml:"navigation_rps"`
	NavigationBurst int     `yaml:"navigation_burst"`

	// Credentials
	SecretBackend string `yaml:"secret_backend"`
	SecretService string `yaml:"secret_service"`
	SecretPrefix  string `yaml:"secret_prefix"`
	AWSRegion     string `yaml:"aws_region"`

	// Run
	Seed        uint64         `yaml:"seed"`
	MetricsFile string         `yaml:"metrics_file"`
	Only        []string       `yaml:"only"`
	Paces       Paces          `yaml:"paces"`
	Markers     Markers        `yaml:"markers"`
	Login       auth.LoginForm `yaml:"login"`

	Surfaces []campaign.SurfaceConfig `yaml:"surfaces"`
	// SurfaceURLs fills in URLs of the surface table by name
	SurfaceURLs map[string]string `yaml:"surface_urls"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		LogLevel:        DefaultLogLevel,
		JSONLog:         DefaultJSONLog,
		Headless:        DefaultBrowserHeadless,
		UserAgent:       DefaultUserAgent,
		Timeout:         DefaultTimeout,
		NavigationRPS:   DefaultNavigationRPS,
		NavigationBurst: DefaultNavigationBurst,
		SecretBackend:   DefaultSecretBackend,
		SecretService:   auth.DefaultService,
		SecretPrefix:    DefaultSecretsManagerScope,
		MetricsFile:     DefaultMetricsFile,
		Paces:           DefaultPaces(),
		Markers:         DefaultMarkers(),
		Login:           auth.DefaultLoginForm(),
		Surfaces:        DefaultSurfaces(),
	}
}

// Load builds a Config by combining defaults, an optional config file, environment variables, and CLI flags.
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Default()

	path := os.Getenv("CAMPAIGNER_CONFIG")
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil && f.Value.String() != "" {
			path = f.Value.String()
		}
	}
	if path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cmd != nil {
		if err := applyFlags(cmd, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applySurfaceURLs()

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadFile overlays the YAML file at path onto cfg. Keys absent from the file keep their value;
// a surfaces list replaces the whole table.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"CAMPAIGNER_LOG_LEVEL":      &cfg.LogLevel,
		"CAMPAIGNER_USER_AGENT":     &cfg.UserAgent,
		"CAMPAIGNER_PROXY":          &cfg.Proxy,
		"CAMPAIGNER_CHROME_PATH":    &cfg.ChromePath,
		"CAMPAIGNER_SECRET_BACKEND": &cfg.SecretBackend,
		"CAMPAIGNER_SECRET_SERVICE": &cfg.SecretService,
		"CAMPAIGNER_AWS_REGION":     &cfg.AWSRegion,
		"CAMPAIGNER_METRICS_FILE":   &cfg.MetricsFile,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("CAMPAIGNER_HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CAMPAIGNER_HEADLESS: %w", err)
		}
		cfg.Headless = b
	}
	if v := os.Getenv("CAMPAIGNER_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("CAMPAIGNER_SEED: %w", err)
		}
		cfg.Seed = seed
	}
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *Config) error {
	flags := cmd.Flags()

	strs := map[string]*string{
		"user-agent":     &cfg.UserAgent,
		"proxy":          &cfg.Proxy,
		"chrome-path":    &cfg.ChromePath,
		"secret-backend": &cfg.SecretBackend,
		"service":        &cfg.SecretService,
		"metrics-file":   &cfg.MetricsFile,
	}
	for name, dst := range strs {
		if f := flags.Lookup(name); f != nil {
			if s := f.Value.String(); s != "" {
				*dst = s
			}
		}
	}

	if f := flags.Lookup("timeout"); f != nil && f.Changed {
		d, err := time.ParseDuration(f.Value.String())
		if err != nil {
			return fmt.Errorf("invalid --timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if f := flags.Lookup("headless"); f != nil && f.Changed {
		cfg.Headless = f.Value.String() == "true"
	}
	if f := flags.Lookup("seed"); f != nil && f.Changed {
		seed, err := strconv.ParseUint(f.Value.String(), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid --seed: %w", err)
		}
		cfg.Seed = seed
	}
	if f := flags.Lookup("surface"); f != nil && f.Changed {
		only, err := flags.GetStringSlice("surface")
		if err != nil {
			return err
		}
		cfg.Only = only
	}
	if f := flags.Lookup("json"); f != nil && f.Value.String() == "true" {
		cfg.JSONLog = true
	}
	if f := flags.Lookup("no-color"); f != nil && f.Value.String() == "true" {
		cfg.NoColor = true
	}
	if f := flags.Lookup("quiet"); f != nil && f.Value.String() == "true" {
		cfg.LogLevel = "error"
	}
	if f := flags.Lookup("verbose"); f != nil && f.Value.String() == "true" {
		cfg.LogLevel = "debug"
	}
	return nil
}

func (c *Config) applySurfaceURLs() {
	for i := range c.Surfaces {
		if u, ok := c.SurfaceURLs[c.Surfaces[i].Name]; ok {
			c.Surfaces[i].URL = u
		}
	}
}

// Classifier builds the eligibility classifier from the configured markers
func (c *Config) Classifier() *campaign.Classifier {
	return &campaign.Classifier{
		AlreadyEntered: c.Markers.AlreadyEntered,
		NoEntry:        c.Markers.NoEntry,
		DoneGlyph:      c.Markers.DoneGlyph,
	}
}

// BuildSurfaces returns the runtime surfaces, restricted to Only when it is set
func (c *Config) BuildSurfaces() ([]campaign.Surface, error) {
	only := make(map[string]bool, len(c.Only))
	for _, name := range c.Only {
		only[name] = true
	}

	var surfaces []campaign.Surface
	for _, sc := range c.Surfaces {
		if len(only) > 0 && !only[sc.Name] {
			continue
		}
		s, err := sc.Surface()
		if err != nil {
			return nil, err
		}
		surfaces = append(surfaces, s)
	}
	return surfaces, nil
}

// FindSurface returns the surface configured under name
func (c *Config) FindSurface(name string) (campaign.SurfaceConfig, bool) {
	for _, sc := range c.Surfaces {
		if sc.Name == name {
			return sc, true
		}
	}
	return campaign.SurfaceConfig{}, false
}
