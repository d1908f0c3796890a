package config

import (
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Providers  []string         `yaml:"providers" mapstructure:"providers"`
	Scrapfly   ProviderConfig   `yaml:"scrapfly" mapstructure:"scrapfly"`
	Firecrawl  ProviderConfig   `yaml:"firecrawl" mapstructure:"firecrawl"`
	Jina       ProviderConfig   `yaml:"jina" mapstructure:"jina"`
	Screenshot ScreenshotConfig `yaml:"screenshot" mapstructure:"screenshot"`
	Normalize  NormalizeConfig  `yaml:"normalize" mapstructure:"normalize"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// ProviderConfig holds API credentials and transport settings for one
// scraping provider.
type ProviderConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ScreenshotConfig configures how provider screenshots are embedded.
type ScreenshotConfig struct {
	Embed       string `yaml:"embed" mapstructure:"embed"` // data_uri or static
	Dir         string `yaml:"dir" mapstructure:"dir"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxBytes    int64  `yaml:"max_bytes" mapstructure:"max_bytes"`
}

// NormalizeConfig configures the content pipeline.
type NormalizeConfig struct {
	FollowRedirects     bool `yaml:"follow_redirects" mapstructure:"follow_redirects"`
	RedirectTimeoutSecs int  `yaml:"redirect_timeout_secs" mapstructure:"redirect_timeout_secs"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port                int      `yaml:"port" mapstructure:"port"`
	CORSOrigins         []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	ShutdownTimeoutSecs int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// KnownProviders lists the provider names that can be enabled.
var KnownProviders = []string{"scrapfly", "firecrawl", "jina"}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PLAYGROUND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The providers' own conventional variable names work too.
	for key, env := range map[string]string{
		"scrapfly.key":  "SCRAPFLY_API_KEY",
		"firecrawl.key": "FIRECRAWL_API_KEY",
		"jina.key":      "JINA_API_KEY",
	} {
		envPrefixed := "PLAYGROUND_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envPrefixed, env); err != nil {
			return nil, eris.Wrapf(err, "config: bind %s", key)
		}
	}

	// Defaults
	v.SetDefault("providers", []string{"scrapfly", "firecrawl"})
	v.SetDefault("scrapfly.base_url", "https://api.scrapfly.io")
	v.SetDefault("scrapfly.timeout_secs", 60)
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v1")
	v.SetDefault("firecrawl.timeout_secs", 180)
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("jina.timeout_secs", 60)
	v.SetDefault("screenshot.embed", "data_uri")
	v.SetDefault("screenshot.dir", "")
	v.SetDefault("screenshot.timeout_secs", 60)
	v.SetDefault("screenshot.max_bytes", 20<<20)
	v.SetDefault("normalize.follow_redirects", false)
	v.SetDefault("normalize.redirect_timeout_secs", 10)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode needs. Mode is "serve" or
// "scrape". Missing API keys are not an error here: a provider without a
// key reports it on first use.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "scrape":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(c.Providers) == 0 {
		problems = append(problems, "providers must list at least one provider")
	}
	for _, p := range c.Providers {
		if !slices.Contains(KnownProviders, p) {
			problems = append(problems, "providers: unknown provider "+p)
		}
	}

	switch c.Screenshot.Embed {
	case "data_uri":
	case "static":
		if c.Screenshot.Dir == "" {
			problems = append(problems, "screenshot.dir is required when screenshot.embed is static")
		}
	default:
		problems = append(problems, "screenshot.embed must be data_uri or static")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
