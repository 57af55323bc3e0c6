package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/tftmeta/pkg/constants"
	"github.com/agentstation/tftmeta/pkg/errors"
)

// EnvPrefix prefixes every environment variable, e.g. TFTMETA_CURRENT_SET.
const EnvPrefix = "TFTMETA"

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Output  string // summary, json or yaml

	// Config file
	ConfigFile string

	// Client configuration
	CurrentSet      string
	Locale          string
	FallbackVersion string
	CacheTTL        time.Duration
	HTTPTimeout     time.Duration
	Retries         int
	DDragonURL      string
	CDragonURL      string
	AssetSource     string
	LowercasePaths  bool

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (TFTMETA_*)
// 3. .env files
// 4. Config file (~/.tftmeta.yaml, or TFTMETA_CONFIG)
// 5. Defaults
func LoadConfig() (*Config, error) {
	return LoadConfigFile("")
}

// LoadConfigFile is LoadConfig with an explicit config file path, which
// takes precedence over TFTMETA_CONFIG.
func LoadConfigFile(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path == "" {
		path = v.GetString("config")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".tftmeta")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing default file is fine; a broken or missing explicit one is not.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.WrapParse("yaml", "config", err)
		}
	}

	return &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Output:  v.GetString("output"),

		ConfigFile: v.ConfigFileUsed(),

		CurrentSet:      v.GetString("current_set"),
		Locale:          v.GetString("locale"),
		FallbackVersion: v.GetString("fallback_version"),
		CacheTTL:        v.GetDuration("cache_ttl"),
		HTTPTimeout:     v.GetDuration("http_timeout"),
		Retries:         v.GetInt("retries"),
		DDragonURL:      v.GetString("ddragon_url"),
		CDragonURL:      v.GetString("cdragon_url"),
		AssetSource:     v.GetString("asset_source"),
		LowercasePaths:  v.GetBool("lowercase_paths"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output", "summary")
	v.SetDefault("current_set", constants.DefaultCurrentSet)
	v.SetDefault("locale", constants.DefaultLocale)
	v.SetDefault("fallback_version", constants.DefaultFallbackVersion)
	v.SetDefault("cache_ttl", constants.DefaultCacheTTL)
	v.SetDefault("http_timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("retries", constants.DefaultRetries)
	v.SetDefault("ddragon_url", constants.DDragonURL)
	v.SetDefault("cdragon_url", constants.CDragonURL)
	v.SetDefault("asset_source", constants.DefaultAssetSource)
	// The public Community Dragon CDN only serves lowercase paths.
	v.SetDefault("lowercase_paths", true)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// UpdateFromFlags updates config values from parsed command flags.
// Flag values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, output, logLevel string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if output != "" {
		c.Output = output
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files. godotenv
// never overrides a variable that is already set, so .env.local is read
// first to take precedence over .env, and the real environment wins.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
