// Package config handles configuration loading for futureskit.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Datasource DatasourceConfig        `mapstructure:"datasource" yaml:"datasource"`
	Continuous ContinuousConfig        `mapstructure:"continuous" yaml:"continuous"`
	Vendors    map[string]VendorConfig `mapstructure:"vendors"    yaml:"vendors"`
	API        APIConfig               `mapstructure:"api"        yaml:"api"`
	Logging    LoggingConfig           `mapstructure:"logging"    yaml:"logging"`
}

// DatasourceConfig selects and tunes the active data source.
type DatasourceConfig struct {
	Provider          string `mapstructure:"provider"           yaml:"provider"` // "demo", "yahoo", "tradingview", "refinitiv"
	RefinitivBaseURL  string `mapstructure:"refinitiv_base_url" yaml:"refinitiv_base_url"`
	CacheTTLSec       int    `mapstructure:"cache_ttl_sec"      yaml:"cache_ttl_sec"`
	ConcurrentFetches int    `mapstructure:"concurrent_fetches" yaml:"concurrent_fetches"`
}

// ContinuousConfig holds the default continuous-series parameters used when
// a request does not override them.
type ContinuousConfig struct {
	Roll   string `mapstructure:"roll"   yaml:"roll"`   // "calendar", "volume", "open_interest", ...
	Offset int    `mapstructure:"offset" yaml:"offset"` // signed days relative to expiry
	Adjust string `mapstructure:"adjust" yaml:"adjust"` // "none", "back", "forward", "proportional"
	Field  string `mapstructure:"field"  yaml:"field"`  // default stitched field
}

// VendorConfig carries per-root vendor symbol mappings, keyed by root
// symbol in the Vendors map (e.g. vendors.BRN.refinitiv_symbol: LCO).
type VendorConfig struct {
	TradingViewSymbol   string `mapstructure:"tradingview_symbol"   yaml:"tradingview_symbol"`
	TradingViewExchange string `mapstructure:"tradingview_exchange" yaml:"tradingview_exchange"`
	RefinitivSymbol     string `mapstructure:"refinitiv_symbol"     yaml:"refinitiv_symbol"`
	YahooSymbol         string `mapstructure:"yahoo_symbol"         yaml:"yahoo_symbol"`
	YahooSuffix         string `mapstructure:"yahoo_suffix"         yaml:"yahoo_suffix"`
}

// Map flattens a VendorConfig into the string map the symbology converters
// and URL generators consume.
func (v VendorConfig) Map() map[string]string {
	out := make(map[string]string)
	if v.TradingViewSymbol != "" {
		out["tradingview_symbol"] = v.TradingViewSymbol
	}
	if v.TradingViewExchange != "" {
		out["tradingview_exchange"] = v.TradingViewExchange
	}
	if v.RefinitivSymbol != "" {
		out["refinitiv_symbol"] = v.RefinitivSymbol
	}
	if v.YahooSymbol != "" {
		out["yahoo_symbol"] = v.YahooSymbol
	}
	if v.YahooSuffix != "" {
		out["yahoo_suffix"] = v.YahooSuffix
	}
	return out
}

// VendorMap returns the vendor mappings for a root symbol, empty when the
// root is not configured.
func (c *Config) VendorMap(root string) map[string]string {
	if vc, ok := c.Vendors[strings.ToUpper(root)]; ok {
		return vc.Map()
	}
	return nil
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.futureskit/config.yaml (home directory)
//  3. /etc/futureskit/config.yaml (system)
//
// Environment variables override config file values.
// Format: FUTURESKIT_<SECTION>_<KEY>, e.g., FUTURESKIT_DATASOURCE_PROVIDER
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file settings
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".futureskit"))
	v.AddConfigPath("/etc/futureskit")

	// Environment variable settings
	v.SetEnvPrefix("FUTURESKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("FUTURESKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Datasource defaults
	v.SetDefault("datasource.provider", "demo")
	v.SetDefault("datasource.refinitiv_base_url", "https://workspace.refinitiv.com")
	v.SetDefault("datasource.cache_ttl_sec", 900) // 15 minutes
	v.SetDefault("datasource.concurrent_fetches", 4)

	// Continuous-series defaults
	v.SetDefault("continuous.roll", "calendar")
	v.SetDefault("continuous.offset", -5)
	v.SetDefault("continuous.adjust", "back")
	v.SetDefault("continuous.field", "settlement")

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
