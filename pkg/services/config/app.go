package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig is the application-level configuration, read from an optional
// yaml file with SALES_ATLAS_* environment overrides.
type AppConfig struct {
	Server struct {
		Host string `mapstructure:"host"`
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	Warehouse struct {
		ConfigPath string `mapstructure:"config_path"`
		Profile    string `mapstructure:"profile"`
	} `mapstructure:"warehouse"`
	Filters struct {
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"filters"`
	Gemini struct {
		APIKey string `mapstructure:"api_key"`
		Model  string `mapstructure:"model"`
	} `mapstructure:"gemini"`
}

// LoadAppConfig loads configuration from the given file path. An empty path
// falls back to defaults plus environment overrides.
func LoadAppConfig(path string) (*AppConfig, error) {
	v := viper.New()

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8000")
	v.SetDefault("warehouse.profile", "local")
	v.SetDefault("filters.cache_ttl", 5*time.Minute)
	v.SetDefault("gemini.model", "gemini-2.5-flash-lite")

	v.SetEnvPrefix("SALES_ATLAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse app config: %w", err)
	}
	return &config, nil
}
