package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Address  string `mapstructure:"address"`
		HTTPPort string `mapstructure:"http_port"`
	} `mapstructure:"server"`

	Database struct {
		Driver string `mapstructure:"driver"`
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
		File   string `mapstructure:"file"`
	} `mapstructure:"logging"`

	Swan struct {
		// UploadServer is the baseline upload destination released to
		// a device when no configuration change is queued.
		UploadServer string `mapstructure:"upload_server"`
	} `mapstructure:"swan"`
}

// Load reads the yaml config at path (optional; defaults apply when the
// file is absent) with environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.http_port", "8000")
	v.SetDefault("database.driver", "")
	v.SetDefault("database.dsn", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("swan.upload_server", "weptech-iot.de/swan2")

	v.SetEnvPrefix("SWANCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("swan.upload_server", "UPLOAD_SERVER")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
