package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/golergka/pgtyped/errors"
)

// LoadFromFile reads, env-overrides and validates the config at configPath.
// A .env file next to the config is loaded into the environment first.
func LoadFromFile(configPath string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(configPath), ".env")); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("PGTYPED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	BindEnvVars(v)
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrInvalidConfig), "failed to read config file %s", configPath)
	}

	return LoadWithViper(v)
}

// LoadWithViper unmarshals and validates configuration from v
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.Mark(err, errors.ErrInvalidConfig), "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Mark(err, errors.ErrInvalidConfig)
	}
	return &cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "failed to load %s", path)
	}
	return nil
}
