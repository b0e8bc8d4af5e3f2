package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ServeConfig holds configuration for the serve command.
type ServeConfig struct {
	Config
	Listen          string
	ShutdownTimeout time.Duration
}

// LoadServe merges config file, environment variables, and flags into ServeConfig.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	base, err := Load(cfgFile, flags)
	if err != nil {
		return ServeConfig{}, err
	}

	v := viper.New()
	v.SetEnvPrefix("VOLSURFACE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen", ":8080")
	v.SetDefault("shutdown-timeout", 5*time.Second)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return ServeConfig{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	if err := readConfigFile(v, cfgFile); err != nil {
		return ServeConfig{}, err
	}

	return ServeConfig{
		Config:          base,
		Listen:          v.GetString("listen"),
		ShutdownTimeout: v.GetDuration("shutdown-timeout"),
	}, nil
}
