package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration for the build and inspect commands.
type Config struct {
	Input           string
	Format          string
	Ticker          string
	OptionType      string
	MinVolume       int64
	MinOpenInterest int64
	Prune           bool
	Out             string
	Snapshot        string
	PGDSN           string
	MaxRetries      int
	RetryBackoff    time.Duration
	LogLevel        string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VOLSURFACE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("type", "Call")
	v.SetDefault("min-volume", int64(0))
	v.SetDefault("min-open-interest", int64(0))
	v.SetDefault("prune", false)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if err := readConfigFile(v, cfgFile); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Input:           v.GetString("in"),
		Format:          v.GetString("format"),
		Ticker:          strings.ToUpper(strings.TrimSpace(v.GetString("ticker"))),
		OptionType:      v.GetString("type"),
		MinVolume:       v.GetInt64("min-volume"),
		MinOpenInterest: v.GetInt64("min-open-interest"),
		Prune:           v.GetBool("prune"),
		Out:             v.GetString("out"),
		Snapshot:        v.GetString("snapshot"),
		PGDSN:           v.GetString("pg-dsn"),
		MaxRetries:      v.GetInt("max-retries"),
		RetryBackoff:    v.GetDuration("retry-backoff"),
		LogLevel:        v.GetString("log-level"),
	}

	return cfg, nil
}

func readConfigFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}
