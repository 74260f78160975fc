package main

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	configFileName = "refcell"
	configFileType = "yaml"
	envPrefix      = "REFCELL"

	cfgKeyInitial    = "initial"
	cfgKeyWrite      = "write"
	cfgKeyLogLevel   = "log_level"
	cfgKeyTrackSites = "track_sites"

	defaultInitial  = 30
	defaultWrite    = 66
	defaultLogLevel = "warn"
)

// config is the resolved CLI configuration.
type config struct {
	Initial    int
	Write      int
	LogLevel   zapcore.Level
	TrackSites bool
}

// newViper returns a Viper with defaults and environment binding set up.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(cfgKeyInitial, defaultInitial)
	v.SetDefault(cfgKeyWrite, defaultWrite)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyTrackSites, false)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	return v
}

// loadConfig reads the config file (explicit path, else refcell.yaml in the
// working directory) and resolves all keys. A missing default file is not
// an error; a missing explicit file is.
func loadConfig(v *viper.Viper, path string) (*config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	level, err := zapcore.ParseLevel(v.GetString(cfgKeyLogLevel))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", cfgKeyLogLevel, err)
	}

	return &config{
		Initial:    v.GetInt(cfgKeyInitial),
		Write:      v.GetInt(cfgKeyWrite),
		LogLevel:   level,
		TrackSites: v.GetBool(cfgKeyTrackSites),
	}, nil
}

// newLogger builds a production zap logger at the configured level.
func newLogger(cfg *config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	zc.Encoding = "console"
	zc.DisableStacktrace = true
	return zc.Build()
}
