package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/MrEthical07/tokengrip"
)

func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// addGripFlags registers the flags every key-using command shares.
func addGripFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file with keys and algorithms (yaml, json or toml)")
	fs.StringArray("key", nil, "signing key; repeat to add deprecated keys after the current one")
	fs.StringArray("algorithm", nil, "hash algorithm; repeat to add deprecated algorithms")
	fs.BoolP("verbose", "v", false, "log debug records to stderr")
}

// loadConfig merges flags, environment and the optional config file.
func loadConfig(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("TOKENGRIP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlag("keys", fs.Lookup("key")); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("algorithms", fs.Lookup("algorithm")); err != nil {
		return nil, err
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return v, nil
}

func newLogger(fs *pflag.FlagSet, stderr io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose, _ := fs.GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

func gripFromConfig(v *viper.Viper, logger *slog.Logger) (*tokengrip.Grip, error) {
	cfg := tokengrip.Config{
		Keys:   v.GetStringSlice("keys"),
		Logger: logger,
	}
	if algorithms := v.GetStringSlice("algorithms"); len(algorithms) > 0 {
		cfg.Algorithms = algorithms
	}
	return tokengrip.New(cfg)
}

// loadGrip builds a Grip from fs and logs high-severity lint findings.
func loadGrip(fs *pflag.FlagSet, stderr io.Writer) (*tokengrip.Grip, error) {
	v, err := loadConfig(fs)
	if err != nil {
		return nil, err
	}
	logger := newLogger(fs, stderr)

	grip, err := gripFromConfig(v, logger)
	if err != nil {
		return nil, err
	}
	for _, w := range grip.Lint().AtLeast(tokengrip.LintHigh) {
		logger.Warn(w.Message, "code", w.Code)
	}
	return grip, nil
}
