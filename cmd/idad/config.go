package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/iov-one/ida"
	"github.com/iov-one/ida/errors"
	"github.com/iov-one/ida/store/bolt"
	"github.com/iov-one/ida/store/iavl"
	"github.com/iov-one/ida/x/distribution/stream"
	"github.com/tendermint/tendermint/libs/log"
	"gopkg.in/yaml.v3"
)

// Config is the node configuration file.
type Config struct {
	// Backend is one of memory, iavl or bolt.
	Backend  string `yaml:"backend"`
	Home     string `yaml:"home"`
	LogLevel string `yaml:"log_level"`
	// MetricsAddr enables the prometheus endpoint when set.
	MetricsAddr string `yaml:"metrics_addr"`
	// Redis enables publishing events to a Redis stream when set.
	Redis *stream.Config `yaml:"redis"`
}

func defaultConfig() Config {
	return Config{
		Backend:  "memory",
		Home:     filepath.Join(os.ExpandEnv("$HOME"), ".idad"),
		LogLevel: "info",
	}
}

// loadConfig reads the YAML file at path on top of the defaults. An empty
// path returns the defaults.
func loadConfig(path string) (Config, error) {
	conf := defaultConfig()
	if path == "" {
		return conf, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return conf, errors.Wrapf(errors.ErrInput, "read config: %s", err)
	}
	if err := yaml.Unmarshal(raw, &conf); err != nil {
		return conf, errors.Wrapf(errors.ErrInput, "parse config %s: %s", path, err)
	}
	return conf, conf.Validate()
}

func (c Config) Validate() error {
	var err error
	switch c.Backend {
	case "memory", "iavl", "bolt":
	default:
		err = errors.Append(err, errors.Field("Backend", errors.ErrInput, "unknown backend %q", c.Backend))
	}
	if c.Backend != "memory" && c.Home == "" {
		err = errors.Append(err, errors.Field("Home", errors.ErrEmpty, "home directory required"))
	}
	if _, lerr := log.AllowLevel(c.LogLevel); lerr != nil {
		err = errors.Append(err, errors.Field("LogLevel", errors.ErrInput, "%s", lerr))
	}
	if c.Redis != nil && (c.Redis.Addr == "" || c.Redis.Stream == "") {
		err = errors.Append(err, errors.Field("Redis", errors.ErrEmpty, "address and stream required"))
	}
	return err
}

func openStore(c Config) (ida.CommitKVStore, error) {
	switch c.Backend {
	case "memory":
		return iavl.NewMemCommitStore(), nil
	case "iavl":
		return iavl.NewCommitStore(c.Home, "ida")
	case "bolt":
		return bolt.NewCommitStore(filepath.Join(c.Home, "ida.db"))
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown backend %q", c.Backend)
	}
}

func newLogger(w io.Writer, level string) (log.Logger, error) {
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	logger := log.NewTMLogger(log.NewSyncWriter(w))
	return log.NewFilter(logger, opt).With("module", "idad"), nil
}
