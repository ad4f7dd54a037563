// Package config loads the configuration file of the
// pathlock command.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	logrus "github.com/sirupsen/logrus"

	"github.com/go-pathlock/pathlock"
	"github.com/go-pathlock/pathlock/log"
	logadapter "github.com/go-pathlock/pathlock/log/logrus"
)

// FileConfig represents the configuration loaded from a
// TOML file such as:
//
//	max_wait = "10s"
//	poll_interval = "50ms"
//
//	[log]
//	level = "debug"
//	topics = ["verdict", "error"]
type FileConfig struct {
	// MaxWait is how long to wait for a busy lock. Unset
	// means pathlock.DefaultMaxWait, "0s" means do not
	// wait at all.
	MaxWait *time.Duration `toml:"max_wait"`

	// PollInterval is the pause between attempts.
	PollInterval time.Duration `toml:"poll_interval"`

	Log LogConfig `toml:"log"`
}

// LogConfig selects what gets logged to stderr.
type LogConfig struct {
	// Level is a logrus level name, "info" by default.
	Level string `toml:"level"`

	// Topics lists the enabled topics: call, verdict,
	// trace, error or all. Nothing is logged when empty.
	Topics []string `toml:"topics"`
}

// Load reads configuration from path. A missing file
// yields an empty configuration, not an error.
func Load(path string) (*FileConfig, error) {
	var cfg FileConfig
	if path == "" {
		return &cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, errors.Wrapf(err, "read config %q", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %q", path)
	}
	if _, err := cfg.Log.topics(); err != nil {
		return nil, errors.Wrapf(err, "config %q", path)
	}
	if _, err := cfg.Log.level(); err != nil {
		return nil, errors.Wrapf(err, "config %q", path)
	}
	return &cfg, nil
}

func (c LogConfig) topics() (log.Topics, error) {
	var topics log.Topics
	for _, name := range c.Topics {
		topic := log.ParseTopic(strings.ToLower(strings.TrimSpace(name)))
		if topic == 0 {
			return 0, errors.Errorf("unknown log topic %q", name)
		}
		topics |= topic
	}
	return topics, nil
}

func (c LogConfig) level() (logrus.Level, error) {
	if c.Level == "" {
		return logrus.InfoLevel, nil
	}
	return logrus.ParseLevel(c.Level)
}

// Options turns the configuration into lock options.
// The log is nil when no topic is enabled.
func (c *FileConfig) Options() *pathlock.Options {
	opts := pathlock.DefaultOptions()
	if c.MaxWait != nil {
		opts.MaxWait = *c.MaxWait
	}
	opts.PollInterval = c.PollInterval
	if topics, _ := c.Log.topics(); topics != 0 {
		logger := logrus.New()
		logger.SetOutput(os.Stderr)
		if level, err := c.Log.level(); err == nil {
			logger.SetLevel(level)
		}
		opts.Log = &logadapter.Logrus{Logger: logger, Enable: topics}
	}
	return opts
}
