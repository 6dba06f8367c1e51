/*
author: akashmaji
email: akashmaji@iisc.ac.in
file: go-redis-batch/internal/common/config.go
*/
package common

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the client-side settings for connecting to a server and
// running batches against it.
//
// Fields:
//   - Addr: host:port of the server
//   - DialTimeout: how long to wait for the TCP connection
//   - ReadTimeout / WriteTimeout: per reply-read and per flush deadlines (0 = none)
//   - BufferSize: size of the connection's write buffer in bytes
//   - LogLevel: one of debug, info, warn, error
//   - Verbose: log every outgoing command at debug level
//   - Filepath: where the config was read from (not part of the file)
type Config struct {
	Addr         string        `yaml:"addr"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	BufferSize   int           `yaml:"buffer_size"`
	LogLevel     string        `yaml:"log_level"`
	Verbose      bool          `yaml:"verbose"`

	Filepath string `yaml:"-"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Addr:         "127.0.0.1:7379",
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   16 * 1024,
		LogLevel:     "info",
	}
}

// ReadConf loads the YAML config at filename over the defaults.
// A missing file is not an error: the defaults are used and a warning is logged.
func ReadConf(filename string) (*Config, error) {
	config := NewConfig()
	config.Filepath = filename

	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("can't read file %s - using default config", filename)
			return config, nil
		}
		return nil, fmt.Errorf("read config %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", filename, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", filename, err)
	}
	return config, nil
}

// Validate checks the values that would otherwise fail later at dial time.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must be set")
	}
	if c.BufferSize < 0 {
		return fmt.Errorf("buffer_size must not be negative, got %d", c.BufferSize)
	}
	if c.DialTimeout < 0 || c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
