// Package config loads the application settings file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/palpiteiro/tipengine/internal/logger"
	"github.com/palpiteiro/tipengine/internal/results"
)

type Config struct {
	Game        string        `yaml:"game"`
	PolicyDir   string        `yaml:"policy_dir"`
	HTTPAddr    string        `yaml:"http_addr"`
	HistorySize int           `yaml:"history_size"`
	Store       StoreConfig   `yaml:"store"`
	NATS        NATSConfig    `yaml:"nats"`
	Results     ResultsConfig `yaml:"results"`
	Log         LogConfig     `yaml:"log"`
}

type StoreConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

// NATSConfig enables pick events when URL is set.
type NATSConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

type ResultsConfig struct {
	URL        string        `yaml:"url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxElapsed time.Duration `yaml:"max_elapsed"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	TimeFormat string `yaml:"time_format"`
}

// Default is the configuration used when no file is given.
func Default() Config {
	c := Config{}
	c.applyDefaults()
	return c
}

// Load reads path; an empty path yields Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML, applies defaults and validates. Unknown keys are rejected.
func Parse(b []byte) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Game == "" {
		c.Game = "lotofacil"
	}
	if c.PolicyDir == "" {
		c.PolicyDir = "./configs"
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	if c.HistorySize == 0 {
		c.HistorySize = 20
	}
	if c.Store.Path == "" && !c.Store.InMemory {
		c.Store.Path = "./data/badger"
	}
	if c.NATS.SubjectPrefix == "" {
		c.NATS.SubjectPrefix = "tips.picks"
	}
	if c.Results.URL == "" {
		c.Results.URL = results.DefaultURL
	}
	if c.Results.Timeout == 0 {
		c.Results.Timeout = 10 * time.Second
	}
	if c.Results.MaxElapsed == 0 {
		c.Results.MaxElapsed = 30 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.TimeFormat == "" {
		c.Log.TimeFormat = "15:04:05"
	}
}

// Validate collects every violation into one error.
func (c Config) Validate() error {
	var errs []string
	if strings.ContainsAny(c.Game, `/\`) {
		errs = append(errs, "game must be a plain name")
	}
	if c.HistorySize < 1 || c.HistorySize > 5000 {
		errs = append(errs, "history_size must be in [1,5000]")
	}
	if c.Results.Timeout < 0 || c.Results.MaxElapsed < 0 {
		errs = append(errs, "results durations must be positive")
	}
	if strings.ContainsAny(c.NATS.SubjectPrefix, " *>") {
		errs = append(errs, "nats.subject_prefix contains reserved characters")
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, "log.level: "+err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
