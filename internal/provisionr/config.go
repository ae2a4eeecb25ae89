// Copyright 2026 The Provisionr Authors
// SPDX-License-Identifier: Apache-2.0

package provisionr

import (
	"github.com/sam-ruff/provisionr/internal/config"
)

// ServerConfig holds the HTTP listener's settings.
type ServerConfig struct {
	Port int `koanf:"port"`
}

// DatabaseConfig holds the Rendered Catalogue's settings.
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// LoggingConfig holds the structured logger's settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// DispatcherConfig holds the command dispatcher's settings.
type DispatcherConfig struct {
	QueueCapacity int `koanf:"queue_capacity"`
}

// DynamicFieldPreload is a templates[].dynamic_fields[] entry in the
// config file: the koanf-tagged mirror of DynamicField's flattened wire
// shape, used only while reading the file at startup.
type DynamicFieldPreload struct {
	FieldName     string `koanf:"field_name"`
	Type          string `koanf:"type"`
	Length        int    `koanf:"length"`
	WordCount     int    `koanf:"word_count"`
	HashAlgorithm string `koanf:"hashing_algorithm"`
}

// TemplatePreload is one templates[] entry in the config file: a template
// to load into the Template Store before the dispatcher starts serving,
// per the --config flag's "YAML preload of templates and options"
// contract.
type TemplatePreload struct {
	Name             string                `koanf:"name"`
	Content          string                `koanf:"content"`
	Values           string                `koanf:"values"`
	IDField          string                `koanf:"id_field"`
	DynamicFields    []DynamicFieldPreload `koanf:"dynamic_fields"`
	HashingAlgorithm string                `koanf:"hashing_algorithm"`
}

// Config is the service's full layered configuration: defaults, then an
// optional YAML file, then PROVISIONR__-prefixed environment variables,
// then explicit CLI flags, in that precedence order. Templates is only
// ever populated from the YAML file: there is no sane environment
// variable or CLI flag shape for a list of template bodies.
type Config struct {
	Server     ServerConfig      `koanf:"server"`
	Database   DatabaseConfig    `koanf:"database"`
	Logging    LoggingConfig     `koanf:"logging"`
	Dispatcher DispatcherConfig  `koanf:"dispatcher"`
	Templates  []TemplatePreload `koanf:"templates"`
}

// DefaultConfig returns the configuration used when no file, environment
// variable, or flag overrides a setting.
func DefaultConfig() Config {
	return Config{
		Server:     ServerConfig{Port: 3000},
		Database:   DatabaseConfig{Path: "provisionr.db"},
		Logging:    LoggingConfig{Level: "info", Format: "json"},
		Dispatcher: DispatcherConfig{QueueCapacity: DefaultQueueCapacity},
	}
}

// Validate implements config.Validator so Loader.UnmarshalAndValidate
// catches a bad merged configuration before the service starts.
func (c Config) Validate() error {
	return c.validateAt(config.NewPath("config")).OrNil()
}

// validateAt checks the merged configuration for values the service
// cannot start with, reporting field paths rooted at path.
func (c Config) validateAt(path *config.Path) config.ValidationErrors {
	var errs config.ValidationErrors
	if err := config.MustBeInRange(path.Child("server").Child("port"), c.Server.Port, 1, 65535); err != nil {
		errs = append(errs, err)
	}
	if err := config.MustNotBeEmpty(path.Child("database").Child("path"), c.Database.Path); err != nil {
		errs = append(errs, err)
	}
	if err := config.MustBeOneOf(path.Child("logging").Child("level"), c.Logging.Level, []string{"debug", "info", "warn", "error"}); err != nil {
		errs = append(errs, err)
	}
	if err := config.MustBeOneOf(path.Child("logging").Child("format"), c.Logging.Format, []string{"json", "text"}); err != nil {
		errs = append(errs, err)
	}
	if err := config.MustBeGreaterThan(path.Child("dispatcher").Child("queue_capacity"), c.Dispatcher.QueueCapacity, 0); err != nil {
		errs = append(errs, err)
	}
	return errs
}
