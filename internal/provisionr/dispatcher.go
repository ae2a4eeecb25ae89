// Copyright 2026 The Provisionr Authors
// SPDX-License-Identifier: Apache-2.0

package provisionr

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultQueueCapacity bounds the dispatcher's command channel. A full
// queue means the single consumer goroutine is saturated; callers should
// treat Enqueue failing with ErrQueueFull as "try again shortly", not
// retry in a loop.
const DefaultQueueCapacity = 128

// DefaultReplyTimeout bounds how long a caller waits for a command's
// reply once it has been accepted onto the queue.
const DefaultReplyTimeout = 5 * time.Second

var (
	// ErrQueueFull is returned by Enqueue when the command channel has no
	// free slot; the dispatcher's single consumer is falling behind.
	ErrQueueFull = errors.New("dispatcher: command queue is full")
	// ErrDispatcherClosed is returned by Enqueue after Run has returned.
	ErrDispatcherClosed = errors.New("dispatcher: command channel is closed")
	// ErrReplyTimeout is returned by AwaitReply when no reply arrives
	// before the timeout elapses.
	ErrReplyTimeout = errors.New("dispatcher: timed out waiting for reply")
)

// Command is implemented by every command the dispatcher accepts. Each
// concrete command carries its own typed reply channel, so a caller that
// builds a SetTemplateCommand knows exactly what type it will read back.
type Command interface {
	isCommand()
}

// SetTemplateCommand stores a template's content, after the dispatcher
// validates it against the configured Template Engine Adapter.
type SetTemplateCommand struct {
	Name    string
	Content string
	Reply   chan error
}

func (SetTemplateCommand) isCommand() {}

// SetValuesCommand stores a template's default-values document, after the
// dispatcher validates it parses as YAML/JSON.
type SetValuesCommand struct {
	Name       string
	YAMLOrJSON string
	Reply      chan error
}

func (SetValuesCommand) isCommand() {}

// SetConfigCommand replaces a template's render policy.
type SetConfigCommand struct {
	Name   string
	Config TemplateConfig
	Reply  chan error
}

func (SetConfigCommand) isCommand() {}

// GetConfigResult is what GetConfigCommand replies with.
type GetConfigResult struct {
	Config TemplateConfig
	Found  bool
}

// GetConfigCommand fetches a template's render policy.
type GetConfigCommand struct {
	Name  string
	Reply chan GetConfigResult
}

func (GetConfigCommand) isCommand() {}

// RenderResult is what RenderCommand replies with.
type RenderResult struct {
	Content string
	Err     error
}

// RenderCommand renders a template for the given query parameters,
// returning a cached artifact if the identity value has been seen before.
type RenderCommand struct {
	Name        string
	QueryValues map[string]string
	Reply       chan RenderResult
}

func (RenderCommand) isCommand() {}

// ListRenderedResult is what ListRenderedCommand replies with.
type ListRenderedResult struct {
	Summaries []RenderedArtifactSummary
	Err       error
}

// ListRenderedCommand lists every rendered artifact for a template.
type ListRenderedCommand struct {
	TemplateName string
	Reply        chan ListRenderedResult
}

func (ListRenderedCommand) isCommand() {}

// GetRenderedResult is what GetRenderedCommand replies with.
type GetRenderedResult struct {
	Artifact RenderedArtifact
	Found    bool
	Err      error
}

// GetRenderedCommand fetches one rendered artifact by identity value.
type GetRenderedCommand struct {
	TemplateName string
	IDValue      string
	Reply        chan GetRenderedResult
}

func (GetRenderedCommand) isCommand() {}

// DeleteTemplateCommand removes a template's content and config. Rendered
// artifacts already in the catalogue are left untouched.
type DeleteTemplateCommand struct {
	Name  string
	Reply chan struct{}
}

func (DeleteTemplateCommand) isCommand() {}

// Dispatcher is the single-writer serialization point for every mutation
// of the Template Store and every access to the Rendered Catalogue. One
// goroutine (Run) drains the command channel; every other goroutine only
// ever enqueues onto it, which is what gives render its exactly-once
// generation guarantee per (template, identity) pair.
type Dispatcher struct {
	commander  Commander
	store      *TemplateStore
	catalogue  *RenderedCatalogue
	logger     *slog.Logger
	commands   chan Command
	closedChan chan struct{}
}

// NewDispatcher builds a Dispatcher. capacity <= 0 uses DefaultQueueCapacity.
func NewDispatcher(commander Commander, store *TemplateStore, catalogue *RenderedCatalogue, logger *slog.Logger, capacity int) *Dispatcher {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		commander:  commander,
		store:      store,
		catalogue:  catalogue,
		logger:     logger.With("module", "dispatcher"),
		commands:   make(chan Command, capacity),
		closedChan: make(chan struct{}),
	}
}

// Enqueue attempts a non-blocking send onto the command channel. It
// returns ErrQueueFull immediately rather than applying backpressure,
// so an overloaded dispatcher surfaces as a fast 503 instead of a hung
// request.
func (d *Dispatcher) Enqueue(cmd Command) error {
	select {
	case <-d.closedChan:
		return ErrDispatcherClosed
	default:
	}
	select {
	case d.commands <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// AwaitReply blocks on ch until a value arrives or timeout elapses.
func AwaitReply[T any](ch <-chan T, timeout time.Duration) (T, error) {
	select {
	case v := <-ch:
		return v, nil
	case <-time.After(timeout):
		var zero T
		return zero, ErrReplyTimeout
	}
}

// Run consumes commands until ctx is cancelled or the command channel is
// closed. It is meant to be run in its own goroutine for the lifetime of
// the process.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.closedChan)
	for {
		select {
		case <-ctx.Done():
			d.logger.Debug("dispatcher stopping: context cancelled")
			return
		case cmd, ok := <-d.commands:
			if !ok {
				return
			}
			d.handle(cmd)
		}
	}
}

func (d *Dispatcher) handle(cmd Command) {
	switch c := cmd.(type) {
	case SetTemplateCommand:
		c.Reply <- d.handleSetTemplate(c.Name, c.Content)
	case SetValuesCommand:
		c.Reply <- d.handleSetValues(c.Name, c.YAMLOrJSON)
	case SetConfigCommand:
		c.Reply <- d.handleSetConfig(c.Name, c.Config)
	case GetConfigCommand:
		config, found := d.store.GetConfig(c.Name)
		c.Reply <- GetConfigResult{Config: config, Found: found}
	case RenderCommand:
		content, err := d.handleRender(c.Name, c.QueryValues)
		c.Reply <- RenderResult{Content: content, Err: err}
	case ListRenderedCommand:
		summaries, err := d.catalogue.List(c.TemplateName)
		c.Reply <- ListRenderedResult{Summaries: summaries, Err: err}
	case GetRenderedCommand:
		artifact, found, err := d.catalogue.Get(c.TemplateName, c.IDValue)
		c.Reply <- GetRenderedResult{Artifact: artifact, Found: found, Err: err}
	case DeleteTemplateCommand:
		d.store.Delete(c.Name)
		d.logger.Info("template deleted", "template", c.Name)
		c.Reply <- struct{}{}
	default:
		d.logger.Warn("dispatcher: unrecognised command type")
	}
}

func (d *Dispatcher) handleSetTemplate(name, content string) error {
	if err := d.commander.ValidateTemplate(content); err != nil {
		return err
	}
	d.store.SetContent(name, content)
	d.logger.Info("template set", "template", name)
	return nil
}

func (d *Dispatcher) handleSetValues(name, yamlOrJSON string) error {
	if _, err := d.commander.ParseValues(yamlOrJSON); err != nil {
		return err
	}
	if err := d.store.SetValues(name, yamlOrJSON); err != nil {
		return err
	}
	d.logger.Info("values set", "template", name)
	return nil
}

func (d *Dispatcher) handleSetConfig(name string, cfg TemplateConfig) error {
	if err := validateTemplateConfig(cfg); err != nil {
		return err
	}
	if err := d.store.SetConfig(name, cfg); err != nil {
		return err
	}
	d.logger.Info("config set", "template", name)
	return nil
}

// handleRender is the render pipeline: fetch the template, enforce it has
// content, resolve the identity value, serve a cached artifact if one
// exists, otherwise compose bindings (stored defaults, then query
// parameters, then freshly generated values, in that precedence order),
// render, and store the result before replying.
func (d *Dispatcher) handleRender(name string, queryValues map[string]string) (string, error) {
	record, ok := d.store.Get(name)
	if !ok {
		return "", &TemplateNotFoundError{Name: name}
	}
	if record.Content == "" {
		return "", &TemplateEmptyError{Name: name}
	}

	idField := record.Config.IDField
	if idField == "" {
		idField = DefaultIDField
	}
	idValue, ok := queryValues[idField]
	if !ok {
		return "", &MissingFieldError{Field: idField}
	}

	if cached, found, err := d.catalogue.Get(name, idValue); err == nil && found {
		d.logger.Debug("render cache hit", "template", name, "id_value", idValue)
		return cached.RenderedContent, nil
	}

	values := make(map[string]string)
	if record.HasValues {
		defaults, err := d.commander.ParseValues(record.ValuesYAML)
		if err != nil {
			return "", err
		}
		for k, v := range defaults {
			values[k] = v
		}
	}
	for k, v := range queryValues {
		values[k] = v
	}

	generated, err := d.commander.GenerateDynamicValues(record.Config.DynamicFields, record.Config.HashingAlgorithm)
	if err != nil {
		d.logger.Warn("dynamic value generation failed", "template", name, "error", err)
		return "", err
	}
	generatedYAML, err := d.commander.ValuesToYAML(generated)
	if err != nil {
		return "", err
	}
	for k, v := range generated {
		values[k] = v
	}

	rendered, err := d.commander.RenderTemplate(record.Content, values)
	if err != nil {
		return "", err
	}

	if _, err := d.catalogue.Store(name, idValue, rendered, generatedYAML); err != nil {
		return "", err
	}

	d.logger.Info("rendered and stored", "template", name, "id_value", idValue)
	return rendered, nil
}
