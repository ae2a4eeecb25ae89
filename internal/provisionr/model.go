// Copyright 2026 The Provisionr Authors
// SPDX-License-Identifier: Apache-2.0

// Package provisionr implements the template provisioning domain: storing
// template content and per-template configuration, generating dynamic
// field values, rendering templates against a caller's query parameters,
// and caching the result keyed by an identity field.
package provisionr

import (
	"fmt"
	"regexp"
)

// GeneratorKind identifies which value generator a DynamicField uses.
type GeneratorKind string

const (
	GeneratorAlphanumeric GeneratorKind = "alphanumeric"
	GeneratorPassphrase   GeneratorKind = "passphrase"
)

// HashAlgorithm identifies how a generated dynamic value is hashed before
// it is bound into the rendered template.
type HashAlgorithm string

const (
	HashNone     HashAlgorithm = "none"
	HashSha512   HashAlgorithm = "sha512"
	HashYescrypt HashAlgorithm = "yescrypt"
)

// GeneratorSpec describes how to produce a single dynamic field's value.
// It serialises as a tagged JSON object, e.g. {"type":"alphanumeric","length":32}
// or {"type":"passphrase","word_count":4}.
type GeneratorSpec struct {
	Type      GeneratorKind `json:"type"`
	Length    int           `json:"length,omitempty"`
	WordCount int           `json:"word_count,omitempty"`
}

// DynamicField is one entry in a TemplateConfig's dynamic_fields list: a
// named value generated fresh at first render and optionally hashed.
//
// On the wire the generator's tag fields are flattened alongside
// field_name and hashing_algorithm, e.g.
// {"field_name":"luks_password","type":"alphanumeric","length":32,"hashing_algorithm":"sha512"}.
type DynamicField struct {
	FieldName     string
	Generator     GeneratorSpec
	HashAlgorithm HashAlgorithm
}

// dynamicFieldWire is the flattened JSON representation of DynamicField.
type dynamicFieldWire struct {
	FieldName     string        `json:"field_name"`
	Type          GeneratorKind `json:"type"`
	Length        int           `json:"length,omitempty"`
	WordCount     int           `json:"word_count,omitempty"`
	HashAlgorithm HashAlgorithm `json:"hashing_algorithm,omitempty"`
}

// TemplateConfig is the per-template render policy: which query parameter
// identifies a unique render (for cache lookups), which fields are
// generated rather than supplied by the caller, and the default hash
// algorithm applied to a generated field that doesn't override it.
type TemplateConfig struct {
	IDField          string         `json:"id_field"`
	DynamicFields    []DynamicField `json:"dynamic_fields" validate:"dive"`
	HashingAlgorithm HashAlgorithm  `json:"hashing_algorithm,omitempty"`
}

// templateIdentifierPattern matches a name usable as a Go template field
// reference, e.g. {{.luks_password}}.
var templateIdentifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validateTemplateConfig checks the invariants set_config must enforce:
// a non-empty id_field and dynamic fields with unique, well-formed names.
// A config that fails this would let two generators clobber the same
// rendered binding (see ConcreteCommander.GenerateDynamicValues).
func validateTemplateConfig(cfg TemplateConfig) error {
	if cfg.IDField == "" {
		return &ConfigValidationError{Detail: "id_field must not be empty"}
	}
	seen := make(map[string]struct{}, len(cfg.DynamicFields))
	for _, f := range cfg.DynamicFields {
		if !templateIdentifierPattern.MatchString(f.FieldName) {
			return &ConfigValidationError{Detail: fmt.Sprintf("dynamic field name %q is not a valid template identifier", f.FieldName)}
		}
		if _, dup := seen[f.FieldName]; dup {
			return &ConfigValidationError{Detail: fmt.Sprintf("dynamic field name %q is not unique", f.FieldName)}
		}
		seen[f.FieldName] = struct{}{}
	}
	return nil
}

// DefaultIDField is used when a TemplateConfig does not set IDField.
const DefaultIDField = "mac_address"

// DefaultTemplateConfig returns the zero-value policy: identify renders by
// mac_address, no dynamic fields, no hashing.
func DefaultTemplateConfig() TemplateConfig {
	return TemplateConfig{
		IDField:          DefaultIDField,
		DynamicFields:    nil,
		HashingAlgorithm: HashNone,
	}
}

// TemplateRecord is everything the Template Store holds for one template
// name: its content and its render policy plus stored default values.
type TemplateRecord struct {
	Content    string
	ValuesYAML string
	HasValues  bool
	Config     TemplateConfig
}

// newTemplateRecord returns an empty record with the default config, the
// shape a template has immediately after its content is first uploaded.
func newTemplateRecord() TemplateRecord {
	return TemplateRecord{Config: DefaultTemplateConfig()}
}

// RenderedArtifact is one durable row of the Rendered Catalogue: the
// output of rendering a template for a particular identity value.
type RenderedArtifact struct {
	ID               int64  `json:"id"`
	TemplateName     string `json:"template_name"`
	IDFieldValue     string `json:"id_field_value"`
	RenderedContent  string `json:"rendered_content"`
	GeneratedValues  string `json:"generated_values"`
	CreatedAt        string `json:"created_at"`
}

// TableName pins the gorm model to the schema name used by spec.md §6.3,
// rather than the pluralised default gorm would otherwise derive.
func (RenderedArtifact) TableName() string {
	return "rendered_templates"
}

// RenderedArtifactSummary is the trimmed shape returned by the rendered
// listing endpoint: just enough to let a caller pick an id_value to fetch.
type RenderedArtifactSummary struct {
	IDFieldValue string `json:"id_field_value"`
	CreatedAt    string `json:"created_at"`
}
