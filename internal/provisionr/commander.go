// Copyright 2026 The Provisionr Authors
// SPDX-License-Identifier: Apache-2.0

package provisionr

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Commander composes the Template Engine Adapter and value generation into
// the operations the dispatcher needs: validating and rendering template
// content, and parsing/emitting the flat string maps templates bind
// against.
type Commander interface {
	ValidateTemplate(content string) error
	RenderTemplate(content string, values map[string]string) (string, error)
	GenerateDynamicValues(fields []DynamicField, defaultHash HashAlgorithm) (map[string]string, error)
	ParseValues(yamlOrJSON string) (map[string]string, error)
	ValuesToYAML(values map[string]string) (string, error)
}

// ConcreteCommander is the production Commander, backed by a TemplateEngine.
type ConcreteCommander struct {
	engine TemplateEngine
}

func NewCommander(engine TemplateEngine) *ConcreteCommander {
	return &ConcreteCommander{engine: engine}
}

func (c *ConcreteCommander) ValidateTemplate(content string) error {
	if err := c.engine.Validate(content); err != nil {
		return &TemplateValidationError{Detail: err.Error()}
	}
	return nil
}

func (c *ConcreteCommander) RenderTemplate(content string, values map[string]string) (string, error) {
	rendered, err := c.engine.Render(content, values)
	if err != nil {
		return "", &TemplateRenderError{Detail: err.Error()}
	}
	return rendered, nil
}

// GenerateDynamicValues produces one fresh value per field, hashing it with
// the field's own algorithm override if set, otherwise the template's
// default. A field's generation or hashing failure is returned immediately
// with a nil map: values already generated for earlier fields in the list
// are discarded.
func (c *ConcreteCommander) GenerateDynamicValues(fields []DynamicField, defaultHash HashAlgorithm) (map[string]string, error) {
	result := make(map[string]string, len(fields))
	for _, field := range fields {
		generator, err := NewGenerator(field.Generator)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field.FieldName, err)
		}
		raw, err := generator.Generate()
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field.FieldName, err)
		}

		algorithm := field.HashAlgorithm
		if algorithm == "" {
			algorithm = defaultHash
		}
		hasher, err := NewHasher(algorithm)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field.FieldName, err)
		}
		hashed, err := hasher.Hash(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field.FieldName, err)
		}
		result[field.FieldName] = hashed
	}
	return result, nil
}

// ParseValues parses a YAML (or JSON, which is a YAML subset) document into
// a flat string map. Non-scalar values are skipped, matching the original
// implementation's tolerant yaml_to_map behaviour.
func (c *ConcreteCommander) ParseValues(yamlOrJSON string) (map[string]string, error) {
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(yamlOrJSON), &doc); err != nil {
		return nil, &YAMLParseError{Detail: err.Error()}
	}
	result := make(map[string]string, len(doc))
	for k, v := range doc {
		s, ok := scalarToString(v)
		if !ok {
			continue
		}
		result[k] = s
	}
	return result, nil
}

// ValuesToYAML re-emits a flat string map as a YAML document with
// deterministic key order, so generated_values stored in the catalogue is
// reproducible for a given input map.
func (c *ConcreteCommander) ValuesToYAML(values map[string]string) (string, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var node yaml.Node
	node.Kind = yaml.MappingNode
	node.Tag = "!!map"
	for _, k := range keys {
		var keyNode, valNode yaml.Node
		if err := keyNode.Encode(k); err != nil {
			return "", &YAMLParseError{Detail: err.Error()}
		}
		if err := valNode.Encode(values[k]); err != nil {
			return "", &YAMLParseError{Detail: err.Error()}
		}
		node.Content = append(node.Content, &keyNode, &valNode)
	}

	var out strings.Builder
	enc := yaml.NewEncoder(&out)
	if err := enc.Encode(&node); err != nil {
		return "", &YAMLParseError{Detail: err.Error()}
	}
	_ = enc.Close()
	return out.String(), nil
}

func scalarToString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case int:
		return fmt.Sprintf("%d", t), true
	case int64:
		return fmt.Sprintf("%d", t), true
	case float64:
		return fmt.Sprintf("%g", t), true
	case bool:
		return fmt.Sprintf("%t", t), true
	default:
		return "", false
	}
}
