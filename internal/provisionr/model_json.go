// Copyright 2026 The Provisionr Authors
// SPDX-License-Identifier: Apache-2.0

package provisionr

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON flattens the generator spec's tag fields alongside field_name
// and hashing_algorithm, matching the wire shape dynamic_fields entries
// used by the original implementation.
func (d DynamicField) MarshalJSON() ([]byte, error) {
	return json.Marshal(dynamicFieldWire{
		FieldName:     d.FieldName,
		Type:          d.Generator.Type,
		Length:        d.Generator.Length,
		WordCount:     d.Generator.WordCount,
		HashAlgorithm: d.HashAlgorithm,
	})
}

// UnmarshalJSON reconstructs a DynamicField from its flattened wire shape.
func (d *DynamicField) UnmarshalJSON(data []byte) error {
	var wire dynamicFieldWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.FieldName == "" {
		return fmt.Errorf("dynamic field: field_name is required")
	}
	switch wire.Type {
	case GeneratorAlphanumeric:
		if wire.Length <= 0 {
			return fmt.Errorf("dynamic field %q: alphanumeric generator requires a positive length", wire.FieldName)
		}
	case GeneratorPassphrase:
		if wire.WordCount <= 0 {
			return fmt.Errorf("dynamic field %q: passphrase generator requires a positive word_count", wire.FieldName)
		}
	default:
		return fmt.Errorf("dynamic field %q: unknown generator type %q", wire.FieldName, wire.Type)
	}

	d.FieldName = wire.FieldName
	d.Generator = GeneratorSpec{Type: wire.Type, Length: wire.Length, WordCount: wire.WordCount}
	d.HashAlgorithm = wire.HashAlgorithm
	return nil
}

// templateConfigWire mirrors TemplateConfig's JSON tags so UnmarshalJSON can
// apply defaults without recursing into itself.
type templateConfigWire struct {
	IDField          string         `json:"id_field"`
	DynamicFields    []DynamicField `json:"dynamic_fields"`
	HashingAlgorithm HashAlgorithm  `json:"hashing_algorithm,omitempty"`
}

// UnmarshalJSON applies the same field defaults the original implementation
// derives via serde: an omitted id_field defaults to "mac_address" and an
// omitted hashing_algorithm defaults to "none".
func (c *TemplateConfig) UnmarshalJSON(data []byte) error {
	var wire templateConfigWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.IDField == "" {
		wire.IDField = DefaultIDField
	}
	if wire.HashingAlgorithm == "" {
		wire.HashingAlgorithm = HashNone
	}
	c.IDField = wire.IDField
	c.DynamicFields = wire.DynamicFields
	c.HashingAlgorithm = wire.HashingAlgorithm
	return nil
}
