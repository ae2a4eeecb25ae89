// Copyright 2026 The Provisionr Authors
// SPDX-License-Identifier: Apache-2.0

package provisionr

import (
	"encoding/json"
	"testing"
)

func TestDynamicField_JSONRoundTrip_Alphanumeric(t *testing.T) {
	field := DynamicField{
		FieldName:     "luks_password",
		Generator:     GeneratorSpec{Type: GeneratorAlphanumeric, Length: 32},
		HashAlgorithm: HashSha512,
	}
	data, err := json.Marshal(field)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("Unmarshal into map error = %v", err)
	}
	if wire["field_name"] != "luks_password" {
		t.Errorf("field_name = %v", wire["field_name"])
	}
	if wire["type"] != "alphanumeric" {
		t.Errorf("type = %v", wire["type"])
	}
	if wire["length"] != float64(32) {
		t.Errorf("length = %v", wire["length"])
	}
	if wire["hashing_algorithm"] != "sha512" {
		t.Errorf("hashing_algorithm = %v", wire["hashing_algorithm"])
	}

	var roundTripped DynamicField
	if err := json.Unmarshal(data, &roundTripped); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if roundTripped != field {
		t.Errorf("round trip = %+v, want %+v", roundTripped, field)
	}
}

func TestDynamicField_UnmarshalJSON_Passphrase(t *testing.T) {
	data := []byte(`{"field_name":"recovery_phrase","type":"passphrase","word_count":6}`)
	var field DynamicField
	if err := json.Unmarshal(data, &field); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if field.Generator.WordCount != 6 {
		t.Errorf("WordCount = %d, want 6", field.Generator.WordCount)
	}
	if field.HashAlgorithm != "" {
		t.Errorf("HashAlgorithm = %q, want empty (not set on wire)", field.HashAlgorithm)
	}
}

func TestDynamicField_UnmarshalJSON_Rejections(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing field_name", body: `{"type":"alphanumeric","length":8}`},
		{name: "alphanumeric missing length", body: `{"field_name":"x","type":"alphanumeric"}`},
		{name: "passphrase missing word_count", body: `{"field_name":"x","type":"passphrase"}`},
		{name: "unknown type", body: `{"field_name":"x","type":"bogus"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var field DynamicField
			if err := json.Unmarshal([]byte(tt.body), &field); err == nil {
				t.Fatalf("expected an error for %s, got nil", tt.name)
			}
		})
	}
}

func TestTemplateConfig_UnmarshalJSON_Defaults(t *testing.T) {
	var cfg TemplateConfig
	if err := json.Unmarshal([]byte(`{}`), &cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.IDField != DefaultIDField {
		t.Errorf("IDField = %q, want %q", cfg.IDField, DefaultIDField)
	}
	if cfg.HashingAlgorithm != HashNone {
		t.Errorf("HashingAlgorithm = %q, want %q", cfg.HashingAlgorithm, HashNone)
	}
}

func TestTemplateConfig_UnmarshalJSON_ExplicitValues(t *testing.T) {
	body := `{"id_field":"serial_number","hashing_algorithm":"yescrypt","dynamic_fields":[{"field_name":"pw","type":"alphanumeric","length":16}]}`
	var cfg TemplateConfig
	if err := json.Unmarshal([]byte(body), &cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.IDField != "serial_number" {
		t.Errorf("IDField = %q", cfg.IDField)
	}
	if cfg.HashingAlgorithm != HashYescrypt {
		t.Errorf("HashingAlgorithm = %q", cfg.HashingAlgorithm)
	}
	if len(cfg.DynamicFields) != 1 || cfg.DynamicFields[0].FieldName != "pw" {
		t.Errorf("DynamicFields = %+v", cfg.DynamicFields)
	}
}
