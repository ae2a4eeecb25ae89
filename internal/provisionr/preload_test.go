// Copyright 2026 The Provisionr Authors
// SPDX-License-Identifier: Apache-2.0

package provisionr

import "testing"

func TestPreloadTemplates_PopulatesStore(t *testing.T) {
	store := NewTemplateStore()
	commander := NewCommander(NewGoTemplateEngine())

	err := PreloadTemplates(store, commander, []TemplatePreload{
		{
			Name:    "ks",
			Content: "user={{ .mac_address }} pw={{ .token }}",
			Values:  "extra: value\n",
			IDField: "mac_address",
			DynamicFields: []DynamicFieldPreload{
				{FieldName: "token", Type: "alphanumeric", Length: 16},
			},
		},
	})
	if err != nil {
		t.Fatalf("PreloadTemplates() error = %v", err)
	}

	rec, ok := store.Get("ks")
	if !ok {
		t.Fatal("expected preloaded template to exist")
	}
	if rec.Content != "user={{ .mac_address }} pw={{ .token }}" {
		t.Errorf("Content = %q", rec.Content)
	}
	if !rec.HasValues || rec.ValuesYAML != "extra: value\n" {
		t.Errorf("values = %+v", rec)
	}
	if rec.Config.IDField != "mac_address" {
		t.Errorf("IDField = %q", rec.Config.IDField)
	}
	if len(rec.Config.DynamicFields) != 1 || rec.Config.DynamicFields[0].FieldName != "token" {
		t.Errorf("DynamicFields = %+v", rec.Config.DynamicFields)
	}
}

func TestPreloadTemplates_FailsOnInvalidTemplate(t *testing.T) {
	store := NewTemplateStore()
	commander := NewCommander(NewGoTemplateEngine())

	err := PreloadTemplates(store, commander, []TemplatePreload{
		{Name: "bad", Content: "{{ .unterminated"},
	})
	if err == nil {
		t.Fatal("expected an error for malformed template content, got nil")
	}
	if _, ok := store.Get("bad"); ok {
		t.Error("a failed preload entry must not leave a partial record behind")
	}
}

func TestPreloadTemplates_FailsOnDuplicateFieldNames(t *testing.T) {
	store := NewTemplateStore()
	commander := NewCommander(NewGoTemplateEngine())

	err := PreloadTemplates(store, commander, []TemplatePreload{
		{
			Name:    "ks",
			Content: "pw={{ .pw }}",
			DynamicFields: []DynamicFieldPreload{
				{FieldName: "pw", Type: "alphanumeric", Length: 8},
				{FieldName: "pw", Type: "alphanumeric", Length: 16},
			},
		},
	})
	if err == nil {
		t.Fatal("expected an error for duplicate dynamic field names, got nil")
	}
}

func TestPreloadTemplates_FailsOnMissingName(t *testing.T) {
	store := NewTemplateStore()
	commander := NewCommander(NewGoTemplateEngine())

	err := PreloadTemplates(store, commander, []TemplatePreload{{Content: "hi"}})
	if err == nil {
		t.Fatal("expected an error for a nameless entry, got nil")
	}
}
