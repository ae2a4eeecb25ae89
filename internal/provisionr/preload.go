// Copyright 2026 The Provisionr Authors
// SPDX-License-Identifier: Apache-2.0

package provisionr

import "fmt"

// toDynamicFields converts a config file's flattened preload shape into
// the domain DynamicField type, the same shape dynamicFieldWire produces
// for a JSON PUT /config/{name} body.
func toDynamicFields(preload []DynamicFieldPreload) []DynamicField {
	fields := make([]DynamicField, len(preload))
	for i, p := range preload {
		fields[i] = DynamicField{
			FieldName: p.FieldName,
			Generator: GeneratorSpec{
				Type:      GeneratorKind(p.Type),
				Length:    p.Length,
				WordCount: p.WordCount,
			},
			HashAlgorithm: HashAlgorithm(p.HashAlgorithm),
		}
	}
	return fields
}

func (t TemplatePreload) toConfig() TemplateConfig {
	cfg := DefaultTemplateConfig()
	if t.IDField != "" {
		cfg.IDField = t.IDField
	}
	cfg.DynamicFields = toDynamicFields(t.DynamicFields)
	if t.HashingAlgorithm != "" {
		cfg.HashingAlgorithm = HashAlgorithm(t.HashingAlgorithm)
	}
	return cfg
}

// PreloadTemplates applies a config file's templates[] section directly to
// store, before the dispatcher's Run loop starts consuming commands. It is
// safe to call the store's methods directly here because nothing else is
// touching it yet. A bad entry aborts the whole preload so the process
// fails to start rather than serve a half-populated store.
func PreloadTemplates(store *TemplateStore, commander Commander, templates []TemplatePreload) error {
	for _, t := range templates {
		if t.Name == "" {
			return fmt.Errorf("preloading templates: entry has no name")
		}
		if err := commander.ValidateTemplate(t.Content); err != nil {
			return fmt.Errorf("preloading template %q: %w", t.Name, err)
		}
		store.SetContent(t.Name, t.Content)

		cfg := t.toConfig()
		if err := validateTemplateConfig(cfg); err != nil {
			return fmt.Errorf("preloading template %q: %w", t.Name, err)
		}
		if err := store.SetConfig(t.Name, cfg); err != nil {
			return fmt.Errorf("preloading template %q: %w", t.Name, err)
		}

		if t.Values != "" {
			if _, err := commander.ParseValues(t.Values); err != nil {
				return fmt.Errorf("preloading template %q values: %w", t.Name, err)
			}
			if err := store.SetValues(t.Name, t.Values); err != nil {
				return fmt.Errorf("preloading template %q values: %w", t.Name, err)
			}
		}
	}
	return nil
}
