// Copyright 2026 The Provisionr Authors
// SPDX-License-Identifier: Apache-2.0

package provisionr

// TemplateStore holds every known template's content and render policy.
// It is owned exclusively by the dispatcher's single consumer goroutine,
// so it needs no internal locking: every method below runs on that one
// goroutine only.
type TemplateStore struct {
	records map[string]TemplateRecord
}

func NewTemplateStore() *TemplateStore {
	return &TemplateStore{records: make(map[string]TemplateRecord)}
}

// Get returns the record for name and whether it exists.
func (s *TemplateStore) Get(name string) (TemplateRecord, bool) {
	rec, ok := s.records[name]
	return rec, ok
}

// SetContent stores or replaces a template's content, creating the record
// with default config if it didn't already exist.
func (s *TemplateStore) SetContent(name, content string) {
	rec, ok := s.records[name]
	if !ok {
		rec = newTemplateRecord()
	}
	rec.Content = content
	s.records[name] = rec
}

// SetValues stores the template's raw default-values document. It fails
// if the template doesn't exist yet, matching the original's
// set_values-before-set_template-content constraint.
func (s *TemplateStore) SetValues(name, yamlOrJSON string) error {
	rec, ok := s.records[name]
	if !ok {
		return &TemplateNotFoundError{Name: name}
	}
	rec.ValuesYAML = yamlOrJSON
	rec.HasValues = true
	s.records[name] = rec
	return nil
}

// SetConfig replaces a template's render policy. It fails if the template
// doesn't exist yet, matching SetValues' set-after-content constraint.
func (s *TemplateStore) SetConfig(name string, config TemplateConfig) error {
	rec, ok := s.records[name]
	if !ok {
		return &TemplateNotFoundError{Name: name}
	}
	rec.Config = config
	s.records[name] = rec
	return nil
}

// GetConfig returns the template's render policy, or false if the template
// is unknown.
func (s *TemplateStore) GetConfig(name string) (TemplateConfig, bool) {
	rec, ok := s.records[name]
	if !ok {
		return TemplateConfig{}, false
	}
	return rec.Config, true
}

// Delete removes a template's content and config. Previously rendered
// instances in the catalogue are not affected.
func (s *TemplateStore) Delete(name string) {
	delete(s.records, name)
}
