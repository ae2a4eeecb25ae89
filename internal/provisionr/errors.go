// Copyright 2026 The Provisionr Authors
// SPDX-License-Identifier: Apache-2.0

package provisionr

import "fmt"

// TemplateValidationError wraps a template engine's parse/validate failure.
type TemplateValidationError struct{ Detail string }

func (e *TemplateValidationError) Error() string {
	return fmt.Sprintf("template validation failed: %s", e.Detail)
}

// YAMLParseError wraps a values/config YAML or JSON parse failure.
type YAMLParseError struct{ Detail string }

func (e *YAMLParseError) Error() string {
	return fmt.Sprintf("yaml parse error: %s", e.Detail)
}

// TemplateRenderError wraps a template engine's execution failure, e.g. a
// reference to a binding that was never supplied.
type TemplateRenderError struct{ Detail string }

func (e *TemplateRenderError) Error() string {
	return fmt.Sprintf("template render failed: %s", e.Detail)
}

// DatabaseError wraps a Rendered Catalogue storage failure.
type DatabaseError struct{ Detail string }

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error: %s", e.Detail)
}

// TemplateNotFoundError indicates the Template Store has no record for the
// named template.
type TemplateNotFoundError struct{ Name string }

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("template not found: %s", e.Name)
}

// TemplateEmptyError indicates the named template exists but has no content.
type TemplateEmptyError struct{ Name string }

func (e *TemplateEmptyError) Error() string {
	return fmt.Sprintf("template has no content: %s", e.Name)
}

// MissingFieldError indicates a render request's query parameters didn't
// carry the template's configured identity field.
type MissingFieldError struct{ Field string }

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("Missing required field: %s", e.Field)
}

// ConfigValidationError indicates a TemplateConfig failed the dispatcher's
// structural checks (non-empty id_field, unique and well-formed dynamic
// field names) before it was ever applied to the Template Store.
type ConfigValidationError struct{ Detail string }

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("config validation failed: %s", e.Detail)
}
