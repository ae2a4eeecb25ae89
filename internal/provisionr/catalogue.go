// Copyright 2026 The Provisionr Authors
// SPDX-License-Identifier: Apache-2.0

package provisionr

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RenderedCatalogue is the durable cache of previously rendered artifacts,
// keyed by (template_name, id_field_value). A render that hits the
// catalogue skips regeneration entirely, which is how the same identity
// value always gets back the same secrets on re-render.
type RenderedCatalogue struct {
	db *gorm.DB
}

// OpenRenderedCatalogue opens (creating if necessary) the SQLite database
// at path and ensures the rendered_templates table and its template_name
// index exist.
func OpenRenderedCatalogue(path string) (*RenderedCatalogue, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open rendered catalogue: %w", err)
	}

	if err := db.AutoMigrate(&RenderedArtifact{}); err != nil {
		return nil, fmt.Errorf("migrate rendered catalogue: %w", err)
	}
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_rendered_templates_name_id ON rendered_templates(template_name, id_field_value)").Error; err != nil {
		return nil, fmt.Errorf("index rendered catalogue: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_template_name ON rendered_templates(template_name)").Error; err != nil {
		return nil, fmt.Errorf("index rendered catalogue: %w", err)
	}

	return &RenderedCatalogue{db: db}, nil
}

// Store upserts the rendered artifact for (templateName, idValue), refreshing
// created_at on every call — a re-render of the same identity overwrites the
// previous row rather than appending a new one.
func (c *RenderedCatalogue) Store(templateName, idValue, renderedContent, generatedValues string) (int64, error) {
	var existing RenderedArtifact
	err := c.db.Where("template_name = ? AND id_field_value = ?", templateName, idValue).First(&existing).Error
	switch {
	case err == nil:
		existing.RenderedContent = renderedContent
		existing.GeneratedValues = generatedValues
		if txErr := c.db.Exec(
			"UPDATE rendered_templates SET rendered_content = ?, generated_values = ?, created_at = datetime('now') WHERE id = ?",
			renderedContent, generatedValues, existing.ID,
		).Error; txErr != nil {
			return 0, &DatabaseError{Detail: txErr.Error()}
		}
		return existing.ID, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		artifact := RenderedArtifact{
			TemplateName:    templateName,
			IDFieldValue:    idValue,
			RenderedContent: renderedContent,
			GeneratedValues: generatedValues,
		}
		if createErr := c.db.Exec(
			"INSERT INTO rendered_templates (template_name, id_field_value, rendered_content, generated_values, created_at) VALUES (?, ?, ?, ?, datetime('now'))",
			artifact.TemplateName, artifact.IDFieldValue, artifact.RenderedContent, artifact.GeneratedValues,
		).Error; createErr != nil {
			return 0, &DatabaseError{Detail: createErr.Error()}
		}
		if idErr := c.db.Where("template_name = ? AND id_field_value = ?", templateName, idValue).
			Select("id").First(&artifact).Error; idErr != nil {
			return 0, &DatabaseError{Detail: idErr.Error()}
		}
		return artifact.ID, nil
	default:
		return 0, &DatabaseError{Detail: err.Error()}
	}
}

// Get returns the stored artifact for (templateName, idValue), or
// (zero value, false, nil) if no render has been cached yet.
func (c *RenderedCatalogue) Get(templateName, idValue string) (RenderedArtifact, bool, error) {
	var artifact RenderedArtifact
	err := c.db.Where("template_name = ? AND id_field_value = ?", templateName, idValue).First(&artifact).Error
	switch {
	case err == nil:
		return artifact, true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return RenderedArtifact{}, false, nil
	default:
		return RenderedArtifact{}, false, &DatabaseError{Detail: err.Error()}
	}
}

// List returns every artifact rendered for templateName, newest first.
func (c *RenderedCatalogue) List(templateName string) ([]RenderedArtifactSummary, error) {
	var artifacts []RenderedArtifact
	if err := c.db.Where("template_name = ?", templateName).Order("created_at DESC").Find(&artifacts).Error; err != nil {
		return nil, &DatabaseError{Detail: err.Error()}
	}
	summaries := make([]RenderedArtifactSummary, len(artifacts))
	for i, a := range artifacts {
		summaries[i] = RenderedArtifactSummary{IDFieldValue: a.IDFieldValue, CreatedAt: a.CreatedAt}
	}
	return summaries, nil
}

// Close releases the underlying database connection.
func (c *RenderedCatalogue) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
