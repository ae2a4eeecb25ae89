// Copyright 2026 The Provisionr Authors
// SPDX-License-Identifier: Apache-2.0

package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/sam-ruff/provisionr/internal/provisionr"
)

// setTemplate handles POST /api/v1/template/{name}: a multipart upload
// carrying the template content as its single field.
func (a *API) setTemplate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	content, err := extractUploadedContent(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply := make(chan error, 1)
	cmdErr, outcome := doSend[error](a, provisionr.SetTemplateCommand{Name: name, Content: content, Reply: reply}, reply)
	if outcome != nil {
		writeOutcomeJSON(w, *outcome)
		return
	}
	if cmdErr != nil {
		writeOutcomeJSON(w, classifyHandlerError(cmdErr))
		return
	}
	writeJSONMessage(w, http.StatusOK, "template set")
}

// extractUploadedContent reads the first multipart field's bytes and
// validates them as UTF-8, matching the upload contract of a template
// file field.
func extractUploadedContent(r *http.Request) (string, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return "", errBadUpload("failed to read multipart body")
	}
	part, err := reader.NextPart()
	if err != nil {
		return "", errBadUpload("no file uploaded")
	}
	defer part.Close()

	body, err := io.ReadAll(part)
	if err != nil {
		return "", errBadUpload("failed to read field bytes")
	}
	if !utf8.Valid(body) {
		return "", errBadUpload("file content is not valid UTF-8")
	}
	return string(body), nil
}

type uploadError struct{ msg string }

func (e *uploadError) Error() string { return e.msg }
func errBadUpload(msg string) error  { return &uploadError{msg: msg} }

// setValues handles PUT /api/v1/template/{name}/values: a raw YAML/JSON
// body of default bindings.
func (a *API) setValues(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if !utf8.Valid(body) {
		writeJSONError(w, http.StatusBadRequest, "request body is not valid UTF-8")
		return
	}

	reply := make(chan error, 1)
	cmdErr, outcome := doSend[error](a, provisionr.SetValuesCommand{Name: name, YAMLOrJSON: string(body), Reply: reply}, reply)
	if outcome != nil {
		writeOutcomeJSON(w, *outcome)
		return
	}
	if cmdErr != nil {
		writeOutcomeJSON(w, classifyHandlerError(cmdErr))
		return
	}
	writeJSONMessage(w, http.StatusOK, "values set")
}

// renderTemplate handles GET /api/v1/template/{name}. Unlike every other
// endpoint, it replies in plain text on both success and failure: the
// rendered content is the body callers (e.g. a PXE/kickstart client) want
// to consume directly.
func (a *API) renderTemplate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	query := make(map[string]string, len(r.URL.Query()))
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}

	reply := make(chan provisionr.RenderResult, 1)
	result, outcome := doSend[provisionr.RenderResult](a, provisionr.RenderCommand{Name: name, QueryValues: query, Reply: reply}, reply)
	if outcome != nil {
		writeOutcomePlain(w, *outcome)
		return
	}
	if result.Err != nil {
		writeOutcomePlain(w, classifyHandlerError(result.Err))
		return
	}
	writePlainText(w, http.StatusOK, result.Content)
}

// deleteTemplate handles DELETE /api/v1/template/{name}. Rendered
// artifacts already in the catalogue are left untouched.
func (a *API) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	reply := make(chan struct{}, 1)
	_, outcome := doSend[struct{}](a, provisionr.DeleteTemplateCommand{Name: name, Reply: reply}, reply)
	if outcome != nil {
		writeOutcomeJSON(w, *outcome)
		return
	}
	writeJSONMessage(w, http.StatusOK, "template deleted")
}

// getConfig handles GET /api/v1/config/{name}.
func (a *API) getConfig(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	reply := make(chan provisionr.GetConfigResult, 1)
	result, outcome := doSend[provisionr.GetConfigResult](a, provisionr.GetConfigCommand{Name: name, Reply: reply}, reply)
	if outcome != nil {
		writeOutcomeJSON(w, *outcome)
		return
	}
	if !result.Found {
		writeJSONError(w, http.StatusNotFound, "Template not found")
		return
	}
	writeJSON(w, http.StatusOK, result.Config)
}

// setConfig handles PUT /api/v1/config/{name}. The request body is
// validated structurally before it ever reaches the dispatcher.
func (a *API) setConfig(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var config provisionr.TemplateConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.validate.Struct(&config); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply := make(chan error, 1)
	cmdErr, outcome := doSend[error](a, provisionr.SetConfigCommand{Name: name, Config: config, Reply: reply}, reply)
	if outcome != nil {
		writeOutcomeJSON(w, *outcome)
		return
	}
	if cmdErr != nil {
		writeOutcomeJSON(w, classifyHandlerError(cmdErr))
		return
	}
	writeJSONMessage(w, http.StatusOK, "config set")
}

// listRendered handles GET /api/v1/rendered/{name}.
func (a *API) listRendered(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	reply := make(chan provisionr.ListRenderedResult, 1)
	result, outcome := doSend[provisionr.ListRenderedResult](a, provisionr.ListRenderedCommand{TemplateName: name, Reply: reply}, reply)
	if outcome != nil {
		writeOutcomeJSON(w, *outcome)
		return
	}
	if result.Err != nil {
		writeOutcomeJSON(w, classifyHandlerError(result.Err))
		return
	}
	summaries := result.Summaries
	if summaries == nil {
		summaries = []provisionr.RenderedArtifactSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

// getRendered handles GET /api/v1/rendered/{name}/{id_value}.
func (a *API) getRendered(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	idValue := r.PathValue("id_value")

	reply := make(chan provisionr.GetRenderedResult, 1)
	result, outcome := doSend[provisionr.GetRenderedResult](a, provisionr.GetRenderedCommand{TemplateName: name, IDValue: idValue, Reply: reply}, reply)
	if outcome != nil {
		writeOutcomeJSON(w, *outcome)
		return
	}
	if result.Err != nil {
		writeOutcomeJSON(w, classifyHandlerError(result.Err))
		return
	}
	if !result.Found {
		writeJSONError(w, http.StatusNotFound, "rendered artifact not found")
		return
	}
	writeJSON(w, http.StatusOK, result.Artifact)
}
