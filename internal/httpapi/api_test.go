// Copyright 2026 The Provisionr Authors
// SPDX-License-Identifier: Apache-2.0

package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sam-ruff/provisionr/internal/provisionr"
)

// newTestAPI wires a full Dispatcher (in-memory template store, file-backed
// catalogue) behind a real API, the way runServe does in cmd/provisionr.
func newTestAPI(t *testing.T) (*API, http.Handler) {
	t.Helper()
	commander := provisionr.NewCommander(provisionr.NewGoTemplateEngine())
	store := provisionr.NewTemplateStore()
	path := filepath.Join(t.TempDir(), "catalogue.db")
	catalogue, err := provisionr.OpenRenderedCatalogue(path)
	if err != nil {
		t.Fatalf("OpenRenderedCatalogue() error = %v", err)
	}
	t.Cleanup(func() { _ = catalogue.Close() })

	dispatcher := provisionr.NewDispatcher(commander, store, catalogue, nil, 8)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go dispatcher.Run(ctx)

	api := New(dispatcher, nil, time.Second)
	return api, api.Routes()
}

func multipartBody(t *testing.T, field, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, "template.txt")
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return &buf, w.FormDataContentType()
}

func uploadTemplate(t *testing.T, handler http.Handler, name, content string) {
	t.Helper()
	body, contentType := multipartBody(t, "file", content)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/template/"+name, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload template %q: status = %d, body = %s", name, rec.Code, rec.Body.String())
	}
}

func TestSetTemplate_Success(t *testing.T) {
	_, handler := newTestAPI(t)
	body, contentType := multipartBody(t, "file", "Hello {{ .name }}")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/template/greet", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp successMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("Status = %q, want ok", resp.Status)
	}
}

func TestSetTemplate_InvalidSyntax(t *testing.T) {
	_, handler := newTestAPI(t)
	body, contentType := multipartBody(t, "file", "Hello {{ .name ")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/template/greet", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body = %s", rec.Code, rec.Body.String())
	}
}

func TestSetTemplate_MissingFile(t *testing.T) {
	_, handler := newTestAPI(t)
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/template/greet", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRenderTemplate_EndToEnd(t *testing.T) {
	_, handler := newTestAPI(t)
	uploadTemplate(t, handler, "greet", "Hello {{ .name }}")

	valuesReq := httptest.NewRequest(http.MethodPut, "/api/v1/template/greet/values", bytes.NewBufferString("name: World\n"))
	valuesRec := httptest.NewRecorder()
	handler.ServeHTTP(valuesRec, valuesReq)
	if valuesRec.Code != http.StatusOK {
		t.Fatalf("set values status = %d, body = %s", valuesRec.Code, valuesRec.Body.String())
	}

	renderReq := httptest.NewRequest(http.MethodGet, "/api/v1/template/greet?mac_address=AA", nil)
	renderRec := httptest.NewRecorder()
	handler.ServeHTTP(renderRec, renderReq)
	if renderRec.Code != http.StatusOK {
		t.Fatalf("render status = %d, body = %s", renderRec.Code, renderRec.Body.String())
	}
	if got := renderRec.Body.String(); got != "Hello World" {
		t.Errorf("render body = %q, want %q", got, "Hello World")
	}
	if ct := renderRec.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestRenderTemplate_NotFound(t *testing.T) {
	_, handler := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/template/missing?mac_address=X", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("not found")) {
		t.Errorf("body = %q, want it to mention 'not found'", rec.Body.String())
	}
}

func TestRenderTemplate_MissingRequiredField(t *testing.T) {
	_, handler := newTestAPI(t)
	uploadTemplate(t, handler, "t", "hi")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/template/t", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("Missing required field")) {
		t.Errorf("body = %q, want it to mention 'Missing required field'", rec.Body.String())
	}
}

func TestRenderTemplate_HashedDynamicField(t *testing.T) {
	_, handler := newTestAPI(t)
	uploadTemplate(t, handler, "ks", "PW: {{ .pw }}")

	cfgBody := `{"id_field":"mac_address","dynamic_fields":[{"field_name":"pw","type":"alphanumeric","length":16,"hashing_algorithm":"sha512"}]}`
	cfgReq := httptest.NewRequest(http.MethodPut, "/api/v1/config/ks", bytes.NewBufferString(cfgBody))
	cfgRec := httptest.NewRecorder()
	handler.ServeHTTP(cfgRec, cfgReq)
	if cfgRec.Code != http.StatusOK {
		t.Fatalf("set config status = %d, body = %s", cfgRec.Code, cfgRec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/template/ks?mac_address=01", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("render status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !bytes.HasPrefix([]byte(body), []byte("PW: $6$")) {
		t.Errorf("body = %q, want prefix %q", body, "PW: $6$")
	}
}

func TestDeleteTemplate(t *testing.T) {
	_, handler := newTestAPI(t)
	uploadTemplate(t, handler, "greet", "hi")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/template/greet", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/config/greet", nil)
	getRec := httptest.NewRecorder()
	handler.ServeHTTP(getRec, getReq)
	if getRec.Code != http.StatusNotFound {
		t.Fatalf("get config after delete status = %d, want 404", getRec.Code)
	}
}

func TestGetConfig_NotFound(t *testing.T) {
	_, handler := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/config/missing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSetConfig_FailsWhenTemplateAbsent(t *testing.T) {
	_, handler := newTestAPI(t)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/config/missing", bytes.NewBufferString(`{"id_field":"mac_address"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", rec.Code, rec.Body.String())
	}
}

func TestSetConfig_RejectsDuplicateFieldNames(t *testing.T) {
	_, handler := newTestAPI(t)
	uploadTemplate(t, handler, "ks", "PW: {{ .pw }}")

	cfgBody := `{"id_field":"mac_address","dynamic_fields":[` +
		`{"field_name":"pw","type":"alphanumeric","length":8},` +
		`{"field_name":"pw","type":"alphanumeric","length":16}]}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/config/ks", bytes.NewBufferString(cfgBody))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", rec.Code, rec.Body.String())
	}
}

func TestSetConfig_InvalidBody(t *testing.T) {
	_, handler := newTestAPI(t)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/config/t", bytes.NewBufferString("not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListAndGetRendered(t *testing.T) {
	_, handler := newTestAPI(t)
	uploadTemplate(t, handler, "greet", "Hello {{ .name }}")
	valuesReq := httptest.NewRequest(http.MethodPut, "/api/v1/template/greet/values", bytes.NewBufferString("name: World\n"))
	handler.ServeHTTP(httptest.NewRecorder(), valuesReq)

	renderReq := httptest.NewRequest(http.MethodGet, "/api/v1/template/greet?mac_address=AA", nil)
	handler.ServeHTTP(httptest.NewRecorder(), renderReq)

	listReq := httptest.NewRequest(http.MethodGet, "/api/v1/rendered/greet", nil)
	listRec := httptest.NewRecorder()
	handler.ServeHTTP(listRec, listReq)
	if listRec.Code != http.StatusOK {
		t.Fatalf("list status = %d, body = %s", listRec.Code, listRec.Body.String())
	}
	var summaries []provisionr.RenderedArtifactSummary
	if err := json.Unmarshal(listRec.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(summaries) != 1 || summaries[0].IDFieldValue != "AA" {
		t.Fatalf("summaries = %+v", summaries)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/rendered/greet/AA", nil)
	getRec := httptest.NewRecorder()
	handler.ServeHTTP(getRec, getReq)
	if getRec.Code != http.StatusOK {
		t.Fatalf("get status = %d, body = %s", getRec.Code, getRec.Body.String())
	}
	var artifact provisionr.RenderedArtifact
	if err := json.Unmarshal(getRec.Body.Bytes(), &artifact); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if artifact.RenderedContent != "Hello World" {
		t.Errorf("RenderedContent = %q", artifact.RenderedContent)
	}
}

func TestSetTemplate_HandlerUnavailable_WhenDispatcherStopped(t *testing.T) {
	commander := provisionr.NewCommander(provisionr.NewGoTemplateEngine())
	store := provisionr.NewTemplateStore()
	path := filepath.Join(t.TempDir(), "catalogue.db")
	catalogue, err := provisionr.OpenRenderedCatalogue(path)
	if err != nil {
		t.Fatalf("OpenRenderedCatalogue() error = %v", err)
	}
	t.Cleanup(func() { _ = catalogue.Close() })

	dispatcher := provisionr.NewDispatcher(commander, store, catalogue, nil, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		dispatcher.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	api := New(dispatcher, nil, time.Second)
	handler := api.Routes()

	body, contentType := multipartBody(t, "file", "hi")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/template/t", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503; body = %s", rec.Code, rec.Body.String())
	}
}

func TestGetRendered_NotFound(t *testing.T) {
	_, handler := newTestAPI(t)
	uploadTemplate(t, handler, "greet", "hi")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rendered/greet/nope", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
