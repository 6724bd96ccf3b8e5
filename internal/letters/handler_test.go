package letters

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"coverletter-backend/internal/render"
	"coverletter-backend/internal/shared/apperr"
	"coverletter-backend/internal/shared/server/respond"
	"coverletter-backend/internal/source"
)

const handlerTemplateXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="5530"/></w:tabs></w:pPr><w:r><w:tab/><w:t>{{date}}</w:t></w:r></w:p>
<w:p><w:r><w:t>{{recipient_address}}</w:t></w:r></w:p>
<w:p><w:r><w:t>{{role}}</w:t></w:r></w:p>
<w:p><w:r><w:t>{{body_of_motivational_letter}}</w:t></w:r></w:p>
</w:body>
</w:document>`

func templateBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	if _, err := w.Write([]byte(handlerTemplateXML)); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

type memStore map[string][]byte

func (m memStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("no such key: %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func newTestRouter(t *testing.T, client *fakeLLM, store memStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	resolver := source.NewResolver(nil, store, "", 1<<20, 25_000)
	generator := newTestGenerator(client)
	service := NewService(resolver, generator, store, "template.docx", render.Options{})
	handler := NewHandler(service, 1<<20)

	r := gin.New()
	r.POST("/v1/generate", handler.Generate)
	return r
}

func multipartForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func postGenerate(t *testing.T, r *gin.Engine, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartForm(t, fields)
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp respond.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v\n%s", err, rec.Body.String())
	}
	return resp.Error.Code
}

func TestGenerateEndpointHappyPath(t *testing.T) {
	store := memStore{"template.docx": templateBytes(t)}
	client := &fakeLLM{responses: []func() (json.RawMessage, error){respondWith(validPayload())}}
	r := newTestRouter(t, client, store)

	rec := postGenerate(t, r, map[string]string{
		"job_text": generatorJobText,
		"language": "de",
		"tone":     "professional",
		"length":   "medium",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != docxContentType {
		t.Fatalf("Content-Type = %q", got)
	}
	disposition := rec.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "Motivationsschreiben_Acme_AG_Andri_Heeb.docx") {
		t.Fatalf("Content-Disposition = %q", disposition)
	}
	if _, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len())); err != nil {
		t.Fatalf("response is not a valid docx archive: %v", err)
	}
}

func TestGenerateEndpointRequiresJobSource(t *testing.T) {
	store := memStore{"template.docx": templateBytes(t)}
	r := newTestRouter(t, &fakeLLM{}, store)

	rec := postGenerate(t, r, map[string]string{"language": "de"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if code := errorCode(t, rec); code != apperr.CodeValidation {
		t.Fatalf("code = %q, want %q", code, apperr.CodeValidation)
	}
}

func TestGenerateEndpointRejectsUnknownLanguage(t *testing.T) {
	store := memStore{"template.docx": templateBytes(t)}
	r := newTestRouter(t, &fakeLLM{}, store)

	rec := postGenerate(t, r, map[string]string{"job_text": "x", "language": "fr"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if code := errorCode(t, rec); code != apperr.CodeValidation {
		t.Fatalf("code = %q, want %q", code, apperr.CodeValidation)
	}
}

func TestGenerateEndpointJobTextWinsOverURL(t *testing.T) {
	// No scraper is wired; the request only succeeds because job_text takes
	// precedence over job_url.
	store := memStore{"template.docx": templateBytes(t)}
	client := &fakeLLM{responses: []func() (json.RawMessage, error){respondWith(validPayload())}}
	r := newTestRouter(t, client, store)

	rec := postGenerate(t, r, map[string]string{
		"job_text": generatorJobText,
		"job_url":  "https://example.com/jobs/42",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestGenerateEndpointGenerationFailure(t *testing.T) {
	store := memStore{"template.docx": templateBytes(t)}
	client := &fakeLLM{responses: []func() (json.RawMessage, error){
		failWith(fmt.Errorf("model exploded")),
	}}
	r := newTestRouter(t, client, store)

	rec := postGenerate(t, r, map[string]string{"job_text": generatorJobText})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	if code := errorCode(t, rec); code != apperr.CodeGeneration {
		t.Fatalf("code = %q, want %q", code, apperr.CodeGeneration)
	}
	if strings.Contains(rec.Body.String(), "model exploded") {
		t.Fatalf("upstream details must not leak: %s", rec.Body.String())
	}
}

func TestGenerateEndpointMissingTemplate(t *testing.T) {
	client := &fakeLLM{responses: []func() (json.RawMessage, error){respondWith(validPayload())}}
	r := newTestRouter(t, client, memStore{})

	rec := postGenerate(t, r, map[string]string{"job_text": generatorJobText})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if code := errorCode(t, rec); code != apperr.CodeRender {
		t.Fatalf("code = %q, want %q", code, apperr.CodeRender)
	}
}
