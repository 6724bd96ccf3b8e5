package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"coverletter-backend/internal/shared/apperr"
	"coverletter-backend/internal/source"
)

type fakeResolver struct {
	markdown string
	err      error
}

func (f *fakeResolver) JobText(ctx context.Context, input source.JobInput) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.markdown, nil
}

func newPreviewRouter(resolver JobResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/v1/job/preview", NewHandler(resolver).Preview)
	return r
}

func postPreview(t *testing.T, r *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/job/preview", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestPreviewReturnsMarkdownAndRole(t *testing.T) {
	r := newPreviewRouter(&fakeResolver{markdown: "# Software Engineer\n\nAcme AG sucht Verstärkung."})

	rec := postPreview(t, r, url.Values{"job_url": {"https://jobs.example/123"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Role     *string `json:"role"`
		Markdown string  `json:"markdown"`
		Chars    int     `json:"chars"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Role == nil || *body.Role != "Software Engineer" {
		t.Fatalf("role = %v, want Software Engineer", body.Role)
	}
	if !strings.Contains(body.Markdown, "Acme AG") {
		t.Fatalf("markdown = %q", body.Markdown)
	}
	if body.Chars != len(body.Markdown) {
		t.Fatalf("chars = %d, want %d", body.Chars, len(body.Markdown))
	}
}

func TestPreviewRoleIsNullWithoutGuess(t *testing.T) {
	long := strings.Repeat("x", 130)
	r := newPreviewRouter(&fakeResolver{markdown: long})

	rec := postPreview(t, r, url.Values{"job_url": {"https://jobs.example/123"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"role":null`) {
		t.Fatalf("response must carry an explicit null role, got: %s", rec.Body.String())
	}
}

func TestPreviewRequiresJobURL(t *testing.T) {
	r := newPreviewRouter(&fakeResolver{})

	rec := postPreview(t, r, url.Values{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), apperr.CodeValidation) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestPreviewKeepsUpstreamFailuresGeneric(t *testing.T) {
	r := newPreviewRouter(&fakeResolver{
		err: fmt.Errorf("%w: firecrawl error: token abc123 rejected", apperr.ErrUpstreamFetch),
	})

	rec := postPreview(t, r, url.Values{"job_url": {"https://jobs.example/123"}})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, apperr.CodeUpstreamFetch) {
		t.Fatalf("body = %s", body)
	}
	if strings.Contains(body, "abc123") || strings.Contains(body, "firecrawl") {
		t.Fatalf("upstream detail must not leak: %s", body)
	}
}
