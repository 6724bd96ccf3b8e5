package source

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"coverletter-backend/internal/scrape"
	"coverletter-backend/internal/shared/apperr"
	"coverletter-backend/internal/shared/storage/object"
)

type fakeScraper struct {
	markdown string
	err      error
	calls    int
}

func (f *fakeScraper) Markdown(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.markdown, f.err
}

type mapStore map[string][]byte

func (m mapStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("no such key: %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

var _ object.AssetStore = mapStore(nil)

func newTestResolver(scraper Scraper, assets object.AssetStore, defaultCVKey string) *Resolver {
	return NewResolver(scraper, assets, defaultCVKey, 1024, 1000)
}

func TestValidateJobURL(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://example.com/jobs/42", true},
		{"http://example.com", true},
		{"ftp://example.com/file", false},
		{"example.com/jobs", false},
		{"https://", false},
		{"::not-a-url", false},
	}
	for _, tc := range cases {
		err := ValidateJobURL(tc.url)
		if tc.want && err != nil {
			t.Errorf("ValidateJobURL(%q) = %v, want nil", tc.url, err)
		}
		if !tc.want && err == nil {
			t.Errorf("ValidateJobURL(%q) = nil, want error", tc.url)
		}
	}
}

func TestJobTextPastedTextWins(t *testing.T) {
	scraper := &fakeScraper{markdown: "scraped"}
	r := newTestResolver(scraper, nil, "")

	got, err := r.JobText(context.Background(), JobInput{URL: "https://example.com", Text: "  pasted job text  "})
	if err != nil {
		t.Fatalf("JobText: %v", err)
	}
	if got != "pasted job text" {
		t.Fatalf("JobText = %q", got)
	}
	if scraper.calls != 0 {
		t.Fatalf("scraper must not run when text is supplied, calls = %d", scraper.calls)
	}
}

func TestJobTextRequiresASource(t *testing.T) {
	r := newTestResolver(nil, nil, "")
	_, err := r.JobText(context.Background(), JobInput{})
	if !errors.Is(err, apperr.ErrInvalidSource) {
		t.Fatalf("err = %v, want ErrInvalidSource", err)
	}
}

func TestJobTextTooLarge(t *testing.T) {
	r := newTestResolver(nil, nil, "")
	_, err := r.JobText(context.Background(), JobInput{Text: strings.Repeat("x", 1001)})
	if !errors.Is(err, apperr.ErrPayloadTooLarge) {
		t.Fatalf("err = %v, want ErrPayloadTooLarge", err)
	}
}

func TestJobTextScrapesURL(t *testing.T) {
	scraper := &fakeScraper{markdown: "# Software Engineer\n\nJob description."}
	r := newTestResolver(scraper, nil, "")

	got, err := r.JobText(context.Background(), JobInput{URL: "https://example.com/jobs/42"})
	if err != nil {
		t.Fatalf("JobText: %v", err)
	}
	if got != scraper.markdown {
		t.Fatalf("JobText = %q", got)
	}
}

func TestJobTextScrapedContentTruncated(t *testing.T) {
	scraper := &fakeScraper{markdown: strings.Repeat("y", 5000)}
	r := newTestResolver(scraper, nil, "")

	got, err := r.JobText(context.Background(), JobInput{URL: "https://example.com"})
	if err != nil {
		t.Fatalf("JobText: %v", err)
	}
	if len(got) != 1000 {
		t.Fatalf("scraped text length = %d, want 1000", len(got))
	}
}

func TestJobTextScrapeTimeout(t *testing.T) {
	scraper := &fakeScraper{err: fmt.Errorf("%w: slow page", scrape.ErrTimeout)}
	r := newTestResolver(scraper, nil, "")

	_, err := r.JobText(context.Background(), JobInput{URL: "https://example.com"})
	if !errors.Is(err, apperr.ErrUpstreamTimeout) {
		t.Fatalf("err = %v, want ErrUpstreamTimeout", err)
	}
}

func TestJobTextScrapeFailure(t *testing.T) {
	scraper := &fakeScraper{err: errors.New("boom")}
	r := newTestResolver(scraper, nil, "")

	_, err := r.JobText(context.Background(), JobInput{URL: "https://example.com"})
	if !errors.Is(err, apperr.ErrUpstreamFetch) {
		t.Fatalf("err = %v, want ErrUpstreamFetch", err)
	}
}

func TestJobTextEmptyScrapeResult(t *testing.T) {
	scraper := &fakeScraper{markdown: "   "}
	r := newTestResolver(scraper, nil, "")

	_, err := r.JobText(context.Background(), JobInput{URL: "https://example.com"})
	if !errors.Is(err, apperr.ErrUpstreamFetch) {
		t.Fatalf("err = %v, want ErrUpstreamFetch", err)
	}
}

func TestJobTextURLWithoutScraperConfigured(t *testing.T) {
	r := newTestResolver(nil, nil, "")
	_, err := r.JobText(context.Background(), JobInput{URL: "https://example.com"})
	if !errors.Is(err, apperr.ErrInvalidSource) {
		t.Fatalf("err = %v, want ErrInvalidSource", err)
	}
}

// docxWithText builds a minimal DOCX carrying the given paragraph text.
func docxWithText(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	doc := `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestCVTextExtractsUpload(t *testing.T) {
	r := newTestResolver(nil, nil, "")
	content := strings.Repeat("Berufserfahrung als Software Engineer. ", 5)

	got, err := r.CVText(context.Background(), CVInput{
		Data:     docxWithText(t, content),
		FileName: "cv.docx",
	})
	if err != nil {
		t.Fatalf("CVText: %v", err)
	}
	if !strings.Contains(got, "Berufserfahrung") {
		t.Fatalf("CVText = %q", got)
	}
}

func TestCVTextRejectsOversizedUpload(t *testing.T) {
	r := newTestResolver(nil, nil, "")
	_, err := r.CVText(context.Background(), CVInput{Data: make([]byte, 2048), FileName: "cv.pdf"})
	if !errors.Is(err, apperr.ErrPayloadTooLarge) {
		t.Fatalf("err = %v, want ErrPayloadTooLarge", err)
	}
}

func TestCVTextRejectsScannedLookingUpload(t *testing.T) {
	r := newTestResolver(nil, nil, "")
	_, err := r.CVText(context.Background(), CVInput{
		Data:     docxWithText(t, "kurz"),
		FileName: "cv.docx",
	})
	if !errors.Is(err, apperr.ErrExtraction) {
		t.Fatalf("err = %v, want ErrExtraction", err)
	}
}

func TestCVTextFallsBackToDefaultCV(t *testing.T) {
	content := strings.Repeat("Langjährige Erfahrung in der Softwareentwicklung. ", 5)
	store := mapStore{"default_cv.docx": docxWithText(t, content)}
	r := newTestResolver(nil, store, "default_cv.docx")

	got, err := r.CVText(context.Background(), CVInput{})
	if err != nil {
		t.Fatalf("CVText: %v", err)
	}
	if !strings.Contains(got, "Erfahrung") {
		t.Fatalf("CVText = %q", got)
	}
}

func TestCVTextNoUploadNoDefault(t *testing.T) {
	r := newTestResolver(nil, nil, "")
	got, err := r.CVText(context.Background(), CVInput{})
	if err != nil {
		t.Fatalf("CVText: %v", err)
	}
	if got != "" {
		t.Fatalf("CVText = %q, want empty", got)
	}
}

func TestCVTextMissingDefaultIsNotFatal(t *testing.T) {
	r := newTestResolver(nil, mapStore{}, "default_cv.docx")
	got, err := r.CVText(context.Background(), CVInput{})
	if err != nil {
		t.Fatalf("CVText: %v", err)
	}
	if got != "" {
		t.Fatalf("CVText = %q, want empty", got)
	}
}

func TestCVTextUnsupportedType(t *testing.T) {
	r := newTestResolver(nil, nil, "")
	_, err := r.CVText(context.Background(), CVInput{
		Data:     []byte("plain text resume"),
		FileName: "cv.txt",
		MimeType: "text/plain",
	})
	if !errors.Is(err, apperr.ErrExtraction) {
		t.Fatalf("err = %v, want ErrExtraction", err)
	}
}
