package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"coverletter-backend/internal/extract"
	"coverletter-backend/internal/scrape"
	"coverletter-backend/internal/shared/apperr"
	"coverletter-backend/internal/shared/storage/object"
	"coverletter-backend/internal/shared/telemetry"
)

// maxCVTextChars caps extracted CV text before it enters the prompt.
const maxCVTextChars = 20_000

// minCVTextChars guards against scanned PDFs and empty extractions.
const minCVTextChars = 100

// JobInput is the raw job source as submitted by the client. Exactly one of
// URL or Text must be usable; when both are present, Text wins.
type JobInput struct {
	URL  string
	Text string
}

// CVInput is the raw CV source. Data is the uploaded file; when empty, the
// resolver falls back to the configured default CV from the asset store.
type CVInput struct {
	Data     []byte
	FileName string
	MimeType string
}

// Scraper fetches a job posting URL as markdown.
type Scraper interface {
	Markdown(ctx context.Context, url string) (string, error)
}

// Resolver turns client-submitted job and CV sources into plain text for
// the generation pipeline.
type Resolver struct {
	scraper         Scraper
	assets          object.AssetStore
	defaultCVKey    string
	maxUploadBytes  int64
	maxJobTextChars int
}

// NewResolver builds a resolver. scraper may be nil when no scraping API key
// is configured; job URLs then fail with a validation error.
func NewResolver(scraper Scraper, assets object.AssetStore, defaultCVKey string, maxUploadBytes int64, maxJobTextChars int) *Resolver {
	return &Resolver{
		scraper:         scraper,
		assets:          assets,
		defaultCVKey:    defaultCVKey,
		maxUploadBytes:  maxUploadBytes,
		maxJobTextChars: maxJobTextChars,
	}
}

// JobText resolves the job posting text. Pasted text takes precedence over a
// URL; a URL is scraped to markdown and truncated to the configured cap.
func (r *Resolver) JobText(ctx context.Context, input JobInput) (string, error) {
	text := strings.TrimSpace(input.Text)
	if text != "" {
		if len(text) > r.maxJobTextChars {
			return "", fmt.Errorf("%w: job text exceeds %d characters", apperr.ErrPayloadTooLarge, r.maxJobTextChars)
		}
		return text, nil
	}

	rawURL := strings.TrimSpace(input.URL)
	if rawURL == "" {
		return "", fmt.Errorf("%w: either job_url or job_text is required", apperr.ErrInvalidSource)
	}
	if err := ValidateJobURL(rawURL); err != nil {
		return "", err
	}
	if r.scraper == nil {
		return "", fmt.Errorf("%w: job_url scraping is not configured", apperr.ErrInvalidSource)
	}

	markdown, err := r.scraper.Markdown(ctx, rawURL)
	if err != nil {
		if errors.Is(err, scrape.ErrTimeout) {
			return "", fmt.Errorf("%w: scraping %s", apperr.ErrUpstreamTimeout, rawURL)
		}
		return "", fmt.Errorf("%w: %v", apperr.ErrUpstreamFetch, err)
	}
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return "", fmt.Errorf("%w: empty page content for %s", apperr.ErrUpstreamFetch, rawURL)
	}
	if len(markdown) > r.maxJobTextChars {
		telemetry.Warn("source.job.truncated", map[string]any{
			"url":   rawURL,
			"chars": len(markdown),
			"limit": r.maxJobTextChars,
		})
		markdown = markdown[:r.maxJobTextChars]
	}
	return markdown, nil
}

// CVText resolves the CV text: extracts the uploaded file, or falls back to
// the default CV from the asset store when nothing was uploaded.
func (r *Resolver) CVText(ctx context.Context, input CVInput) (string, error) {
	data := input.Data
	fileName := input.FileName
	mimeType := input.MimeType

	if len(data) == 0 {
		if r.assets == nil || r.defaultCVKey == "" {
			return "", nil
		}
		fallback, err := object.ReadAll(ctx, r.assets, r.defaultCVKey)
		if err != nil {
			telemetry.Warn("source.cv.default_missing", map[string]any{"key": r.defaultCVKey, "error": err.Error()})
			return "", nil
		}
		data = fallback
		fileName = r.defaultCVKey
		mimeType = ""
	} else if int64(len(data)) > r.maxUploadBytes {
		return "", fmt.Errorf("%w: cv file exceeds %d bytes", apperr.ErrPayloadTooLarge, r.maxUploadBytes)
	}

	text, err := extract.Text(ctx, data, mimeType, fileName)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrExtraction, err)
	}
	text = strings.TrimSpace(text)
	if len(text) < minCVTextChars {
		return "", fmt.Errorf("%w: extracted only %d characters, file may be scanned or empty", apperr.ErrExtraction, len(text))
	}
	if len(text) > maxCVTextChars {
		text = text[:maxCVTextChars]
	}
	return text, nil
}

// ValidateJobURL accepts absolute http(s) URLs with a host.
func ValidateJobURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: job_url is not a valid URL", apperr.ErrInvalidSource)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: job_url must use http or https", apperr.ErrInvalidSource)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: job_url is missing a host", apperr.ErrInvalidSource)
	}
	return nil
}
