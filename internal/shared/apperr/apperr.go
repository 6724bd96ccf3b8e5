package apperr

import (
	"errors"
	"net/http"
)

// Pipeline sentinels. Handlers map these to HTTP statuses and machine codes;
// messages for upstream failures stay generic so internals never leak.
var (
	ErrInvalidSource   = errors.New("invalid job source")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrExtraction      = errors.New("cv text extraction failed")
	ErrUpstreamTimeout = errors.New("upstream request timed out")
	ErrUpstreamFetch   = errors.New("upstream fetch failed")
	ErrGeneration      = errors.New("letter generation failed")
	ErrRender          = errors.New("letter rendering failed")
)

const (
	CodeValidation    = "validation_error"
	CodeTooLarge      = "payload_too_large"
	CodeExtraction    = "extraction_failed"
	CodeTimeout       = "upstream_timeout"
	CodeUpstreamFetch = "upstream_fetch_failed"
	CodeGeneration    = "generation_failed"
	CodeRender        = "render_failed"
	CodeInternal      = "internal_error"
)

// HTTPStatus maps a pipeline error to its HTTP status and machine code.
// Unknown errors are reported as internal.
func HTTPStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidSource):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, CodeTooLarge
	case errors.Is(err, ErrExtraction):
		return http.StatusBadRequest, CodeExtraction
	case errors.Is(err, ErrUpstreamTimeout):
		return http.StatusGatewayTimeout, CodeTimeout
	case errors.Is(err, ErrUpstreamFetch):
		return http.StatusBadGateway, CodeUpstreamFetch
	case errors.Is(err, ErrGeneration):
		return http.StatusBadGateway, CodeGeneration
	case errors.Is(err, ErrRender):
		return http.StatusInternalServerError, CodeRender
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// Message keeps 5xx responses generic; validation-class errors carry the
// concrete reason.
func Message(status int, code string, err error) string {
	if status < http.StatusInternalServerError {
		return err.Error()
	}
	switch code {
	case CodeTimeout:
		return "an upstream request timed out, please try again"
	case CodeUpstreamFetch:
		return "the job posting could not be fetched"
	case CodeGeneration:
		return "the letter could not be generated, please try again"
	case CodeRender:
		return "the letter document could not be rendered"
	default:
		return "internal server error"
	}
}
