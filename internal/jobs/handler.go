package jobs

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"coverletter-backend/internal/shared/apperr"
	"coverletter-backend/internal/shared/metrics"
	"coverletter-backend/internal/shared/server/respond"
	"coverletter-backend/internal/source"
)

// JobResolver resolves a job posting URL to plain text.
type JobResolver interface {
	JobText(ctx context.Context, input source.JobInput) (string, error)
}

// Handler serves job-posting preview requests.
type Handler struct {
	resolver JobResolver
}

// NewHandler wires the preview handler against the source resolver.
func NewHandler(resolver JobResolver) *Handler {
	return &Handler{resolver: resolver}
}

type previewResponse struct {
	// Role is null when no role could be guessed from the posting.
	Role     *string `json:"role"`
	Markdown string  `json:"markdown"`
	Chars    int     `json:"chars"`
}

// Preview scrapes a job URL and returns the markdown plus a role guess, so
// clients can confirm the posting before spending a generation call. The URL
// arrives as the job_url form field, mirroring the generate endpoint.
func (h *Handler) Preview(c *gin.Context) {
	jobURL := strings.TrimSpace(c.PostForm("job_url"))
	if jobURL == "" {
		respond.Error(c, http.StatusBadRequest, apperr.CodeValidation, "job_url form field is required", nil)
		return
	}

	markdown, err := h.resolver.JobText(c.Request.Context(), source.JobInput{URL: jobURL})
	if err != nil {
		status, code := apperr.HTTPStatus(err)
		respond.Error(c, status, code, apperr.Message(status, code, err), nil)
		return
	}

	var role *string
	if guess := GuessRole(markdown); guess != "" {
		role = &guess
	}

	metrics.IncPreviewServed()
	respond.OK(c, previewResponse{
		Role:     role,
		Markdown: markdown,
		Chars:    len(markdown),
	})
}
