package letters

import (
	"context"
	"fmt"
	"time"

	"coverletter-backend/internal/render"
	"coverletter-backend/internal/shared/apperr"
	"coverletter-backend/internal/shared/metrics"
	"coverletter-backend/internal/shared/storage/object"
	"coverletter-backend/internal/shared/telemetry"
	"coverletter-backend/internal/source"
)

// Request is one letter generation job: a job source, an optional CV and the
// user's generation knobs.
type Request struct {
	Job     source.JobInput
	CV      source.CVInput
	Options Options
}

// Document is a finished letter: the rendered DOCX plus the structured
// content it was rendered from.
type Document struct {
	FileName string
	Content  []byte
	Letter   LetterContent
}

// Service runs the full pipeline: resolve sources, generate content, render
// the template.
type Service struct {
	resolver    *source.Resolver
	generator   *Generator
	assets      object.AssetStore
	templateKey string
	renderOpts  render.Options
}

// NewService wires the pipeline. The template is read from the asset store
// per request so a replaced template takes effect without a restart.
func NewService(resolver *source.Resolver, generator *Generator, assets object.AssetStore, templateKey string, renderOpts render.Options) *Service {
	return &Service{
		resolver:    resolver,
		generator:   generator,
		assets:      assets,
		templateKey: templateKey,
		renderOpts:  renderOpts,
	}
}

// Generate produces a rendered letter document for the request.
func (s *Service) Generate(ctx context.Context, req Request) (Document, error) {
	metrics.IncGenerationStarted()
	start := time.Now()

	doc, err := s.generate(ctx, req)
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	if err != nil {
		metrics.IncGenerationFailed()
		return Document{}, err
	}

	metrics.IncGenerationCompleted()
	metrics.ObserveGenerationDurationMs(durationMs)
	telemetry.Info("letter.generated", map[string]any{
		"company":     doc.Letter.Company,
		"role":        doc.Letter.RoleTitle,
		"paragraphs":  len(doc.Letter.BodyParagraphs),
		"duration_ms": durationMs,
		"bytes":       len(doc.Content),
	})
	return doc, nil
}

func (s *Service) generate(ctx context.Context, req Request) (Document, error) {
	jobText, err := s.resolver.JobText(ctx, req.Job)
	if err != nil {
		return Document{}, err
	}
	cvText, err := s.resolver.CVText(ctx, req.CV)
	if err != nil {
		return Document{}, err
	}

	letter, err := s.generator.Generate(ctx, jobText, cvText, req.Options)
	if err != nil {
		return Document{}, err
	}

	template, err := object.ReadAll(ctx, s.assets, s.templateKey)
	if err != nil {
		return Document{}, fmt.Errorf("%w: template %q unavailable: %v", apperr.ErrRender, s.templateKey, err)
	}

	content, err := render.LetterDOCX(template, renderLetter(letter), s.renderOpts)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", apperr.ErrRender, err)
	}

	return Document{
		FileName: AttachmentFilename(letter.Company, letter.RecipientBlock, letter.SignatureName),
		Content:  content,
		Letter:   letter,
	}, nil
}

// renderLetter maps the assembled content onto the renderer's input type.
func renderLetter(letter LetterContent) render.Letter {
	return render.Letter{
		Date:           letter.Date,
		RecipientBlock: letter.RecipientBlock,
		RoleTitle:      letter.RoleTitle,
		Company:        letter.Company,
		Subject:        letter.Subject,
		Salutation:     letter.Salutation,
		BodyParagraphs: letter.BodyParagraphs,
		Closing:        letter.Closing,
		SignatureName:  letter.SignatureName,
	}
}
