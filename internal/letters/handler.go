package letters

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"coverletter-backend/internal/shared/apperr"
	"coverletter-backend/internal/shared/server/respond"
	"coverletter-backend/internal/shared/util"
	"coverletter-backend/internal/source"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Handler serves letter generation requests.
type Handler struct {
	service       *Service
	maxUploadSize int64
}

// NewHandler wires the generation handler.
func NewHandler(service *Service, maxUploadSize int64) *Handler {
	return &Handler{service: service, maxUploadSize: maxUploadSize}
}

// Generate handles POST /v1/generate: multipart form with a job source
// (job_text or job_url), an optional CV upload and generation options. The
// response is the rendered DOCX as an attachment.
func (h *Handler) Generate(c *gin.Context) {
	req, ok := h.parseRequest(c)
	if !ok {
		return
	}

	doc, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		status, code := apperr.HTTPStatus(err)
		respond.Error(c, status, code, apperr.Message(status, code, err), nil)
		return
	}

	c.Set("letterCompany", doc.Letter.Company)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Data(http.StatusOK, docxContentType, doc.Content)
}

func (h *Handler) parseRequest(c *gin.Context) (Request, bool) {
	// Bound before multipart parsing so oversized bodies fail early.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+1<<20)

	language, ok := ParseLanguage(c.PostForm("language"))
	if !ok {
		respond.Error(c, http.StatusBadRequest, apperr.CodeValidation, "language must be one of: de, en", nil)
		return Request{}, false
	}
	tone, ok := ParseTone(c.PostForm("tone"))
	if !ok {
		respond.Error(c, http.StatusBadRequest, apperr.CodeValidation, "tone must be one of: professional, friendly, concise", nil)
		return Request{}, false
	}
	length, ok := ParseLength(c.PostForm("length"))
	if !ok {
		respond.Error(c, http.StatusBadRequest, apperr.CodeValidation, "length must be one of: short, medium, long", nil)
		return Request{}, false
	}

	req := Request{
		Job: source.JobInput{
			URL:  c.PostForm("job_url"),
			Text: c.PostForm("job_text"),
		},
		Options: Options{
			Language:   language,
			Tone:       tone,
			Length:     length,
			TargetRole: c.PostForm("target_role"),
		},
	}

	cv, err := h.readCV(c)
	if err != nil {
		status, code := apperr.HTTPStatus(err)
		respond.Error(c, status, code, err.Error(), nil)
		return Request{}, false
	}
	req.CV = cv
	return req, true
}

func (h *Handler) readCV(c *gin.Context) (source.CVInput, error) {
	file, err := c.FormFile("cv")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return source.CVInput{}, nil
		}
		return source.CVInput{}, fmt.Errorf("%w: reading cv upload: %v", apperr.ErrInvalidSource, err)
	}
	if file.Size > h.maxUploadSize {
		return source.CVInput{}, fmt.Errorf("%w: cv file exceeds %d bytes", apperr.ErrPayloadTooLarge, h.maxUploadSize)
	}

	f, err := file.Open()
	if err != nil {
		return source.CVInput{}, fmt.Errorf("%w: opening cv upload: %v", apperr.ErrInvalidSource, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return source.CVInput{}, fmt.Errorf("%w: reading cv upload: %v", apperr.ErrInvalidSource, err)
	}

	fileName, err := util.SanitizeFileName(file.Filename)
	if err != nil {
		return source.CVInput{}, fmt.Errorf("%w: cv file name is not usable", apperr.ErrInvalidSource)
	}

	return source.CVInput{
		Data:     data,
		FileName: fileName,
		MimeType: file.Header.Get("Content-Type"),
	}, nil
}
