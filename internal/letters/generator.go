package letters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"coverletter-backend/internal/llm"
	"coverletter-backend/internal/shared/apperr"
	"coverletter-backend/internal/shared/metrics"
	"coverletter-backend/internal/shared/telemetry"
)

// tokenBudgets maps requested length to the model output budget. On
// truncation the budget is doubled for a single retry.
var tokenBudgets = map[Length]int{
	LengthShort:  800,
	LengthMedium: 1200,
	LengthLong:   1600,
}

// Generator turns resolved job and CV text into a finished LetterContent.
type Generator struct {
	client     llm.Client
	senderName string
	now        func() time.Time
}

// NewGenerator wires a generator against an LLM client. senderName signs the
// letter and feeds the attachment filename.
func NewGenerator(client llm.Client, senderName string) *Generator {
	return &Generator{client: client, senderName: senderName, now: time.Now}
}

// Generate runs one structured generation, retrying exactly once with a
// doubled token budget when the model output was truncated. Any other
// failure is terminal.
func (g *Generator) Generate(ctx context.Context, jobText, cvText string, opts Options) (LetterContent, error) {
	budget, ok := tokenBudgets[opts.Length]
	if !ok {
		budget = tokenBudgets[LengthMedium]
	}

	raw, err := g.generateOnce(ctx, jobText, cvText, opts, budget)
	if errors.Is(err, llm.ErrTruncated) {
		metrics.IncGenerationRetried()
		telemetry.Warn("letter.generate.retry", map[string]any{
			"reason":     "truncated",
			"nextBudget": budget * 2,
		})
		raw, err = g.generateOnce(ctx, jobText, cvText, opts, budget*2)
	}
	if err != nil {
		if errors.Is(err, llm.ErrTimeout) {
			return LetterContent{}, fmt.Errorf("%w: %v", apperr.ErrUpstreamTimeout, err)
		}
		return LetterContent{}, fmt.Errorf("%w: %v", apperr.ErrGeneration, err)
	}

	payload, err := decodeLetterPayload(raw)
	if err != nil {
		return LetterContent{}, fmt.Errorf("%w: %v", apperr.ErrGeneration, err)
	}

	return g.assemble(jobText, opts, payload), nil
}

func (g *Generator) generateOnce(ctx context.Context, jobText, cvText string, opts Options, budget int) (json.RawMessage, error) {
	return g.client.GenerateLetter(ctx, llm.GenerateInput{
		JobText:         jobText,
		CVText:          cvText,
		Language:        string(opts.Language),
		Tone:            string(opts.Tone),
		Length:          string(opts.Length),
		TargetRole:      opts.TargetRole,
		MaxOutputTokens: budget,
		SchemaName:      letterSchemaName,
		Schema:          LetterSchema(),
	})
}

// decodeLetterPayload validates the model output against the letter schema
// before unmarshalling, so shape violations fail with a precise message
// instead of a half-populated struct.
func decodeLetterPayload(raw json.RawMessage) (letterPayload, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(LetterSchema()),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return letterPayload{}, fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return letterPayload{}, fmt.Errorf("model output violates letter schema: %s", strings.Join(details, "; "))
	}

	var payload letterPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return letterPayload{}, fmt.Errorf("decode letter payload: %w", err)
	}
	return payload, nil
}

// assemble enriches the raw model payload into the final letter: verified
// salutation, normalized and verified recipient block, sanitized body,
// localized date and configured signature.
func (g *Generator) assemble(jobText string, opts Options, payload letterPayload) LetterContent {
	letter := LetterContent{
		RecipientBlock: strings.Split(payload.RecipientBlock, "\n"),
		RoleTitle:      strings.TrimSpace(payload.RoleTitle),
		Company:        strings.TrimSpace(payload.Company),
		Subject:        strings.TrimSpace(payload.Subject),
		BodyParagraphs: payload.BodyParagraphs,
		Closing:        strings.TrimSpace(payload.Closing),
		SignatureName:  g.senderName,
	}

	letter = Sanitize(letter)
	letter.RecipientBlock = verifyRecipientBlock(letter.RecipientBlock, jobText)
	letter.BodyParagraphs = stripLeadingSalutation(letter.BodyParagraphs)

	honorific, name := VerifiedContact(jobText, opts.Language, payload.ContactPerson)
	letter.Salutation = Salutation(opts.Language, honorific, name)
	if letter.Closing == "" {
		letter.Closing = DefaultClosing(opts.Language)
	}
	letter.Date = FormatLetterDate(g.now(), opts.Language)
	return letter
}

var salutationPrefixes = []string{
	"sehr geehrte", "guten tag", "liebe ", "lieber ",
	"dear ", "hello ", "hi ",
}

// stripLeadingSalutation drops a greeting the model put into the body even
// though the template carries its own salutation line.
func stripLeadingSalutation(body []string) []string {
	if len(body) == 0 {
		return body
	}
	first := strings.ToLower(strings.TrimSpace(body[0]))
	if len(first) > 80 {
		return body
	}
	for _, p := range salutationPrefixes {
		if strings.HasPrefix(first, p) {
			return body[1:]
		}
	}
	return body
}

var postalCodeRe = regexp.MustCompile(`\b\d{4,5}\b`)

// verifyRecipientBlock drops address lines the model invented: every line
// after the company must occur in the job text (loosely normalized), and a
// postal code must match digit-for-digit. The company line is always kept.
func verifyRecipientBlock(lines []string, jobText string) []string {
	if len(lines) <= 1 {
		return lines
	}
	normalizedJob := normalizeLoose(jobText)

	out := make([]string, 1, len(lines))
	out[0] = lines[0]
	for _, line := range lines[1:] {
		if zip := postalCodeRe.FindString(line); zip != "" {
			if !strings.Contains(jobText, zip) {
				telemetry.Warn("letter.recipient.dropped", map[string]any{"line": line})
				continue
			}
			out = append(out, line)
			continue
		}
		if !strings.Contains(normalizedJob, normalizeLoose(line)) {
			telemetry.Warn("letter.recipient.dropped", map[string]any{"line": line})
			continue
		}
		out = append(out, line)
	}
	return out
}

var looseReplacer = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
	"strasse", "str", "straße", "str",
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeLoose folds umlauts and street spellings so "Musterstraße 1"
// matches "Musterstrasse 1" and "Musterstr. 1" in scraped job text.
func normalizeLoose(value string) string {
	v := strings.ToLower(value)
	v = looseReplacer.Replace(v)
	return nonAlnumRe.ReplaceAllString(v, "")
}
