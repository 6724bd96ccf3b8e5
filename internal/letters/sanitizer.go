package letters

import (
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`)
	// Permissive phone matcher; only ever applied to trailing paragraphs.
	phoneRe = regexp.MustCompile(`\+?\d[\d\s().-]{6,}\d`)
	zipRe   = regexp.MustCompile(`\b\d{4,5}\b`)
)

var streetWords = []string{"strasse", "straße", "gasse", "weg", "platz", "allee", "ring"}

// IsContactParagraph reports whether a paragraph looks like a signature or
// contact block: email address, phone number, or street + postal code.
func IsContactParagraph(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	if emailRe.MatchString(t) {
		return true
	}
	lower := strings.ToLower(t)
	if strings.Contains(lower, "e-mail") || strings.Contains(lower, "email") {
		return true
	}
	if strings.Contains(lower, "telefon") || strings.Contains(lower, "phone") || strings.Contains(lower, "tel.") {
		return true
	}
	if phoneRe.MatchString(t) {
		return true
	}
	if zipRe.MatchString(t) {
		for _, w := range streetWords {
			if strings.Contains(lower, w) {
				return true
			}
		}
	}
	return false
}

// IsPersonNameLine reports whether a paragraph is a bare signature name like
// "Andri Heeb". Only consulted immediately above a stripped contact block.
func IsPersonNameLine(text string) bool {
	return looksLikePersonName(text)
}

// DuplicatesRecipientLine reports whether a paragraph repeats a line of the
// recipient block, comparing case-insensitively with punctuation trimmed.
func DuplicatesRecipientLine(text string, recipientLines []string) bool {
	// A short or ambiguous recipient block must not trigger removal.
	if len(recipientLines) < 2 {
		return false
	}
	for _, candidate := range strings.Split(text, "\n") {
		normalized := normalizeForCompare(candidate)
		if normalized == "" {
			continue
		}
		for _, line := range recipientLines {
			if normalized == normalizeForCompare(line) {
				return true
			}
		}
	}
	return false
}

// Sanitize strips trailing paragraphs that duplicate the recipient block or
// form a signature/contact block, and normalizes the recipient block itself.
// Pure and idempotent; paragraphs that are not part of a trailing run are
// never touched.
func Sanitize(letter LetterContent) LetterContent {
	out := letter
	out.RecipientBlock = NormalizeRecipientBlock(letter.RecipientBlock)

	body := make([]string, 0, len(letter.BodyParagraphs))
	for _, p := range letter.BodyParagraphs {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			body = append(body, trimmed)
		}
	}

	cleaned := stripTrailing(body, out.RecipientBlock)
	if len(cleaned) == 0 {
		// Over-cleaned: everything looked like address/contact noise. Keep
		// the original body rather than emit an empty letter.
		cleaned = body
	}
	out.BodyParagraphs = cleaned
	return out
}

func stripTrailing(body []string, recipientLines []string) []string {
	out := append([]string(nil), body...)
	for {
		removed := false

		for len(out) > 0 && DuplicatesRecipientLine(out[len(out)-1], recipientLines) {
			out = out[:len(out)-1]
			removed = true
		}

		contactStripped := false
		for len(out) > 0 && IsContactParagraph(out[len(out)-1]) {
			out = out[:len(out)-1]
			contactStripped = true
			removed = true
		}
		if contactStripped && len(out) > 0 && IsPersonNameLine(out[len(out)-1]) {
			out = out[:len(out)-1]
		}

		if !removed {
			return out
		}
	}
}

// NormalizeRecipientBlock cleans the recipient block for rendering: at most
// 3 lines (company / street / postal-code city), trailing commas stripped,
// comma-separated single-line addresses split, consecutive duplicates
// removed.
func NormalizeRecipientBlock(lines []string) []string {
	var out []string
	for _, raw := range lines {
		for _, ln := range strings.Split(raw, "\n") {
			cleaned := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(ln), ","))
			if cleaned == "" {
				continue
			}
			// Split comma-separated parts only when the line looks like it
			// carries address info.
			if strings.Contains(cleaned, ",") && strings.ContainsAny(cleaned, "0123456789") {
				for _, part := range strings.Split(cleaned, ",") {
					if p := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(part), ",")); p != "" {
						out = append(out, p)
					}
				}
				continue
			}
			out = append(out, cleaned)
		}
	}

	var deduped []string
	for _, ln := range out {
		if len(deduped) == 0 || deduped[len(deduped)-1] != ln {
			deduped = append(deduped, ln)
		}
	}

	if len(deduped) > 3 {
		deduped = deduped[:3]
	}
	return deduped
}

func normalizeForCompare(value string) string {
	v := strings.TrimSpace(value)
	v = strings.Trim(v, ".,;:!- \t")
	v = strings.Join(strings.Fields(v), " ")
	return strings.ToLower(v)
}
