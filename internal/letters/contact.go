package letters

import (
	"regexp"
	"strings"
)

var (
	deHonorificNameRe = regexp.MustCompile(`\b(Frau|Herrn?|Herr)\s+([A-ZÄÖÜ][A-Za-zÄÖÜäöüß-]+(?:\s+[A-ZÄÖÜ][A-Za-zÄÖÜäöüß-]+){0,3})\b`)
	enHonorificNameRe = regexp.MustCompile(`\b(Mr|Ms|Mrs|Dr)\.?\s+([A-Z][A-Za-z-]+(?:\s+[A-Z][A-Za-z-]+){0,2})\b`)
)

// contactHints are line-level markers that a job-posting line talks about the
// application contact. Detection is conservative: a titled name only counts
// when it appears on such a line.
var contactHints = []string{
	"kontakt", "ansprech", "kontaktperson", "bewerbung", "bewerbungsunterlagen",
	"fragen", "auskunft", "recruit", "hiring", "talent", "hr",
	"freut sich", "freue mich", "auf deine bewerbung", "auf ihre bewerbung",
}

// DetectContact finds an explicit application contact in the job text.
// Returns honorific ("frau"/"herr" for German, "Mr"/"Ms"/... for English)
// and the full name; both empty when nothing reliable is found.
func DetectContact(jobText string, language Language) (string, string) {
	for _, raw := range strings.Split(jobText, "\n") {
		line := stripMarkdownPrefix(raw)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		hinted := false
		for _, h := range contactHints {
			if strings.Contains(lower, h) {
				hinted = true
				break
			}
		}
		if !hinted {
			continue
		}

		if language == LanguageDE {
			if m := deHonorificNameRe.FindStringSubmatch(line); m != nil {
				honorific := "frau"
				if strings.HasPrefix(strings.ToLower(m[1]), "herr") {
					honorific = "herr"
				}
				return honorific, strings.TrimSpace(m[2])
			}
		} else {
			if m := enHonorificNameRe.FindStringSubmatch(line); m != nil {
				return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
			}
		}

		// "Kontakt: Max Muster" without a title still yields a usable name.
		if idx := strings.Index(line, ":"); idx >= 0 {
			tail := strings.TrimSpace(line[idx+1:])
			if looksLikePersonName(tail) {
				return "", tail
			}
		}
	}
	return "", ""
}

// VerifiedContact accepts a model-reported contact person only when the
// surname (or full name) actually occurs in the job text, falling back to
// pattern detection. Guards against hallucinated names.
func VerifiedContact(jobText string, language Language, contact *ContactPerson) (string, string) {
	if contact != nil {
		fullName := strings.TrimSpace(contact.FullName)
		surname := Surname(fullName)
		if fullName != "" && surname != "" {
			normalizedJob := strings.ToLower(jobText)
			if strings.Contains(normalizedJob, strings.ToLower(surname)) ||
				strings.Contains(normalizedJob, strings.ToLower(fullName)) {
				return honorificFromGender(language, contact.Gender), fullName
			}
		}
	}
	return DetectContact(jobText, language)
}

// Salutation builds the greeting line for the detected contact, or the
// language default when none was found.
func Salutation(language Language, honorific, name string) string {
	if language == LanguageDE {
		switch {
		case honorific == "frau" && name != "":
			return "Sehr geehrte Frau " + Surname(name)
		case honorific == "herr" && name != "":
			return "Sehr geehrter Herr " + Surname(name)
		case name != "":
			return "Guten Tag " + name
		default:
			return "Sehr geehrte Damen und Herren"
		}
	}
	switch {
	case honorific != "" && name != "":
		return "Dear " + honorific + " " + Surname(name)
	case name != "":
		return "Hello " + name
	default:
		return "Dear Sir or Madam"
	}
}

// DefaultClosing returns the conventional sign-off for the language.
func DefaultClosing(language Language) string {
	if language == LanguageEN {
		return "Kind regards"
	}
	return "Freundliche Grüsse"
}

// Surname extracts the last space-separated part of a full name.
func Surname(name string) string {
	parts := strings.Fields(strings.TrimSpace(name))
	if len(parts) == 0 {
		return strings.TrimSpace(name)
	}
	return parts[len(parts)-1]
}

func honorificFromGender(language Language, gender ContactGender) string {
	if language == LanguageDE {
		switch gender {
		case GenderFemale:
			return "frau"
		case GenderMale:
			return "herr"
		default:
			return ""
		}
	}
	switch gender {
	case GenderFemale:
		return "Ms"
	case GenderMale:
		return "Mr"
	default:
		return ""
	}
}

func looksLikePersonName(value string) bool {
	t := strings.TrimSpace(value)
	if t == "" || len(t) > 60 {
		return false
	}
	if strings.ContainsAny(t, "@,;:()[]{}<>/\\") {
		return false
	}
	parts := strings.Fields(t)
	if len(parts) < 2 || len(parts) > 4 {
		return false
	}
	for _, p := range parts {
		r := []rune(p)
		if len(r) == 0 || !isUpperLetter(r[0]) {
			return false
		}
	}
	return true
}

func isUpperLetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || strings.ContainsRune("ÄÖÜ", r)
}

func stripMarkdownPrefix(line string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#*-•> "))
}
