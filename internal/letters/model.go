package letters

import (
	"encoding/json"
	"strings"
)

// Language selects the letter language.
type Language string

// Tone selects the letter register.
type Tone string

// Length selects the output size budget.
type Length string

const (
	LanguageDE Language = "de"
	LanguageEN Language = "en"

	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneConcise      Tone = "concise"

	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// ParseLanguage validates a form value, defaulting to German.
func ParseLanguage(raw string) (Language, bool) {
	switch strings.TrimSpace(raw) {
	case "", "de":
		return LanguageDE, true
	case "en":
		return LanguageEN, true
	default:
		return "", false
	}
}

// ParseTone validates a form value, defaulting to professional.
func ParseTone(raw string) (Tone, bool) {
	switch strings.TrimSpace(raw) {
	case "", "professional":
		return ToneProfessional, true
	case "friendly":
		return ToneFriendly, true
	case "concise":
		return ToneConcise, true
	default:
		return "", false
	}
}

// ParseLength validates a form value, defaulting to medium.
func ParseLength(raw string) (Length, bool) {
	switch strings.TrimSpace(raw) {
	case "", "medium":
		return LengthMedium, true
	case "short":
		return LengthShort, true
	case "long":
		return LengthLong, true
	default:
		return "", false
	}
}

// Options carries the user-selected generation knobs.
type Options struct {
	Language   Language
	Tone       Tone
	Length     Length
	TargetRole string
}

// ContactGender mirrors the model-reported gender of a contact person.
type ContactGender string

const (
	GenderFemale  ContactGender = "female"
	GenderMale    ContactGender = "male"
	GenderUnknown ContactGender = "unknown"
)

// ContactPerson is a contact named in the job posting, as reported by the
// model. It is only trusted after verification against the job text.
type ContactPerson struct {
	FullName string        `json:"full_name"`
	Gender   ContactGender `json:"gender"`
}

// LetterContent is the structured letter handed to the renderer.
type LetterContent struct {
	Date           string
	RecipientBlock []string
	RoleTitle      string
	Company        string
	Subject        string
	Salutation     string
	BodyParagraphs []string
	Closing        string
	SignatureName  string
}

// letterPayload is the wire shape the LLM must produce.
type letterPayload struct {
	Company        string         `json:"company"`
	RoleTitle      string         `json:"role_title"`
	RecipientBlock string         `json:"recipient_block"`
	Subject        string         `json:"subject"`
	BodyParagraphs []string       `json:"body_paragraphs"`
	Closing        string         `json:"closing"`
	ContactPerson  *ContactPerson `json:"contact_person"`
}

const letterSchemaName = "letter_content"

// letterSchema is the strict JSON schema enforced on the structured output.
// Every property is required and additionalProperties is false, as the
// OpenAI structured-outputs API demands.
const letterSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["company", "role_title", "recipient_block", "subject", "body_paragraphs", "closing", "contact_person"],
  "properties": {
    "company": {"type": "string", "minLength": 1},
    "role_title": {"type": "string", "minLength": 1},
    "recipient_block": {"type": "string", "minLength": 1},
    "subject": {"type": "string", "minLength": 1},
    "body_paragraphs": {
      "type": "array",
      "minItems": 2,
      "items": {"type": "string"}
    },
    "closing": {"type": "string"},
    "contact_person": {
      "anyOf": [
        {
          "type": "object",
          "additionalProperties": false,
          "required": ["full_name", "gender"],
          "properties": {
            "full_name": {"type": "string"},
            "gender": {"type": "string", "enum": ["female", "male", "unknown"]}
          }
        },
        {"type": "null"}
      ]
    }
  }
}`

// LetterSchema exposes the raw schema for the structured-generation request.
func LetterSchema() json.RawMessage {
	return json.RawMessage(letterSchema)
}
