package openai

import (
	"fmt"
	"strings"

	"coverletter-backend/internal/llm"
)

const systemPrompt = "Du bist ein Assistent für Schweizer Bewerbungsschreiben. " +
	"Antworte ausschliesslich mit JSON gemäss dem vorgegebenen Schema. " +
	"Keine zusätzlichen Felder, kein Fliesstext ausserhalb des Schemas."

var toneHints = map[string]string{
	"professional": "professionell, präzise, seriös",
	"friendly":     "professionell, freundlich, nahbar",
	"concise":      "sehr präzise und kurz, ohne Floskeln",
}

var lengthHints = map[string]string{
	"short":  "kurz",
	"medium": "mittel",
	"long":   "lang",
}

// BuildPrompt creates the chat messages for a letter generation request.
func BuildPrompt(input llm.GenerateInput) []chatMessage {
	languageHint := "Deutsch (Schweiz)"
	if input.Language == "en" {
		languageHint = "English"
	}

	var developer strings.Builder
	developer.WriteString("Du schreibst ein Schweizer Motivationsschreiben (Bewerbungsschreiben).\n")
	fmt.Fprintf(&developer, "Sprache: %s\n", languageHint)
	fmt.Fprintf(&developer, "Tonalität: %s\n", hintOr(toneHints, input.Tone, "professionell"))
	fmt.Fprintf(&developer, "Länge: %s\n", hintOr(lengthHints, input.Length, "mittel"))
	if role := strings.TrimSpace(input.TargetRole); role != "" {
		fmt.Fprintf(&developer, "Zielrolle (falls Jobtext unklar): %s\n", role)
	}

	return []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "developer", Content: developer.String()},
		{Role: "user", Content: buildUserPrompt(input.JobText, input.CVText)},
	}
}

func buildUserPrompt(jobText, cvText string) string {
	return fmt.Sprintf(
		"JOBBESCHREIBUNG (Text):\n%s\n\nLEBENSLAUF (Textauszug):\n%s\n\n"+
			"Anforderungen:\n"+
			"- Empfängerblock: 2-3 Zeilen aus dem Job-Text ((1) Firma, (2) Strasse + Nr, (3) PLZ Ort), OHNE Kommata. Nichts erfinden.\n"+
			"- Body: Beginne IMMER mit einer eigenen Anrede-Zeile als erstem Absatz.\n"+
			"  - Wenn im Jobtext eine konkrete Ansprechperson genannt ist, verwende diese korrekt: 'Sehr geehrte Frau Müller' / 'Sehr geehrter Herr Meier'.\n"+
			"  - Wenn keine Ansprechperson explizit genannt ist: 'Sehr geehrte Damen und Herren'.\n"+
			"  - Erfinde KEINE Ansprechperson und rate keine Namen.\n"+
			"- Danach: 2-4 weitere Absätze mit konkretem Fit auf Aufgaben/Anforderungen, Beispiele aus dem CV.\n"+
			"- WICHTIG: Wiederhole im Body KEINEN Empfängerblock und keine Adresszeilen.\n"+
			"- WICHTIG: Keine Signatur-/Kontaktzeilen im Body (kein Name + Adresse + Telefon + E-Mail).\n"+
			"- Keine erfundenen Fakten; wenn etwas nicht im CV steht, nicht behaupten.\n"+
			"- Wenn der Jobtext einen Namen als Kontakt für die Bewerbung nennt, fülle `contact_person` mit `full_name` und `gender` (`female|male|unknown`); sonst setze `contact_person` auf null.\n",
		jobText, cvText,
	)
}

func hintOr(hints map[string]string, key, fallback string) string {
	if hint, ok := hints[key]; ok {
		return hint
	}
	return fallback
}
