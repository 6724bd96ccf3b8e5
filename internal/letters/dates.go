package letters

import (
	"fmt"
	"time"
)

var germanMonths = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

// FormatLetterDate renders the letter head date in the letter language:
// "2. März 2026" for German, "March 02, 2026" for English.
func FormatLetterDate(today time.Time, language Language) string {
	if language == LanguageEN {
		return today.Format("January 02, 2006")
	}
	return fmt.Sprintf("%d. %s %d", today.Day(), germanMonths[today.Month()-1], today.Year())
}
