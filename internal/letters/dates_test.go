package letters

import (
	"testing"
	"time"
)

func TestFormatLetterDate(t *testing.T) {
	day := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

	if got := FormatLetterDate(day, LanguageDE); got != "2. März 2026" {
		t.Fatalf("de date = %q", got)
	}
	if got := FormatLetterDate(day, LanguageEN); got != "March 02, 2026" {
		t.Fatalf("en date = %q", got)
	}
}
