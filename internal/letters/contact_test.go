package letters

import "testing"

const jobTextWithContact = `# Software Engineer (m/w/d)

Acme AG entwickelt Software für die Logistikbranche.

Bei Fragen zur Bewerbung gibt Ihnen Frau Sandra Keller gerne Auskunft.
`

func TestDetectContactGerman(t *testing.T) {
	honorific, name := DetectContact(jobTextWithContact, LanguageDE)
	if honorific != "frau" || name != "Sandra Keller" {
		t.Fatalf("DetectContact = (%q, %q), want (frau, Sandra Keller)", honorific, name)
	}
}

func TestDetectContactIgnoresUntitledNames(t *testing.T) {
	job := "Unser Team besteht aus Peter Meier und vielen anderen.\n"
	honorific, name := DetectContact(job, LanguageDE)
	if honorific != "" || name != "" {
		t.Fatalf("DetectContact = (%q, %q), want empty", honorific, name)
	}
}

func TestDetectContactEnglish(t *testing.T) {
	job := "For questions about your application contact Mr James Smith from our hiring team.\n"
	honorific, name := DetectContact(job, LanguageEN)
	if honorific != "Mr" || name != "James Smith" {
		t.Fatalf("DetectContact = (%q, %q), want (Mr, James Smith)", honorific, name)
	}
}

func TestVerifiedContactRejectsHallucinatedName(t *testing.T) {
	contact := &ContactPerson{FullName: "Hans Niemand", Gender: GenderMale}
	honorific, name := VerifiedContact(jobTextWithContact, LanguageDE, contact)
	// The invented name is not in the job text; detection finds the real one.
	if honorific != "frau" || name != "Sandra Keller" {
		t.Fatalf("VerifiedContact = (%q, %q), want (frau, Sandra Keller)", honorific, name)
	}
}

func TestVerifiedContactAcceptsNameFromJobText(t *testing.T) {
	contact := &ContactPerson{FullName: "Sandra Keller", Gender: GenderFemale}
	honorific, name := VerifiedContact(jobTextWithContact, LanguageDE, contact)
	if honorific != "frau" || name != "Sandra Keller" {
		t.Fatalf("VerifiedContact = (%q, %q), want (frau, Sandra Keller)", honorific, name)
	}
}

func TestSalutation(t *testing.T) {
	cases := []struct {
		name      string
		language  Language
		honorific string
		person    string
		want      string
	}{
		{"german female", LanguageDE, "frau", "Sandra Keller", "Sehr geehrte Frau Keller"},
		{"german male", LanguageDE, "herr", "Peter Meier", "Sehr geehrter Herr Meier"},
		{"german no title", LanguageDE, "", "Sandra Keller", "Guten Tag Sandra Keller"},
		{"german default", LanguageDE, "", "", "Sehr geehrte Damen und Herren"},
		{"english titled", LanguageEN, "Ms", "Jane Doe", "Dear Ms Doe"},
		{"english no title", LanguageEN, "", "Jane Doe", "Hello Jane Doe"},
		{"english default", LanguageEN, "", "", "Dear Sir or Madam"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Salutation(tc.language, tc.honorific, tc.person); got != tc.want {
				t.Fatalf("Salutation = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDefaultClosing(t *testing.T) {
	if got := DefaultClosing(LanguageDE); got != "Freundliche Grüsse" {
		t.Fatalf("DefaultClosing(de) = %q", got)
	}
	if got := DefaultClosing(LanguageEN); got != "Kind regards" {
		t.Fatalf("DefaultClosing(en) = %q", got)
	}
}
