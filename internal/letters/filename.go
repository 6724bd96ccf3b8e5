package letters

import (
	"fmt"
	"strings"

	"coverletter-backend/internal/shared/util"
)

// CompanyForFilename reduces a company value to a bare company name. The
// model sometimes returns the company with address parts appended
// ("ACME AG, Musterstrasse 1"); the filename only wants "ACME AG". Falls back
// to the recipient block's first line.
func CompanyForFilename(company string, recipientBlock []string) string {
	normalize := func(value string) string {
		lines := strings.Split(strings.TrimSpace(value), "\n")
		first := ""
		if len(lines) > 0 {
			first = strings.TrimSpace(lines[0])
		}
		if idx := strings.Index(first, ","); idx >= 0 {
			first = strings.TrimSpace(first[:idx])
		}
		return first
	}

	c := normalize(company)
	if c != "" && !strings.EqualFold(c, "firma") {
		return c
	}
	if len(recipientBlock) > 0 {
		if r := normalize(recipientBlock[0]); r != "" {
			return r
		}
	}
	if c != "" {
		return c
	}
	if t := strings.TrimSpace(company); t != "" {
		return t
	}
	return "Firma"
}

// AttachmentFilename builds the download filename for a rendered letter.
func AttachmentFilename(company string, recipientBlock []string, senderName string) string {
	companySlug := util.ASCIISlug(CompanyForFilename(company, recipientBlock))
	senderSlug := util.ASCIISlug(senderName)
	return fmt.Sprintf("Motivationsschreiben_%s_%s.docx", companySlug, senderSlug)
}
