package jobs

import "strings"

// maxRoleLineLen bounds a plain-text line accepted as a role guess.
const maxRoleLineLen = 120

// GuessRole extracts a likely role title from scraped job markdown: the
// first heading, or the first short non-decorative line. Empty when the page
// offers nothing usable.
func GuessRole(markdown string) string {
	fallback := ""
	for _, raw := range strings.Split(markdown, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			title := strings.TrimSpace(strings.TrimLeft(line, "# "))
			if title != "" {
				return title
			}
			continue
		}
		if fallback == "" && len(line) <= maxRoleLineLen && !strings.HasPrefix(line, "[") && !strings.HasPrefix(line, "!") {
			fallback = line
		}
	}
	return fallback
}
