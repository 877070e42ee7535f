package util

import "strings"

var extractionNoise = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\u00ad", "", // soft hyphen
	"\ufeff", "", // byte order mark
	"\ufffd", "", // replacement character
	"\u00a0", " ",
)

// SanitizeText prepares extracted document text for storage: it drops NUL and
// other control bytes that Postgres text columns reject, strips common PDF
// extraction noise, normalizes line endings and collapses runs of blank lines.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	s = extractionNoise.Replace(s)

	r := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\t' {
			r = append(r, ch)
			continue
		}
		if ch < 0x20 || ch == 0x7f {
			continue
		}
		r = append(r, ch)
	}
	return strings.TrimSpace(newlineRun.ReplaceAllString(string(r), "\n\n"))
}
