package util

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	spaceRun   = regexp.MustCompile(` +`)
	newlineRun = regexp.MustCompile(`\n{3,}`)

	// Corpus rows were exported with JSON escapes left in as literal text.
	passageEscapes = strings.NewReplacer(
		`\u2022`, "•",
		`\n`, " ",
		`\u00c2`, "",
		`\u00a0`, " ",
	)
	responseEscapes = strings.NewReplacer(
		`\u2022`, "•",
		`\u00c2`, "",
		`\u00a0`, " ",
		`\n`, "\n",
		`\t`, "\t",
	)
)

// CleanMedicalText normalizes a corpus passage for display. Escaped newlines
// become spaces so the passage reads as one paragraph.
func CleanMedicalText(text string) string {
	if text == "" {
		return ""
	}
	text = replaceUntilStable(passageEscapes, text)
	text = spaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// CleanResponseForFrontend normalizes generated answer text. It is idempotent.
func CleanResponseForFrontend(text string) string {
	if text == "" {
		return ""
	}
	text = replaceUntilStable(responseEscapes, text)
	text = spaceRun.ReplaceAllString(text, " ")
	text = newlineRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// replaceUntilStable unwraps escapes nested to any depth. Every replacement
// shortens the string, so the loop ends.
func replaceUntilStable(r *strings.Replacer, s string) string {
	for {
		next := r.Replace(s)
		if next == s {
			return s
		}
		s = next
	}
}

// TruncateRunes cuts s to at most n characters.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func RuneLen(s string) int {
	return len([]rune(s))
}

// TitleCase upper-cases the first letter of every word. A Caser holds state,
// so one is built per call.
func TitleCase(s string) string {
	return cases.Title(language.English).String(s)
}
