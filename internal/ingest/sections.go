package ingest

import (
	"path/filepath"
	"regexp"
	"strings"
)

const defaultSection = "Overview"

// Canonical section name keyed by the lower-cased heading text.
var headings = map[string]string{
	"overview":                 "Overview",
	"summary":                  "Overview",
	"introduction":             "Overview",
	"what is it":               "Overview",
	"symptoms":                 "Symptoms",
	"signs and symptoms":       "Symptoms",
	"signs":                    "Symptoms",
	"causes":                   "Causes",
	"risk factors":             "Causes",
	"causes and risk factors":  "Causes",
	"diagnosis":                "Diagnosis",
	"exams and tests":          "Diagnosis",
	"tests":                    "Diagnosis",
	"treatment":                "Treatment",
	"treatments":               "Treatment",
	"treatment options":        "Treatment",
	"medications":              "Treatment",
	"therapy":                  "Treatment",
	"prevention":               "Prevention",
	"preventing":               "Prevention",
	"complications":            "Complications",
	"outlook":                  "Outlook",
	"outlook (prognosis)":      "Outlook",
	"prognosis":                "Outlook",
	"when to see a doctor":     "When to Seek Care",
	"when to contact a doctor": "When to Seek Care",
	"living with":              "Living With",
}

var (
	headingTrim = regexp.MustCompile(`^[#*\s]+|[#*:\s]+$`)
	urlLine     = regexp.MustCompile(`(?i)^(?:source|url)\s*:\s*(https?://\S+)$`)
)

// Section is one heading-delimited span of a document.
type Section struct {
	Name string
	Body string
}

// Parsed is a document split for chunking.
type Parsed struct {
	Title     string
	SourceURL string
	Sections  []Section
}

// Parse pulls the title, an optional "Source:"/"URL:" line, and the medical
// sections out of text. Text before the first recognised heading goes to
// Overview; the filename stands in for a missing title.
func Parse(path, text string) Parsed {
	out := Parsed{}
	current := Section{Name: defaultSection}
	var body strings.Builder
	sawHeading := false

	flush := func() {
		b := strings.TrimSpace(body.String())
		body.Reset()
		if b == "" {
			return
		}
		// Repeated headings fold into one section.
		for i := range out.Sections {
			if out.Sections[i].Name == current.Name {
				out.Sections[i].Body += "\n\n" + b
				return
			}
		}
		out.Sections = append(out.Sections, Section{Name: current.Name, Body: b})
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			body.WriteString("\n")
			continue
		}
		if out.SourceURL == "" {
			if m := urlLine.FindStringSubmatch(line); m != nil {
				out.SourceURL = m[1]
				continue
			}
		}
		if out.Title == "" && !sawHeading {
			leading := len(out.Sections) == 0 && strings.TrimSpace(body.String()) == ""
			if strings.HasPrefix(line, "#") || leading {
				if _, isHeading := headingName(line); !isHeading {
					out.Title = headingTrim.ReplaceAllString(line, "")
					continue
				}
			}
		}
		if name, ok := headingName(line); ok {
			flush()
			current = Section{Name: name}
			sawHeading = true
			continue
		}
		body.WriteString(line)
		body.WriteString("\n")
	}
	flush()

	if out.Title == "" {
		base := filepath.Base(path)
		out.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return out
}

func headingName(line string) (string, bool) {
	if len(line) > 60 {
		return "", false
	}
	key := strings.ToLower(headingTrim.ReplaceAllString(line, ""))
	name, ok := headings[key]
	return name, ok
}
