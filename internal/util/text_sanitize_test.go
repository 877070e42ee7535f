package util

import "testing"

func TestSanitizeText(t *testing.T) {
	cases := map[string]string{
		"ab\x00cd\x01\x02\n\txy":        "abcd\n\txy",
		"line one\r\nline two\rthree":   "line one\nline two\nthree",
		"hyper\u00adtension\ufffd":      "hypertension",
		"Symptoms\n\n\n\n\nFever":       "Symptoms\n\nFever",
		"\ufeff  Overview\u00a0text \n": "Overview text",
	}
	for in, want := range cases {
		if got := SanitizeText(in); got != want {
			t.Fatalf("SanitizeText(%q) = %q, want %q", in, got, want)
		}
	}
}
