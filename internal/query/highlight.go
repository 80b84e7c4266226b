package query

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Highlight wraps every case-insensitive occurrence of any keyword in text with mark.
func Highlight(text string, keywords []string, mark func(string) string) string {
	if len(keywords) == 0 || mark == nil {
		return text
	}
	parts := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k == "" {
			continue
		}
		parts = append(parts, regexp.QuoteMeta(k))
	}
	if len(parts) == 0 {
		return text
	}
	re, err := regexp.Compile(`(?i)(?:` + strings.Join(parts, "|") + `)`)
	if err != nil {
		return text
	}
	return re.ReplaceAllStringFunc(norm.NFC.String(text), mark)
}
