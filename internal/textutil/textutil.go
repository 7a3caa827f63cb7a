// Package textutil holds display-string helpers shared by the command
// surfaces.
package textutil

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayName turns a raw project, character, or file identifier into a
// human-readable title. Separators collapse to single spaces and the result
// is title-cased; an identifier with nothing displayable falls back to
// "Unknown".
func DisplayName(raw string) string {
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range raw {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return "Unknown"
	}
	return cases.Title(language.Und).String(title)
}

// PassLabel renders a pass with its target character for table and banner
// output, e.g. "Pass 2 (Alice)".
func PassLabel(pass int, character string) string {
	character = strings.TrimSpace(character)
	if character == "" {
		return fmt.Sprintf("Pass %d", pass)
	}
	return fmt.Sprintf("Pass %d (%s)", pass, DisplayName(character))
}
