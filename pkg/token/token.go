// Package token implements the embedded link token protocol: a
// machine-parseable marker of the form #GROOMDOG:<dogId> placed inside a
// calendar event's human-readable description to carry the dog linkage.
package token

import (
	"fmt"
	"regexp"
	"strings"
)

// Prefix is the literal marker that introduces a link token.
const Prefix = "#GROOMDOG:"

var (
	// extractRe matches the first link token and captures the dog ID.
	extractRe = regexp.MustCompile(`#GROOMDOG:([A-Za-z0-9_-]+)`)

	// removeRe matches every link token plus any trailing whitespace.
	removeRe = regexp.MustCompile(`#GROOMDOG:[A-Za-z0-9_-]+\s*`)
)

// Extract returns the dog ID carried by the first link token in the
// description. The second return is false when no token is present.
func Extract(description string) (string, bool) {
	m := extractRe.FindStringSubmatch(description)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Upsert places a link token for dogID into the description, replacing any
// existing token. When the description has other content the token is
// appended after a blank line; otherwise the result is the token alone.
func Upsert(description, dogID string) string {
	tok := Prefix + dogID
	rest := Remove(description)
	if strings.TrimSpace(rest) == "" {
		return tok
	}
	return fmt.Sprintf("%s\n\n%s", rest, tok)
}

// Remove strips every link token and any trailing whitespace from the
// description, trimming the result.
func Remove(description string) string {
	return strings.TrimSpace(removeRe.ReplaceAllString(description, ""))
}
