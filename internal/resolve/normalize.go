// Package resolve canonicalizes raw keyword strings into stable identities
// usable across snapshots and time. Resolution is a full recomputation over
// the observed corpus, so the mapping is deterministic regardless of the
// order snapshots were ingested in.
package resolve

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// Decorative tags the platform wraps around titles. They carry no identity
// information and are stripped before matching.
var (
	bracketTag = regexp.MustCompile(`【[^】]*】|\[[^\]]*\]`)
	hashTag    = regexp.MustCompile(`^#|#$`)
	spaces     = regexp.MustCompile(`\s+`)
)

// Normalize reduces a raw keyword to its matching form: trimmed, decorative
// bracket tags stripped, full-width punctuation folded to half-width, and
// internal whitespace collapsed. CJK ideographs are untouched by the width
// fold.
func Normalize(raw string) string {
	s := width.Narrow.String(raw)
	s = bracketTag.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = hashTag.ReplaceAllString(s, "")
	s = spaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
