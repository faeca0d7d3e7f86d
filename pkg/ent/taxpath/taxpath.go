// Package taxpath provides TaxonomyPath, an ordered chain of rank names
// describing one lineage, and the normalization rules used to compare
// name tokens.
package taxpath

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Path is a taxonomy lineage ordered from root (index 0) to leaf
// (last index). Tokens keep their original spelling; comparison happens
// on normalized forms.
type Path []string

// qualifierRe matches NCBI-style disambiguation qualifiers such as
// "Bacteria <bacteria>" or "Morus <angiosperm>".
var qualifierRe = regexp.MustCompile(`\s*<[^<>]*>`)

// Parse splits s by delim into a root-to-leaf Path. Empty tokens are
// dropped, so SILVA paths with a trailing delimiter ("Bacteria;Firmicutes;")
// do not produce an empty leaf.
func Parse(s, delim string) Path {
	if delim == "" {
		delim = ";"
	}
	parts := strings.Split(s, delim)
	res := make(Path, 0, len(parts))
	for _, v := range parts {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		res = append(res, v)
	}
	return res
}

// Leaf returns the most specific token, or an empty string for an empty
// path.
func (p Path) Leaf() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Reversed returns a copy of the path ordered from leaf to root.
func (p Path) Reversed() Path {
	res := make(Path, len(p))
	for i, v := range p {
		res[len(p)-1-i] = v
	}
	return res
}

// String joins the path with ";".
func (p Path) String() string {
	return strings.Join(p, ";")
}

// Normalize converts a name token to its comparison form: Unicode NFC,
// trimmed, lower case, inner whitespace collapsed to single spaces.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// StripQualifiers removes angle-bracket qualifiers from a name.
func StripQualifiers(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	return strings.TrimSpace(qualifierRe.ReplaceAllString(s, ""))
}
