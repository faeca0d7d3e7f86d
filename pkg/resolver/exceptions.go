package resolver

import (
	"strings"

	"github.com/gnames/gnlca/pkg/ent/taxpath"
)

// DefaultExceptions are generic words that never denote a taxon.
var DefaultExceptions = []string{
	"environmental", "uncultured", "unidentified", "metagenome",
}

// ExceptionSet holds words that disqualify a rank token from lookup.
type ExceptionSet struct {
	words   map[string]struct{}
	phrases []string
}

// NewExceptionSet creates an ExceptionSet. Single words are matched
// against the words of a token, entries with spaces are matched as
// phrases inside the token.
func NewExceptionSet(tokens []string) ExceptionSet {
	res := ExceptionSet{words: make(map[string]struct{})}
	for _, v := range tokens {
		v = taxpath.Normalize(v)
		switch {
		case v == "":
			continue
		case strings.Contains(v, " "):
			res.phrases = append(res.phrases, v)
		default:
			res.words[v] = struct{}{}
		}
	}
	return res
}

// Len returns the number of exception entries.
func (e ExceptionSet) Len() int {
	return len(e.words) + len(e.phrases)
}

// Match reports if a token contains any exception word or phrase. The
// token is normalized first.
func (e ExceptionSet) Match(token string) bool {
	return e.match(taxpath.Normalize(token))
}

func (e ExceptionSet) match(norm string) bool {
	for _, w := range strings.Fields(norm) {
		if _, ok := e.words[w]; ok {
			return true
		}
	}
	for _, p := range e.phrases {
		if strings.Contains(norm, p) {
			return true
		}
	}
	return false
}
