package ioout

import (
	"strings"

	"github.com/gnames/gnlca/pkg/nameidx"
	"github.com/gnames/gnlca/pkg/resolver"
	"github.com/gnames/gnuuid"
)

// Resolution is an output record of one resolved taxonomy path.
type Resolution struct {
	// Key is the record key in upper case.
	Key string `json:"key"`
	// ID is the matched taxon id or the unresolved id.
	ID string `json:"id"`
	// Found is false for unresolved paths.
	Found bool `json:"found"`
	// MatchedName is the reference name that produced the match.
	MatchedName string `json:"matchedName,omitempty"`
	// Token is the path token that matched.
	Token string `json:"token,omitempty"`
	// Tier is "primary" or "secondary".
	Tier string `json:"tier,omitempty"`
	// NameUUID is the UUIDv5 of MatchedName, the name-string id used by
	// Global Names services.
	NameUUID string `json:"nameUuid,omitempty"`
}

// NewResolution converts a resolver.Result to an output record.
func NewResolution(key string, r resolver.Result, unresolvedID string) Resolution {
	res := Resolution{
		Key:   strings.ToUpper(key),
		ID:    unresolvedID,
		Found: r.Found,
	}
	if !r.Found {
		return res
	}
	res.ID = r.ID
	res.MatchedName = r.Name
	res.Token = r.Token
	if r.Tier != nameidx.NoTier {
		res.Tier = r.Tier.String()
	}
	res.NameUUID = gnuuid.New(r.Name).String()
	return res
}
