package search

import (
	"strings"

	"github.com/heartmarshall/morphodict-backend/internal/domain"
)

// directiveSeparator splits a directive token into key and value: "verbose:true".
const directiveSeparator = ":"

// DirectiveKind is the closed set of directive value grammars.
type DirectiveKind int

const (
	// DirectiveBool accepts the truthy and falsy vocabularies below.
	DirectiveBool DirectiveKind = iota + 1
	// DirectiveEnum resolves a numeric code first, then a case-insensitive name.
	DirectiveEnum
)

// Directives are the control settings embedded in a query. Nil means "not set".
type Directives struct {
	Verbose *bool
	Auto    *bool
	Cvd     *domain.CvdSearchType
}

type directive struct {
	kind  DirectiveKind
	apply func(d *Directives, value string)
}

// directiveTable lists every recognized directive. A token whose key is in
// this table is always consumed, whether or not its value resolves.
var directiveTable = map[string]directive{
	"verbose": {kind: DirectiveBool, apply: func(d *Directives, v string) { d.Verbose = parseBool(v) }},
	"auto":    {kind: DirectiveBool, apply: func(d *Directives, v string) { d.Auto = parseBool(v) }},
	"cvd": {kind: DirectiveEnum, apply: func(d *Directives, v string) {
		if t, ok := domain.ParseCvdSearchType(v); ok {
			d.Cvd = &t
		}
	}},
}

var (
	truthy = map[string]bool{"1": true, "t": true, "true": true, "y": true, "yes": true, "on": true}
	falsy  = map[string]bool{"0": true, "f": true, "false": true, "n": true, "no": true, "off": true}
)

// parseBool returns nil for values outside both vocabularies.
func parseBool(v string) *bool {
	switch {
	case truthy[v]:
		b := true
		return &b
	case falsy[v]:
		b := false
		return &b
	default:
		return nil
	}
}

// ParseFlag interprets v with the boolean directive vocabulary, ignoring case.
func ParseFlag(v string) (value, ok bool) {
	b := parseBool(strings.ToLower(strings.TrimSpace(v)))
	if b == nil {
		return false, false
	}
	return *b, true
}

// DirectiveNames returns the recognized directive keys and their kinds.
func DirectiveNames() map[string]DirectiveKind {
	out := make(map[string]DirectiveKind, len(directiveTable))
	for name, d := range directiveTable {
		out[name] = d.kind
	}
	return out
}

// Query is a parsed user query.
type Query struct {
	// Raw is the input exactly as received.
	Raw string
	// Terms are the normalized tokens left after directive extraction.
	Terms      []string
	Directives Directives
	// Effective is Terms joined by single spaces; strategies search for it.
	Effective string
}

// IsValid reports whether anything is left to search for.
func (q Query) IsValid() bool { return q.Effective != "" }

// Verbose reports whether the verbose directive was set to true.
func (q Query) Verbose() bool { return q.Directives.Verbose != nil && *q.Directives.Verbose }

// ParseQuery normalizes raw and extracts directives. Tokens are scanned once,
// left to right, so parsing Effective again yields the same Effective.
func ParseQuery(raw string) Query {
	q := Query{Raw: raw}

	normalized := domain.ToCircumflex(domain.NormalizeText(raw))
	for _, token := range strings.Fields(normalized) {
		if key, value, ok := strings.Cut(token, directiveSeparator); ok {
			if d, known := directiveTable[key]; known {
				d.apply(&q.Directives, value)
				continue
			}
		}
		q.Terms = append(q.Terms, token)
	}

	q.Effective = strings.Join(q.Terms, " ")
	return q
}
