// Package morph provides the morphological oracle consumed by search: analysis
// of surface text into tagged analyses and generation of surface text from them.
package morph

import "github.com/heartmarshall/morphodict-backend/internal/domain"

// Oracle analyzes and generates wordforms. Implementations must be safe for
// concurrent use; search never mutates them.
type Oracle interface {
	// AnalyzeRelaxed returns analyses of text, tolerating spelling variation
	// such as missing diacritics.
	AnalyzeRelaxed(text string) []domain.Analysis
	// AnalyzeStrict returns analyses of text as normatively spelled.
	AnalyzeStrict(text string) []domain.Analysis
	// GenerateStrict returns the normative surface forms realizing a, in a
	// stable order.
	GenerateStrict(a domain.Analysis) []string
}
