package morph

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/heartmarshall/morphodict-backend/internal/domain"
	"github.com/heartmarshall/morphodict-backend/pkg/datafile"
)

// variantMarker in the third TSV column marks a non-normative spelling: it is
// analyzed by the relaxed analyzer only and never generated.
const variantMarker = "variant"

// Entry is one surface/analysis pair of an analyzer table.
type Entry struct {
	Surface  string
	Analysis domain.Analysis
	Variant  bool
}

// Table is an in-memory Oracle backed by a precomputed surface/analysis table
// (for instance a dump of an FST's paradigm expansion). It is immutable after
// construction and safe for concurrent use.
type Table struct {
	strict    map[string][]domain.Analysis
	variants  map[string][]domain.Analysis
	folded    map[string][]domain.Analysis
	generated map[string][]string
}

var _ Oracle = (*Table)(nil)

// NewTable builds a Table from entries. Enumeration order of analyses and of
// generated surfaces follows entry order.
func NewTable(entries []Entry) *Table {
	t := &Table{
		strict:    make(map[string][]domain.Analysis),
		variants:  make(map[string][]domain.Analysis),
		folded:    make(map[string][]domain.Analysis),
		generated: make(map[string][]string),
	}

	for _, e := range entries {
		surface := canonicalSurface(e.Surface)
		if surface == "" || e.Analysis.IsZero() {
			continue
		}

		if e.Variant {
			t.variants[surface] = appendAnalysis(t.variants[surface], e.Analysis)
			continue
		}

		t.strict[surface] = appendAnalysis(t.strict[surface], e.Analysis)
		fold := domain.FoldForSearch(surface)
		t.folded[fold] = appendAnalysis(t.folded[fold], e.Analysis)

		key := e.Analysis.Smushed()
		if !containsString(t.generated[key], surface) {
			t.generated[key] = append(t.generated[key], surface)
		}
	}

	return t
}

// LoadTable reads a table from path; ".gz" and ".zst" files are decompressed.
func LoadTable(path string) (*Table, error) {
	rc, err := datafile.Open(path)
	if err != nil {
		return nil, fmt.Errorf("morph: %w", err)
	}
	defer rc.Close()

	t, err := ReadTable(rc)
	if err != nil {
		return nil, fmt.Errorf("morph: %s: %w", path, err)
	}
	return t, nil
}

// ReadTable parses tab-separated lines "surface<TAB>analysis[<TAB>variant]".
// Blank lines and lines starting with '#' are skipped.
func ReadTable(r io.Reader) (*Table, error) {
	var entries []Entry

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cols := strings.Split(line, "\t")
		if len(cols) < 2 || len(cols) > 3 {
			return nil, fmt.Errorf("line %d: expected 2 or 3 columns, got %d", lineNo, len(cols))
		}

		a, ok := domain.ParseAnalysis(cols[1])
		if !ok {
			return nil, fmt.Errorf("line %d: invalid analysis %q", lineNo, cols[1])
		}

		e := Entry{Surface: cols[0], Analysis: a}
		if len(cols) == 3 {
			switch strings.TrimSpace(cols[2]) {
			case variantMarker:
				e.Variant = true
			case "":
			default:
				return nil, fmt.Errorf("line %d: unknown flag %q", lineNo, cols[2])
			}
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	return NewTable(entries), nil
}

// AnalyzeStrict implements Oracle.
func (t *Table) AnalyzeStrict(text string) []domain.Analysis {
	return clone(t.strict[canonicalSurface(text)])
}

// AnalyzeRelaxed implements Oracle. It unions exact normative analyses,
// registered spelling variants and diacritic-insensitive matches.
func (t *Table) AnalyzeRelaxed(text string) []domain.Analysis {
	surface := canonicalSurface(text)
	if surface == "" {
		return nil
	}

	var out []domain.Analysis
	out = append(out, t.strict[surface]...)
	out = append(out, t.variants[surface]...)
	out = append(out, t.folded[domain.FoldForSearch(surface)]...)
	return domain.UniqueAnalyses(out)
}

// GenerateStrict implements Oracle.
func (t *Table) GenerateStrict(a domain.Analysis) []string {
	return append([]string(nil), t.generated[a.Smushed()]...)
}

// Size returns the number of distinct normative surfaces.
func (t *Table) Size() int { return len(t.strict) }

func canonicalSurface(s string) string {
	return domain.ToCircumflex(domain.NormalizeText(s))
}

func appendAnalysis(list []domain.Analysis, a domain.Analysis) []domain.Analysis {
	for _, existing := range list {
		if existing.Equal(a) {
			return list
		}
	}
	return append(list, a)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func clone(in []domain.Analysis) []domain.Analysis {
	if len(in) == 0 {
		return nil
	}
	return append([]domain.Analysis(nil), in...)
}
