package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/heartmarshall/morphodict-backend/internal/domain"
	"github.com/heartmarshall/morphodict-backend/internal/search"
)

// printResponse renders a search response as an aligned table, one result
// per row followed by its definitions.
func printResponse(w io.Writer, resp *search.Response) error {
	if !resp.Query.IsValid() {
		_, err := fmt.Fprintln(w, "empty query")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "query %q: %d result(s)", resp.Query.Effective, resp.Total)
	if resp.Partial {
		fmt.Fprint(tw, " (partial, deadline exceeded)")
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "#\tSCORE\tWORDFORM\tLEMMA\tPOS\tANALYSIS")
	for i, res := range resp.Results {
		text := res.Text
		if res.IsSynthetic {
			text += "*"
		}
		fmt.Fprintf(tw, "%d\t%.1f\t%s\t%s\t%s\t%s\n", i+1, res.Score, text, lemmaLabel(res.Lemma), res.POS, res.Analysis)
		for _, defs := range [][]domain.Definition{res.Definitions, res.LemmaDefinitions} {
			for _, d := range defs {
				fmt.Fprintf(tw, "\t\t  %s\t%s\t\t\n", d.Text, sourceLabel(d))
			}
		}
		for _, ev := range res.Evidence {
			fmt.Fprintf(tw, "\t\t  ~ %s\t\t\t\n", describeEvidence(ev))
		}
	}

	for _, msg := range resp.VerboseMessages {
		fmt.Fprintf(tw, "note: %s\n", msg)
	}
	return tw.Flush()
}

func lemmaLabel(link search.LemmaLink) string {
	if link.Param == domain.LemmaParamNone {
		return link.Text
	}
	return fmt.Sprintf("%s (%s=%s)", link.Text, link.Param, link.Value)
}

func sourceLabel(d domain.Definition) string {
	label := strings.Join(d.SortedSourceIDs(), ",")
	if d.IsAutoTranslation() {
		label += " [auto]"
	}
	return label
}

func describeEvidence(ev search.Evidence) string {
	d, ok := ev.Distance()
	if !ok {
		if kw, isKeyword := ev.(search.TargetLanguageKeywordMatch); isKeyword {
			return fmt.Sprintf("%s %q", ev.Kind(), kw.Keyword)
		}
		return ev.Kind().String()
	}
	return fmt.Sprintf("%s distance=%.1f", ev.Kind(), d)
}
