package stem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "plural verb", input: "catches", want: []string{"catch"}},
		{name: "phrase", input: "s/he sleeps", want: []string{"s", "he", "sleep"}},
		{name: "dedupes stems", input: "dog dogs Dog", want: []string{"dog"}},
		{name: "punctuation only", input: "--- !!", want: []string{}},
		{name: "empty", input: "", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Keywords(tt.input))
		})
	}
}
