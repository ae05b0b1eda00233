package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", `""`},
		{"whitespace only", "   \t  ", `""`},
		{"single token", "alpha", `"alpha"`},
		{"two tokens", "alpha beta", `"alpha" OR "beta"`},
		{"many tokens", "a b c", `"a" OR "b" OR "c"`},
		{"collapses whitespace", "  alpha \t beta  ", `"alpha" OR "beta"`},
		{"strips quotes", `al"pha`, `"al" OR "pha"`},
		{"strips wildcard and boost", `a*b^c`, `"a" OR "b" OR "c"`},
		{"strips grouping", "(alpha) {beta} [gamma]", `"alpha" OR "beta" OR "gamma"`},
		{"only reserved chars", `*^(){}[]"`, `""`},
		{"mixed reserved", `a*b"c`, `"a" OR "b" OR "c"`},
		{"preserves unicode", "café résumé", `"café" OR "résumé"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.raw))
		})
	}
}

func TestSanitize_KeepsNonReservedPunctuation(t *testing.T) {
	// Email-style queries stay as one token; the tokenizer inside the
	// engine decides how to split them, not the sanitizer.
	assert.Equal(t, `"admin@example.com"`, Sanitize("admin@example.com"))
}
