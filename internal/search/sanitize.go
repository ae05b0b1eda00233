package search

import "strings"

// MatchNone is the canonical match-nothing expression: an empty phrase
// matches no row, so a degenerate query yields zero results instead of a
// syntax error or an accidental match-everything.
const MatchNone = `""`

// reserved are the FTS5 control characters neutralized before user text
// reaches the engine: quoting, wildcard, boost and grouping operators.
var reserved = strings.NewReplacer(
	`"`, " ",
	"*", " ",
	"^", " ",
	"(", " ",
	")", " ",
	"{", " ",
	"}", " ",
	"[", " ",
	"]", " ",
)

// Sanitize converts arbitrary user text into a syntactically valid FTS5
// match expression. Reserved characters are replaced with spaces, the rest
// is whitespace-tokenized, and each token becomes an exact-phrase match.
// Multiple tokens join as a disjunction ("a" OR "b"): any token matching
// is sufficient. The OR semantics trade precision for recall and are part
// of the search contract, not an implementation detail.
func Sanitize(raw string) string {
	cleaned := reserved.Replace(raw)

	tokens := strings.Fields(cleaned)
	if len(tokens) == 0 {
		return MatchNone
	}

	if len(tokens) == 1 {
		return `"` + tokens[0] + `"`
	}

	phrases := make([]string, len(tokens))
	for i, token := range tokens {
		phrases[i] = `"` + token + `"`
	}
	return strings.Join(phrases, " OR ")
}
