package commands

import (
	"strings"
	"unicode"
)

// Tokenize splits line on whitespace. A double-quoted run is kept in one
// token with the quotes removed, and text touching a quote joins the same
// token, so `a"b c"d` is the single token "ab cd". An unterminated quote
// extends to the end of the line.
func Tokenize(line string) []string {
	var (
		tokens  []string
		cur     strings.Builder
		inToken bool
		quoted  bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			inToken = true
		case !quoted && unicode.IsSpace(r):
			if inToken {
				tokens = append(tokens, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if inToken {
		tokens = append(tokens, cur.String())
	}
	return tokens
}
