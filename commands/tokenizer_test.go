package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want []string
	}{
		{"empty", "", nil},
		{"blank", " \t  ", nil},
		{"words", "create file /x.txt hi there", []string{"create", "file", "/x.txt", "hi", "there"}},
		{"collapses whitespace", "  ls   /docs\t", []string{"ls", "/docs"}},
		{"quoted run", `create file "/my docs/a.txt" "hello  world"`, []string{"create", "file", "/my docs/a.txt", "hello  world"}},
		{"adjacent quote joins", `a"b c"d`, []string{"ab cd"}},
		{"empty quotes", `write file /a ""`, []string{"write", "file", "/a", ""}},
		{"unterminated quote", `create file /a "one two`, []string{"create", "file", "/a", "one two"}},
		{"unterminated quote keeps spacing", `write file /a x "  y   z `, []string{"write", "file", "/a", "x", "  y   z "}},
		{"unterminated quote after text", `write file /a ab"c d`, []string{"write", "file", "/a", "abc d"}},
		{"apostrophe is literal", "create file /a don't", []string{"create", "file", "/a", "don't"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Tokenize(tt.line))
		})
	}
}
