// Package content turns decoded content stream instructions into positioned
// text fragments. Only the two instructions the report generator uses for
// text are recognized: "a b c d e f Tm" and "(literal) Tj", one per line.
package content

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// space is the Latin-1 whitespace class: tab through carriage return, the
// information separators, space, NEL and no-break space.
const space = `[\t-\r\x{1C}-\x{20}\x{85}\x{A0}]+`

var (
	// Tm operands: a b c d e f. Only the translation (e, f) is kept; the
	// report never rotates or scales text.
	setMatrixPattern = regexp.MustCompile(
		`^([\d.\-]+)` + space + `[\d.\-]+` + space + `[\d.\-]+` + space + `[\d.\-]+` + space +
			`([\d.\-]+)` + space + `([\d.\-]+)` + space + `Tm$`)
	showTextPattern = regexp.MustCompile(`^\((.*)\)` + space + `Tj$`)

	literalUnescaper = strings.NewReplacer(`\\`, `\`, `\(`, `(`, `\)`, `)`)
)

// Token is a text fragment placed at an absolute page coordinate
type Token struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Text string  `json:"text"`
}

type cursor struct {
	x, y float64
}

// Tokenize pairs every show-text line with the most recent text matrix.
// Show-text lines before the first matrix are dropped.
func Tokenize(text string) []Token {
	var (
		tokens []Token
		last   *cursor
	)

	for _, line := range splitLines(text) {
		candidate := strings.TrimFunc(line, IsSpace)

		if m := setMatrixPattern.FindStringSubmatch(candidate); m != nil {
			if c, ok := parseCursor(m[2], m[3]); ok {
				last = &c
			}
			continue
		}

		m := showTextPattern.FindStringSubmatch(candidate)
		if m == nil || last == nil {
			continue
		}

		value := Unescape(m[1])
		if value == "" {
			continue
		}
		tokens = append(tokens, Token{X: last.x, Y: last.y, Text: value})
	}

	return tokens
}

// Unescape restores escaped parentheses and backslashes in a literal string
// and trims surrounding whitespace. Octal and other escapes are left as is.
func Unescape(literal string) string {
	return strings.TrimFunc(literalUnescaper.Replace(literal), IsSpace)
}

// IsSpace reports whether r separates words in decoded stream text. Besides
// Unicode white space this includes the separators U+001C through U+001F.
func IsSpace(r rune) bool {
	return unicode.IsSpace(r) || ('\x1c' <= r && r <= '\x1f')
}

func parseCursor(xs, ys string) (cursor, bool) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return cursor{}, false
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return cursor{}, false
	}
	return cursor{x: x, y: y}, true
}

func splitLines(text string) []string {
	return strings.FieldsFunc(text, isLineBreak)
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
