// Package layout reconstructs visual text rows from positioned fragments and
// slices them into horizontal coordinate bands.
package layout

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/gridelectric/incident-extractor/internal/pdf/content"
)

// DefaultRowTolerance is the largest vertical distance at which two fragments
// still share a row
const DefaultRowTolerance = 1.0

// Row is a horizontal line of text. Y is the coordinate of the first token
// assigned to the row; Items are ordered left to right.
type Row struct {
	Y     float64         `json:"y"`
	Items []content.Token `json:"items"`
}

// Cluster groups tokens into rows ordered top to bottom. PDF y grows upward,
// so the first row has the largest y. Rows are tested in creation order and a
// token joins the first row within tolerance.
func Cluster(tokens []content.Token, tolerance float64) []Row {
	ordered := slices.Clone(tokens)
	slices.SortStableFunc(ordered, func(a, b content.Token) int {
		if c := cmp.Compare(b.Y, a.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.X, b.X)
	})

	var rows []Row
	for _, token := range ordered {
		placed := false
		for i := range rows {
			if math.Abs(rows[i].Y-token.Y) <= tolerance {
				rows[i].Items = append(rows[i].Items, token)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, Row{Y: token.Y, Items: []content.Token{token}})
		}
	}

	for i := range rows {
		slices.SortStableFunc(rows[i].Items, func(a, b content.Token) int {
			return cmp.Compare(a.X, b.X)
		})
	}

	return rows
}

// Text joins the row's fragments with single spaces, collapsing whitespace
func (r Row) Text() string {
	return Join(r.Items)
}

// Join concatenates token texts with single spaces, collapsing whitespace
func Join(tokens []content.Token) string {
	parts := make([]string, len(tokens))
	for i, token := range tokens {
		parts[i] = token.Text
	}
	return Normalize(strings.Join(parts, " "))
}

// Normalize collapses runs of whitespace to one space and trims the ends.
// No-break spaces and the other Latin-1 separators count as whitespace.
func Normalize(text string) string {
	return strings.Join(strings.FieldsFunc(text, content.IsSpace), " ")
}

// Lines returns the flattened text of every row
func Lines(rows []Row) []string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = row.Text()
	}
	return lines
}

// Merge concatenates the tokens of several rows in row order
func Merge(rows []Row) []content.Token {
	var tokens []content.Token
	for _, row := range rows {
		tokens = append(tokens, row.Items...)
	}
	return tokens
}

// Span returns rows[from:to] clamped to the slice, empty when from >= to
func Span(rows []Row, from, to int) []Row {
	from = max(from, 0)
	to = min(to, len(rows))
	if from >= to {
		return nil
	}
	return rows[from:to]
}
