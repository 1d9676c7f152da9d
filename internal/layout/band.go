package layout

import (
	"math"

	"github.com/gridelectric/incident-extractor/internal/pdf/content"
)

// Band is a half-open horizontal interval [Min, Max). A nil Max leaves the
// band open to the right edge of the page.
type Band struct {
	Min float64  `yaml:"min" json:"min"`
	Max *float64 `yaml:"max,omitempty" json:"max,omitempty"`
}

// NewBand returns the band [lo, hi)
func NewBand(lo, hi float64) Band {
	return Band{Min: lo, Max: &hi}
}

// From returns the band [lo, +inf)
func From(lo float64) Band {
	return Band{Min: lo}
}

// Upper returns the exclusive upper bound, +Inf when open
func (b Band) Upper() float64 {
	if b.Max == nil {
		return math.Inf(1)
	}
	return *b.Max
}

// Contains reports whether x falls inside the band
func (b Band) Contains(x float64) bool {
	return x >= b.Min && x < b.Upper()
}

// Filter returns the tokens whose x lies in the band, preserving order
func (b Band) Filter(tokens []content.Token) []content.Token {
	var kept []content.Token
	for _, token := range tokens {
		if b.Contains(token.X) {
			kept = append(kept, token)
		}
	}
	return kept
}

// Slice joins the text of the tokens inside the band
func (b Band) Slice(tokens []content.Token) string {
	return Join(b.Filter(tokens))
}

// Range is a closed vertical interval [Min, Max]
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether y lies inside the range, bounds included
func (r Range) Contains(y float64) bool {
	return y >= r.Min && y <= r.Max
}

// RowsIn returns the rows whose representative y lies in the range
func (r Range) RowsIn(rows []Row) []Row {
	var kept []Row
	for _, row := range rows {
		if r.Contains(row.Y) {
			kept = append(kept, row)
		}
	}
	return kept
}
