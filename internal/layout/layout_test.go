package layout

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridelectric/incident-extractor/internal/pdf/content"
)

func tok(x, y float64, text string) content.Token {
	return content.Token{X: x, Y: y, Text: text}
}

func rowTexts(rows []Row) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		for _, item := range row.Items {
			out[i] = append(out[i], item.Text)
		}
	}
	return out
}

func TestCluster_Order(t *testing.T) {
	tokens := []content.Token{
		tok(300, 500, "c"),
		tok(10, 900, "a"),
		tok(200, 899.5, "b"),
		tok(50, 500.4, "d"),
		tok(5, 100, "e"),
	}

	rows := Cluster(tokens, DefaultRowTolerance)

	require.Len(t, rows, 3)
	assert.Equal(t, [][]string{{"a", "b"}, {"d", "c"}, {"e"}}, rowTexts(rows))
	assert.Equal(t, 900.0, rows[0].Y)
	assert.Equal(t, 500.4, rows[1].Y)
	assert.Equal(t, 100.0, rows[2].Y)
}

func TestCluster_ToleranceBoundary(t *testing.T) {
	same := Cluster([]content.Token{tok(0, 101, "a"), tok(10, 100, "b")}, DefaultRowTolerance)
	assert.Len(t, same, 1)

	apart := Cluster([]content.Token{tok(0, 101.0001, "a"), tok(10, 100, "b")}, DefaultRowTolerance)
	assert.Len(t, apart, 2)
}

func TestCluster_RepresentativeIsFirstToken(t *testing.T) {
	// 99.4 is within tolerance of 100.2 but not of the row's first token at 101.
	rows := Cluster([]content.Token{tok(0, 99.4, "low"), tok(0, 101, "high"), tok(5, 100.2, "mid")}, DefaultRowTolerance)

	require.Len(t, rows, 2)
	assert.Equal(t, [][]string{{"high", "mid"}, {"low"}}, rowTexts(rows))
	assert.Equal(t, 101.0, rows[0].Y)
	assert.Equal(t, 99.4, rows[1].Y)
}

func TestCluster_PermutationInvariant(t *testing.T) {
	tokens := []content.Token{
		tok(10, 950, "Incident"),
		tok(90, 950.5, "Summary"),
		tok(180, 949.8, "Report"),
		tok(10, 912, "1234567890"),
		tok(150, 912.4, "LGTS"),
		tok(260, 911.9, "37"),
		tok(10, 880, "123 Main St"),
		tok(200, 880, "4"),
		tok(300, 879.2, "01/02/2024 10:00"),
		tok(10, 460, "Yes"),
	}

	partition := func(rows []Row) []string {
		var keys []string
		for _, row := range rows {
			var texts []string
			for _, item := range row.Items {
				texts = append(texts, item.Text)
			}
			sort.Strings(texts)
			keys = append(keys, joinKey(texts))
		}
		sort.Strings(keys)
		return keys
	}

	want := partition(Cluster(tokens, DefaultRowTolerance))
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 25; i++ {
		shuffled := append([]content.Token(nil), tokens...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, partition(Cluster(shuffled, DefaultRowTolerance)))
	}
}

func joinKey(texts []string) string {
	key := ""
	for _, text := range texts {
		key += text + "|"
	}
	return key
}

func TestCluster_DoesNotMutateInput(t *testing.T) {
	tokens := []content.Token{tok(5, 1, "b"), tok(1, 2, "a")}
	Cluster(tokens, DefaultRowTolerance)
	assert.Equal(t, "b", tokens[0].Text)
}

func TestCluster_Empty(t *testing.T) {
	assert.Empty(t, Cluster(nil, DefaultRowTolerance))
}

func TestRowText(t *testing.T) {
	row := Row{Y: 1, Items: []content.Token{tok(0, 1, "Address "), tok(5, 1, " Calls\tStart")}}
	assert.Equal(t, "Address Calls Start", row.Text())
	assert.Equal(t, "a b", Normalize("  a \n\t b "))
}

func TestNormalize_Latin1Whitespace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no-break space", "Device\u00a0Name", "Device Name"},
		{"vertical tab", "Device\vName", "Device Name"},
		{"next line", "\u0085Device \u0085 Name", "Device Name"},
		{"unit separator", "Device\x1fName\x1c", "Device Name"},
		{"mixed run", "a\u00a0 \t\u00a0b", "a b"},
		{"only whitespace", "\u00a0\x1d ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}

	row := Row{Y: 1, Items: []content.Token{tok(0, 1, "Device\u00a0Name")}}
	assert.Equal(t, "Device Name", row.Text())
}

func TestBand_HalfOpen(t *testing.T) {
	left := NewBand(0, 210)
	right := NewBand(210, 470)
	edge := tok(210, 0, "edge")

	assert.False(t, left.Contains(edge.X))
	assert.True(t, right.Contains(edge.X))
	assert.True(t, left.Contains(209.999))
	assert.True(t, left.Contains(0))
	assert.False(t, right.Contains(470))
}

func TestBand_Open(t *testing.T) {
	band := From(472)
	assert.True(t, band.Contains(472))
	assert.True(t, band.Contains(1e9))
	assert.False(t, band.Contains(471.9))
}

func TestBand_Slice(t *testing.T) {
	tokens := []content.Token{tok(10, 0, "123"), tok(40, 0, "Main"), tok(190, 0, "4"), tok(90, 0, "St")}
	assert.Equal(t, "123 Main St", NewBand(0, 180).Slice(tokens))
	assert.Equal(t, "4", NewBand(180, 250).Slice(tokens))
	assert.Equal(t, "", NewBand(250, 300).Slice(tokens))
}

func TestRange_RowsIn(t *testing.T) {
	rows := []Row{{Y: 911}, {Y: 910}, {Y: 890}, {Y: 870}, {Y: 869.9}}
	kept := Range{Min: 870, Max: 910}.RowsIn(rows)

	require.Len(t, kept, 3)
	assert.Equal(t, 910.0, kept[0].Y)
	assert.Equal(t, 870.0, kept[2].Y)
}

func TestSpan(t *testing.T) {
	rows := []Row{{Y: 3}, {Y: 2}, {Y: 1}}
	assert.Len(t, Span(rows, 1, 3), 2)
	assert.Empty(t, Span(rows, 2, 1))
	assert.Empty(t, Span(rows, 3, 3))
	assert.Len(t, Span(rows, 0, 10), 3)
}

func TestMergeAndLines(t *testing.T) {
	rows := []Row{
		{Y: 2, Items: []content.Token{tok(0, 2, "a"), tok(5, 2, "b")}},
		{Y: 1, Items: []content.Token{tok(0, 1, "c")}},
	}
	assert.Len(t, Merge(rows), 3)
	assert.Equal(t, []string{"a b", "c"}, Lines(rows))
}
