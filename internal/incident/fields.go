package incident

import (
	"regexp"
	"strings"

	"github.com/gridelectric/incident-extractor/internal/layout"
	"github.com/gridelectric/incident-extractor/internal/pdf/content"
)

var (
	digitRun            = regexp.MustCompile(`\d+`)
	wholeIntegerPattern = regexp.MustCompile(`^\d+$`)
)

// incidentNumberLength is the digit count of an incident number
const incidentNumberLength = 10

// page is the per-page working state shared by the field rules
type page struct {
	tmpl    *Template
	rows    []layout.Row
	lines   []string
	anchors AnchorIndex
}

// ExtractPage maps a page's ordered rows to a record. Fields whose anchor,
// band or pattern is missing stay nil. ObjectID and PageNumber are left for
// the assembler.
func ExtractPage(rows []layout.Row, tmpl *Template) Record {
	lines := layout.Lines(rows)
	p := &page{
		tmpl:    tmpl,
		rows:    rows,
		lines:   lines,
		anchors: IndexAnchors(tmpl.Anchors, lines),
	}

	rec := Record{RawLines: lines}
	p.header(&rec)
	p.section(&rec, tmpl.Schedule)
	rec.Duration = p.duration()
	for _, s := range tmpl.Sections {
		p.section(&rec, s)
	}
	for _, triple := range tmpl.Damage {
		p.triple(&rec, triple)
	}
	rec.NeedScout = p.needScout()
	rec.FirstCustomerComment = p.customerComment()

	// This report prints the work order id in the device name slot.
	rec.WorkOrderID = rec.DeviceName
	return rec
}

// header resolves incident number, type and affected customers from the top
// band, letting the first row that carries an incident number override it.
func (p *page) header(rec *Record) {
	band := layout.Normalize(strings.Join(p.lines[:min(p.tmpl.HeaderRows, len(p.lines))], " "))
	data := p.dataRow()

	rec.IncidentNumber = nonEmpty(incidentNumber(band))
	if data != nil {
		if number := incidentNumber(joinRaw(data.Items)); number != "" {
			rec.IncidentNumber = &number
		}
	}

	if p.tmpl.typePattern != nil {
		if loc := firstBounded(p.tmpl.typePattern, band); loc != nil {
			rec.IncidentType = ptr(band[loc[2]:loc[3]])
		}
	}
	if rec.IncidentType == nil && data != nil {
		rec.IncidentType = p.fallbackType(data)
	}

	if rec.IncidentType != nil {
		if affected := p.tmpl.affectedPattern(*rec.IncidentType); affected != nil {
			if loc := firstBounded(affected, band); loc != nil {
				rec.AffectedCustomers = ptr(band[loc[2]:loc[3]])
			}
		}
	}
}

// incidentNumber returns the first standalone run of exactly ten digits
func incidentNumber(text string) string {
	for _, loc := range findBounded(digitRun, text, -1) {
		if loc[1]-loc[0] == incidentNumberLength {
			return text[loc[0]:loc[1]]
		}
	}
	return ""
}

// dataRow returns the first row holding a ten digit incident number
func (p *page) dataRow() *layout.Row {
	for i, line := range p.lines {
		if incidentNumber(line) != "" {
			return &p.rows[i]
		}
	}
	return nil
}

func (p *page) fallbackType(row *layout.Row) *string {
	for _, item := range row.Items {
		if wholeIntegerPattern.MatchString(item.Text) || p.tmpl.stoplist[item.Text] {
			continue
		}
		if item.Text != "" {
			return ptr(item.Text)
		}
	}
	return nil
}

// section fills the section's columns from the rows between its anchors,
// or from the fallback y range when that span is empty.
func (p *page) section(rec *Record, s Section) {
	var span []layout.Row
	if from, ok := p.anchors.First(s.From); ok {
		to, found := p.anchors.First(s.To)
		if s.ToAfterFrom {
			to, found = p.anchors.After(s.To, from)
		}
		if found {
			span = layout.Span(p.rows, from+1, to)
		}
	}
	if len(span) == 0 && s.FallbackY != nil {
		span = s.FallbackY.RowsIn(p.rows)
	}

	tokens := layout.Merge(span)
	for _, col := range s.Columns {
		rec.Set(col.Field, col.Clean(col.Band.Slice(tokens)))
	}
}

// duration returns the first hours value below the duration label, stopping
// at the row that starts the device block.
func (p *page) duration() *string {
	from, ok := p.anchors.First(p.tmpl.Duration.From)
	if !ok {
		return nil
	}
	for _, line := range p.lines[from+1:] {
		if p.tmpl.Duration.Stop != "" && strings.Contains(line, p.tmpl.Duration.Stop) {
			break
		}
		if loc := firstBounded(p.tmpl.durationPattern, line); loc != nil {
			return ptr(line[loc[0]:loc[1]])
		}
	}
	return nil
}

// triple assigns the first three integers between two anchors. Fewer than
// three leaves all three fields nil.
func (p *page) triple(rec *Record, t Triple) {
	from, okFrom := p.anchors.First(t.From)
	to, okTo := p.anchors.First(t.To)
	if !okFrom || !okTo || to <= from {
		return
	}

	var numbers []string
	for _, line := range p.lines[from+1 : to] {
		for _, loc := range findBounded(digitRun, line, -1) {
			numbers = append(numbers, line[loc[0]:loc[1]])
		}
	}
	if len(numbers) < len(t.Fields) {
		return
	}
	for i, field := range t.Fields {
		rec.Set(field, ptr(numbers[i]))
	}
}

// needScout reads the left band of the first row in the flag's y range,
// ignoring it when only the label itself was captured.
func (p *page) needScout() *string {
	rule := p.tmpl.NeedScout
	rows := rule.RowsY.RowsIn(p.rows)
	if len(rows) == 0 {
		return nil
	}

	candidate := rule.Band.Slice(rows[0].Items)
	if candidate == "" {
		return nil
	}
	compact := strings.ToLower(strings.Join(strings.FieldsFunc(candidate, content.IsSpace), ""))
	for _, label := range rule.LabelValues {
		if compact == label {
			return nil
		}
	}
	return &candidate
}

func (p *page) customerComment() *string {
	var parts []string
	for i, row := range p.rows {
		if row.Y < p.tmpl.Comment.BelowY {
			parts = append(parts, p.lines[i])
		}
	}
	return nonEmpty(layout.Normalize(strings.Join(parts, " ")))
}

func joinRaw(tokens []content.Token) string {
	parts := make([]string, len(tokens))
	for i, token := range tokens {
		parts[i] = token.Text
	}
	return strings.Join(parts, " ")
}
