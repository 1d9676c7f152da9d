package incident

import (
	"bytes"
	"cmp"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/gridelectric/incident-extractor/internal/layout"
)

//go:embed templates/incident_summary.yaml
var defaultTemplateYAML []byte

// Template is the per-layout configuration table: every label, code and
// coordinate the field extraction depends on. It is read-only once loaded.
type Template struct {
	Name          string        `yaml:"name"`
	Captions      []string      `yaml:"captions"`
	RowTolerance  *float64      `yaml:"row_tolerance"`
	HeaderRows    int           `yaml:"header_rows"`
	IncidentTypes []string      `yaml:"incident_types"`
	TypeStoplist  []string      `yaml:"type_stoplist"`
	Anchors       []Anchor      `yaml:"anchors"`
	Schedule      Section       `yaml:"schedule"`
	Duration      DurationRule  `yaml:"duration"`
	Sections      []Section     `yaml:"sections"`
	Damage        []Triple      `yaml:"damage"`
	NeedScout     NeedScoutRule `yaml:"need_scout"`
	Comment       CommentRule   `yaml:"first_customer_comment"`

	typePattern     *regexp.Regexp
	affected        map[string]*regexp.Regexp
	durationPattern *regexp.Regexp
	stoplist        map[string]bool
}

// Section is a run of rows between two anchors, split into columns
type Section struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
	// ToAfterFrom searches the closing anchor only below the opening one.
	ToAfterFrom bool          `yaml:"to_after_from"`
	FallbackY   *layout.Range `yaml:"fallback_y"`
	Columns     []Column      `yaml:"columns"`
}

// Column assigns the text inside a band to a record field
type Column struct {
	Field string      `yaml:"field"`
	Band  layout.Band `yaml:"band"`
	// Noise lists label words that bleed into the value band.
	Noise []string `yaml:"noise"`

	noise []*regexp.Regexp
}

// DurationRule scans rows below an anchor until a stop word
type DurationRule struct {
	From string `yaml:"from"`
	Stop string `yaml:"stop"`
	// Pattern only counts where the match is not glued to a letter or digit.
	Pattern string `yaml:"pattern"`
}

// Triple reads three integers between two anchors into three fields
type Triple struct {
	From   string   `yaml:"from"`
	To     string   `yaml:"to"`
	Fields []string `yaml:"fields"`
}

// NeedScoutRule locates the scout flag by fixed coordinates
type NeedScoutRule struct {
	RowsY       layout.Range `yaml:"rows_y"`
	Band        layout.Band  `yaml:"band"`
	LabelValues []string     `yaml:"label_values"`
}

// CommentRule collects the free text at the bottom of the page
type CommentRule struct {
	BelowY float64 `yaml:"below_y"`
}

var loadDefault = sync.OnceValues(func() (*Template, error) {
	return ParseTemplate(defaultTemplateYAML)
})

// DefaultTemplate returns the built-in Incident Summary Report layout
func DefaultTemplate() *Template {
	tmpl, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("built-in template is invalid: %v", err))
	}
	return tmpl
}

// LoadTemplate reads a template file, or returns the built-in layout when
// path is empty
func LoadTemplate(path string) (*Template, error) {
	if path == "" {
		return DefaultTemplate(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}

	tmpl, err := ParseTemplate(data)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}
	return tmpl, nil
}

// ParseTemplate decodes, defaults and validates a YAML template
func ParseTemplate(data []byte) (*Template, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var tmpl Template
	if err := decoder.Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("invalid template YAML: %w", err)
	}

	if tmpl.RowTolerance == nil {
		tolerance := layout.DefaultRowTolerance
		tmpl.RowTolerance = &tolerance
	}

	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	if err := tmpl.compile(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// Tolerance is the row clustering tolerance. Zero clusters only fragments
// on exactly the same baseline; an unset value means the default.
func (t *Template) Tolerance() float64 {
	if t.RowTolerance == nil {
		return layout.DefaultRowTolerance
	}
	return *t.RowTolerance
}

// Validate checks that every anchor and field the rules refer to exists
func (t *Template) Validate() error {
	var errs []error

	if t.Name == "" {
		errs = append(errs, errors.New("name cannot be empty"))
	}
	if len(t.Captions) == 0 {
		errs = append(errs, errors.New("at least one caption is required"))
	}
	if t.RowTolerance != nil && *t.RowTolerance < 0 {
		errs = append(errs, errors.New("row_tolerance must not be negative"))
	}
	if t.HeaderRows <= 0 {
		errs = append(errs, errors.New("header_rows must be positive"))
	}

	anchors := make(map[string]bool, len(t.Anchors))
	for i, anchor := range t.Anchors {
		if anchor.Name == "" {
			errs = append(errs, fmt.Errorf("anchor %d has no name", i))
			continue
		}
		if anchors[anchor.Name] {
			errs = append(errs, fmt.Errorf("duplicate anchor %q", anchor.Name))
		}
		anchors[anchor.Name] = true
		if !anchor.hasCondition() {
			errs = append(errs, fmt.Errorf("anchor %q has no condition", anchor.Name))
		}
	}

	requireAnchor := func(where, name string) {
		if !anchors[name] {
			errs = append(errs, fmt.Errorf("%s refers to unknown anchor %q", where, name))
		}
	}
	requireField := func(where, name string) {
		if !IsField(name) {
			errs = append(errs, fmt.Errorf("%s refers to unknown field %q", where, name))
		}
	}
	checkSection := func(where string, s Section) {
		requireAnchor(where, s.From)
		requireAnchor(where, s.To)
		for _, col := range s.Columns {
			requireField(where, col.Field)
			if col.Band.Max != nil && *col.Band.Max <= col.Band.Min {
				errs = append(errs, fmt.Errorf("%s: band for %q is empty", where, col.Field))
			}
		}
	}

	checkSection("schedule", t.Schedule)
	for i, s := range t.Sections {
		checkSection(fmt.Sprintf("section %d", i), s)
	}

	requireAnchor("duration", t.Duration.From)
	if t.Duration.Pattern == "" {
		errs = append(errs, errors.New("duration pattern cannot be empty"))
	}

	for i, triple := range t.Damage {
		where := fmt.Sprintf("damage %d", i)
		requireAnchor(where, triple.From)
		requireAnchor(where, triple.To)
		if len(triple.Fields) != 3 {
			errs = append(errs, fmt.Errorf("%s must name exactly 3 fields", where))
		}
		for _, field := range triple.Fields {
			requireField(where, field)
		}
	}

	return errors.Join(errs...)
}

func (t *Template) compile() error {
	t.affected = make(map[string]*regexp.Regexp, len(t.IncidentTypes))
	if len(t.IncidentTypes) > 0 {
		// Longer codes first, so a code that prefixes another cannot shadow it.
		codes := slices.Clone(t.IncidentTypes)
		slices.SortStableFunc(codes, func(a, b string) int { return cmp.Compare(len(b), len(a)) })
		for i, code := range codes {
			t.affected[code] = compileAffected(code)
			codes[i] = regexp.QuoteMeta(code)
		}
		t.typePattern = regexp.MustCompile(`(` + strings.Join(codes, "|") + `)`)
	}

	pattern, err := regexp.Compile(t.Duration.Pattern)
	if err != nil {
		return fmt.Errorf("invalid duration pattern: %w", err)
	}
	t.durationPattern = pattern

	t.stoplist = make(map[string]bool, len(t.TypeStoplist))
	for _, word := range t.TypeStoplist {
		t.stoplist[word] = true
	}

	compileColumns(t.Schedule.Columns)
	for i := range t.Sections {
		compileColumns(t.Sections[i].Columns)
	}
	return nil
}

// compileAffected matches an incident type code followed by the affected
// customer count
func compileAffected(code string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(code) + `\s+(\d+)`)
}

// affectedPattern returns the precompiled count pattern for code. Codes read
// from the data row instead of the known list are compiled on demand.
func (t *Template) affectedPattern(code string) *regexp.Regexp {
	if re, ok := t.affected[code]; ok {
		return re
	}
	return compileAffected(code)
}

func compileColumns(columns []Column) {
	for i := range columns {
		columns[i].noise = make([]*regexp.Regexp, len(columns[i].Noise))
		for j, phrase := range columns[i].Noise {
			columns[i].noise[j] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(phrase))
		}
	}
}

// Clean strips the column's noise words from value. Empty results are nil.
func (c Column) Clean(value string) *string {
	if value == "" {
		return nil
	}
	for _, re := range c.noise {
		value = replaceBounded(re, value, " ")
	}
	return nonEmpty(layout.Normalize(value))
}
