package incident

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/gridelectric/incident-extractor/internal/layout"
	"github.com/gridelectric/incident-extractor/internal/pdf/content"
	pdferrors "github.com/gridelectric/incident-extractor/internal/pdf/errors"
	"github.com/gridelectric/incident-extractor/internal/pdf/stream"
)

// Batch is the outcome of extracting one document
type Batch struct {
	Records []Record
	// Skipped lists the objects left out of the page list and why.
	Skipped *pdferrors.ErrorCollection
}

// IncidentNumbers lists each record's incident number in page order,
// nil where none was found
func (b *Batch) IncidentNumbers() []*string {
	numbers := make([]*string, len(b.Records))
	for i := range b.Records {
		numbers[i] = b.Records[i].IncidentNumber
	}
	return numbers
}

// Extractor runs the page pipeline for one report template
type Extractor struct {
	template *Template
	logger   *slog.Logger
}

// NewExtractor creates an extractor. A nil template selects the built-in
// layout and a nil logger discards output.
func NewExtractor(tmpl *Template, logger *slog.Logger) *Extractor {
	if tmpl == nil {
		tmpl = DefaultTemplate()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Extractor{template: tmpl, logger: logger}
}

// Template returns the layout the extractor applies
func (e *Extractor) Template() *Template {
	return e.template
}

// ExtractFile reads path and extracts every ticket page. Reading is the only
// step that can fail.
func (e *Extractor) ExtractFile(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF %s: %w", path,
			pdferrors.WrapError(pdferrors.ErrorTypeReadFailure, err).WithFile(path))
	}
	return e.Extract(data, path), nil
}

// Extract runs locate, decode, tokenize, cluster and field extraction over
// the document bytes. source only labels skip records and log lines.
func (e *Extractor) Extract(data []byte, source string) *Batch {
	skips := pdferrors.NewErrorCollection(source)
	fingerprint := stream.Fingerprint(e.template.Captions)

	var records []Record
	for objectID, text := range stream.Pages(data, fingerprint, skips) {
		tokens := content.Tokenize(text)
		rows := layout.Cluster(tokens, e.template.Tolerance())

		rec := ExtractPage(rows, e.template)
		rec.ObjectID = objectID
		records = append(records, rec)

		e.logger.Debug("extracted incident page",
			"object_id", objectID,
			"tokens", len(tokens),
			"rows", len(rows),
			"incident_number", deref(rec.IncidentNumber))
	}

	for _, skip := range skips.All() {
		e.logger.Debug("skipped object",
			"object_id", skip.ObjectNum,
			"offset", skip.Offset,
			"type", skip.Type.String(),
			"reason", skip.Error())
	}

	batch := &Batch{Records: Assemble(records), Skipped: skips}
	e.logger.Info("extraction complete",
		"source", source,
		"template", e.template.Name,
		"tickets", len(batch.Records),
		"skipped", skips.Summary())
	return batch
}

// Assemble orders records by object id and numbers them from 1. Duplicates
// are kept.
func Assemble(records []Record) []Record {
	ordered := make([]Record, len(records))
	copy(ordered, records)
	slices.SortStableFunc(ordered, func(a, b Record) int {
		return cmp.Compare(a.ObjectID, b.ObjectID)
	})
	for i := range ordered {
		ordered[i].PageNumber = i + 1
	}
	return ordered
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
