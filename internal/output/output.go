// Package output writes extracted records and the run summary as JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gridelectric/incident-extractor/internal/config"
	"github.com/gridelectric/incident-extractor/internal/incident"
	pdferrors "github.com/gridelectric/incident-extractor/internal/pdf/errors"
)

// Summary is the console report printed after a run
type Summary struct {
	InputPDF        string    `json:"input_pdf"`
	OutputJSON      string    `json:"output_json"`
	IncidentCount   int       `json:"incident_count"`
	IncidentNumbers []*string `json:"incident_numbers"`
}

// NewSummary describes a finished batch with absolute input and output paths
func NewSummary(input, output string, batch *incident.Batch) (*Summary, error) {
	inputAbs, err := filepath.Abs(input)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", input, err)
	}
	outputAbs, err := filepath.Abs(output)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", output, err)
	}

	return &Summary{
		InputPDF:        inputAbs,
		OutputJSON:      outputAbs,
		IncidentCount:   len(batch.Records),
		IncidentNumbers: batch.IncidentNumbers(),
	}, nil
}

// WriteRecords writes records as an indented JSON array, creating parent
// directories as needed. An empty batch still produces "[]".
func WriteRecords(path string, records []incident.Record) error {
	if records == nil {
		records = []incident.Record{}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, config.DefaultDirPerm); err != nil {
			return writeFailure(path, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return writeFailure(path, err)
	}

	if err := Encode(f, records); err != nil {
		_ = f.Close()
		return writeFailure(path, err)
	}
	if err := f.Close(); err != nil {
		return writeFailure(path, err)
	}
	return nil
}

// Encode writes v as two-space indented JSON followed by a newline
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func writeFailure(path string, err error) error {
	return fmt.Errorf("failed to write %s: %w", path,
		pdferrors.WrapError(pdferrors.ErrorTypeWriteFailure, err).WithFile(path))
}
