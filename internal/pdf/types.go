package pdf

import (
	"github.com/gridelectric/incident-extractor/internal/incident"
)

// Request Types

// ExtractRequest asks for the incident tickets in one report PDF
type ExtractRequest struct {
	Path string `json:"path"`
	// Output, when set, receives the records as a JSON array instead of the
	// result carrying them inline.
	Output string `json:"output,omitempty"`
	// CrossCheck compares the extraction with what the PDF libraries report.
	CrossCheck bool `json:"cross_check,omitempty"`
}

// PDFValidateFileRequest represents a request to validate a PDF file
type PDFValidateFileRequest struct {
	Path string `json:"path"`
}

// PDFStatsFileRequest represents a request to get stats about a PDF file
type PDFStatsFileRequest struct {
	Path string `json:"path"`
}

// PDFSearchDirectoryRequest represents a request to find PDFs in a directory
type PDFSearchDirectoryRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query,omitempty"`
}

// Response Types

// ExtractResult describes one finished extraction
type ExtractResult struct {
	InputPDF        string            `json:"input_pdf"`
	OutputJSON      string            `json:"output_json,omitempty"`
	IncidentCount   int               `json:"incident_count"`
	IncidentNumbers []*string         `json:"incident_numbers"`
	Skipped         string            `json:"skipped"`
	Records         []incident.Record `json:"records,omitempty"`
	CrossCheck      *CrossCheckResult `json:"cross_check,omitempty"`

	// Batch is the full pipeline output, including every skipped object.
	Batch *incident.Batch `json:"-"`
}

// PDFValidateFileResult represents the result of a PDF validation operation
type PDFValidateFileResult struct {
	Valid   bool   `json:"valid"`
	Path    string `json:"path"`
	Pages   int    `json:"pages,omitempty"`
	Message string `json:"message,omitempty"`
}

// PDFStatsFileResult represents the result of a PDF file stats operation
type PDFStatsFileResult struct {
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	Pages        int    `json:"pages"`
	Version      string `json:"version"`
	Encrypted    bool   `json:"encrypted"`
	ModifiedDate string `json:"modified_date"`
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Producer     string `json:"producer,omitempty"`
	CreatedDate  string `json:"created_date,omitempty"`
}

// FileInfo describes one PDF found by a directory search
type FileInfo struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// PDFSearchDirectoryResult represents the result of a directory search
type PDFSearchDirectoryResult struct {
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	Directory   string     `json:"directory"`
	SearchQuery string     `json:"search_query,omitempty"`
	Truncated   bool       `json:"truncated,omitempty"`
}

// CrossCheckResult compares the ticket count with the document structure.
// It is advisory: problems are reported, never fatal.
type CrossCheckResult struct {
	Tickets   int      `json:"tickets"`
	Pages     int      `json:"pages"`
	Version   string   `json:"version,omitempty"`
	Encrypted bool     `json:"encrypted"`
	Problems  []string `json:"problems,omitempty"`
}

// OK reports whether the cross-check found nothing to flag
func (c *CrossCheckResult) OK() bool {
	return len(c.Problems) == 0
}
