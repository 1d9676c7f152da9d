package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Stats reads document level facts: structure from pdfcpu, the info
// dictionary from ledongthuc/pdf
type Stats struct {
	validator *Validator
}

// NewStats creates a new PDF stats analyzer with the specified constraints
func NewStats(maxFileSize int64) *Stats {
	return &Stats{
		validator: NewValidator(maxFileSize),
	}
}

// GetFileStats returns detailed statistics about a single PDF file
func (s *Stats) GetFileStats(req PDFStatsFileRequest) (*PDFStatsFileResult, error) {
	if err := s.validator.CheckFile(req.Path, true); err != nil {
		return nil, err
	}

	fileInfo, err := os.Stat(req.Path)
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	ctx, err := readContext(req.Path)
	if err != nil {
		return nil, err
	}

	result := &PDFStatsFileResult{
		Path:         req.Path,
		Size:         fileInfo.Size(),
		Pages:        ctx.PageCount,
		Version:      ctx.HeaderVersion.String(),
		Encrypted:    ctx.Encrypt != nil,
		ModifiedDate: fileInfo.ModTime().Format("2006-01-02 15:04:05"),
	}

	if !result.Encrypted {
		extractMetadata(req.Path, result)
	}

	return result, nil
}

// readContext parses the document structure in relaxed mode, the way
// generated reports usually need
func readContext(path string) (*model.Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	return ctx, nil
}

// extractMetadata fills the info dictionary fields. Failures leave them empty.
func extractMetadata(path string, result *PDFStatsFileResult) {
	defer func() {
		// ledongthuc/pdf panics on some malformed values
		_ = recover()
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return
	}

	fields := []struct {
		key string
		dst *string
	}{
		{"Title", &result.Title},
		{"Author", &result.Author},
		{"Subject", &result.Subject},
		{"Producer", &result.Producer},
		{"CreationDate", &result.CreatedDate},
	}
	for _, field := range fields {
		if value := info.Key(field.key); !value.IsNull() {
			*field.dst = strings.TrimSpace(value.Text())
		}
	}
}
