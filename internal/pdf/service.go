package pdf

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/gridelectric/incident-extractor/internal/incident"
	"github.com/gridelectric/incident-extractor/internal/output"
	pdferrors "github.com/gridelectric/incident-extractor/internal/pdf/errors"
	"github.com/gridelectric/incident-extractor/internal/pdf/security"
)

// Service handles PDF file operations by orchestrating the extraction
// pipeline and the library-backed checks
type Service struct {
	maxFileSize int64
	extractor   *incident.Extractor
	validator   *Validator
	stats       *Stats
	search      *Search
	sandbox     *security.Sandbox
	logger      *slog.Logger
}

// NewService creates a service that accepts any path
func NewService(maxFileSize int64, extractor *incident.Extractor, logger *slog.Logger) *Service {
	if extractor == nil {
		extractor = incident.NewExtractor(nil, logger)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Service{
		maxFileSize: maxFileSize,
		extractor:   extractor,
		validator:   NewValidator(maxFileSize),
		stats:       NewStats(maxFileSize),
		search:      NewSearch(maxFileSize),
		logger:      logger,
	}
}

// NewSandboxedService creates a service that only reads and writes below
// configuredDirectory
func NewSandboxedService(maxFileSize int64, configuredDirectory string, extractor *incident.Extractor,
	logger *slog.Logger,
) (*Service, error) {
	sandbox, err := security.NewSandbox(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path sandbox: %w", err)
	}

	s := NewService(maxFileSize, extractor, logger)
	s.sandbox = sandbox
	return s, nil
}

// resolve applies the sandbox, if any
func (s *Service) resolve(path string) (string, error) {
	if s.sandbox == nil {
		return path, nil
	}
	resolved, err := s.sandbox.Resolve(path)
	if err != nil {
		return "", fmt.Errorf("security validation failed: %w", err)
	}
	return resolved, nil
}

// ExtractIncidentTickets runs the extraction pipeline over one PDF. Only a
// missing or unreadable input, or a failed write, is an error. The sandboxed
// service also refuses empty and oversize files; unsandboxed, any readable
// file is scanned and an empty one yields no tickets.
func (s *Service) ExtractIncidentTickets(req ExtractRequest) (*ExtractResult, error) {
	path, err := s.resolve(req.Path)
	if err != nil {
		return nil, err
	}
	if s.sandbox != nil {
		if err := s.validator.CheckFile(path, false); err != nil {
			return nil, pdferrors.WrapError(pdferrors.ErrorTypeReadFailure, err).WithFile(path)
		}
	}

	batch, err := s.extractor.ExtractFile(path)
	if err != nil {
		return nil, err
	}

	result := &ExtractResult{
		InputPDF:        path,
		IncidentCount:   len(batch.Records),
		IncidentNumbers: batch.IncidentNumbers(),
		Skipped:         batch.Skipped.Summary(),
		Batch:           batch,
	}

	if req.Output == "" {
		result.Records = batch.Records
	} else {
		out, err := s.resolve(req.Output)
		if err != nil {
			return nil, err
		}
		if err := output.WriteRecords(out, batch.Records); err != nil {
			return nil, err
		}
		result.OutputJSON = out
	}

	if req.CrossCheck {
		result.CrossCheck = s.CrossCheck(path, batch)
	}

	return result, nil
}

// CrossCheck compares the ticket count with the page count both PDF libraries
// report and notes structural problems. It never fails.
func (s *Service) CrossCheck(path string, batch *incident.Batch) *CrossCheckResult {
	check := &CrossCheckResult{Tickets: len(batch.Records)}

	validation, _ := s.validator.ValidateFile(PDFValidateFileRequest{Path: path})
	if !validation.Valid {
		check.Problems = append(check.Problems, "pdf reader: "+validation.Message)
	}

	stats, err := s.stats.GetFileStats(PDFStatsFileRequest{Path: path})
	if err != nil {
		check.Problems = append(check.Problems, "pdfcpu: "+err.Error())
	} else {
		check.Pages = stats.Pages
		check.Version = stats.Version
		check.Encrypted = stats.Encrypted
		if stats.Encrypted {
			check.Problems = append(check.Problems, "document is encrypted, stream contents cannot be read")
		}
	}

	if validation.Valid && check.Pages == 0 {
		check.Pages = validation.Pages
	}
	if validation.Valid && stats != nil && validation.Pages != stats.Pages {
		check.Problems = append(check.Problems,
			fmt.Sprintf("page count differs between readers: %d vs %d", validation.Pages, stats.Pages))
	}
	if check.Pages > 0 && check.Tickets != check.Pages {
		check.Problems = append(check.Problems,
			fmt.Sprintf("extracted %d ticket(s) from %d page(s)", check.Tickets, check.Pages))
	}

	s.logger.Debug("cross-check finished",
		"path", path,
		"tickets", check.Tickets,
		"pages", check.Pages,
		"version", check.Version,
		"problems", len(check.Problems))
	return check
}

// PDFValidateFile performs validation on a PDF file
func (s *Service) PDFValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	path, err := s.resolve(req.Path)
	if err != nil {
		return nil, err
	}
	req.Path = path
	return s.validator.ValidateFile(req)
}

// PDFStatsFile returns detailed statistics about a single PDF file
func (s *Service) PDFStatsFile(req PDFStatsFileRequest) (*PDFStatsFileResult, error) {
	path, err := s.resolve(req.Path)
	if err != nil {
		return nil, err
	}
	req.Path = path
	return s.stats.GetFileStats(req)
}

// PDFSearchDirectory lists the PDFs below req.Directory, the sandbox root
// when empty
func (s *Service) PDFSearchDirectory(ctx context.Context, req PDFSearchDirectoryRequest) (
	*PDFSearchDirectoryResult, error,
) {
	if req.Directory == "" {
		req.Directory = "."
	}
	dir, err := s.resolve(req.Directory)
	if err != nil {
		return nil, err
	}
	req.Directory = dir
	return s.search.SearchDirectory(ctx, req)
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// Directory returns the sandbox root, empty when paths are unrestricted
func (s *Service) Directory() string {
	if s.sandbox == nil {
		return ""
	}
	return s.sandbox.Root()
}

// Template returns the layout the extractor applies
func (s *Service) Template() *incident.Template {
	return s.extractor.Template()
}
