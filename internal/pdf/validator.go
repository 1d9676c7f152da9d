package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Validator checks that a file is a readable PDF within the size limit
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFile opens the file with a full PDF parser. Validation failures
// are reported in the result, not as errors.
func (v *Validator) ValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	result := &PDFValidateFileResult{
		Path:  req.Path,
		Valid: false,
	}

	pages, err := v.countPages(req.Path)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // Return result with validation error, not a processing error
	}

	result.Valid = true
	result.Pages = pages
	return result, nil
}

// countPages checks the file and returns its page count
func (v *Validator) countPages(filePath string) (int, error) {
	if err := v.CheckFile(filePath, true); err != nil {
		return 0, err
	}

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("invalid PDF file: %w", err)
	}
	defer f.Close()

	return r.NumPage(), nil
}

// CheckFile verifies the path names a non-empty regular file within the size
// limit. requireExt additionally insists on a .pdf extension.
func (v *Validator) CheckFile(filePath string, requireExt bool) error {
	if filePath == "" {
		return fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if requireExt && !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", filePath)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}

	if fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize)
	}

	return nil
}

// IsValidPDF performs a quick check to see if a file is a valid PDF
func (v *Validator) IsValidPDF(filePath string) bool {
	_, err := v.countPages(filePath)
	return err == nil
}
