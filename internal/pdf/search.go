package pdf

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

const (
	// DefaultSearchDepth bounds how many directory levels a search descends
	DefaultSearchDepth = 5
	// DefaultSearchLimit caps the number of files one search returns
	DefaultSearchLimit = 500
)

// Search finds report PDFs below a directory. Hidden entries and symlinks
// are skipped.
type Search struct {
	validator *Validator
	maxDepth  int
	fileLimit int
}

// NewSearch creates a search that only lists PDFs within the size limit
func NewSearch(maxFileSize int64) *Search {
	return &Search{
		validator: NewValidator(maxFileSize),
		maxDepth:  DefaultSearchDepth,
		fileLimit: DefaultSearchLimit,
	}
}

// SearchDirectory walks req.Directory in lexical order and returns the PDFs
// whose names match req.Query. An empty query matches every PDF.
func (s *Search) SearchDirectory(ctx context.Context, req PDFSearchDirectoryRequest) (*PDFSearchDirectoryResult, error) {
	if req.Directory == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}

	root, err := filepath.Abs(req.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory path: %w", err)
	}

	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("directory does not exist: %s", req.Directory)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", req.Directory)
	}

	result := &PDFSearchDirectoryResult{
		Files:       []FileInfo{},
		Directory:   root,
		SearchQuery: req.Query,
	}
	query := splitIntoWords(req.Query)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// Unreadable entries are left out of the listing.
			return nil //nolint:nilerr
		}
		if path == root {
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") || d.Type()&fs.ModeSymlink != 0 {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if s.depth(root, path) >= s.maxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if !matchesQuery(d.Name(), query) || s.validator.CheckFile(path, true) != nil {
			return nil
		}

		if len(result.Files) >= s.fileLimit {
			result.Truncated = true
			return filepath.SkipAll
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr
		}
		result.Files = append(result.Files, FileInfo{
			Name:         d.Name(),
			Path:         path,
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory: %w", err)
	}

	result.TotalCount = len(result.Files)
	return result, nil
}

// depth counts the directory levels between root and dir
func (s *Search) depth(root, dir string) int {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return s.maxDepth
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// matchesQuery reports whether every query word occurs in some word of the
// file name, ignoring case and the .pdf extension
func matchesQuery(filename string, query []string) bool {
	if len(query) == 0 {
		return true
	}

	name := strings.ToLower(filename)
	name = strings.TrimSuffix(name, ".pdf")
	words := splitIntoWords(name)

	for _, q := range query {
		found := false
		for _, w := range words {
			if strings.Contains(w, q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// splitIntoWords lowercases text and splits it at anything that is not a
// letter or digit
func splitIntoWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
