// Package export writes renderer-built CSV files to a folder the user chose.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidRequest is returned for a save request with a missing or
// malformed field. Nothing is written.
var ErrInvalidRequest = errors.New("invalid auto-export request")

// Request is a save-csv-auto payload.
type Request struct {
	FolderPath string `json:"folderPath"`
	FileName   string `json:"fileName"`
	CSVContent string `json:"csvContent"`
}

// Validate checks that every field is present and the file name is a bare
// name that cannot escape the folder.
func (r Request) Validate() error {
	switch {
	case r.FolderPath == "":
		return fmt.Errorf("%w: missing folder path", ErrInvalidRequest)
	case r.FileName == "":
		return fmt.Errorf("%w: missing file name", ErrInvalidRequest)
	case r.CSVContent == "":
		return fmt.Errorf("%w: missing content", ErrInvalidRequest)
	}
	if r.FileName != filepath.Base(r.FileName) || strings.ContainsAny(r.FileName, `/\`) || r.FileName == "." || r.FileName == ".." {
		return fmt.Errorf("%w: file name %q must not contain a path", ErrInvalidRequest, r.FileName)
	}
	return nil
}

// Path returns the destination file path.
func (r Request) Path() string {
	return filepath.Join(r.FolderPath, r.FileName)
}

// Save writes the content verbatim to folder/fileName, replacing any
// existing file.
func Save(r Request) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}

	info, err := os.Stat(r.FolderPath)
	if err != nil {
		return "", fmt.Errorf("export folder: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("export folder %s is not a directory", r.FolderPath)
	}

	path := r.Path()
	if err := os.WriteFile(path, []byte(r.CSVContent), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
