package export

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveWritesExactContent(t *testing.T) {
	dir := t.TempDir()
	content := "date,project,hours\n2026-10-16,KGA,7.5\n"

	path, err := Save(Request{FolderPath: dir, FileName: "timesheet.csv", CSVContent: content})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if path != filepath.Join(dir, "timesheet.csv") {
		t.Errorf("path = %q", path)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != content {
		t.Errorf("content = %q, want %q", got, content)
	}
}

func TestSaveOverwrites(t *testing.T) {
	dir := t.TempDir()
	for _, content := range []string{"a,b\n1,2\n", "a\n"} {
		if _, err := Save(Request{FolderPath: dir, FileName: "out.csv", CSVContent: content}); err != nil {
			t.Fatal(err)
		}
	}
	got, _ := os.ReadFile(filepath.Join(dir, "out.csv"))
	if string(got) != "a\n" {
		t.Errorf("content = %q, want %q", got, "a\n")
	}
}

func TestSaveRejectsInvalidRequests(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		req  Request
	}{
		{name: "missing folder", req: Request{FileName: "a.csv", CSVContent: "x"}},
		{name: "missing file name", req: Request{FolderPath: dir, CSVContent: "x"}},
		{name: "missing content", req: Request{FolderPath: dir, FileName: "a.csv"}},
		{name: "path in file name", req: Request{FolderPath: dir, FileName: "../a.csv", CSVContent: "x"}},
		{name: "backslash in file name", req: Request{FolderPath: dir, FileName: `sub\a.csv`, CSVContent: "x"}},
		{name: "dot dot", req: Request{FolderPath: dir, FileName: "..", CSVContent: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Save(tt.req)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("Save() error = %v, want ErrInvalidRequest", err)
			}
		})
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("invalid requests wrote %d files", len(entries))
	}
}

func TestSaveMissingFolder(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")
	_, err := Save(Request{FolderPath: missing, FileName: "a.csv", CSVContent: "x"})
	if err == nil {
		t.Fatal("Save() into a missing folder succeeded")
	}
	if errors.Is(err, ErrInvalidRequest) {
		t.Errorf("error = %v, want an I/O error", err)
	}
}
