// Package importer finds statement documents waiting in the import
// directory and moves them to the processed directory once committed.
package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileInfo describes a document in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// Scan returns documents in dir whose extension is in exts, in name order.
// A missing directory yields no files.
func Scan(dir string, exts []string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !hasExt(e.Name(), exts) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// Select keeps the paths that exist as regular files with an extension in exts.
func Select(paths, exts []string) []string {
	var out []string
	for _, p := range paths {
		if !hasExt(p, exts) {
			continue
		}
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		out = append(out, p)
	}
	return out
}

func hasExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// Archiver moves committed documents into the processed directory.
type Archiver struct {
	ImportDir    string
	ProcessedDir string
}

// NewArchiver creates an Archiver for the given directories.
func NewArchiver(importDir, processedDir string) *Archiver {
	return &Archiver{ImportDir: importDir, ProcessedDir: processedDir}
}

// MarkProcessed moves the document at path into the processed directory and
// returns its new path. An existing file of the same name is never
// overwritten: the base name gets a _1, _2, ... suffix instead.
func (a *Archiver) MarkProcessed(path string) (string, error) {
	if err := os.MkdirAll(a.ProcessedDir, 0o755); err != nil {
		return "", fmt.Errorf("creating processed dir: %w", err)
	}

	dst, err := freeName(a.ProcessedDir, filepath.Base(path))
	if err != nil {
		return "", err
	}
	if err := os.Rename(path, dst); err != nil {
		return "", fmt.Errorf("moving %s to processed: %w", filepath.Base(path), err)
	}
	return dst, nil
}

// Restore moves an archived document back to its original location.
func (a *Archiver) Restore(archived, original string) error {
	if err := os.Rename(archived, original); err != nil {
		return fmt.Errorf("restoring %s: %w", filepath.Base(original), err)
	}
	return nil
}

// ResetProcessed moves every processed document back into the import
// directory and returns how many were moved.
func (a *Archiver) ResetProcessed() (int, error) {
	entries, err := os.ReadDir(a.ProcessedDir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading processed dir: %w", err)
	}
	if err := os.MkdirAll(a.ImportDir, 0o755); err != nil {
		return 0, fmt.Errorf("creating import dir: %w", err)
	}

	moved := 0
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dst, err := freeName(a.ImportDir, e.Name())
		if err != nil {
			return moved, err
		}
		if err := os.Rename(filepath.Join(a.ProcessedDir, e.Name()), dst); err != nil {
			return moved, fmt.Errorf("moving %s back to import: %w", e.Name(), err)
		}
		moved++
	}
	return moved, nil
}

// freeName returns dir/name, or dir/<base>_N<ext> for the smallest N that
// does not exist yet.
func freeName(dir, name string) (string, error) {
	candidate := filepath.Join(dir, name)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for n := 1; ; n++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		candidate = filepath.Join(dir, base+"_"+strconv.Itoa(n)+ext)
	}
}
