// Package document models statement documents as pages of text lines and
// extracted tables, and opens them from disk.
package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnreadable marks documents that could not be opened: wrong password,
// corrupt or unsupported file.
var ErrUnreadable = errors.New("document unreadable")

// ErrPassword is wrapped into UnreadableError when decryption fails.
var ErrPassword = errors.New("wrong or missing password")

// UnreadableError carries the document path and the underlying cause.
type UnreadableError struct {
	Path string
	Err  error
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrUnreadable, filepath.Base(e.Path), e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is.
func (e *UnreadableError) Unwrap() []error {
	return []error{ErrUnreadable, e.Err}
}

func unreadable(path string, err error) error {
	return &UnreadableError{Path: path, Err: err}
}

// Table is an extracted table: ordered rows of ordered cells.
type Table [][]string

// Page is one page of a document.
type Page struct {
	Text   string
	Tables []Table
}

// Lines splits the page text into lines.
func (p Page) Lines() []string {
	if p.Text == "" {
		return nil
	}
	return strings.Split(p.Text, "\n")
}

// Document is an opened statement.
type Document struct {
	Path  string
	Pages []Page
}

// FirstPageText returns the text of the first page, or "" for empty documents.
func (d *Document) FirstPageText() string {
	if d == nil || len(d.Pages) == 0 {
		return ""
	}
	return d.Pages[0].Text
}

// Opener opens a document at path, decrypting it with password when needed.
type Opener interface {
	Open(path, password string) (*Document, error)
}

// Extensions lists the file extensions Open understands.
var Extensions = []string{".pdf", ".txt"}

// FileOpener dispatches on file extension.
type FileOpener struct {
	PDF  PDFOpener
	Text TextOpener
}

// Open implements Opener.
func (o FileOpener) Open(path, password string) (*Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return o.PDF.Open(path, password)
	case ".txt":
		return o.Text.Open(path, password)
	default:
		return nil, unreadable(path, fmt.Errorf("unsupported file type %q", filepath.Ext(path)))
	}
}
