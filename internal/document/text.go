package document

import (
	"errors"
	"os"
	"strings"
)

// TextOpener reads plain-text statement dumps. Pages are separated by form
// feeds. Text documents carry no tables.
type TextOpener struct{}

// Open implements Opener. The password is ignored.
func (TextOpener) Open(path, _ string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, unreadable(path, err)
	}
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	if strings.TrimSpace(content) == "" {
		return nil, unreadable(path, errors.New("document has no pages"))
	}

	doc := &Document{Path: path}
	for _, chunk := range strings.Split(content, "\f") {
		doc.Pages = append(doc.Pages, Page{Text: strings.Trim(chunk, "\n")})
	}
	return doc, nil
}
