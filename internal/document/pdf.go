package document

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFOpener reads PDF statements with github.com/ledongthuc/pdf.
//
// Lines and tables are rebuilt from positioned text: glyphs are grouped into
// rows by baseline, ordered left to right, and split into cells wherever the
// horizontal gap is wide enough to be a column separator.
type PDFOpener struct {
	// MinTableRows is the number of consecutive multi-cell rows needed to
	// report a table. Zero means 2.
	MinTableRows int
}

const (
	minTableCells    = 3
	defaultFontSize  = 10.0
	spaceGapFactor   = 0.15
	columnGapFactor  = 1.5
	defaultTableRows = 2
)

// Open implements Opener.
func (o PDFOpener) Open(path, password string) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, unreadable(path, fmt.Errorf("pdf reader crashed: %v", r))
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, unreadable(path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, unreadable(path, err)
	}

	r, err := pdf.NewReaderEncrypted(f, info.Size(), onePassword(password))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return nil, unreadable(path, fmt.Errorf("%w: %w", ErrPassword, err))
		}
		return nil, unreadable(path, err)
	}

	n := r.NumPage()
	if n == 0 {
		return nil, unreadable(path, errors.New("document has no pages"))
	}

	minRows := o.MinTableRows
	if minRows == 0 {
		minRows = defaultTableRows
	}

	doc = &Document{Path: path}
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			doc.Pages = append(doc.Pages, Page{})
			continue
		}
		rows := buildRows(p.Content().Text)
		page := Page{
			Text:   rowsText(rows),
			Tables: detectTables(rows, minRows),
		}
		if page.Text == "" {
			page.Text = plainText(p)
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}

// onePassword yields the password once; the reader stops asking on "".
func onePassword(password string) func() string {
	used := false
	return func() string {
		if used {
			return ""
		}
		used = true
		return password
	}
}

func plainText(p pdf.Page) string {
	fonts := make(map[string]*pdf.Font)
	for _, name := range p.Fonts() {
		f := p.Font(name)
		fonts[name] = &f
	}
	text, err := p.GetPlainText(fonts)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// buildRows groups positioned text into rows of cells, top of page first.
func buildRows(items []pdf.Text) [][]string {
	byLine := make(map[int][]pdf.Text)
	for _, t := range items {
		if t.S == "" {
			continue
		}
		y := int(math.Round(t.Y))
		byLine[y] = append(byLine[y], t)
	}

	ys := make([]int, 0, len(byLine))
	for y := range byLine {
		ys = append(ys, y)
	}
	// PDF y grows upwards.
	sort.Sort(sort.Reverse(sort.IntSlice(ys)))

	var rows [][]string
	for _, y := range ys {
		line := byLine[y]
		sort.SliceStable(line, func(a, b int) bool { return line[a].X < line[b].X })
		if cells := splitCells(line); len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	return rows
}

func splitCells(line []pdf.Text) []string {
	var cells []string
	var cur strings.Builder
	flush := func() {
		if s := strings.Join(strings.Fields(cur.String()), " "); s != "" {
			cells = append(cells, s)
		}
		cur.Reset()
	}

	for i, t := range line {
		if i > 0 {
			prev := line[i-1]
			size := t.FontSize
			if size <= 0 {
				size = defaultFontSize
			}
			gap := t.X - (prev.X + prev.W)
			switch {
			case gap > size*columnGapFactor:
				flush()
			case gap > size*spaceGapFactor:
				cur.WriteByte(' ')
			}
		}
		cur.WriteString(t.S)
	}
	flush()
	return cells
}

func rowsText(rows [][]string) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, strings.Join(r, " "))
	}
	return strings.Join(lines, "\n")
}

// detectTables reports runs of at least minRows consecutive rows that have
// three or more cells.
func detectTables(rows [][]string, minRows int) []Table {
	var tables []Table
	var cur Table
	end := func() {
		if len(cur) >= minRows {
			tables = append(tables, cur)
		}
		cur = nil
	}
	for _, r := range rows {
		if len(r) >= minTableCells {
			cur = append(cur, r)
			continue
		}
		end()
	}
	end()
	return tables
}
