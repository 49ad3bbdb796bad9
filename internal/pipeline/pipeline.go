// Package pipeline stages new ledger rows from statement documents and
// commits them.
//
// Scan runs every document through classify, extract, clean, dedup and
// categorize, and returns the staged rows together with a human-readable log.
// Commit appends a staged batch to the ledger and archives its documents;
// either all of it happens or none of it does.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/tally/internal/config"
	"github.com/cleared-dev/tally/internal/dedup"
	"github.com/cleared-dev/tally/internal/document"
	"github.com/cleared-dev/tally/internal/extract"
	"github.com/cleared-dev/tally/internal/importer"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/runlog"
)

// ErrEmptyBatch is returned by Commit when there is nothing to append.
var ErrEmptyBatch = errors.New("nothing to commit")

// Categorizer picks a category for a cleaned description.
type Categorizer interface {
	Categorize(description string) string
}

// Archiver moves committed documents out of the import directory.
type Archiver interface {
	MarkProcessed(path string) (string, error)
	Restore(archived, original string) error
}

// RunLog records committed runs.
type RunLog interface {
	Append(entries []runlog.Entry) error
}

// Deps are the collaborators of a Pipeline. Extractors, RunLog and Now are
// optional.
type Deps struct {
	Opener      document.Opener
	Extractors  *extract.Registry
	Categorizer Categorizer
	Store       ledger.Store
	Archiver    Archiver
	RunLog      RunLog
	Logger      zerolog.Logger
	Config      *config.Config
	Now         func() time.Time
}

// Pipeline orchestrates Scan and Commit.
type Pipeline struct {
	deps Deps
	log  zerolog.Logger
}

// New creates a Pipeline.
func New(deps Deps) *Pipeline {
	if deps.Extractors == nil {
		deps.Extractors = extract.DefaultRegistry()
	}
	if deps.Config == nil {
		deps.Config = config.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Pipeline{deps: deps, log: deps.Logger.With().Str("component", "pipeline").Logger()}
}

// ScanOptions apply to every document of a scan.
type ScanOptions struct {
	Password string
	// Source replaces the extractor's source label on staged rows. It does
	// not affect which extractor is used.
	Source string
}

// Batch is the result of a scan.
type Batch struct {
	RunID   string
	Records []model.StagedRecord
	Logs    []string
}

func (b *Batch) logf(format string, args ...any) {
	b.Logs = append(b.Logs, fmt.Sprintf(format, args...))
}

// Documents returns the distinct originating documents of the batch in
// first-seen order.
func (b *Batch) Documents() []string {
	seen := make(map[string]bool)
	var docs []string
	for _, r := range b.Records {
		if !seen[r.Document] {
			seen[r.Document] = true
			docs = append(docs, r.Document)
		}
	}
	return docs
}

var (
	leadingID   = regexp.MustCompile(`^\d+\s*-?\s*`)
	upiFragment = regexp.MustCompile(`UPI-\d+-?`)
)

// cleanResidual strips a leading numeric id and leftover "UPI-<digits>-"
// fragments that survive extraction.
func cleanResidual(desc string) string {
	d := leadingID.ReplaceAllString(strings.TrimSpace(desc), "")
	d = strings.TrimSpace(upiFragment.ReplaceAllString(d, ""))
	if d == "" {
		return strings.TrimSpace(desc)
	}
	return d
}

// Scan processes paths, or every document in the import directory when
// paths is empty. Per-document problems are reported in Batch.Logs; an error
// is returned only when the ledger cannot be read at all or ctx is done.
func (p *Pipeline) Scan(ctx context.Context, paths []string, opts ScanOptions) (*Batch, error) {
	batch := &Batch{RunID: runlog.NewRunID()}
	log := p.log.With().Str("run_id", batch.RunID).Logger()

	docs, err := p.selectDocuments(paths)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		batch.logf("No documents found to process.")
		return batch, nil
	}

	existing, _, err := p.loadLedger(log)
	if err != nil {
		return nil, err
	}
	index := dedup.NewIndex(ledger.Hashes(existing)...)
	log.Debug().Int("known_hashes", index.Len()).Int("documents", len(docs)).Msg("scan started")

	for _, path := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.scanDocument(log, batch, path, opts, index)
	}

	log.Info().Int("staged", len(batch.Records)).Msg("scan finished")
	return batch, nil
}

func (p *Pipeline) selectDocuments(paths []string) ([]string, error) {
	exts := p.deps.Config.Scan.Extensions
	if len(exts) == 0 {
		exts = document.Extensions
	}
	if len(paths) > 0 {
		return importer.Select(paths, exts), nil
	}

	files, err := importer.Scan(p.deps.Config.Paths.ImportDir, exts)
	if err != nil {
		return nil, err
	}
	docs := make([]string, len(files))
	for i, f := range files {
		docs[i] = f.Path
	}
	return docs, nil
}

// loadLedger reads the current ledger. A corrupt ledger is treated as empty
// and reported through corrupt.
func (p *Pipeline) loadLedger(log zerolog.Logger) (rows []model.LedgerRow, corrupt bool, err error) {
	rows, err = p.deps.Store.Load()
	if errors.Is(err, ledger.ErrCorrupt) {
		log.Warn().Err(err).Str("ledger", p.deps.Store.Path()).Msg("ledger unreadable, starting from an empty ledger")
		return nil, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading ledger: %w", err)
	}
	return rows, false, nil
}

func (p *Pipeline) scanDocument(log zerolog.Logger, batch *Batch, path string, opts ScanOptions, index *dedup.Index) {
	name := filepath.Base(path)
	log = log.With().Str("document", name).Logger()
	batch.logf("Processing %s...", name)

	doc, err := p.deps.Opener.Open(path, opts.Password)
	if err != nil {
		msg := fmt.Sprintf("Error reading %s: %v", name, err)
		if errors.Is(err, document.ErrPassword) {
			msg += " (check password?)"
		}
		batch.logf("%s", msg)
		log.Warn().Err(err).Msg("document unreadable")
		return
	}

	docType := extract.Classify(doc.FirstPageText())
	ex, err := p.deps.Extractors.New(docType)
	if err != nil {
		batch.logf("Error processing %s: %v", name, err)
		log.Error().Err(err).Msg("no extractor")
		return
	}
	log.Debug().Str("type", string(docType)).Int("pages", len(doc.Pages)).Msg("classified")

	txns := ex.Extract(doc)

	if trace := extract.Tail(ex.Trace(), p.deps.Config.Scan.TraceTail); len(trace) > 0 {
		batch.logf("Detailed extraction trace:")
		batch.Logs = append(batch.Logs, trace...)
		batch.logf("End trace")
	}

	if len(txns) == 0 {
		batch.logf("Warning: no transactions extracted from %s.", name)
		batch.logf("Raw text preview:\n%s", preview(doc, p.deps.Config.Scan.PreviewChars))
		log.Warn().Str("type", string(docType)).Msg("no transactions extracted")
		return
	}

	var added, duplicates, credits int
	for _, txn := range txns {
		if txn.Kind == model.KindCredit {
			credits++
			continue
		}

		// Ledger amounts carry at most 2 decimals.
		amount := txn.Amount.Round(2)
		if !amount.IsPositive() {
			batch.logf("Skipped %s on %s: amount %s rounds to zero.", txn.Description, txn.Date.Format("2006-01-02"), txn.Amount)
			continue
		}
		if !amount.Equal(txn.Amount) {
			log.Debug().Str("amount", txn.Amount.String()).Str("rounded", amount.StringFixed(2)).Msg("amount rounded")
		}

		source := txn.Source
		if opts.Source != "" {
			source = opts.Source
		}
		desc := cleanResidual(txn.Description)

		hash := dedup.HashOf(txn.Date, amount, desc, source)
		if !index.Add(hash) {
			duplicates++
			continue
		}

		batch.Records = append(batch.Records, model.StagedRecord{
			LedgerRow: model.LedgerRow{
				Date:        txn.Date,
				Description: desc,
				Amount:      amount,
				Category:    p.deps.Categorizer.Categorize(desc),
				Source:      source,
				Hash:        hash,
			},
			Document: path,
		})
		added++
	}

	if duplicates > 0 || credits > 0 {
		batch.logf("%s: extracted %d. New: %d. Skipped: %d duplicates, %d credits.", name, len(txns), added, duplicates, credits)
	} else {
		batch.logf("%s: found %d new transactions.", name, added)
	}
	log.Info().
		Str("type", string(docType)).
		Int("extracted", len(txns)).
		Int("new", added).
		Int("duplicates", duplicates).
		Int("credits", credits).
		Msg("document scanned")
}

// preview joins the page texts and cuts them to at most n runes.
func preview(doc *document.Document, n int) string {
	texts := make([]string, len(doc.Pages))
	for i, pg := range doc.Pages {
		texts[i] = pg.Text
	}
	text := strings.Join(texts, "\n")
	if n <= 0 {
		return text
	}
	if r := []rune(text); len(r) > n {
		return string(r[:n]) + "..."
	}
	return text
}

// Commit appends the batch to the ledger and archives its documents. On any
// failure the ledger file and the documents are put back as they were.
func (p *Pipeline) Commit(ctx context.Context, batch *Batch) error {
	if batch == nil || len(batch.Records) == 0 {
		return ErrEmptyBatch
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	log := p.log.With().Str("run_id", batch.RunID).Logger()

	existing, corrupt, err := p.loadLedger(log)
	if err != nil {
		return err
	}

	rows := make([]model.LedgerRow, len(batch.Records))
	for i, r := range batch.Records {
		rows[i] = r.LedgerRow
	}
	if verrs := ledger.Validate(existing, rows); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
	}

	path := p.deps.Store.Path()
	snap, err := ledger.TakeSnapshot(path)
	if err != nil {
		return err
	}
	if corrupt {
		if err := keepCorrupt(log, path); err != nil {
			return err
		}
	}

	if err := p.deps.Store.Save(append(existing, rows...)); err != nil {
		return fmt.Errorf("saving ledger: %w", err)
	}

	docs := batch.Documents()
	type move struct{ from, to string }
	var moved []move
	for _, doc := range docs {
		dst, err := p.deps.Archiver.MarkProcessed(doc)
		if err != nil {
			for i := len(moved) - 1; i >= 0; i-- {
				if rerr := p.deps.Archiver.Restore(moved[i].to, moved[i].from); rerr != nil {
					log.Error().Err(rerr).Str("document", moved[i].from).Msg("restoring document")
				}
			}
			if rerr := snap.Restore(); rerr != nil {
				log.Error().Err(rerr).Msg("restoring ledger")
			}
			return fmt.Errorf("archiving %s: %w", filepath.Base(doc), err)
		}
		moved = append(moved, move{from: doc, to: dst})
	}

	log.Info().Int("rows", len(rows)).Int("documents", len(docs)).Str("ledger", path).Msg("batch committed")

	if p.deps.RunLog != nil {
		counts := make(map[string]int)
		for _, r := range batch.Records {
			counts[r.Document]++
		}
		now := p.deps.Now()
		entries := make([]runlog.Entry, len(docs))
		for i, doc := range docs {
			entries[i] = runlog.Entry{
				Timestamp: now,
				RunID:     batch.RunID,
				Document:  filepath.Base(doc),
				Action:    runlog.ActionCommitted,
				Details:   fmt.Sprintf("%d records to %s", counts[doc], filepath.Base(path)),
			}
		}
		// The ledger is already committed; a run log failure only loses the trail.
		if err := p.deps.RunLog.Append(entries); err != nil {
			log.Warn().Err(err).Msg("writing run log")
		}
	}
	return nil
}

// Recategorize applies the current rules to every ledger row and rewrites
// the ledger. It reports how many rows changed category out of total. A
// corrupt ledger is left untouched.
func (p *Pipeline) Recategorize(ctx context.Context) (changed, total int, err error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	rows, err := p.deps.Store.Load()
	if err != nil {
		return 0, 0, fmt.Errorf("loading ledger: %w", err)
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}

	for i := range rows {
		cat := p.deps.Categorizer.Categorize(rows[i].Description)
		if cat != rows[i].Category {
			rows[i].Category = cat
			changed++
		}
	}

	path := p.deps.Store.Path()
	if err := p.deps.Store.Save(rows); err != nil {
		return 0, 0, fmt.Errorf("saving ledger: %w", err)
	}
	p.log.Info().Int("changed", changed).Int("rows", len(rows)).Str("ledger", path).Msg("ledger recategorized")

	if p.deps.RunLog != nil {
		entry := runlog.Entry{
			Timestamp: p.deps.Now(),
			RunID:     runlog.NewRunID(),
			Document:  filepath.Base(path),
			Action:    runlog.ActionRecategorized,
			Details:   fmt.Sprintf("%d of %d rows changed category", changed, len(rows)),
		}
		if err := p.deps.RunLog.Append([]runlog.Entry{entry}); err != nil {
			p.log.Warn().Err(err).Msg("writing run log")
		}
	}
	return changed, len(rows), nil
}

// keepCorrupt copies an unreadable ledger aside before it is replaced.
func keepCorrupt(log zerolog.Logger, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading corrupt ledger: %w", err)
	}
	aside := path + ".corrupt"
	if err := os.WriteFile(aside, data, 0o644); err != nil {
		return fmt.Errorf("saving corrupt ledger: %w", err)
	}
	log.Warn().Str("copy", aside).Msg("corrupt ledger copied aside")
	return nil
}
