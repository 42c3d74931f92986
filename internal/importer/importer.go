// Package importer loads content files into the record store.
package importer

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/panjf2000/ants/v2"
	"github.com/pathshala/pathshala/internal/config"
	"github.com/pathshala/pathshala/internal/fileid"
	"github.com/pathshala/pathshala/internal/metrics"
	"github.com/pathshala/pathshala/internal/models"
	"github.com/pathshala/pathshala/internal/storage"
	"github.com/pathshala/pathshala/pkg/utils"
	"go.uber.org/zap"
)

// ErrUnsupported is returned for files whose extension is not importable.
var ErrUnsupported = errors.New("unsupported file type")

// Importer turns content files into records.
type Importer struct {
	store      storage.Store
	workers    int
	extensions []string
	metrics    *metrics.Metrics
	logger     *zap.Logger
	policy     *bluemonday.Policy
}

// New creates an importer. m and logger may be nil.
func New(store storage.Store, cfg config.ImporterConfig, m *metrics.Metrics, logger *zap.Logger) *Importer {
	exts := make([]string, 0, len(cfg.Extensions))
	for _, e := range cfg.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if e != "" {
			exts = append(exts, e)
		}
	}
	return &Importer{
		store:      store,
		workers:    max(1, cfg.Workers),
		extensions: exts,
		metrics:    m,
		logger:     utils.OrNop(logger),
		policy:     bluemonday.StrictPolicy(),
	}
}

// Supported reports whether path has an importable extension.
func (im *Importer) Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(supportedExtensions, ext) {
		return false
	}
	return len(im.extensions) == 0 || slices.Contains(im.extensions, ext)
}

var supportedExtensions = []string{".yaml", ".yml", ".json", ".xlsx", ".pdf", ".docx", ".odt", ".rtf", ".txt", ".md"}

// Clean strips markup from s, trims it and brings it to NFC.
func (im *Importer) Clean(s string) string {
	return utils.NFC(strings.TrimSpace(html.UnescapeString(im.policy.Sanitize(s))))
}

// ImportFile replaces every record previously imported from path with the
// records the file holds now, and returns how many were stored. New records
// are upserted before stale ones are removed, so a failed store leaves the
// previous import in place.
func (im *Importer) ImportFile(ctx context.Context, path string) (int, error) {
	source, err := fileid.Source(path)
	if err != nil {
		return 0, err
	}
	if !im.Supported(source) {
		return 0, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(source))
	}
	info, err := os.Stat(source)
	if err != nil {
		return 0, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("not a regular file: %s", source)
	}
	content, err := os.ReadFile(source)
	if err != nil {
		return 0, fmt.Errorf("read file: %w", err)
	}

	records, err := im.parse(source, content)
	if err != nil {
		return 0, err
	}
	im.prepare(records, source, info.ModTime().UTC())

	perCategory := make(map[models.Category]int)
	keep := make([]storage.Key, 0, len(records))
	for _, rec := range records {
		if err := im.store.Put(ctx, rec); err != nil {
			return 0, fmt.Errorf("store %s %s: %w", rec.Category(), rec.Meta().ID, err)
		}
		perCategory[rec.Category()]++
		keep = append(keep, storage.KeyOf(rec))
	}
	if _, err := im.store.DeleteBySource(ctx, source, keep...); err != nil {
		return 0, fmt.Errorf("delete stale records: %w", err)
	}
	for c, n := range perCategory {
		im.metrics.ObserveImport(string(c), n)
	}
	im.logger.Debug("File imported", zap.String("path", source), zap.Int("records", len(records)))
	return len(records), nil
}

func (im *Importer) parse(source string, content []byte) ([]models.Record, error) {
	ext := strings.ToLower(filepath.Ext(source))
	switch ext {
	case ".yaml", ".yml", ".json":
		b, err := parseBundle(content, ext)
		if err != nil {
			return nil, err
		}
		return b.Records(), nil
	case ".xlsx":
		qs, err := parseQuestionSheets(content)
		if err != nil {
			return nil, err
		}
		out := make([]models.Record, len(qs))
		for i, q := range qs {
			out[i] = q
		}
		return out, nil
	}
	text, err := extractText(content, ext)
	if err != nil {
		return nil, fmt.Errorf("extract content: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return []models.Record{noteFromFile(source, text)}, nil
}

// noteFromFile titles the note after the file and files it under the
// subject named by its parent directory.
func noteFromFile(source, text string) *models.Note {
	name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return &models.Note{
		Title:   utils.CollapseSpace(name),
		Subject: filepath.Base(filepath.Dir(source)),
		Content: strings.TrimSpace(text),
	}
}

// prepare sanitizes records and fills in source, IDs and timestamps.
// Records keep an ID they were given; the rest get one derived from the
// source and their position among records of the same category.
func (im *Importer) prepare(records []models.Record, source string, modTime time.Time) {
	ordinal := make(map[models.Category]int)
	for _, rec := range records {
		rec.Sanitize(im.Clean)
		meta := rec.Meta()
		meta.Source = source
		c := rec.Category()
		if meta.ID == "" {
			meta.ID = fileid.RecordID(source, string(c), ordinal[c])
		}
		ordinal[c]++
		if meta.CreatedAt.IsZero() {
			meta.CreatedAt = modTime
		}
	}
}

// RemoveFile deletes every record imported from path.
func (im *Importer) RemoveFile(ctx context.Context, path string) (int64, error) {
	source, err := fileid.Source(path)
	if err != nil {
		return 0, err
	}
	n, err := im.store.DeleteBySource(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("delete records of %s: %w", source, err)
	}
	im.logger.Debug("File records removed", zap.String("path", source), zap.Int64("records", n))
	return n, nil
}

// Result summarizes a directory import.
type Result struct {
	Files   int `json:"files"`
	Records int `json:"records"`
	Failed  int `json:"failed"`
}

// ImportDirectory imports every supported file under root on a worker pool.
// A failing file does not stop the others; their errors are joined.
func (im *Importer) ImportDirectory(ctx context.Context, root string, recursive bool) (Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Result{}, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return Result{}, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return Result{}, fmt.Errorf("not a directory: %s", absRoot)
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != absRoot && (!recursive || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if im.Supported(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("walk %s: %w", absRoot, err)
	}

	pool, err := ants.NewPool(im.workers)
	if err != nil {
		return Result{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		res  Result
		errs []error
	)
	for _, path := range files {
		path := path
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			n, err := im.ImportFile(ctx, path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed++
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
				im.logger.Warn("Import failed", zap.String("path", path), zap.Error(err))
				return
			}
			res.Files++
			res.Records += n
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("submit %s: %w", path, submitErr))
			mu.Unlock()
			break
		}
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return res, errors.Join(errs...)
}
