// Package watch imports catalog files dropped into a directory.
// It is a driving adapter: filesystem events become calls on the ingest port.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/storyfeed/internal/core/domain"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driving"
	"github.com/custodia-labs/storyfeed/internal/logger"
)

// DefaultSettle is how long a file must stay quiet before it is imported.
const DefaultSettle = 250 * time.Millisecond

// Errors returned by New.
var (
	ErrMissingIngestService = errors.New("watch: ingest service is required")
	ErrMissingDecoder       = errors.New("watch: decoder is required")
)

// Decoder reads an ingest batch from a catalog file.
type Decoder func(path string) (domain.IngestBatch, error)

// Result reports the import of one catalog file.
type Result struct {
	Path    string
	Summary domain.IngestSummary
	Err     error
}

// Watcher imports *.toml catalogs written to a directory.
type Watcher struct {
	dir    string
	ingest driving.IngestService
	decode Decoder
	settle time.Duration
}

// New creates a watcher for dir.
func New(dir string, ingest driving.IngestService, decode Decoder) (*Watcher, error) {
	if ingest == nil {
		return nil, ErrMissingIngestService
	}
	if decode == nil {
		return nil, ErrMissingDecoder
	}
	return &Watcher{
		dir:    dir,
		ingest: ingest,
		decode: decode,
		settle: DefaultSettle,
	}, nil
}

// WithSettle overrides the quiet period before a changed file is imported.
func (w *Watcher) WithSettle(d time.Duration) *Watcher {
	if d > 0 {
		w.settle = d
	}
	return w
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// ImportFile decodes and ingests one catalog file.
func (w *Watcher) ImportFile(ctx context.Context, path string) Result {
	res := Result{Path: path}
	batch, err := w.decode(path)
	if err != nil {
		res.Err = fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
		return res
	}
	res.Summary, res.Err = w.ingest.Ingest(ctx, batch)
	if res.Err != nil {
		res.Err = fmt.Errorf("ingesting %s: %w", filepath.Base(path), res.Err)
	}
	return res
}

// ScanExisting imports the catalogs already in the directory, in name order.
func (w *Watcher) ScanExisting(ctx context.Context) ([]Result, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", w.dir, err)
	}

	var results []Result
	for _, entry := range entries {
		if entry.IsDir() || !isCatalog(entry.Name()) {
			continue
		}
		results = append(results, w.ImportFile(ctx, filepath.Join(w.dir, entry.Name())))
	}
	return results, nil
}

// Watch imports catalogs as they are created or rewritten. The returned
// channel is closed once ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context) (<-chan Result, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", w.dir, err)
	}

	results := make(chan Result)
	go w.loop(ctx, fsw, results)
	return results, nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, results chan<- Result) {
	defer close(results)
	defer fsw.Close()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.settle)
	if !timer.Stop() {
		<-timer.C
	}

	logger.Debug("watch: watching %s", w.dir)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			path, ok := w.handleEvent(event)
			if !ok {
				continue
			}
			pending[path] = struct{}{}
			timer.Reset(w.settle)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch: %v", err)

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			sort.Strings(paths)

			for _, p := range paths {
				res := w.ImportFile(ctx, p)
				select {
				case results <- res:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// handleEvent returns the catalog path an event refers to, if it should
// trigger an import.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if !isCatalog(filepath.Base(event.Name)) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return event.Name, true
}

func isCatalog(name string) bool {
	return !strings.HasPrefix(name, ".") && strings.EqualFold(filepath.Ext(name), ".toml")
}
