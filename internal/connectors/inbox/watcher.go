package inbox

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/steve-blackdove/nft-extractor/internal/core/domain"
	"github.com/steve-blackdove/nft-extractor/internal/core/ports/driven"
	"github.com/steve-blackdove/nft-extractor/internal/logger"
)

// DoneSuffix marks files that have already been processed.
const DoneSuffix = ".done"

// Ensure Watcher implements the batch source port.
var _ driven.BatchSource = (*Watcher)(nil)

// Watcher streams token references from files dropped into a
// directory. Files already present when Tokens is called are processed
// first, then new files as they appear. Drop files in with mv rather
// than writing them in place, so the create event sees complete
// content.
type Watcher struct {
	dir string
}

// New creates a drop-directory watcher for dir.
func New(dir string) *Watcher {
	return &Watcher{dir: dir}
}

// Tokens watches the directory and streams parsed references until
// the context is cancelled.
func (w *Watcher) Tokens(ctx context.Context) (<-chan domain.TokenRef, <-chan error) {
	refs := make(chan domain.TokenRef)
	errs := make(chan error, 1)

	go func() {
		defer close(refs)
		defer close(errs)

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			errs <- fmt.Errorf("create watcher: %w", err)
			return
		}
		defer watcher.Close()

		if err := watcher.Add(w.dir); err != nil {
			errs <- fmt.Errorf("watch %s: %w", w.dir, err)
			return
		}
		logger.Info("Watching %s for token list files", w.dir)

		// Process files that were dropped in before we started.
		entries, err := os.ReadDir(w.dir)
		if err != nil {
			errs <- fmt.Errorf("read %s: %w", w.dir, err)
			return
		}
		for _, entry := range entries {
			if entry.IsDir() || !processable(entry.Name()) {
				continue
			}
			if !w.processFile(ctx, filepath.Join(w.dir, entry.Name()), refs, errs) {
				return
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				if !processable(filepath.Base(event.Name)) {
					continue
				}
				if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
					continue
				}
				if !w.processFile(ctx, event.Name, refs, errs) {
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				select {
				case errs <- fmt.Errorf("watch: %w", err):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return refs, errs
}

// processFile parses a token list file line by line and marks it done.
// Returns false when the context was cancelled mid file.
func (w *Watcher) processFile(ctx context.Context, path string, refs chan<- domain.TokenRef, errs chan<- error) bool {
	f, err := os.Open(path)
	if err != nil {
		// The file may already have been renamed by a prior event.
		if os.IsNotExist(err) {
			return true
		}
		select {
		case errs <- fmt.Errorf("open %s: %w", path, err):
		case <-ctx.Done():
			return false
		}
		return true
	}

	logger.Info("Processing token list: %s", path)

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		ref, err := domain.ParseTokenRef(line)
		if err != nil {
			select {
			case errs <- fmt.Errorf("%s:%d: %w", filepath.Base(path), lineNo, err):
			case <-ctx.Done():
				f.Close()
				return false
			}
			continue
		}

		select {
		case refs <- ref:
		case <-ctx.Done():
			f.Close()
			return false
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("Reading %s: %v", path, err)
	}
	f.Close()

	if err := os.Rename(path, path+DoneSuffix); err != nil {
		logger.Warn("Could not mark %s as done: %v", path, err)
	}
	return true
}

// processable reports whether a file name is a candidate token list.
// Hidden files and already processed files are skipped.
func processable(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return !strings.HasSuffix(name, DoneSuffix)
}
