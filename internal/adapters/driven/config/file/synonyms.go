package file

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/leh60245/enterprise-storm/internal/logger"
)

// LoadSynonyms reads a YAML mapping of abbreviation to canonical company
// name and returns it merged over base. File entries win. Blank keys or
// values are skipped.
//
//	삼전: 삼성전자
//	하닉: SK하이닉스
func LoadSynonyms(path string, base map[string]string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synonyms: %w", err)
	}

	var entries map[string]string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse synonyms %s: %w", path, err)
	}

	merged := make(map[string]string, len(base)+len(entries))
	maps.Copy(merged, base)
	for k, v := range entries {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		merged[k] = v
	}
	return merged, nil
}

// SynonymWatcher reloads a synonym file whenever it changes on disk.
type SynonymWatcher struct {
	path     string
	base     map[string]string
	onChange func(map[string]string)
	watcher  *fsnotify.Watcher
	done     chan struct{}
}

// WatchSynonyms starts watching path. onChange receives the merged table
// after every successful reload; a file that fails to parse is logged and
// the previous table stays in effect. The watch ends when ctx is done or
// Close is called.
func WatchSynonyms(ctx context.Context, path string, base map[string]string,
	onChange func(map[string]string)) (*SynonymWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve synonyms path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Editors often replace the file rather than write it in place, so the
	// directory is watched instead of the file.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	sw := &SynonymWatcher{
		path:     abs,
		base:     base,
		onChange: onChange,
		watcher:  w,
		done:     make(chan struct{}),
	}
	go sw.run(ctx)
	return sw, nil
}

func (sw *SynonymWatcher) run(ctx context.Context) {
	defer close(sw.done)
	for {
		select {
		case <-ctx.Done():
			_ = sw.watcher.Close()
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if sw.relevant(event) {
				sw.reload()
			}
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("synonym watcher: %v", err)
		}
	}
}

// relevant reports whether event touches the watched file with content.
func (sw *SynonymWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != sw.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func (sw *SynonymWatcher) reload() {
	table, err := LoadSynonyms(sw.path, sw.base)
	if err != nil {
		logger.Warn("synonym reload skipped: %v", err)
		return
	}
	logger.Info("Reloaded %d synonyms from %s", len(table), sw.path)
	sw.onChange(table)
}

// Close stops the watcher and waits for its goroutine to exit.
func (sw *SynonymWatcher) Close() error {
	err := sw.watcher.Close()
	<-sw.done
	return err
}
