package engine

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/stubkit/stubd/pkg/config"
)

// watcher reports changes to stub documents below a data source's base
// directory. Bursts of events are collapsed into one reload.
type watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	log      *slog.Logger
}

func newWatcher(data string, debounce time.Duration, log *slog.Logger) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	root := config.BaseDir(data)
	// fsnotify is not recursive; register every directory up front.
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return &watcher{fsw: fsw, debounce: debounce, log: log}, nil
}

// run calls reload after each quiet period following a relevant change,
// until ctx is done.
func (w *watcher) run(ctx context.Context, reload func()) error {
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				w.addIfDir(ev.Name)
			}
			if !relevant(ev) {
				continue
			}
			w.log.Debug("stub document changed", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		case <-timer.C:
			reload()
		}
	}
}

func (w *watcher) addIfDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.fsw.Add(path); err == nil {
		w.log.Debug("watching new directory", "path", path)
	}
}

// relevant reports whether ev touches a stub document. Chmod alone is
// ignored; editors emit it on save alongside a write.
func relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	switch strings.ToLower(filepath.Ext(ev.Name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
