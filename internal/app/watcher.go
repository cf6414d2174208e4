package app

import (
	"os"

	fsw "github.com/corey/sahayak/internal/adapters/fsnotify"
	"go.uber.org/zap"
)

// startWatcher reloads the corpus whenever the CSV changes. Failures are
// logged; the daemon keeps serving the last good snapshot.
func (a *App) startWatcher() {
	if a.Config.CSVPath == "" {
		return
	}
	w, err := fsw.NewWatcher(fsw.DefaultDebounce)
	if err != nil {
		a.Log.Warn("file watcher unavailable", zap.Error(err))
		return
	}
	w.OnError = func(err error) { a.Log.Warn("file watcher", zap.Error(err)) }
	if err := w.Watch(a.Config.CSVPath, a.onCorpusChanged); err != nil {
		w.Stop()
		a.Log.Warn("file watcher unavailable", zap.String("path", a.Config.CSVPath), zap.Error(err))
		return
	}
	a.Watcher = w
}

func (a *App) stopWatcher() {
	if a.Watcher != nil {
		a.Watcher.Stop()
	}
}

func (a *App) onCorpusChanged(path string) {
	if _, err := os.Stat(path); err != nil {
		a.Log.Warn("corpus file gone, keeping current snapshot", zap.String("path", path))
		return
	}
	if _, err := a.LoadFile(path); err != nil {
		a.Log.Warn("corpus reload failed, keeping current snapshot", zap.Error(err))
	}
}
