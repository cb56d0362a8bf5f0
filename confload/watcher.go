package confload

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the configuration file whenever it changes, calling
// onReload with the freshly loaded and validated values. A reload that
// fails is logged and the previous values stay in effect. Watch returns
// after installing the watcher; it stops when ctx is cancelled.
//
// The parent directory is watched rather than the file itself, so editors
// that replace the file on save keep triggering reloads.
func (l *Loader) Watch(ctx context.Context, path string, onReload func(map[string]any)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				name, err := filepath.Abs(event.Name)
				if err != nil || name != abs {
					continue
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
					continue
				}

				values, err := l.LoadFile(path)
				if err != nil {
					l.log.WithError(err).WithField("path", path).
						Warn("config reload failed, keeping previous values")
					continue
				}
				onReload(values)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.log.WithError(err).WithField("path", path).Warn("config watcher error")
			}
		}
	}()

	return nil
}
