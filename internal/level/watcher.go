package level

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ReloadDelay is how long a level file must stay quiet before it is
// reloaded. Editors often write a file in several steps.
const ReloadDelay = 100 * time.Millisecond

// Reload is the outcome of reloading a changed level file.
type Reload struct {
	Level *Level
	Err   error
}

// Watcher reloads a level document when it changes on disk.
type Watcher struct {
	path    string
	opts    Options
	log     *zap.Logger
	watcher *fsnotify.Watcher
	reloads chan Reload

	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// Watch starts watching the level document at path. The directory is
// watched rather than the file so that replace-on-save editors are seen.
func Watch(path string, opts Options, log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating watcher")
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "watching %s", path)
	}

	if log == nil {
		log = zap.NewNop()
	}

	w := &Watcher{
		path:    filepath.Clean(path),
		opts:    opts,
		log:     log,
		watcher: fw,
		reloads: make(chan Reload, 1),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Reloads delivers a freshly loaded level, or the load error, after each
// settled change. Only the newest result is kept if nobody is reading.
func (w *Watcher) Reloads() <-chan Reload {
	return w.reloads
}

// Close stops watching.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	timer := time.NewTimer(ReloadDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(ReloadDelay)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("level watcher error", zap.Error(err))

		case <-timer.C:
			w.log.Info("reloading level", zap.String("path", w.path))
			l, err := Load(w.path, w.opts, w.log)
			w.publish(Reload{Level: l, Err: err})
		}
	}
}

// publish replaces any unread reload with r.
func (w *Watcher) publish(r Reload) {
	for {
		select {
		case w.reloads <- r:
			return
		case old := <-w.reloads:
			if old.Level != nil {
				old.Level.Close()
			}
		}
	}
}
