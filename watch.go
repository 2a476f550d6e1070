package pointlab

import (
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchFile invokes fn whenever the named file is written, debounced
// so editors that write in bursts trigger one re-run. The returned
// stop function releases the watcher.
func WatchFile(path string, debounce time.Duration, fn func()) (func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: many tools replace the file on save, which
	// would drop a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}
	base := filepath.Base(path)

	go func() {
		var timer *time.Timer
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, fn)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("pointlab: watch %s: %v", path, err)
			}
		}
	}()
	return watcher.Close, nil
}
