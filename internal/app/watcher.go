package app

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events an editor produces when it
// saves a file.
const DefaultDebounce = 300 * time.Millisecond

// FileWatcher calls a callback when a watched file is written or replaced.
// Directories are watched rather than files so that atomic saves (write to
// a temp file, rename over the original) are seen.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	files   map[string]func()
	dirs    map[string]int
	pending map[string]*time.Timer
	closed  bool

	done chan struct{}
}

// NewFileWatcher starts a watcher goroutine.
func NewFileWatcher(debounce time.Duration) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw := &FileWatcher{
		watcher:  w,
		debounce: debounce,
		files:    make(map[string]func()),
		dirs:     make(map[string]int),
		pending:  make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	go fw.loop()
	return fw, nil
}

// Watch registers onChange for path, replacing any earlier callback for it.
// The callback runs on a timer goroutine.
func (fw *FileWatcher) Watch(path string, onChange func()) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	dir := filepath.Dir(path)

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.closed {
		return fmt.Errorf("watcher closed")
	}
	if _, ok := fw.files[path]; !ok {
		if fw.dirs[dir] == 0 {
			if err := fw.watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
		}
		fw.dirs[dir]++
	}
	fw.files[path] = onChange
	log.Printf("Watcher: watching %s", path)
	return nil
}

// Unwatch stops watching path.
func (fw *FileWatcher) Unwatch(path string) {
	path, err := filepath.Abs(path)
	if err != nil {
		return
	}
	dir := filepath.Dir(path)

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if _, ok := fw.files[path]; !ok {
		return
	}
	delete(fw.files, path)
	if t := fw.pending[path]; t != nil {
		t.Stop()
		delete(fw.pending, path)
	}
	fw.dirs[dir]--
	if fw.dirs[dir] <= 0 {
		delete(fw.dirs, dir)
		if !fw.closed {
			_ = fw.watcher.Remove(dir)
		}
	}
}

// Watched reports whether path has a callback registered.
func (fw *FileWatcher) Watched(path string) bool {
	path, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	fw.mu.Lock()
	defer fw.mu.Unlock()
	_, ok := fw.files[path]
	return ok
}

// Close stops the watcher. Pending callbacks are dropped.
func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	if fw.closed {
		fw.mu.Unlock()
		return nil
	}
	fw.closed = true
	for p, t := range fw.pending {
		t.Stop()
		delete(fw.pending, p)
	}
	fw.mu.Unlock()

	err := fw.watcher.Close()
	<-fw.done
	return err
}

func (fw *FileWatcher) loop() {
	defer close(fw.done)
	for {
		select {
		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				fw.schedule(filepath.Clean(ev.Name))
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watcher: %v", err)
		}
	}
}

// schedule restarts the debounce timer for path.
func (fw *FileWatcher) schedule(path string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.closed {
		return
	}
	if _, ok := fw.files[path]; !ok {
		return
	}
	if t := fw.pending[path]; t != nil {
		t.Stop()
	}
	fw.pending[path] = time.AfterFunc(fw.debounce, func() { fw.fire(path) })
}

func (fw *FileWatcher) fire(path string) {
	fw.mu.Lock()
	delete(fw.pending, path)
	cb := fw.files[path]
	closed := fw.closed
	fw.mu.Unlock()

	if cb != nil && !closed {
		log.Printf("Watcher: %s changed", filepath.Base(path))
		cb()
	}
}
