package app

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"
)

// HotReloader watches the running binary for changes and triggers a callback
// when a newer version is detected. This is useful during development to
// automatically prompt for restart after recompilation.
type HotReloader struct {
	execPath    string
	startupTime time.Time

	mu          sync.Mutex
	watcher     *FileWatcher
	onNewBinary func()
	fired       bool
}

// NewHotReloader creates a new hot reloader that watches the current executable.
func NewHotReloader() (*HotReloader, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate executable: %w", err)
	}

	// go build replaces the file, so follow the symlink to the real path
	if realPath, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = realPath
	}

	info, err := os.Stat(execPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat executable: %w", err)
	}

	return &HotReloader{
		execPath:    execPath,
		startupTime: info.ModTime(),
	}, nil
}

// OnNewBinary sets the callback to invoke when a newer binary is detected.
// The callback is called from a background goroutine.
func (h *HotReloader) OnNewBinary(callback func()) {
	h.mu.Lock()
	h.onNewBinary = callback
	h.mu.Unlock()
}

// Start begins watching for binary changes.
func (h *HotReloader) Start() error {
	w, err := NewFileWatcher(time.Second)
	if err != nil {
		return err
	}
	if err := w.Watch(h.execPath, h.check); err != nil {
		w.Close()
		return err
	}
	h.mu.Lock()
	h.watcher = w
	h.fired = false
	h.mu.Unlock()
	return nil
}

// Stop stops watching.
func (h *HotReloader) Stop() {
	h.mu.Lock()
	w := h.watcher
	h.watcher = nil
	h.mu.Unlock()
	if w != nil {
		w.Close()
	}
}

// check fires the callback once per baseline when the binary is newer.
func (h *HotReloader) check() {
	info, err := os.Stat(h.execPath)
	if err != nil {
		return
	}
	h.mu.Lock()
	newer := info.ModTime().After(h.startupTime) && !h.fired
	if newer {
		h.fired = true
	}
	cb := h.onNewBinary
	h.mu.Unlock()

	if newer && cb != nil {
		log.Println("Hot reload: newer binary detected")
		cb()
	}
}

// ExecPath returns the path to the current executable.
func (h *HotReloader) ExecPath() string {
	return h.execPath
}

// StartupTime returns when the binary was last modified at program start.
func (h *HotReloader) StartupTime() time.Time {
	return h.startupTime
}

// ResetBaseline updates the baseline timestamp to the current binary's mod time.
// Call this when the user declines a restart to avoid repeated notifications.
func (h *HotReloader) ResetBaseline() {
	if info, err := os.Stat(h.execPath); err == nil {
		h.mu.Lock()
		h.startupTime = info.ModTime()
		h.fired = false
		h.mu.Unlock()
	}
}

// Restart replaces the current process with a new instance of the binary.
// This function does not return on success.
func (h *HotReloader) Restart() error {
	return syscall.Exec(h.execPath, os.Args, os.Environ())
}
