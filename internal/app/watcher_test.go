package app

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcherDetectsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hero.png")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	fw, err := NewFileWatcher(20 * time.Millisecond)
	require.NoError(t, err)
	defer fw.Close()

	changed := make(chan struct{}, 4)
	require.NoError(t, fw.Watch(path, func() { changed <- struct{}{} }))
	assert.True(t, fw.Watched(path))

	require.NoError(t, os.WriteFile(path, []byte("bb"), 0644))
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}
}

func TestFileWatcherAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hero.png")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	fw, err := NewFileWatcher(20 * time.Millisecond)
	require.NoError(t, err)
	defer fw.Close()

	changed := make(chan struct{}, 4)
	require.NoError(t, fw.Watch(path, func() { changed <- struct{}{} }))

	tmp := filepath.Join(dir, ".hero.png.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("new"), 0644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification after rename")
	}
}

func TestFileWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hero.png")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	fw, err := NewFileWatcher(10 * time.Millisecond)
	require.NoError(t, err)
	defer fw.Close()

	var calls int32
	require.NoError(t, fw.Watch(path, func() { atomic.AddInt32(&calls, 1) }))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.png"), []byte("x"), 0644))

	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestFileWatcherUnwatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hero.png")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	fw, err := NewFileWatcher(10 * time.Millisecond)
	require.NoError(t, err)

	var calls int32
	require.NoError(t, fw.Watch(path, func() { atomic.AddInt32(&calls, 1) }))
	fw.Unwatch(path)
	assert.False(t, fw.Watched(path))

	require.NoError(t, os.WriteFile(path, []byte("b"), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&calls))

	require.NoError(t, fw.Close())
	require.NoError(t, fw.Close())
	assert.Error(t, fw.Watch(path, func() {}))
}
