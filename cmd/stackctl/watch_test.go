package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer guards a bytes.Buffer shared with the watch loop.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestIsConfigEvent(t *testing.T) {
	path := filepath.Join(string(filepath.Separator), "work", "cdk.json")

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: path, Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: path, Op: fsnotify.Create}, true},
		{"rename", fsnotify.Event{Name: path, Op: fsnotify.Rename}, true},
		{"chmod", fsnotify.Event{Name: path, Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: path, Op: fsnotify.Remove}, false},
		{"other file", fsnotify.Event{Name: filepath.Join(filepath.Dir(path), "notes.txt"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isConfigEvent(tt.event, path))
		})
	}
}

func TestWatchCmd_Flags(t *testing.T) {
	cmd := newWatchCmd(&rootOptions{})
	assert.Equal(t, "500ms", cmd.Flags().Lookup("debounce").DefValue)
	assert.Equal(t, "cdk.out", cmd.Flags().Lookup("output").DefValue)
}

func TestRunWatch(t *testing.T) {
	cfg := writeConfig(t, "example.com")
	outDir := t.TempDir()
	opts := &rootOptions{configPath: cfg}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- runWatch(ctx, opts, watchOptions{debounce: 20 * time.Millisecond, outDir: outDir}, &out)
	}()

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(outDir, "oculus-dev.template.json"))
		return err == nil
	}, 10*time.Second, 20*time.Millisecond)

	data, err := os.ReadFile(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfg, bytes.Replace(data, []byte(`"vpcAzCount": 2`), []byte(`"vpcAzCount": 0`), 1), 0o644))

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("Synthesis failed"))
	}, 10*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	assert.Contains(t, out.String(), "Watching: ")
	assert.Contains(t, out.String(), "Change detected")
	assert.Contains(t, out.String(), "Stopping watch...")
}
