package watcher_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plugforge/plugforge/pkg/logger"
	"github.com/plugforge/plugforge/pkg/watcher"
)

func testLogger() logger.Logger {
	return logger.CreateLoggerWithOutput("", "debug", &bytes.Buffer{})
}

func TestWatchReportsChangedFiles(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "Source"), 0755); err != nil {
		t.Fatal(err)
	}

	w, err := watcher.New(testLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()
	w.SetSettlingDelay(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan []string, 1)
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, root, func(paths []string) {
			select {
			case changed <- paths:
			default:
			}
		})
	}()

	// Give the watch set time to be established before writing
	time.Sleep(100 * time.Millisecond)

	target := filepath.Join(root, "Source", "MyPlugin.cpp")
	if err := os.WriteFile(target, []byte("// change"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-changed:
		found := false
		for _, p := range paths {
			if p == target {
				found = true
			}
		}
		if !found {
			t.Errorf("changed paths %v missing %s", paths, target)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Watch returned %v, want context.Canceled", err)
	}
}

func TestWatchIgnoresExcludedDirectories(t *testing.T) {
	root := t.TempDir()
	for _, sub := range []string{"Source", "Intermediate"} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0755); err != nil {
			t.Fatal(err)
		}
	}

	w, err := watcher.New(testLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()
	w.SetSettlingDelay(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan []string, 4)
	go func() {
		_ = w.Watch(ctx, root, func(paths []string) {
			changed <- paths
		})
	}()

	time.Sleep(100 * time.Millisecond)

	// A build byproduct must not trigger a rebuild
	if err := os.WriteFile(filepath.Join(root, "Intermediate", "obj.o"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-changed:
		t.Errorf("unexpected notification for excluded path: %v", paths)
	case <-time.After(300 * time.Millisecond):
	}

	// A source edit still does
	target := filepath.Join(root, "Source", "File.cpp")
	if err := os.WriteFile(target, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for source change notification")
	}
}

func TestWatchMissingRootFails(t *testing.T) {
	w, err := watcher.New(testLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	err = w.Watch(context.Background(), filepath.Join(t.TempDir(), "absent"), func([]string) {})
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}
