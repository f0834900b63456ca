package archive_test

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/plugforge/plugforge/pkg/archive"
	"github.com/plugforge/plugforge/pkg/logger"
)

func testLogger() logger.Logger {
	return logger.CreateLoggerWithOutput("", "debug", &bytes.Buffer{})
}

func TestArchiveRoundTrip(t *testing.T) {
	root := t.TempDir()
	pkg := filepath.Join(root, "MyPlugin_4_26_2")

	files := map[string]string{
		"MyPlugin.uplugin":               `{"FriendlyName": "MyPlugin"}`,
		"Binaries/Win64/MyPlugin.dll":    "binary",
		"Resources/Icon128.png":          "png",
		"Source/MyPlugin/MyPlugin.cpp":   "cpp",
		"Source/MyPlugin/MyPlugin.build": "build",
	}
	for rel, content := range files {
		path := filepath.Join(pkg, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	zipper := archive.NewZipper(testLogger())
	zipPath, err := zipper.Archive(pkg)
	if err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	if zipPath != pkg+".zip" {
		t.Errorf("zip path = %s, want %s", zipPath, pkg+".zip")
	}

	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}
	defer reader.Close()

	got := map[string]string{}
	for _, entry := range reader.File {
		rc, err := entry.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		got[entry.Name] = string(data)
	}

	if len(got) != len(files) {
		t.Fatalf("archive has %d entries, want %d: %v", len(got), len(files), got)
	}
	for rel, content := range files {
		if got[rel] != content {
			t.Errorf("entry %s = %q, want %q", rel, got[rel], content)
		}
	}
}

func TestArchiveOverwritesExisting(t *testing.T) {
	root := t.TempDir()
	pkg := filepath.Join(root, "Out")
	if err := os.MkdirAll(pkg, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pkg, "a.txt"), []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pkg+".zip", []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	zipper := archive.NewZipper(testLogger())
	zipPath, err := zipper.Archive(pkg)
	if err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("stale archive not replaced: %v", err)
	}
	defer reader.Close()
	if len(reader.File) != 1 || reader.File[0].Name != "a.txt" {
		t.Errorf("unexpected entries: %+v", reader.File)
	}
}

func TestArchiveMissingDirFails(t *testing.T) {
	zipper := archive.NewZipper(testLogger())
	_, err := zipper.Archive(filepath.Join(t.TempDir(), "absent"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
