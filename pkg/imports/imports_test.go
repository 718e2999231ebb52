package imports

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "main.go"), `package main

import "fmt"

import (
	"os"
	log "github.com/charmbracelet/log"
	_ "embed"
	. "github.com/example/dot"
)

func main() { fmt.Println(os.Args, log.Default()) }
`)
	writeFile(t, filepath.Join(dir, "pkg", "a", "a_test.go"), `package a

import (
	"testing"

	"github.com/spf13/cobra"
)
`)
	writeFile(t, filepath.Join(dir, "pkg", "cgo.go"), `package pkg

// #include <stdio.h>
import "C"
`)
	writeFile(t, filepath.Join(dir, "vendor", "x", "x.go"), `package x; import "github.com/vendored/only"`)
	writeFile(t, filepath.Join(dir, "testdata", "t.go"), `package t; import "github.com/testdata/only"`)
	writeFile(t, filepath.Join(dir, ".hidden", "h.go"), `package h; import "github.com/hidden/only"`)
	writeFile(t, filepath.Join(dir, "_tools", "t.go"), `package t; import "github.com/underscore/only"`)
	writeFile(t, filepath.Join(dir, "nested", "go.mod"), "module example.com/nested\n")
	writeFile(t, filepath.Join(dir, "nested", "n.go"), `package n; import "github.com/nested/only"`)
	writeFile(t, filepath.Join(dir, "broken.go"), `package main; import ( "github.com/broken/only"`)
	writeFile(t, filepath.Join(dir, "README.md"), `import "not/go"`)

	got, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	want := []string{
		"embed",
		"fmt",
		"github.com/charmbracelet/log",
		"github.com/example/dot",
		"github.com/spf13/cobra",
		"os",
		"testing",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Scan() = %v\nwant %v", got, want)
	}
}

func TestScanEmptyDir(t *testing.T) {
	got, err := Scan(t.TempDir())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Scan() = %v, want empty", got)
	}
}

func TestScanMissingDir(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}
