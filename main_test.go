package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/pathtext/scene"
	canvasrenderer "github.com/ByLCY/pathtext/renderer/canvas"
)

func TestRunWritesOutputAndDebug(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out", "labels.pdf")
	debug := filepath.Join(dir, "debug", "layout.json")

	data := map[string]interface{}{
		"road":  map[string]interface{}{"number": "A1"},
		"river": map[string]interface{}{"name": "Elbe"},
	}
	r := canvasrenderer.NewRenderer("examples")
	opts := scene.BuildOptions{Measurer: r}
	if err := run("examples/labels.ptx", out, debug, data, opts, r); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	pdf, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	raw, err := os.ReadFile(debug)
	if err != nil {
		t.Fatalf("read debug json: %v", err)
	}
	if !bytes.Contains(raw, []byte(`"Elbe"`)) {
		t.Fatalf("debug json should contain the bound river name")
	}
}

func TestRunMissingInput(t *testing.T) {
	r := canvasrenderer.NewRenderer("")
	err := run(filepath.Join(t.TempDir(), "none.ptx"), "out.pdf", "", nil, scene.BuildOptions{Measurer: r}, r)
	if err == nil {
		t.Fatalf("expected error for missing input")
	}
}

func TestFormatFromExt(t *testing.T) {
	for path, want := range map[string]string{"a.svg": "svg", "b.png": "png", "c.pdf": "pdf", "d": "pdf"} {
		if got := formatFromExt(path); got != want {
			t.Fatalf("formatFromExt(%q) = %q, want %q", path, got, want)
		}
	}
}
