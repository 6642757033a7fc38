package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesCompiledInConstants(t *testing.T) {
	c := Default()
	if c.PieceSize != DefaultPieceSize {
		t.Fatalf("PieceSize = %d, want %d", c.PieceSize, DefaultPieceSize)
	}
	if !c.UsePrescreen {
		t.Fatalf("UsePrescreen should default to true")
	}
}

func TestReadJSONOverlaysOnDefaults(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "config.json")
	if err := os.WriteFile(f, []byte(`{"ThreadCount": 8, "Snappy": true}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c, err := ReadJSON(f)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if c.ThreadCount != 8 {
		t.Fatalf("ThreadCount = %d, want 8", c.ThreadCount)
	}
	if !c.Snappy {
		t.Fatalf("Snappy = false, want true")
	}
	// Fields absent from the JSON keep their Default() values.
	if c.PieceSize != DefaultPieceSize {
		t.Fatalf("PieceSize = %d, want default %d", c.PieceSize, DefaultPieceSize)
	}
}

func TestReadTOMLOverlaysOnDefaults(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(f, []byte("MinMatchCount = 5\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c, err := ReadTOML(f)
	if err != nil {
		t.Fatalf("ReadTOML: %v", err)
	}
	if c.MinMatchCount != 5 {
		t.Fatalf("MinMatchCount = %d, want 5", c.MinMatchCount)
	}
}

func TestMaxGapSize(t *testing.T) {
	c := Default()
	c.MaxGapRatio = 0.1
	if got := c.MaxGapSize(100); got != 10 {
		t.Fatalf("MaxGapSize(100) = %d, want 10", got)
	}
}
