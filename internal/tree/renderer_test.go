package tree_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/osokin/treecat/internal/config"
	"github.com/osokin/treecat/internal/pathfilter"
	"github.com/osokin/treecat/internal/runner"
	"github.com/osokin/treecat/internal/tree"
	"github.com/osokin/treecat/internal/types"
)

func newFixtureRenderer(rootPath string, useExternalTool bool) *tree.Renderer {
	options := config.BuildEngineOptions(
		rootPath,
		[]string{".txt"},
		[]string{"node_modules"},
		config.DefaultMaxFileSizeBytes,
		0,
		false,
		useExternalTool,
		types.EncodingModeAuto,
	)
	filter := pathfilter.NewFilter(options)
	return tree.NewRenderer(filter, runner.NewRunner(), zap.NewNop(), useExternalTool)
}

func writeTreeFixture(t *testing.T, rootPath string) {
	t.Helper()
	fixturePaths := []string{
		filepath.Join(rootPath, "zeta.txt"),
		filepath.Join(rootPath, "alpha", "inner.txt"),
		filepath.Join(rootPath, "beta", "deep", "leaf.txt"),
		filepath.Join(rootPath, "node_modules", "hidden.txt"),
	}
	for _, fixturePath := range fixturePaths {
		if directoryError := os.MkdirAll(filepath.Dir(fixturePath), 0o755); directoryError != nil {
			t.Fatalf("creating fixture directory: %v", directoryError)
		}
		if writeError := os.WriteFile(fixturePath, []byte("x"), 0o644); writeError != nil {
			t.Fatalf("writing fixture file: %v", writeError)
		}
	}
}

func TestRenderInternalTree(t *testing.T) {
	rootPath := t.TempDir()
	writeTreeFixture(t, rootPath)

	renderer := newFixtureRenderer(rootPath, false)
	treeLines := renderer.Render(context.Background(), rootPath)

	expectedLines := []string{
		"├── alpha",
		"│   └── inner.txt",
		"├── beta",
		"│   └── deep",
		"│       └── leaf.txt",
		"└── zeta.txt",
	}
	if len(treeLines) != len(expectedLines) {
		t.Fatalf("expected %d lines, got %d:\n%s", len(expectedLines), len(treeLines), strings.Join(treeLines, "\n"))
	}
	for lineIndex, expectedLine := range expectedLines {
		if treeLines[lineIndex] != expectedLine {
			t.Fatalf("line %d: expected %q, got %q", lineIndex, expectedLine, treeLines[lineIndex])
		}
	}
}

func TestRenderDirectoriesBeforeFiles(t *testing.T) {
	rootPath := t.TempDir()
	if writeError := os.WriteFile(filepath.Join(rootPath, "aaa.txt"), []byte("x"), 0o644); writeError != nil {
		t.Fatalf("writing fixture file: %v", writeError)
	}
	if directoryError := os.Mkdir(filepath.Join(rootPath, "zzz"), 0o755); directoryError != nil {
		t.Fatalf("creating fixture directory: %v", directoryError)
	}

	renderer := newFixtureRenderer(rootPath, false)
	treeLines := renderer.Render(context.Background(), rootPath)

	if len(treeLines) != 2 {
		t.Fatalf("expected two lines, got %v", treeLines)
	}
	if !strings.HasSuffix(treeLines[0], "zzz") {
		t.Fatalf("directories must sort before files, got %v", treeLines)
	}
	if !strings.HasSuffix(treeLines[1], "aaa.txt") {
		t.Fatalf("expected file last, got %v", treeLines)
	}
}

func TestRenderExternalToolFallsBack(t *testing.T) {
	rootPath := t.TempDir()
	writeTreeFixture(t, rootPath)

	// The renderer must produce a tree even when the external utility is
	// unavailable or fails; the internal renderer is the fallback.
	renderer := newFixtureRenderer(rootPath, true)
	treeLines := renderer.Render(context.Background(), rootPath)
	if len(treeLines) == 0 {
		t.Fatalf("expected non-empty tree output")
	}
}
