package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/osokin/treecat/internal/config"
	"github.com/osokin/treecat/internal/types"
)

func TestNormalizeExtensions(t *testing.T) {
	normalized := config.NormalizeExtensions([]string{" TXT ", ".Md", "", "  "})
	if _, present := normalized[".txt"]; !present {
		t.Fatalf("expected .txt in normalized set")
	}
	if _, present := normalized[".md"]; !present {
		t.Fatalf("expected .md in normalized set")
	}
	if len(normalized) != 2 {
		t.Fatalf("expected two entries, got %d", len(normalized))
	}
}

func TestNormalizeExtensionsEmptyFallsBackToDefaults(t *testing.T) {
	normalized := config.NormalizeExtensions(nil)
	if len(normalized) == 0 {
		t.Fatalf("expected built-in defaults for empty input")
	}
	if _, present := normalized[".txt"]; !present {
		t.Fatalf("defaults must contain .txt")
	}
	if _, present := normalized[".docx"]; !present {
		t.Fatalf("defaults must contain .docx")
	}
}

func TestNormalizeDirectoryNamesEmptyFallsBackToDefaults(t *testing.T) {
	normalized := config.NormalizeDirectoryNames([]string{"", "   "})
	if _, present := normalized["node_modules"]; !present {
		t.Fatalf("defaults must contain node_modules")
	}
	if _, present := normalized[".git"]; !present {
		t.Fatalf("defaults must contain .git")
	}
}

func TestBuildEngineOptionsDefaults(t *testing.T) {
	options := config.BuildEngineOptions("/root", nil, nil, 0, -1, false, false, "bogus")
	if options.MaxFileSizeBytes != config.DefaultMaxFileSizeBytes {
		t.Fatalf("expected default size ceiling, got %d", options.MaxFileSizeBytes)
	}
	if options.MaxOutputCharacters != config.DefaultMaxOutputCharacters {
		t.Fatalf("expected default character budget, got %d", options.MaxOutputCharacters)
	}
	if options.NoBomEncodingMode != types.EncodingModeAuto {
		t.Fatalf("unknown encoding mode must normalize to auto")
	}
}

func TestBuildEngineOptionsZeroBudgetDisablesTruncation(t *testing.T) {
	options := config.BuildEngineOptions("/root", nil, nil, 10, 0, false, false, types.EncodingModeAuto)
	if options.MaxOutputCharacters != 0 {
		t.Fatalf("explicit zero budget must be preserved, got %d", options.MaxOutputCharacters)
	}
}

func TestLoadFileConfigurationMerge(t *testing.T) {
	workingDirectory := t.TempDir()
	configContent := "tree_only: true\nmax_file_size_bytes: 2048\nexclude_directories:\n  - vendor\n"
	configPath := filepath.Join(workingDirectory, config.ConfigFileName)
	if writeError := os.WriteFile(configPath, []byte(configContent), 0o644); writeError != nil {
		t.Fatalf("writing configuration fixture: %v", writeError)
	}

	loaded, loadError := config.LoadFileConfiguration(config.LoadOptions{WorkingDirectory: workingDirectory})
	if loadError != nil {
		t.Fatalf("unexpected load error: %v", loadError)
	}
	if loaded.TreeOnly == nil || !*loaded.TreeOnly {
		t.Fatalf("expected tree_only true")
	}
	if loaded.MaxFileSizeBytes == nil || *loaded.MaxFileSizeBytes != 2048 {
		t.Fatalf("expected max_file_size_bytes 2048")
	}
	if len(loaded.ExcludeDirectories) != 1 || loaded.ExcludeDirectories[0] != "vendor" {
		t.Fatalf("expected exclude_directories [vendor], got %v", loaded.ExcludeDirectories)
	}
}

func TestLoadFileConfigurationMissingFile(t *testing.T) {
	loaded, loadError := config.LoadFileConfiguration(config.LoadOptions{WorkingDirectory: t.TempDir()})
	if loadError != nil {
		t.Fatalf("missing configuration must not be an error: %v", loadError)
	}
	if loaded.TreeOnly != nil {
		t.Fatalf("expected zero configuration for missing file")
	}
}

func TestFileConfigurationMergeOverride(t *testing.T) {
	baseTreeOnly := false
	overrideTreeOnly := true
	base := config.FileConfiguration{TreeOnly: &baseTreeOnly, EncodingMode: types.EncodingModeAuto}
	override := config.FileConfiguration{TreeOnly: &overrideTreeOnly}

	merged := base.Merge(override)
	if merged.TreeOnly == nil || !*merged.TreeOnly {
		t.Fatalf("override must win for tree_only")
	}
	if merged.EncodingMode != types.EncodingModeAuto {
		t.Fatalf("absent override must keep the base encoding mode")
	}
}
