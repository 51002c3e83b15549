// Package tree renders the directory tree section of a report, preferring an
// external tree utility when configured and falling back to a recursive
// box-drawing renderer.
package tree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/osokin/treecat/internal/pathfilter"
	"github.com/osokin/treecat/internal/runner"
	"github.com/osokin/treecat/internal/types"
	"github.com/osokin/treecat/internal/walk"
)

const (
	branchGlyph     = "├── "
	lastBranchGlyph = "└── "
	pipeIndent      = "│   "
	blankIndent     = "    "

	warningExternalTreeFailedFormat = "external tree utility failed, using internal renderer: %v"
	warningExternalTreeEmptyMessage = "external tree utility produced no output, using internal renderer"
	warningReadDirectoryFormat      = "skipping directory %s in tree: %v"
)

// Renderer produces the ASCII/Unicode tree for one directory.
type Renderer struct {
	filter          *pathfilter.Filter
	toolRunner      *runner.Runner
	logger          *zap.Logger
	useExternalTool bool
}

// NewRenderer constructs a Renderer. useExternalTool selects the external
// utility as the primary path; the internal renderer always remains as the
// fallback.
func NewRenderer(filter *pathfilter.Filter, toolRunner *runner.Runner, logger *zap.Logger, useExternalTool bool) *Renderer {
	return &Renderer{
		filter:          filter,
		toolRunner:      toolRunner,
		logger:          logger,
		useExternalTool: useExternalTool,
	}
}

// Render returns the tree lines for rootDirectoryPath. External tool
// failure or empty output degrades to the internal renderer with a logged
// warning; the report is still generated.
func (renderer *Renderer) Render(executionContext context.Context, rootDirectoryPath string) []string {
	if renderer.useExternalTool {
		externalLines, externalError := renderer.renderExternal(executionContext, rootDirectoryPath)
		if externalError != nil {
			renderer.logger.Warn(fmt.Sprintf(warningExternalTreeFailedFormat, externalError))
		} else if len(externalLines) == 0 {
			renderer.logger.Warn(warningExternalTreeEmptyMessage)
		} else {
			return externalLines
		}
	}

	var treeLines []string
	renderer.renderRecursive(rootDirectoryPath, "", &treeLines)
	return treeLines
}

// renderExternal invokes the platform tree utility via the tool runner.
func (renderer *Renderer) renderExternal(executionContext context.Context, rootDirectoryPath string) ([]string, error) {
	executable, arguments := externalTreeCommand(rootDirectoryPath)
	result, runError := renderer.toolRunner.Run(executionContext, executable, arguments...)
	if runError != nil {
		return nil, runError
	}
	trimmedOutput := strings.TrimSpace(result.Output)
	if trimmedOutput == "" {
		return nil, nil
	}
	return strings.Split(trimmedOutput, "\n"), nil
}

// renderRecursive lists one level, filters it, sorts directories before
// files, and emits box-drawing lines. Symbolic links are listed as leaves
// but never recursed into.
func (renderer *Renderer) renderRecursive(directoryPath string, indent string, treeLines *[]string) {
	directoryEntries, readDirectoryError := os.ReadDir(directoryPath)
	if readDirectoryError != nil {
		renderer.logger.Warn(fmt.Sprintf(warningReadDirectoryFormat, directoryPath, readDirectoryError))
		return
	}

	var visibleEntries []types.FileEntry
	for _, directoryEntry := range directoryEntries {
		entry, entryError := walk.EntryFromDirEntry(directoryPath, directoryEntry)
		if entryError != nil {
			continue
		}
		if renderer.filter.IsUnderExcluded(entry) {
			continue
		}
		visibleEntries = append(visibleEntries, entry)
	}

	sort.Slice(visibleEntries, func(firstIndex, secondIndex int) bool {
		first := visibleEntries[firstIndex]
		second := visibleEntries[secondIndex]
		if first.IsDirectory != second.IsDirectory {
			return first.IsDirectory
		}
		firstName := strings.ToLower(entryName(first))
		secondName := strings.ToLower(entryName(second))
		if firstName != secondName {
			return firstName < secondName
		}
		return entryName(first) < entryName(second)
	})

	for entryIndex, entry := range visibleEntries {
		isLastSibling := entryIndex == len(visibleEntries)-1

		branch := branchGlyph
		if isLastSibling {
			branch = lastBranchGlyph
		}
		*treeLines = append(*treeLines, indent+branch+entryName(entry))

		if entry.IsDirectory && !entry.IsSymbolicLink {
			childIndent := indent + pipeIndent
			if isLastSibling {
				childIndent = indent + blankIndent
			}
			renderer.renderRecursive(entry.AbsolutePath, childIndent, treeLines)
		}
	}
}

func entryName(entry types.FileEntry) string {
	return filepath.Base(entry.AbsolutePath)
}
