// Package report assembles the final Markdown document: header, tree
// section, and per-file fenced content blocks under a character budget.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/osokin/treecat/internal/extract"
	"github.com/osokin/treecat/internal/pathfilter"
	"github.com/osokin/treecat/internal/runner"
	"github.com/osokin/treecat/internal/textenc"
	"github.com/osokin/treecat/internal/tree"
	"github.com/osokin/treecat/internal/types"
	"github.com/osokin/treecat/internal/utils"
	"github.com/osokin/treecat/internal/walk"
)

const (
	titleFormat               = "# Directory report: %s"
	treeSectionHeading        = "## 1. Directory tree"
	contentsSectionHeading    = "## 2. File contents (filtered)"
	contentsSectionNoteFormat = "*(only files from the include list, at most %d bytes each)*"

	beginFileFormat = "----- BEGIN FILE: %s [%d bytes] ----"
	endFileFormat   = "----- END FILE:   %s ----"

	errorEmptyRootMessage  = "root path is not set"
	errorRootMissingFormat = "directory not found: %s"
	errorRootNotDirFormat  = "not a directory: %s"
	errorResolveRootFormat = "resolving root path %s: %w"
)

// Assembler orchestrates traversal, rendering, and extraction into one
// immutable Markdown report. It holds no state across Generate calls.
type Assembler struct {
	options   types.Options
	filter    *pathfilter.Filter
	collector *walk.Collector
	renderer  *tree.Renderer
	extractor *extract.Extractor
	logger    *zap.Logger
}

// NewAssembler wires the engine components for one Options value.
func NewAssembler(options types.Options, logger *zap.Logger) *Assembler {
	decoder := textenc.NewDecoder(options.NoBomEncodingMode)
	toolRunner := runner.NewRunner()
	filter := pathfilter.NewFilter(options)
	return &Assembler{
		options:   options,
		filter:    filter,
		collector: walk.NewCollector(filter, logger),
		renderer:  tree.NewRenderer(filter, toolRunner, logger, options.UseExternalTree),
		extractor: extract.NewExtractor(decoder, toolRunner, logger, options.MaxOutputCharacters),
		logger:    logger,
	}
}

// Generate produces the full report in a single linear pass. The only fatal
// conditions are a missing root path and a root that does not resolve to an
// existing directory; every other failure degrades to a warning or an
// inline per-file marker.
func (assembler *Assembler) Generate(executionContext context.Context) (string, error) {
	trimmedRoot := strings.TrimSpace(assembler.options.RootPath)
	if trimmedRoot == "" {
		return "", fmt.Errorf(errorEmptyRootMessage)
	}

	absoluteRoot, absoluteError := filepath.Abs(trimmedRoot)
	if absoluteError != nil {
		return "", fmt.Errorf(errorResolveRootFormat, trimmedRoot, absoluteError)
	}
	rootPath := filepath.Clean(absoluteRoot)

	rootInformation, statError := os.Stat(rootPath)
	if statError != nil {
		return "", fmt.Errorf(errorRootMissingFormat, rootPath)
	}
	if !rootInformation.IsDir() {
		return "", fmt.Errorf(errorRootNotDirFormat, rootPath)
	}

	// Exclusion applies even to the scan root: a root whose own name is
	// excluded yields empty sections.
	rootExcluded := assembler.filter.IsExcludedDirectoryName(filepath.Base(rootPath))

	var reportLines []string
	reportLines = append(reportLines, fmt.Sprintf(titleFormat, rootPath))
	reportLines = append(reportLines, treeSectionHeading)

	var treeLines []string
	if !rootExcluded {
		treeLines = assembler.renderer.Render(executionContext, rootPath)
	}
	treePayload := strings.Join(treeLines, "\n")
	treeFence := fenceFor(treePayload)
	reportLines = append(reportLines, treeFence)
	reportLines = append(reportLines, treeLines...)
	reportLines = append(reportLines, treeFence)

	if assembler.options.TreeOnly {
		return strings.Join(reportLines, "\n") + "\n", nil
	}

	reportLines = append(reportLines, "")
	reportLines = append(reportLines, contentsSectionHeading)
	reportLines = append(reportLines, fmt.Sprintf(contentsSectionNoteFormat, assembler.options.MaxFileSizeBytes))
	reportLines = append(reportLines, "")

	if !rootExcluded {
		reportLines = assembler.appendContentBlocks(executionContext, rootPath, reportLines)
	}

	return strings.Join(reportLines, "\n") + "\n", nil
}

// appendContentBlocks emits one fenced block per collected file, enforcing
// the cumulative character budget across files.
func (assembler *Assembler) appendContentBlocks(executionContext context.Context, rootPath string, reportLines []string) []string {
	collectedFiles := assembler.collector.CollectFiles(rootPath)
	walk.SortFileEntries(collectedFiles)

	budget := assembler.options.MaxOutputCharacters
	emittedCharacters := 0

	for _, entry := range collectedFiles {
		if budget > 0 && emittedCharacters >= budget {
			break
		}

		relativePath := utils.RelativePathOrSelf(entry.AbsolutePath, rootPath)
		extractionResult := assembler.extractor.ExtractFile(executionContext, entry)

		payload := extractionResult.Text
		if extractionResult.ErrorMessage != "" {
			payload = extractionResult.ErrorMessage
		}
		if budget > 0 {
			payload = utils.TruncateToBudget(payload, budget-emittedCharacters)
		}
		emittedCharacters += utf8.RuneCountInString(payload)

		beginLine := fmt.Sprintf(beginFileFormat, relativePath, entry.SizeBytes)
		endLine := fmt.Sprintf(endFileFormat, relativePath)
		blockFence := fenceFor(beginLine + "\n" + payload + "\n" + endLine)

		reportLines = append(reportLines, blockFence)
		reportLines = append(reportLines, beginLine)
		reportLines = append(reportLines, payload)
		reportLines = append(reportLines, endLine)
		reportLines = append(reportLines, blockFence)
		reportLines = append(reportLines, "")
	}
	return reportLines
}
