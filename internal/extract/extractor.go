// Package extract turns individual files into report text, dispatching by
// extension to the encoding decoder, the container XML extractors, or the
// external PDF tool.
package extract

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/osokin/treecat/internal/runner"
	"github.com/osokin/treecat/internal/textenc"
	"github.com/osokin/treecat/internal/types"
	"github.com/osokin/treecat/internal/utils"
)

const (
	// readErrorFormat is the inline marker for files that could not be read or decoded.
	readErrorFormat = "[READ ERROR: %s]"
	// extractionErrorFormat is the inline marker for failed document extraction.
	extractionErrorFormat = "[EXTRACTION ERROR: %s]"

	// legacyWordMessage replaces content of binary .doc files, which are not supported.
	legacyWordMessage = "Legacy binary Word format (.doc) is not supported; convert to .docx to include its text."
	// legacySpreadsheetMessage replaces content of binary .xls files, which are not supported.
	legacySpreadsheetMessage = "Legacy binary Excel format (.xls) is not supported; convert to .xlsx to include its data."
)

// Extractor extracts report text from files. All failures stay scoped to the
// file that caused them.
type Extractor struct {
	decoder             *textenc.Decoder
	toolRunner          *runner.Runner
	logger              *zap.Logger
	maxOutputCharacters int
}

// NewExtractor constructs an Extractor for one run.
func NewExtractor(decoder *textenc.Decoder, toolRunner *runner.Runner, logger *zap.Logger, maxOutputCharacters int) *Extractor {
	return &Extractor{
		decoder:             decoder,
		toolRunner:          toolRunner,
		logger:              logger,
		maxOutputCharacters: maxOutputCharacters,
	}
}

// ExtractFile returns the decoded content of entry, or an error result whose
// message is the complete inline marker emitted in place of the content.
// Extracted text is truncated to the configured character budget.
func (extractor *Extractor) ExtractFile(executionContext context.Context, entry types.FileEntry) types.ExtractionResult {
	switch utils.ExtensionOf(entry.AbsolutePath) {
	case ".docx":
		return extractor.documentResult(extractor.extractFlowDocument(executionContext, entry.AbsolutePath))
	case ".doc":
		return types.TextResult(legacyWordMessage)
	case ".xlsx", ".xlsm":
		return extractor.documentResult(extractor.extractSpreadsheet(executionContext, entry.AbsolutePath))
	case ".xls":
		return types.TextResult(legacySpreadsheetMessage)
	case ".pdf":
		return extractor.documentResult(extractor.extractPdf(executionContext, entry.AbsolutePath))
	default:
		return extractor.extractPlainText(entry.AbsolutePath)
	}
}

// extractPlainText reads and decodes a file with the configured encoding
// policy.
func (extractor *Extractor) extractPlainText(filePath string) types.ExtractionResult {
	fileBytes, readError := os.ReadFile(filePath)
	if readError != nil {
		return types.ErrorResult(fmt.Sprintf(readErrorFormat, readError))
	}
	decodedText, decodeError := extractor.decoder.Decode(fileBytes)
	if decodeError != nil {
		return types.ErrorResult(fmt.Sprintf(readErrorFormat, decodeError))
	}
	return types.TextResult(utils.TruncateToBudget(decodedText, extractor.maxOutputCharacters))
}

// documentResult maps a document extraction outcome onto an ExtractionResult
// with the extraction error marker.
func (extractor *Extractor) documentResult(text string, extractionError error) types.ExtractionResult {
	if extractionError != nil {
		return types.ErrorResult(fmt.Sprintf(extractionErrorFormat, extractionError))
	}
	return types.TextResult(utils.TruncateToBudget(text, extractor.maxOutputCharacters))
}
