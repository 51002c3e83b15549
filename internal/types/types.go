// Package types defines every cross-package data structure used by the treecat engine.
package types

// Encoding modes applied to files that carry no byte-order mark.
const (
	// EncodingModeAuto attempts strict UTF-8 validation before falling back to the legacy code page.
	EncodingModeAuto = "auto"
	// EncodingModeLegacy decodes with the platform legacy code page unconditionally.
	EncodingModeLegacy = "legacy"
)

// Options is the immutable configuration for a single report generation run.
// Extension entries are lower-cased and dot-prefixed; directory names are
// lower-cased and trimmed. Both sets are normalized once at construction.
type Options struct {
	RootPath              string
	IncludeExtensions     map[string]struct{}
	ExcludeDirectoryNames map[string]struct{}
	MaxFileSizeBytes      int64
	MaxOutputCharacters   int
	TreeOnly              bool
	UseExternalTree       bool
	NoBomEncodingMode     string
}

// FileEntry describes one filesystem entry observed during traversal.
// Entries are sourced fresh from the filesystem per run and never cached.
type FileEntry struct {
	AbsolutePath   string
	SizeBytes      int64
	IsDirectory    bool
	IsSymbolicLink bool
}

// ExtractionResult is the outcome of extracting one file: either decoded
// text (possibly truncated) or an error message, never both.
type ExtractionResult struct {
	Text         string
	ErrorMessage string
}

// TextResult wraps text in a successful ExtractionResult.
func TextResult(text string) ExtractionResult {
	return ExtractionResult{Text: text}
}

// ErrorResult wraps a failure message in an ExtractionResult.
func ErrorResult(message string) ExtractionResult {
	return ExtractionResult{ErrorMessage: message}
}

// SheetGrid accumulates spreadsheet cells before tab-separated serialization.
// Rows keep their source order; cells within a row are sparse by zero-based
// column index.
type SheetGrid struct {
	RowNumbers     []int
	Cells          map[int]map[int]string
	MaxColumnIndex int
}

// NewSheetGrid returns an empty grid.
func NewSheetGrid() *SheetGrid {
	return &SheetGrid{Cells: make(map[int]map[int]string), MaxColumnIndex: -1}
}

// SetCell stores a cell value, tracking row order and the widest column seen.
func (grid *SheetGrid) SetCell(rowNumber int, columnIndex int, value string) {
	rowCells, rowExists := grid.Cells[rowNumber]
	if !rowExists {
		rowCells = make(map[int]string)
		grid.Cells[rowNumber] = rowCells
		grid.RowNumbers = append(grid.RowNumbers, rowNumber)
	}
	rowCells[columnIndex] = value
	if columnIndex > grid.MaxColumnIndex {
		grid.MaxColumnIndex = columnIndex
	}
}
