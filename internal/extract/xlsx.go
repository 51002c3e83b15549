package extract

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/osokin/treecat/internal/types"
	"github.com/osokin/treecat/internal/utils"
)

const (
	sharedStringsPartPath = "xl/sharedStrings.xml"
	workbookPartPath      = "xl/workbook.xml"
	workbookRelsPartPath  = "xl/_rels/workbook.xml.rels"
	worksheetsDirectory   = "xl/worksheets"

	sheetMarkerFormat = "SHEET: %s\n"

	errorNoWorksheetsFormat      = "container %s holds no worksheets"
	errorSharedStringIndexFormat = "shared string index %d out of range (table holds %d)"
	errorParseWorksheetFormat    = "parsing worksheet %s: %w"
)

// sheetReference pairs a declared sheet name with its worksheet part path.
type sheetReference struct {
	Name     string
	PartPath string
}

// extractSpreadsheet unpacks an .xlsx/.xlsm container and serializes every
// sheet as tab-separated rows, enforcing the character budget per sheet and
// cumulatively.
func (extractor *Extractor) extractSpreadsheet(executionContext context.Context, spreadsheetPath string) (string, error) {
	scratchDirectory, cleanup, containerError := extractor.extractContainer(executionContext, spreadsheetPath)
	if containerError != nil {
		return "", containerError
	}
	defer cleanup()

	sharedStrings, sharedStringsError := readSharedStrings(filepath.Join(scratchDirectory, filepath.FromSlash(sharedStringsPartPath)))
	if sharedStringsError != nil {
		return "", sharedStringsError
	}

	sheetReferences, resolveError := resolveSheetReferences(scratchDirectory)
	if resolveError != nil {
		return "", resolveError
	}
	if len(sheetReferences) == 0 {
		return "", fmt.Errorf(errorNoWorksheetsFormat, filepath.Base(spreadsheetPath))
	}

	budget := extractor.maxOutputCharacters
	var outputBuilder strings.Builder
	for _, reference := range sheetReferences {
		sheetText := extractor.renderSheet(reference, sharedStrings)
		sheetText = utils.TruncateToBudget(sheetText, budget)

		if budget > 0 && utf8.RuneCountInString(outputBuilder.String())+utf8.RuneCountInString(sheetText) > budget {
			truncatedWhole := utils.TruncateToBudget(outputBuilder.String()+sheetText, budget)
			return truncatedWhole, nil
		}
		outputBuilder.WriteString(sheetText)
	}
	return outputBuilder.String(), nil
}

// renderSheet parses and serializes one sheet. A sheet failure is captured
// inline under its marker and never unwinds past the sheet.
func (extractor *Extractor) renderSheet(reference sheetReference, sharedStrings []string) string {
	sheetMarker := fmt.Sprintf(sheetMarkerFormat, reference.Name)

	partFile, openError := os.Open(reference.PartPath)
	if openError != nil {
		return sheetMarker + fmt.Sprintf(extractionErrorFormat, openError) + "\n"
	}
	defer partFile.Close()

	grid, parseError := parseWorksheetPart(partFile, sharedStrings)
	if parseError != nil {
		wrappedError := fmt.Errorf(errorParseWorksheetFormat, reference.Name, parseError)
		return sheetMarker + fmt.Sprintf(extractionErrorFormat, wrappedError) + "\n"
	}
	return sheetMarker + serializeGrid(grid)
}

// readSharedStrings loads the shared-strings table. An absent table is not
// an error; cells simply cannot reference it.
func readSharedStrings(partPath string) ([]string, error) {
	partFile, openError := os.Open(partPath)
	if openError != nil {
		if os.IsNotExist(openError) {
			return nil, nil
		}
		return nil, openError
	}
	defer partFile.Close()

	streamDecoder := xml.NewDecoder(partFile)
	var sharedStrings []string
	var currentString strings.Builder
	insideItem := false
	textDepth := 0

	for {
		nextToken, tokenError := streamDecoder.Token()
		if errors.Is(tokenError, io.EOF) {
			break
		}
		if tokenError != nil {
			return nil, fmt.Errorf("parsing %s: %w", sharedStringsPartPath, tokenError)
		}

		switch typedToken := nextToken.(type) {
		case xml.StartElement:
			switch typedToken.Name.Local {
			case "si":
				insideItem = true
				currentString.Reset()
			case "t":
				if insideItem {
					textDepth++
				}
			}
		case xml.EndElement:
			switch typedToken.Name.Local {
			case "si":
				insideItem = false
				sharedStrings = append(sharedStrings, currentString.String())
			case "t":
				if textDepth > 0 {
					textDepth--
				}
			}
		case xml.CharData:
			if textDepth > 0 {
				currentString.Write(typedToken)
			}
		}
	}
	return sharedStrings, nil
}

// resolveSheetReferences maps declared sheet names to worksheet parts via
// the workbook and its relationships. When the workbook part is unreadable,
// every file under the worksheets folder becomes a sheet, ordered by name.
func resolveSheetReferences(scratchDirectory string) ([]sheetReference, error) {
	declaredSheets, workbookError := readWorkbookSheets(filepath.Join(scratchDirectory, filepath.FromSlash(workbookPartPath)))
	if workbookError != nil || len(declaredSheets) == 0 {
		return listWorksheetFiles(scratchDirectory)
	}

	relationshipTargets, relationshipsError := readWorkbookRelationships(filepath.Join(scratchDirectory, filepath.FromSlash(workbookRelsPartPath)))
	if relationshipsError != nil {
		return listWorksheetFiles(scratchDirectory)
	}

	var references []sheetReference
	for _, declaredSheet := range declaredSheets {
		target, targetKnown := relationshipTargets[declaredSheet.RelationshipID]
		if !targetKnown {
			continue
		}
		target = strings.TrimPrefix(target, "/")
		if !strings.HasPrefix(target, "xl/") {
			target = "xl/" + target
		}
		references = append(references, sheetReference{
			Name:     declaredSheet.Name,
			PartPath: filepath.Join(scratchDirectory, filepath.FromSlash(target)),
		})
	}
	if len(references) == 0 {
		return listWorksheetFiles(scratchDirectory)
	}
	return references, nil
}

// declaredSheet is one workbook sheet declaration.
type declaredSheet struct {
	Name           string
	RelationshipID string
}

func readWorkbookSheets(workbookPath string) ([]declaredSheet, error) {
	partFile, openError := os.Open(workbookPath)
	if openError != nil {
		return nil, openError
	}
	defer partFile.Close()

	streamDecoder := xml.NewDecoder(partFile)
	var sheets []declaredSheet
	for {
		nextToken, tokenError := streamDecoder.Token()
		if errors.Is(tokenError, io.EOF) {
			break
		}
		if tokenError != nil {
			return nil, tokenError
		}
		startElement, isStart := nextToken.(xml.StartElement)
		if !isStart || startElement.Name.Local != "sheet" {
			continue
		}
		var sheet declaredSheet
		for _, attribute := range startElement.Attr {
			switch attribute.Name.Local {
			case "name":
				sheet.Name = attribute.Value
			case "id":
				sheet.RelationshipID = attribute.Value
			}
		}
		if sheet.Name != "" && sheet.RelationshipID != "" {
			sheets = append(sheets, sheet)
		}
	}
	return sheets, nil
}

func readWorkbookRelationships(relationshipsPath string) (map[string]string, error) {
	partFile, openError := os.Open(relationshipsPath)
	if openError != nil {
		return nil, openError
	}
	defer partFile.Close()

	streamDecoder := xml.NewDecoder(partFile)
	targets := make(map[string]string)
	for {
		nextToken, tokenError := streamDecoder.Token()
		if errors.Is(tokenError, io.EOF) {
			break
		}
		if tokenError != nil {
			return nil, tokenError
		}
		startElement, isStart := nextToken.(xml.StartElement)
		if !isStart || startElement.Name.Local != "Relationship" {
			continue
		}
		var relationshipID, target string
		for _, attribute := range startElement.Attr {
			switch attribute.Name.Local {
			case "Id":
				relationshipID = attribute.Value
			case "Target":
				target = attribute.Value
			}
		}
		if relationshipID != "" && target != "" {
			targets[relationshipID] = target
		}
	}
	return targets, nil
}

// listWorksheetFiles is the fallback sheet enumeration: every XML part under
// the worksheets folder, ordered by file name.
func listWorksheetFiles(scratchDirectory string) ([]sheetReference, error) {
	worksheetsPath := filepath.Join(scratchDirectory, filepath.FromSlash(worksheetsDirectory))
	directoryEntries, readError := os.ReadDir(worksheetsPath)
	if readError != nil {
		return nil, nil
	}

	var references []sheetReference
	for _, directoryEntry := range directoryEntries {
		if directoryEntry.IsDir() {
			continue
		}
		entryName := directoryEntry.Name()
		if !strings.EqualFold(filepath.Ext(entryName), ".xml") {
			continue
		}
		references = append(references, sheetReference{
			Name:     strings.TrimSuffix(entryName, filepath.Ext(entryName)),
			PartPath: filepath.Join(worksheetsPath, entryName),
		})
	}
	sort.Slice(references, func(firstIndex, secondIndex int) bool {
		return references[firstIndex].Name < references[secondIndex].Name
	})
	return references, nil
}

// Cell type attribute values defined by the spreadsheet format.
const (
	cellTypeSharedString = "s"
	cellTypeBoolean      = "b"
	cellTypeInlineString = "inlineStr"
)

// parseWorksheetPart streams rows and cells into a SheetGrid. Parse state is
// a small accumulator reset at row and cell boundaries.
func parseWorksheetPart(partReader io.Reader, sharedStrings []string) (*types.SheetGrid, error) {
	streamDecoder := xml.NewDecoder(partReader)
	grid := types.NewSheetGrid()

	currentRowNumber := 0
	currentColumnIndex := -1
	insideCell := false
	cellType := ""
	valueDepth := 0
	inlineTextDepth := 0
	var cellValue strings.Builder
	cellHasValue := false

	for {
		nextToken, tokenError := streamDecoder.Token()
		if errors.Is(tokenError, io.EOF) {
			break
		}
		if tokenError != nil {
			return nil, tokenError
		}

		switch typedToken := nextToken.(type) {
		case xml.StartElement:
			switch typedToken.Name.Local {
			case "row":
				currentRowNumber = rowNumberFromAttributes(typedToken.Attr, currentRowNumber+1)
				currentColumnIndex = -1
			case "c":
				insideCell = true
				cellType = ""
				cellValue.Reset()
				cellHasValue = false
				reference := ""
				for _, attribute := range typedToken.Attr {
					switch attribute.Name.Local {
					case "r":
						reference = attribute.Value
					case "t":
						cellType = attribute.Value
					}
				}
				if columnIndex, referenceValid := columnIndexFromReference(reference); referenceValid {
					currentColumnIndex = columnIndex
				} else {
					currentColumnIndex++
				}
			case "v":
				if insideCell {
					valueDepth++
					cellHasValue = true
				}
			case "t":
				if insideCell && cellType == cellTypeInlineString {
					inlineTextDepth++
					cellHasValue = true
				}
			}
		case xml.EndElement:
			switch typedToken.Name.Local {
			case "v":
				if valueDepth > 0 {
					valueDepth--
				}
			case "t":
				if inlineTextDepth > 0 {
					inlineTextDepth--
				}
			case "c":
				if insideCell && cellHasValue {
					resolvedValue, resolveError := resolveCellValue(cellType, cellValue.String(), sharedStrings)
					if resolveError != nil {
						return nil, resolveError
					}
					grid.SetCell(currentRowNumber, currentColumnIndex, resolvedValue)
				}
				insideCell = false
			}
		case xml.CharData:
			if valueDepth > 0 || inlineTextDepth > 0 {
				cellValue.Write(typedToken)
			}
		}
	}
	return grid, nil
}

// resolveCellValue interprets the raw cell payload per its declared type.
func resolveCellValue(cellType string, rawValue string, sharedStrings []string) (string, error) {
	switch cellType {
	case cellTypeSharedString:
		stringIndex, indexError := strconv.Atoi(strings.TrimSpace(rawValue))
		if indexError != nil {
			return "", fmt.Errorf("invalid shared string index %q", rawValue)
		}
		if stringIndex < 0 || stringIndex >= len(sharedStrings) {
			return "", fmt.Errorf(errorSharedStringIndexFormat, stringIndex, len(sharedStrings))
		}
		return sharedStrings[stringIndex], nil
	case cellTypeBoolean:
		if strings.TrimSpace(rawValue) == "1" {
			return "TRUE", nil
		}
		return "FALSE", nil
	default:
		return rawValue, nil
	}
}

// rowNumberFromAttributes reads the row number attribute, falling back to
// the next sequential number when absent or malformed.
func rowNumberFromAttributes(attributes []xml.Attr, fallbackNumber int) int {
	for _, attribute := range attributes {
		if attribute.Name.Local != "r" {
			continue
		}
		if rowNumber, parseError := strconv.Atoi(attribute.Value); parseError == nil && rowNumber > 0 {
			return rowNumber
		}
	}
	return fallbackNumber
}

// columnIndexFromReference converts the alphabetic prefix of a cell
// reference to a zero-based column index: A=0, Z=25, AA=26.
func columnIndexFromReference(cellReference string) (int, bool) {
	columnValue := 0
	letterCount := 0
	for _, referenceRune := range cellReference {
		if referenceRune >= 'a' && referenceRune <= 'z' {
			referenceRune -= 'a' - 'A'
		}
		if referenceRune < 'A' || referenceRune > 'Z' {
			break
		}
		columnValue = columnValue*26 + int(referenceRune-'A') + 1
		letterCount++
	}
	if letterCount == 0 {
		return 0, false
	}
	return columnValue - 1, true
}

// serializeGrid renders rows as <rowNumber><TAB><col0><TAB>... padded to
// the sheet's widest populated column, with unpopulated columns as empty
// fields.
func serializeGrid(grid *types.SheetGrid) string {
	var gridBuilder strings.Builder
	for _, rowNumber := range grid.RowNumbers {
		rowCells := grid.Cells[rowNumber]

		gridBuilder.WriteString(strconv.Itoa(rowNumber))
		for columnIndex := 0; columnIndex <= grid.MaxColumnIndex; columnIndex++ {
			gridBuilder.WriteByte('\t')
			gridBuilder.WriteString(rowCells[columnIndex])
		}
		gridBuilder.WriteByte('\n')
	}
	return gridBuilder.String()
}
