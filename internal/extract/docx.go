package extract

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	flowDocumentPartPath = "word/document.xml"

	errorMissingDocumentPartFormat = "container %s has no %s part"
	errorParseDocumentFormat       = "parsing %s: %w"
)

// Flow-document element names. Namespace prefixes are ignored; the local
// names are stable across producers.
const (
	textRunElement        = "t"
	tabElement            = "tab"
	lineBreakElement      = "br"
	carriageReturnElement = "cr"
	paragraphElement      = "p"
)

// extractFlowDocument unpacks a .docx container and reconstructs its flowed
// text from the main document part.
func (extractor *Extractor) extractFlowDocument(executionContext context.Context, documentPath string) (string, error) {
	scratchDirectory, cleanup, containerError := extractor.extractContainer(executionContext, documentPath)
	if containerError != nil {
		return "", containerError
	}
	defer cleanup()

	partPath := filepath.Join(scratchDirectory, filepath.FromSlash(flowDocumentPartPath))
	partFile, openError := os.Open(partPath)
	if openError != nil {
		return "", fmt.Errorf(errorMissingDocumentPartFormat, filepath.Base(documentPath), flowDocumentPartPath)
	}
	defer partFile.Close()

	documentText, parseError := parseFlowDocumentPart(partFile)
	if parseError != nil {
		return "", fmt.Errorf(errorParseDocumentFormat, flowDocumentPartPath, parseError)
	}
	return documentText, nil
}

// parseFlowDocumentPart streams the document XML, concatenating text runs,
// converting tab and break elements, and terminating each paragraph with a
// newline.
func parseFlowDocumentPart(partReader io.Reader) (string, error) {
	streamDecoder := xml.NewDecoder(partReader)
	var documentBuilder strings.Builder
	textRunDepth := 0

	for {
		nextToken, tokenError := streamDecoder.Token()
		if errors.Is(tokenError, io.EOF) {
			break
		}
		if tokenError != nil {
			return "", tokenError
		}

		switch typedToken := nextToken.(type) {
		case xml.StartElement:
			switch typedToken.Name.Local {
			case textRunElement:
				textRunDepth++
			case tabElement:
				documentBuilder.WriteByte('\t')
			case lineBreakElement, carriageReturnElement:
				documentBuilder.WriteByte('\n')
			}
		case xml.EndElement:
			switch typedToken.Name.Local {
			case textRunElement:
				if textRunDepth > 0 {
					textRunDepth--
				}
			case paragraphElement:
				documentBuilder.WriteByte('\n')
			}
		case xml.CharData:
			if textRunDepth > 0 {
				documentBuilder.Write(typedToken)
			}
		}
	}
	return documentBuilder.String(), nil
}
