// Package tokenizer estimates token counts for generated reports.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

const (
	defaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"
)

// NewCounter returns a Counter for the requested model, falling back to the
// default encoding when the model is unknown. The resolved counter name is
// returned alongside.
func NewCounter(model string) (Counter, string, error) {
	trimmedModel := strings.ToLower(strings.TrimSpace(model))
	if trimmedModel == "" {
		trimmedModel = defaultModel
	}

	encoding, encodingError := tiktoken.EncodingForModel(trimmedModel)
	if encodingError == nil && encoding != nil {
		return encodingCounter{encoding: encoding, name: trimmedModel}, trimmedModel, nil
	}

	fallbackEncoding, fallbackError := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackError != nil {
		return nil, "", fmt.Errorf("initialize fallback tokenizer: %w", fallbackError)
	}
	return encodingCounter{encoding: fallbackEncoding, name: defaultEncodingName}, defaultEncodingName, nil
}

type encodingCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter encodingCounter) Name() string {
	return counter.name
}

func (counter encodingCounter) CountString(input string) (int, error) {
	if input == "" {
		return 0, nil
	}
	return len(counter.encoding.Encode(input, nil, nil)), nil
}
