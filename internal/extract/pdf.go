package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	errorPdfToolMissingMessage = "pdftotext executable not found next to the application, under tools/ or bin/, or on PATH"
	errorPdfExtractionFormat   = "pdftotext failed: %v (%s)"
)

// bundledToolDirectories are probed, relative to the invoking program,
// before the system search path.
var bundledToolDirectories = []string{"tools", "bin"}

// extractPdf extracts PDF text by delegating to the external pdftotext
// utility, requesting layout-preserving UTF-8 output on standard output.
func (extractor *Extractor) extractPdf(executionContext context.Context, pdfPath string) (string, error) {
	executable := findPdfToTextExecutable()
	if executable == "" {
		return "", fmt.Errorf(errorPdfToolMissingMessage)
	}

	result, runError := extractor.toolRunner.Run(executionContext, executable, "-layout", "-enc", "UTF-8", pdfPath, "-")
	if runError != nil {
		return "", fmt.Errorf(errorPdfExtractionFormat, runError, strings.TrimSpace(result.Output))
	}
	return result.Output, nil
}

// findPdfToTextExecutable probes, in order: next to the invoking program,
// the bundled tool subdirectories, and finally the system search path.
func findPdfToTextExecutable() string {
	if programPath, programError := os.Executable(); programError == nil {
		programDirectory := filepath.Dir(programPath)

		candidatePaths := []string{filepath.Join(programDirectory, pdfToTextExecutableName)}
		for _, toolDirectory := range bundledToolDirectories {
			candidatePaths = append(candidatePaths, filepath.Join(programDirectory, toolDirectory, pdfToTextExecutableName))
		}
		for _, candidatePath := range candidatePaths {
			if candidateInformation, statError := os.Stat(candidatePath); statError == nil && !candidateInformation.IsDir() {
				return candidatePath
			}
		}
	}

	if resolvedPath, lookupError := exec.LookPath(pdfToTextExecutableName); lookupError == nil {
		return resolvedPath
	}
	return ""
}
