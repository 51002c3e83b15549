package extract

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	scratchDirectoryPattern = "treecat-extract-*"

	errorScratchDirectoryFormat = "creating scratch directory: %w"
	errorOpenContainerFormat    = "opening container %s: %w"
	errorUnsafeMemberFormat     = "container member %s escapes the scratch directory"
	errorExpandMemberFormat     = "expanding container member %s: %w"

	warningScratchCleanupFormat = "failed to remove scratch directory %s: %v"
	warningExternalExpandFormat = "external archive expander failed for %s, expanding in process: %v"
)

// extractContainer unpacks the ZIP container into a fresh scratch directory
// and returns its path with a cleanup function. The cleanup must run on
// every exit path. The external expander is preferred when present; its
// failure or absence degrades to in-process expansion.
func (extractor *Extractor) extractContainer(executionContext context.Context, containerPath string) (string, func(), error) {
	scratchDirectory, scratchError := os.MkdirTemp("", scratchDirectoryPattern)
	if scratchError != nil {
		return "", func() {}, fmt.Errorf(errorScratchDirectoryFormat, scratchError)
	}
	cleanup := func() {
		if removeError := os.RemoveAll(scratchDirectory); removeError != nil {
			extractor.logger.Warn(fmt.Sprintf(warningScratchCleanupFormat, scratchDirectory, removeError))
		}
	}

	if expandError := extractor.expandExternally(executionContext, containerPath, scratchDirectory); expandError == nil {
		return scratchDirectory, cleanup, nil
	} else {
		extractor.logger.Warn(fmt.Sprintf(warningExternalExpandFormat, containerPath, expandError))
	}

	if unzipError := expandInProcess(containerPath, scratchDirectory); unzipError != nil {
		cleanup()
		return "", func() {}, unzipError
	}
	return scratchDirectory, cleanup, nil
}

// expandExternally runs the platform archive expander into the scratch
// directory. An absent tool is reported as an error so the caller can fall
// back.
func (extractor *Extractor) expandExternally(executionContext context.Context, containerPath string, scratchDirectory string) error {
	executable, arguments, available := externalExpandCommand(containerPath, scratchDirectory)
	if !available {
		return fmt.Errorf("no external archive expander available")
	}
	_, runError := extractor.toolRunner.Run(executionContext, executable, arguments...)
	if runError != nil {
		return runError
	}
	scratchEntries, readError := os.ReadDir(scratchDirectory)
	if readError != nil || len(scratchEntries) == 0 {
		return fmt.Errorf("external archive expander produced no output for %s", containerPath)
	}
	return nil
}

// expandInProcess extracts the container with archive/zip, refusing members
// whose paths would escape the scratch directory.
func expandInProcess(containerPath string, scratchDirectory string) error {
	containerReader, openError := zip.OpenReader(containerPath)
	if openError != nil {
		return fmt.Errorf(errorOpenContainerFormat, containerPath, openError)
	}
	defer containerReader.Close()

	for _, member := range containerReader.File {
		memberPath := filepath.Join(scratchDirectory, filepath.FromSlash(member.Name))
		if !strings.HasPrefix(memberPath, filepath.Clean(scratchDirectory)+string(filepath.Separator)) {
			return fmt.Errorf(errorUnsafeMemberFormat, member.Name)
		}
		if member.FileInfo().IsDir() {
			if directoryError := os.MkdirAll(memberPath, 0o750); directoryError != nil {
				return fmt.Errorf(errorExpandMemberFormat, member.Name, directoryError)
			}
			continue
		}
		if writeError := writeContainerMember(member, memberPath); writeError != nil {
			return fmt.Errorf(errorExpandMemberFormat, member.Name, writeError)
		}
	}
	return nil
}

func writeContainerMember(member *zip.File, destinationPath string) error {
	if directoryError := os.MkdirAll(filepath.Dir(destinationPath), 0o750); directoryError != nil {
		return directoryError
	}
	memberReader, openError := member.Open()
	if openError != nil {
		return openError
	}
	defer memberReader.Close()

	destinationFile, createError := os.Create(destinationPath)
	if createError != nil {
		return createError
	}
	defer destinationFile.Close()

	// Container parts are bounded by the per-file size ceiling upstream; the
	// copy still guards against decompression bombs with a hard cap.
	const memberSizeCap = 256 << 20
	_, copyError := io.Copy(destinationFile, io.LimitReader(memberReader, memberSizeCap))
	return copyError
}
