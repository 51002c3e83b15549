// Package utils contains general helper functions used across the treecat tool.
package utils

import (
	"path/filepath"
	"strings"
)

// RelativePathOrSelf calculates the relative path from root to fullPath.
// Returns the cleaned fullPath if relative calculation fails.
// Returns "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath string, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, absoluteError := filepath.Abs(root)
	if absoluteError != nil {
		return cleanPath
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)

	if cleanPath == cleanAbsoluteRoot {
		return "."
	}

	relativePath, relativeError := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relativeError != nil {
		return cleanPath
	}
	return relativePath
}

// ExtensionOf returns the lower-cased, dot-prefixed extension of the file
// name, or the empty string when the name carries no extension. The substring
// after the last dot counts, so ".gitignore" yields ".gitignore", matching
// FileInfo.Extension semantics.
func ExtensionOf(fileName string) string {
	baseName := filepath.Base(fileName)
	lastDotIndex := strings.LastIndex(baseName, ".")
	if lastDotIndex < 0 || lastDotIndex == len(baseName)-1 {
		return ""
	}
	return strings.ToLower(baseName[lastDotIndex:])
}
