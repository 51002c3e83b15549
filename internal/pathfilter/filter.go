// Package pathfilter implements the inclusion policy for filesystem entries:
// ancestor-directory exclusion by base name plus extension and size checks.
package pathfilter

import (
	"path/filepath"
	"strings"

	"github.com/osokin/treecat/internal/types"
	"github.com/osokin/treecat/internal/utils"
)

// Filter is a pure predicate over filesystem metadata. It holds the
// normalized include and exclude sets for one run.
type Filter struct {
	includeExtensions     map[string]struct{}
	excludeDirectoryNames map[string]struct{}
	maxFileSizeBytes      int64
}

// NewFilter builds a Filter from normalized engine options.
func NewFilter(options types.Options) *Filter {
	return &Filter{
		includeExtensions:     options.IncludeExtensions,
		excludeDirectoryNames: options.ExcludeDirectoryNames,
		maxFileSizeBytes:      options.MaxFileSizeBytes,
	}
}

// IsExcludedDirectoryName reports whether the base name matches the
// exclusion set, case-insensitively.
func (filter *Filter) IsExcludedDirectoryName(directoryName string) bool {
	_, excluded := filter.excludeDirectoryNames[strings.ToLower(directoryName)]
	return excluded
}

// IsUnderExcluded walks from the entry's containing directory upward to the
// filesystem root, returning true if any ancestor directory's base name is
// excluded. A directory entry checks its own name first. The walk stops when
// the parent no longer changes, which tolerates root edge cases.
func (filter *Filter) IsUnderExcluded(entry types.FileEntry) bool {
	directoryPath := entry.AbsolutePath
	if !entry.IsDirectory {
		directoryPath = filepath.Dir(entry.AbsolutePath)
	}

	for {
		directoryName := filepath.Base(directoryPath)
		if directoryName != "" && directoryName != string(filepath.Separator) && filter.IsExcludedDirectoryName(directoryName) {
			return true
		}

		parentPath := filepath.Dir(directoryPath)
		if parentPath == directoryPath {
			break
		}
		directoryPath = parentPath
	}
	return false
}

// ShouldIncludeFile reports whether the entry is a regular file whose size
// and extension pass the inclusion policy. Files with no extension never
// match.
func (filter *Filter) ShouldIncludeFile(entry types.FileEntry) bool {
	if entry.IsDirectory || entry.IsSymbolicLink {
		return false
	}
	if entry.SizeBytes > filter.maxFileSizeBytes {
		return false
	}
	extension := utils.ExtensionOf(entry.AbsolutePath)
	if extension == "" {
		return false
	}
	_, included := filter.includeExtensions[extension]
	return included
}
