// Package walk enumerates files for the contents section of a report.
package walk

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/osokin/treecat/internal/pathfilter"
	"github.com/osokin/treecat/internal/types"
)

const (
	warningReadDirectoryFormat = "skipping directory %s: %v"
	warningStatEntryFormat     = "skipping entry %s: %v"
)

// Collector recursively gathers files passing the filter. Symbolic links are
// never traversed, which is the sole cycle-avoidance mechanism.
type Collector struct {
	filter *pathfilter.Filter
	logger *zap.Logger
}

// NewCollector constructs a Collector.
func NewCollector(filter *pathfilter.Filter, logger *zap.Logger) *Collector {
	return &Collector{filter: filter, logger: logger}
}

// CollectFiles returns every file beneath rootDirectoryPath that passes the
// inclusion policy. Unreadable directories and entries are logged and
// skipped; they never fail the collection. Ordering is unspecified; callers
// sort with SortFileEntries before rendering.
func (collector *Collector) CollectFiles(rootDirectoryPath string) []types.FileEntry {
	var collected []types.FileEntry
	collector.collectRecursive(rootDirectoryPath, &collected)
	return collected
}

func (collector *Collector) collectRecursive(directoryPath string, collected *[]types.FileEntry) {
	directoryEntries, readDirectoryError := os.ReadDir(directoryPath)
	if readDirectoryError != nil {
		collector.logger.Warn(fmt.Sprintf(warningReadDirectoryFormat, directoryPath, readDirectoryError))
		return
	}

	for _, directoryEntry := range directoryEntries {
		entry, entryError := EntryFromDirEntry(directoryPath, directoryEntry)
		if entryError != nil {
			collector.logger.Warn(fmt.Sprintf(warningStatEntryFormat, filepath.Join(directoryPath, directoryEntry.Name()), entryError))
			continue
		}

		if entry.IsSymbolicLink {
			continue
		}
		if collector.filter.IsUnderExcluded(entry) {
			continue
		}

		if entry.IsDirectory {
			collector.collectRecursive(entry.AbsolutePath, collected)
			continue
		}
		if collector.filter.ShouldIncludeFile(entry) {
			*collected = append(*collected, entry)
		}
	}
}

// EntryFromDirEntry builds a FileEntry from a directory listing entry.
// Symlink detection uses the entry type, so links are recognized without
// following them.
func EntryFromDirEntry(parentDirectoryPath string, directoryEntry os.DirEntry) (types.FileEntry, error) {
	entry := types.FileEntry{
		AbsolutePath:   filepath.Join(parentDirectoryPath, directoryEntry.Name()),
		IsDirectory:    directoryEntry.IsDir(),
		IsSymbolicLink: directoryEntry.Type()&os.ModeSymlink != 0,
	}
	entryInformation, informationError := directoryEntry.Info()
	if informationError != nil {
		return types.FileEntry{}, informationError
	}
	if !entry.IsDirectory {
		entry.SizeBytes = entryInformation.Size()
	}
	return entry, nil
}

// SortFileEntries orders entries by full path, case-insensitively, with a
// byte-wise tie break so the order is total and deterministic.
func SortFileEntries(entries []types.FileEntry) {
	sort.Slice(entries, func(firstIndex, secondIndex int) bool {
		firstPath := strings.ToLower(entries[firstIndex].AbsolutePath)
		secondPath := strings.ToLower(entries[secondIndex].AbsolutePath)
		if firstPath != secondPath {
			return firstPath < secondPath
		}
		return entries[firstIndex].AbsolutePath < entries[secondIndex].AbsolutePath
	})
}
