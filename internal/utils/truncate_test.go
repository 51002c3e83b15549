package utils_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/osokin/treecat/internal/utils"
)

func TestTruncateToBudget(t *testing.T) {
	longText := strings.Repeat("x", 100)

	truncated := utils.TruncateToBudget(longText, 40)
	if utf8.RuneCountInString(truncated) != 40 {
		t.Fatalf("expected exactly 40 characters, got %d", utf8.RuneCountInString(truncated))
	}
	if !strings.HasSuffix(truncated, utils.TruncationMarker) {
		t.Fatalf("expected truncation marker suffix, got %q", truncated)
	}
}

func TestTruncateToBudgetIdempotent(t *testing.T) {
	longText := strings.Repeat("y", 100)
	truncatedOnce := utils.TruncateToBudget(longText, 50)

	if utils.TruncateToBudget(truncatedOnce, 50) != truncatedOnce {
		t.Fatalf("re-truncating to the same budget must be a no-op")
	}
	if utils.TruncateToBudget(truncatedOnce, 80) != truncatedOnce {
		t.Fatalf("re-truncating to a larger budget must be a no-op")
	}
}

func TestTruncateToBudgetShortInputUnchanged(t *testing.T) {
	if utils.TruncateToBudget("short", 50) != "short" {
		t.Fatalf("text within budget must be unchanged")
	}
}

func TestTruncateToBudgetZeroDisables(t *testing.T) {
	longText := strings.Repeat("z", 100)
	if utils.TruncateToBudget(longText, 0) != longText {
		t.Fatalf("zero budget must disable truncation")
	}
}

func TestTruncateToBudgetTinyBudget(t *testing.T) {
	markerLength := utf8.RuneCountInString(utils.TruncationMarker)
	tinyBudget := markerLength - 2
	truncated := utils.TruncateToBudget(strings.Repeat("w", 100), tinyBudget)
	if utf8.RuneCountInString(truncated) > tinyBudget {
		t.Fatalf("result must fit the budget even below the marker length, got %q", truncated)
	}
}

func TestTruncateToBudgetMultibyte(t *testing.T) {
	multibyteText := strings.Repeat("ж", 100)
	truncated := utils.TruncateToBudget(multibyteText, 30)
	if utf8.RuneCountInString(truncated) != 30 {
		t.Fatalf("budget counts characters, not bytes; got %d", utf8.RuneCountInString(truncated))
	}
}

func TestExtensionOf(t *testing.T) {
	testCases := []struct {
		fileName string
		expected string
	}{
		{fileName: "report.TXT", expected: ".txt"},
		{fileName: "archive.tar.gz", expected: ".gz"},
		{fileName: "/tmp/dir/Notes.Docx", expected: ".docx"},
		{fileName: ".gitignore", expected: ".gitignore"},
		{fileName: "README", expected: ""},
		{fileName: "trailing.", expected: ""},
	}
	for _, testCase := range testCases {
		if actual := utils.ExtensionOf(testCase.fileName); actual != testCase.expected {
			t.Fatalf("ExtensionOf(%q) = %q, expected %q", testCase.fileName, actual, testCase.expected)
		}
	}
}

func TestRelativePathOrSelf(t *testing.T) {
	tempDir := t.TempDir()
	if relative := utils.RelativePathOrSelf(tempDir, tempDir); relative != "." {
		t.Fatalf("same directory must yield '.', got %q", relative)
	}
}
