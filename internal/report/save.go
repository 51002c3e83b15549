package report

import (
	"fmt"
	"os"
)

// utf8ByteOrderMark prefixes persisted reports so legacy editors detect the
// encoding.
const utf8ByteOrderMark = "\xEF\xBB\xBF"

const errorWriteReportFormat = "writing report to %s: %w"

// SaveToFile persists the report as UTF-8 with a byte-order-mark prefix.
func SaveToFile(filePath string, reportText string) error {
	if writeError := os.WriteFile(filePath, []byte(utf8ByteOrderMark+reportText), 0o644); writeError != nil {
		return fmt.Errorf(errorWriteReportFormat, filePath, writeError)
	}
	return nil
}
