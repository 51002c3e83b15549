//go:build windows

package tree

import "fmt"

// externalTreeCommand builds the Windows tree invocation. The code page is
// forced to UTF-8 so the captured output decodes cleanly.
func externalTreeCommand(rootDirectoryPath string) (string, []string) {
	commandLine := fmt.Sprintf(`chcp 65001>nul & tree "%s" /F /A`, rootDirectoryPath)
	return "cmd", []string{"/c", commandLine}
}
