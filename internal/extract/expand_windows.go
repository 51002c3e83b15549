//go:build windows

package extract

import (
	"fmt"

	"github.com/osokin/treecat/internal/runner"
)

// externalExpandCommand builds the PowerShell Expand-Archive invocation.
func externalExpandCommand(containerPath string, destinationDirectory string) (string, []string, bool) {
	executable := runner.LookupExecutable("powershell.exe", "pwsh.exe")
	if executable == "" {
		return "", nil, false
	}
	expandExpression := fmt.Sprintf("Expand-Archive -LiteralPath '%s' -DestinationPath '%s' -Force", containerPath, destinationDirectory)
	return executable, []string{"-NoProfile", "-Command", expandExpression}, true
}
