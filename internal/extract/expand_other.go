//go:build !windows

package extract

import (
	"github.com/osokin/treecat/internal/runner"
)

// externalExpandCommand builds the unzip invocation used on platforms that
// ship an unzip utility.
func externalExpandCommand(containerPath string, destinationDirectory string) (string, []string, bool) {
	executable := runner.LookupExecutable("unzip")
	if executable == "" {
		return "", nil, false
	}
	return executable, []string{"-o", "-qq", containerPath, "-d", destinationDirectory}, true
}
