//go:build !windows

package tree

// externalTreeCommand builds the tree invocation for platforms shipping the
// tree utility.
func externalTreeCommand(rootDirectoryPath string) (string, []string) {
	return "tree", []string{"-a", "--charset", "UTF-8", rootDirectoryPath}
}
