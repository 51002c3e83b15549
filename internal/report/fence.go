package report

import "strings"

const minimumFenceLength = 3

// fenceFor returns a backtick fence one longer than the longest backtick run
// in the payload, never shorter than three, so the fence cannot be closed
// prematurely by the payload itself.
func fenceFor(payload string) string {
	longestRun := 0
	currentRun := 0
	for _, payloadRune := range payload {
		if payloadRune == '`' {
			currentRun++
			if currentRun > longestRun {
				longestRun = currentRun
			}
			continue
		}
		currentRun = 0
	}

	fenceLength := longestRun + 1
	if fenceLength < minimumFenceLength {
		fenceLength = minimumFenceLength
	}
	return strings.Repeat("`", fenceLength)
}
