// Package runner executes external tools, capturing merged output with a
// platform-selected decoding strategy.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

const (
	errorStartToolFormat = "starting %s: %w"
	errorToolExitFormat  = "%s exited with code %d"
)

// startFailureExitCode marks a process that never started.
const startFailureExitCode = -1

// OutputDecoder converts raw merged process output into text.
type OutputDecoder func(data []byte) string

// Result captures the merged output and exit code of a completed process.
type Result struct {
	Output   string
	ExitCode int
}

// Runner runs external executables and decodes their merged output.
type Runner struct {
	decoder OutputDecoder
}

// NewRunner constructs a Runner with the platform default output decoder.
func NewRunner() *Runner {
	return NewRunnerWithDecoder(platformOutputDecoder())
}

// NewRunnerWithDecoder constructs a Runner with an explicit output decoder.
func NewRunnerWithDecoder(decoder OutputDecoder) *Runner {
	return &Runner{decoder: decoder}
}

// Run executes the tool and blocks until it exits, merging standard output
// and standard error. A non-zero exit or a start failure is reported as a
// recoverable error alongside whatever output was captured.
func (toolRunner *Runner) Run(executionContext context.Context, executable string, arguments ...string) (Result, error) {
	command := exec.CommandContext(executionContext, executable, arguments...)
	outputBytes, runError := command.CombinedOutput()
	decodedOutput := toolRunner.decoder(outputBytes)

	if runError != nil {
		var exitError *exec.ExitError
		if errors.As(runError, &exitError) {
			exitCode := exitError.ExitCode()
			return Result{Output: decodedOutput, ExitCode: exitCode}, fmt.Errorf(errorToolExitFormat, executable, exitCode)
		}
		return Result{Output: decodedOutput, ExitCode: startFailureExitCode}, fmt.Errorf(errorStartToolFormat, executable, runError)
	}

	return Result{Output: decodedOutput, ExitCode: 0}, nil
}

// LookupExecutable reports the first candidate resolvable on the search
// path, or the empty string when none resolve.
func LookupExecutable(candidates ...string) string {
	for _, candidate := range candidates {
		if resolvedPath, lookupError := exec.LookPath(candidate); lookupError == nil {
			return resolvedPath
		}
	}
	return ""
}
