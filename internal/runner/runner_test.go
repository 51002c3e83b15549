package runner_test

import (
	"context"
	"runtime"
	"strings"
	"testing"

	"github.com/osokin/treecat/internal/runner"
)

func TestRunCapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test uses a POSIX shell")
	}

	toolRunner := runner.NewRunner()
	result, runError := toolRunner.Run(context.Background(), "sh", "-c", "printf hello")
	if runError != nil {
		t.Fatalf("unexpected run error: %v", runError)
	}
	if result.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", result.ExitCode)
	}
	if strings.TrimSpace(result.Output) != "hello" {
		t.Fatalf("expected captured output, got %q", result.Output)
	}
}

func TestRunReportsNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test uses a POSIX shell")
	}

	toolRunner := runner.NewRunner()
	result, runError := toolRunner.Run(context.Background(), "sh", "-c", "exit 3")
	if runError == nil {
		t.Fatalf("expected an error for a non-zero exit")
	}
	if result.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", result.ExitCode)
	}
}

func TestRunStartFailure(t *testing.T) {
	toolRunner := runner.NewRunner()
	result, runError := toolRunner.Run(context.Background(), "treecat-no-such-tool-anywhere")
	if runError == nil {
		t.Fatalf("expected an error when the tool cannot start")
	}
	if result.ExitCode != -1 {
		t.Fatalf("expected -1 for a start failure, got %d", result.ExitCode)
	}
}

func TestLookupExecutable(t *testing.T) {
	if runner.LookupExecutable("treecat-no-such-tool-anywhere") != "" {
		t.Fatalf("expected empty path for an unresolvable candidate")
	}
	if runtime.GOOS != "windows" && runner.LookupExecutable("treecat-no-such-tool-anywhere", "sh") == "" {
		t.Fatalf("expected the second candidate to resolve")
	}
}

func TestRunnerWithCustomDecoder(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test uses a POSIX shell")
	}

	toolRunner := runner.NewRunnerWithDecoder(func(data []byte) string {
		return strings.ToUpper(string(data))
	})
	result, runError := toolRunner.Run(context.Background(), "sh", "-c", "printf abc")
	if runError != nil {
		t.Fatalf("unexpected run error: %v", runError)
	}
	if strings.TrimSpace(result.Output) != "ABC" {
		t.Fatalf("decoder must transform the output, got %q", result.Output)
	}
}
