package localmedia

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// CommandResult is one external process invocation.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner abstracts process execution so callers can be tested without binaries.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (CommandResult, error)
}

type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		res.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		}
		return res, err
	}
	return res, nil
}

// RunTool runs name with args and converts any failure into an ExternalProcessError.
func RunTool(ctx context.Context, r Runner, name string, args ...string) (CommandResult, error) {
	if r == nil {
		r = ExecRunner{}
	}
	res, err := r.Run(ctx, name, args...)
	if err != nil || res.ExitCode != 0 {
		return res, &ExternalProcessError{
			Tool:     name,
			Args:     append([]string(nil), args...),
			ExitCode: res.ExitCode,
			Output:   tail(res.Stderr+res.Stdout, 4096),
			Err:      err,
		}
	}
	return res, nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
