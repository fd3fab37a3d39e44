package localmedia

import (
	"fmt"
	"strings"
)

// ExternalProcessError is a nonzero exit or a missing output artifact from an external tool
// (transcoder, speech-to-text, media fetcher). It is fatal to the job that hit it.
type ExternalProcessError struct {
	Tool          string
	Args          []string
	ExitCode      int
	Output        string
	MissingOutput string
	Err           error
}

func (e *ExternalProcessError) Error() string {
	if e == nil {
		return ""
	}
	if e.MissingOutput != "" {
		return fmt.Sprintf("%s produced no output at %s", e.Tool, e.MissingOutput)
	}
	out := strings.TrimSpace(e.Output)
	if out == "" && e.Err != nil {
		out = e.Err.Error()
	}
	if out == "" {
		return fmt.Sprintf("%s failed with code %d", e.Tool, e.ExitCode)
	}
	return fmt.Sprintf("%s failed with code %d: %s", e.Tool, e.ExitCode, out)
}

func (e *ExternalProcessError) Unwrap() error { return e.Err }

func MissingOutput(tool, path string) *ExternalProcessError {
	return &ExternalProcessError{Tool: tool, MissingOutput: path}
}
