package lizard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner invokes the analyzer as a child process: <tool> -l <language> <file>
type Runner struct {
	Tool     string
	Language string

	// Timeout bounds a single invocation; 0 means none
	Timeout time.Duration
}

// waitDelay bounds how long Run waits for the child's pipes after it was
// killed, in case a grandchild still holds them open
const waitDelay = time.Second

// NewRunner creates a runner for the given tool and language
func NewRunner(tool, language string, timeout time.Duration) *Runner {
	return &Runner{
		Tool:     tool,
		Language: language,
		Timeout:  timeout,
	}
}

// Args returns the argument list passed to the tool for file
func (r *Runner) Args(file string) []string {
	return []string{"-l", r.Language, file}
}

// Run executes the tool on file and returns its standard output
func (r *Runner) Run(ctx context.Context, file string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.Tool, r.Args(file)...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%s timed out after %s", r.Tool, r.Timeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s failed: %w: %s", r.Tool, err, msg)
		}
		return "", fmt.Errorf("%s failed: %w", r.Tool, err)
	}

	return stdout.String(), nil
}
