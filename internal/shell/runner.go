// Package shell runs one-off commands through the user's shell with a
// deadline and bounded output capture.
package shell

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// MaxOutputBytes caps each of stdout and stderr.
	MaxOutputBytes = 64000

	// DefaultTimeout applies when the caller passes no timeout.
	DefaultTimeout = 30 * time.Second

	// waitDelay bounds how long Run waits for pipes after the shell is killed,
	// since background children can keep them open.
	waitDelay = 2 * time.Second
)

var (
	// ErrTimeout is wrapped by TimeoutError.
	ErrTimeout = errors.New("command timed out")

	// ErrEmptyCommand is returned for blank commands.
	ErrEmptyCommand = errors.New("command is empty")
)

// TimeoutError reports a command that outlived its timeout and was killed.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return "Command timed out after " + strconv.FormatFloat(e.Timeout.Seconds(), 'f', -1, 64) + "s"
}

func (e *TimeoutError) Unwrap() error { return ErrTimeout }

// Result is the outcome of a command that ran to completion.
type Result struct {
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	ReturnCode int    `json:"return_code"`
}

// Runner executes commands with a fixed shell.
type Runner struct {
	shell     string
	maxOutput int
}

// NewRunner validates shell and returns a Runner using it.
func NewRunner(shell string) (*Runner, error) {
	clean, err := SanitizeShell(shell)
	if err != nil {
		return nil, fmt.Errorf("shell %q: %w", shell, err)
	}
	return &Runner{shell: clean, maxOutput: MaxOutputBytes}, nil
}

// Shell returns the shell executable.
func (r *Runner) Shell() string {
	return r.shell
}

// Run executes command and waits for it. A non-zero exit status is not an
// error; it is reported in Result.ReturnCode. When timeout elapses the shell
// is killed and a *TimeoutError is returned.
func (r *Runner) Run(ctx context.Context, command string, timeout time.Duration) (Result, error) {
	if strings.TrimSpace(command) == "" {
		return Result{}, ErrEmptyCommand
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.shell, commandArgs(r.shell, command)...)
	cmd.WaitDelay = waitDelay
	stdout := newLimitedBuffer(r.maxOutput)
	stderr := newLimitedBuffer(r.maxOutput)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return Result{}, ctx.Err()
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return Result{}, &TimeoutError{Timeout: timeout}
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return Result{}, fmt.Errorf("run %s: %w", filepath.Base(r.shell), err)
	}
	return Result{
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		ReturnCode: exitCode(err),
	}, nil
}

func commandArgs(shell, command string) []string {
	name := shell
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	switch strings.ToLower(name) {
	case "cmd", "cmd.exe":
		return []string{"/C", command}
	case "powershell", "powershell.exe", "pwsh", "pwsh.exe":
		return []string{"-NoProfile", "-Command", command}
	default:
		return []string{"-c", command}
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// limitedBuffer keeps the first max bytes and silently drops the rest so the
// child never blocks on a full pipe.
type limitedBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func newLimitedBuffer(max int) *limitedBuffer {
	return &limitedBuffer{max: max}
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if remaining := b.max - len(b.buf); b.max > 0 && len(p) > remaining {
		if remaining > 0 {
			b.buf = append(b.buf, p[:remaining]...)
		}
		return len(p), nil
	}
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
