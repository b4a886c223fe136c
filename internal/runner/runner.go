package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	goruntime "runtime"
	"strings"
	"time"

	"github.com/agentx-labs/stackboot/internal/ctxlog"
	"github.com/kballard/go-shellquote"
)

// DefaultTimeout applies when Execute is called without a timeout.
const DefaultTimeout = 10 * time.Minute

// Command is an external program invocation.
type Command struct {
	Name string
	Args []string
	// Env holds KEY=VALUE pairs added on top of the inherited environment.
	Env []string
}

// ShellCommand runs line through the platform login shell so user PATH
// setup (sdkman, nvm, ...) is honoured.
func ShellCommand(line string) Command {
	if goruntime.GOOS == "windows" {
		return Command{Name: "cmd", Args: []string{"/c", line}}
	}
	return Command{Name: "bash", Args: []string{"-lc", line}}
}

// String renders the command as a shell-quoted line.
func (c Command) String() string {
	return shellquote.Join(append([]string{c.Name}, c.Args...)...)
}

// SplitArgs splits free-form arguments using POSIX shell quoting rules.
func SplitArgs(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	args, err := shellquote.Split(s)
	if err != nil {
		return nil, fmt.Errorf("splitting arguments %q: %w", s, err)
	}
	return args, nil
}

// Result captures a finished invocation.
type Result struct {
	ExitCode int
	// Output is stdout and stderr interleaved.
	Output   string
	Duration time.Duration
	TimedOut bool
}

// Success reports a zero exit status.
func (r *Result) Success() bool {
	return r != nil && !r.TimedOut && r.ExitCode == 0
}

// Runner executes a command in dir, bounded by timeout.
type Runner interface {
	Execute(ctx context.Context, cmd Command, dir string, timeout time.Duration) (*Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Debug, when set, receives the combined output as it is produced.
	Debug io.Writer
}

// Execute implements Runner.
func (r *ExecRunner) Execute(ctx context.Context, c Command, dir string, timeout time.Duration) (*Result, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	bin, err := exec.LookPath(c.Name)
	if err != nil {
		return nil, fmt.Errorf("locating %s: %w", c.Name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := ctxlog.FromContext(ctx)
	log.Debug("executing command", "cmd", c.String(), "dir", dir, "timeout", timeout)

	cmd := exec.CommandContext(ctx, bin, c.Args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	for _, kv := range c.Env {
		k, v, _ := strings.Cut(kv, "=")
		cmd.Env = setEnv(cmd.Env, k, v)
	}

	var buf bytes.Buffer
	var out io.Writer = &buf
	if r.Debug != nil {
		out = io.MultiWriter(&buf, r.Debug)
	}
	cmd.Stdout = out
	cmd.Stderr = out

	start := time.Now()
	err = cmd.Run()
	res := &Result{Output: buf.String(), Duration: time.Since(start)}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true
		res.ExitCode = -1
		log.Debug("command timed out", "cmd", c.Name, "after", timeout)
		return res, nil
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, fmt.Errorf("running %s: %w", c.Name, err)
	}
	log.Debug("command finished", "cmd", c.Name, "duration", res.Duration)
	return res, nil
}

// setEnv sets or replaces an environment variable in the env slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
