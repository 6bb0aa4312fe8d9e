// pkg/command/command.go
package command

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// Command is one external tool invocation
type Command struct {
	Name string
	Args []string
	Dir  string   // working directory, current when empty
	Env  []string // appended to the process environment
}

// New builds a command
func New(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// In returns a copy of c running in dir
func (c Command) In(dir string) Command {
	c.Dir = dir
	return c
}

// String renders the command line for logs
func (c Command) String() string {
	parts := append([]string{c.Name}, c.Args...)
	for i, p := range parts {
		if strings.ContainsAny(p, " \t\"") {
			parts[i] = fmt.Sprintf("%q", p)
		}
	}
	return strings.Join(parts, " ")
}

// Runner executes external tools. Implementations must return the tool's
// own error for non-zero exits.
type Runner interface {
	// Run executes the command, streaming its output
	Run(ctx context.Context, cmd Command) error

	// Output executes the command and returns its standard output
	Output(ctx context.Context, cmd Command) ([]byte, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	Logger *log.Logger // receives each output line; discarded when nil
}

// NewExecRunner creates a runner logging tool output to logger
func NewExecRunner(logger *log.Logger) *ExecRunner {
	return &ExecRunner{Logger: logger}
}

func (r *ExecRunner) command(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	return cmd
}

func (r *ExecRunner) logger() *log.Logger {
	if r.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return r.Logger
}

// Run executes the command and logs its combined output line by line
func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	logger := r.logger()
	logger.Printf("  $ %s", c)

	cmd := r.command(ctx, c)
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	var tail tailBuffer
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			tail.add(line)
			logger.Printf("    %s", line)
		}
		io.Copy(io.Discard, pr)
	}()

	err := cmd.Run()
	pw.Close()
	wg.Wait()

	if err != nil {
		if out := tail.String(); out != "" {
			return fmt.Errorf("%s: %w\n%s", c.Name, err, out)
		}
		return fmt.Errorf("%s: %w", c.Name, err)
	}
	return nil
}

// Output executes the command and returns its standard output
func (r *ExecRunner) Output(ctx context.Context, c Command) ([]byte, error) {
	r.logger().Printf("  $ %s", c)

	cmd := r.command(ctx, c)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%s: %w: %s", c.Name, err, msg)
		}
		return out, fmt.Errorf("%s: %w", c.Name, err)
	}
	return out, nil
}

// tailBuffer keeps the last lines of tool output for error messages
type tailBuffer struct {
	lines []string
}

const tailLines = 20

func (t *tailBuffer) add(line string) {
	t.lines = append(t.lines, line)
	if len(t.lines) > tailLines {
		t.lines = t.lines[len(t.lines)-tailLines:]
	}
}

func (t *tailBuffer) String() string {
	return strings.Join(t.lines, "\n")
}
