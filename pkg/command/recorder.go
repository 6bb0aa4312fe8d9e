// pkg/command/recorder.go
package command

import (
	"context"
	"strings"
	"sync"
)

// Recorder is a Runner that records commands instead of executing them
type Recorder struct {
	mu       sync.Mutex
	Commands []Command

	// Fail returns the error for a command, nil to succeed
	Fail func(Command) error

	// Stdout returns the output for Output calls
	Stdout func(Command) []byte
}

// Run records cmd
func (r *Recorder) Run(ctx context.Context, cmd Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.Commands = append(r.Commands, cmd)
	r.mu.Unlock()

	if r.Fail != nil {
		return r.Fail(cmd)
	}
	return nil
}

// Output records cmd and returns the configured output
func (r *Recorder) Output(ctx context.Context, cmd Command) ([]byte, error) {
	if err := r.Run(ctx, cmd); err != nil {
		return nil, err
	}
	if r.Stdout != nil {
		return r.Stdout(cmd), nil
	}
	return nil, nil
}

// Lines returns every recorded command rendered as a string
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines := make([]string, 0, len(r.Commands))
	for _, c := range r.Commands {
		lines = append(lines, c.String())
	}
	return lines
}

// Joined returns the recorded commands separated by newlines
func (r *Recorder) Joined() string {
	return strings.Join(r.Lines(), "\n")
}
