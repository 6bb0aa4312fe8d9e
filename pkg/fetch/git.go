// pkg/fetch/git.go
package fetch

import (
	"context"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Cloner checks out a branch of a git repository
type Cloner interface {
	Clone(ctx context.Context, url, branch, dest string) error
}

// GitCloner clones with go-git, no git binary required
type GitCloner struct {
	Progress io.Writer
}

// Clone performs a shallow single-branch clone into dest
func (c *GitCloner) Clone(ctx context.Context, url, branch, dest string) error {
	_, err := git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
		URL:           url,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
		Depth:         1,
		Progress:      c.Progress,
	})
	if err != nil {
		return fmt.Errorf("git clone failed: %w", err)
	}
	return nil
}
