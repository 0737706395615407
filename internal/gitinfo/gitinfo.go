// Package gitinfo reads release-relevant facts from the working tree's git
// repository: the version implied by the tag on HEAD, and the HEAD commit
// recorded into run history. A working tree that is not a git checkout is
// fine as long as the configured version is explicit.
package gitinfo

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ResolveVersion returns the package version implied by a tag pointing at
// HEAD (tag "v0.8.5" or "0.8.5" both yield "0.8.5"). It is used when the
// configured version is "auto".
func ResolveVersion(workingTree string) (string, error) {
	repo, err := git.PlainOpen(workingTree)
	if err != nil {
		return "", fmt.Errorf("open repository: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}

	tags, err := repo.Tags()
	if err != nil {
		return "", fmt.Errorf("list tags: %w", err)
	}
	var found string
	err = tags.ForEach(func(ref *plumbing.Reference) error {
		hash := ref.Hash()
		// Annotated tags point at a tag object; resolve to the commit.
		if obj, err := repo.TagObject(hash); err == nil {
			hash = obj.Target
		}
		if hash == head.Hash() {
			found = ref.Name().Short()
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walk tags: %w", err)
	}
	if found == "" {
		return "", fmt.Errorf("no tag points at HEAD %s", head.Hash().String()[:8])
	}
	return strings.TrimPrefix(found, "v"), nil
}

// HeadCommit returns the abbreviated HEAD commit hash, or "" when the
// working tree is not a repository.
func HeadCommit(workingTree string) string {
	repo, err := git.PlainOpen(workingTree)
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	return head.Hash().String()[:8]
}
