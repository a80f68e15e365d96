package pipeline

import (
	git "github.com/go-git/go-git/v5"

	"github.com/theodags/mantic/internal/types"
)

// gitState summarizes repository status for the final Result (spec §6),
// reusing the enumerator's go-git dependency (internal/enumerator reads
// the tree via the same library; this reads working-tree status).
func gitState(root string) *types.GitState {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return &types.GitState{IsRepo: false}
	}

	state := &types.GitState{IsRepo: true}

	if head, err := repo.Head(); err == nil {
		state.Branch = head.Name().Short()
	}

	wt, err := repo.Worktree()
	if err != nil {
		return state
	}
	status, err := wt.Status()
	if err != nil {
		return state
	}
	for file, s := range status {
		if s.Worktree != git.Unmodified || s.Staging != git.Unmodified {
			state.ModifiedFiles = append(state.ModifiedFiles, file)
		}
	}
	return state
}
