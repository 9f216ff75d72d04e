package clone

import (
	"strings"

	"github.com/KostasZigo/gogit-sync/internal/constants"
	"github.com/KostasZigo/gogit-sync/internal/objects"
	"github.com/KostasZigo/gogit-sync/internal/protocol"
	"github.com/KostasZigo/gogit-sync/internal/repository"
	"github.com/KostasZigo/gogit-sync/internal/worktree"
)

// writeRefs records the selected refs and points HEAD at a branch. The
// branch is the remote's HEAD symref when HEAD was selected, else the first
// selected branch, else the default branch. It returns the branch and the
// commit to check out, which is zero when no branch was selected.
func writeRefs(dir string, advertisement *protocol.Advertisement, selected []protocol.Ref) (string, objects.ObjectID, error) {
	var (
		symrefBranch, firstBranch string
		symrefID, firstID, headID objects.ObjectID
		headSelected              bool
	)

	for _, ref := range selected {
		switch {
		case ref.Name == constants.Head:
			headSelected, headID = true, ref.ID
			if target, ok := advertisement.HeadTarget(); ok && strings.HasPrefix(target, constants.BranchRefPrefix) {
				symrefBranch, symrefID = strings.TrimPrefix(target, constants.BranchRefPrefix), ref.ID
			}

		case strings.HasPrefix(ref.Name, constants.Refs+"/"):
			if err := repository.UpdateRef(dir, ref.Name, ref.ID.String()); err != nil {
				return "", objects.ObjectID{}, err
			}
			if firstBranch == "" && strings.HasPrefix(ref.Name, constants.BranchRefPrefix) {
				firstBranch, firstID = strings.TrimPrefix(ref.Name, constants.BranchRefPrefix), ref.ID
			}
		}
	}

	branch, checkoutID := constants.DefaultBranch, objects.ObjectID{}
	switch {
	case symrefBranch != "":
		branch, checkoutID = symrefBranch, symrefID
	case firstBranch != "":
		branch, checkoutID = firstBranch, firstID
	case headSelected:
		checkoutID = headID
	}

	if !checkoutID.IsZero() {
		if err := repository.UpdateRef(dir, constants.BranchRefPrefix+branch, checkoutID.String()); err != nil {
			return "", objects.ObjectID{}, err
		}
	}
	if err := repository.WriteHEAD(dir, branch); err != nil {
		return "", objects.ObjectID{}, err
	}

	return branch, checkoutID, nil
}

func checkoutCommit(store *objects.ObjectStore, commitID objects.ObjectID, dir string) error {
	commit, err := store.ReadCommit(commitID.String())
	if err != nil {
		return err
	}
	return worktree.Checkout(store, commit.TreeID(), dir)
}
