package cmd

import (
	"errors"
	"fmt"

	"github.com/KostasZigo/gogit-sync/internal/objects"
	"github.com/spf13/cobra"
)

var commitTreeCmd = &cobra.Command{
	Use:   "commit-tree <tree-hash> [-p <parent>]... -m <message>",
	Short: "Create a commit object for a tree",
	Long: `Create a commit object pointing at an existing tree and print its hash.
Author and committer come from the author.name and author.email settings.

Examples:
  gogit commit-tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904 -m "initial"
  gogit commit-tree <tree> -p <parent-commit> -m "second"`,
	SilenceUsage: true,
	Args:         exactArgs(1, "tree hash"),
	RunE:         runCommitTree,
}

var (
	commitParents []string
	commitMessage string
)

func init() {
	rootCmd.AddCommand(commitTreeCmd)

	commitTreeCmd.Flags().StringArrayVarP(&commitParents, "parent", "p", nil, "Parent commit (repeatable)")
	commitTreeCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "Commit message")
	commitTreeCmd.MarkFlagRequired("message")
}

func runCommitTree(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	tree, err := store.ReadTree(args[0])
	if err != nil {
		return fmt.Errorf("invalid tree %s: %w", args[0], err)
	}

	parentIDs := make([]objects.ObjectID, 0, len(commitParents))
	for _, parent := range commitParents {
		commit, err := store.ReadCommit(parent)
		if err != nil {
			return fmt.Errorf("invalid parent %s: %w", parent, err)
		}
		parentIDs = append(parentIDs, commit.ID())
	}

	if commitMessage == "" {
		return errors.New("commit message must not be empty")
	}

	commit, err := objects.NewCommit(tree.ID(), parentIDs, commitMessage, configuredAuthor())
	if err != nil {
		return err
	}
	if err := store.Store(commit); err != nil {
		return fmt.Errorf("failed to store object: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), commit.Hash())
	return nil
}
