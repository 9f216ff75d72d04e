package cmd

import (
	"fmt"

	"github.com/KostasZigo/gogit-sync/internal/objects"
	"github.com/KostasZigo/gogit-sync/internal/repository"
	"github.com/KostasZigo/gogit-sync/internal/worktree"
	"github.com/spf13/cobra"
)

var writeTreeCmd = &cobra.Command{
	Use:   "write-tree",
	Short: "Snapshot the working directory into tree objects",
	Long: `Write a tree object for the whole working directory and print its hash.
Every blob and subtree is stored in .gogit/objects. Paths matching patterns
in .gogitignore are skipped, and empty directories are not recorded.`,
	SilenceUsage: true,
	Args:         noArgs(),
	RunE:         runWriteTree,
}

func init() {
	rootCmd.AddCommand(writeTreeCmd)
}

// noArgs rejects any positional argument.
func noArgs() cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			cmd.SilenceUsage = false
			return fmt.Errorf("%s command accepts no arguments, received %d", cmd.Name(), len(args))
		}
		return nil
	}
}

func runWriteTree(cmd *cobra.Command, args []string) error {
	repoPath, err := repository.FindRoot(".")
	if err != nil {
		return err
	}

	ignorer, err := worktree.LoadIgnoreFile(repoPath)
	if err != nil {
		return err
	}

	store := objects.NewObjectStore(repository.ObjectsDir(repoPath))
	treeID, err := worktree.NewBuilder(store, ignorer).Snapshot(repoPath)
	if err != nil {
		return fmt.Errorf("failed to write tree: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), treeID)
	return nil
}
