package cmd

import (
	"fmt"

	"github.com/KostasZigo/gogit-sync/internal/objects"
	"github.com/spf13/cobra"
)

var lsTreeCmd = &cobra.Command{
	Use:   "ls-tree [--name-only] <tree-hash>",
	Short: "List the entries of a tree object",
	Long: `List the entries of a tree object in stored order.

Each line has the form "<mode> <type> <hash>\t<name>". With --name-only
only the names are printed.`,
	SilenceUsage: true,
	Args:         exactArgs(1, "tree hash"),
	RunE:         runLsTree,
}

var nameOnlyFlag bool

func init() {
	rootCmd.AddCommand(lsTreeCmd)

	lsTreeCmd.Flags().BoolVar(&nameOnlyFlag, "name-only", false, "List only file names")
}

func runLsTree(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	tree, err := store.ReadTree(args[0])
	if err != nil {
		return fmt.Errorf("failed to read tree: %w", err)
	}

	printTree(cmd, tree, nameOnlyFlag)
	return nil
}

// printTree writes one line per entry, padding directory modes to six digits.
func printTree(cmd *cobra.Command, tree *objects.Tree, nameOnly bool) {
	out := cmd.OutOrStdout()
	for _, entry := range tree.Entries() {
		if nameOnly {
			fmt.Fprintln(out, entry.Name())
			continue
		}
		fmt.Fprintf(out, "%s %s %s\t%s\n", entry.Mode().Padded(), entry.Mode().ObjectType(), entry.Hash(), entry.Name())
	}
}
