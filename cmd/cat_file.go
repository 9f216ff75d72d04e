package cmd

import (
	"errors"
	"fmt"

	"github.com/KostasZigo/gogit-sync/internal/objects"
	"github.com/spf13/cobra"
)

var catFileCmd = &cobra.Command{
	Use:   "cat-file (-p | -t | -s) <hash>",
	Short: "Print the content, type or size of a stored object",
	Long: `Read an object from .gogit/objects and print information about it.

Examples:
  # Pretty-print the object (tree entries are listed one per line)
  gogit cat-file -p 3b18e512dba79e4c8300dd08aeb37f8e728b8dad

  # Print only the object type
  gogit cat-file -t 3b18e512dba79e4c8300dd08aeb37f8e728b8dad`,
	SilenceUsage: true,
	Args:         exactArgs(1, "hash"),
	RunE:         runCatFile,
}

var (
	catFilePrettyFlag bool
	catFileTypeFlag   bool
	catFileSizeFlag   bool
)

func init() {
	rootCmd.AddCommand(catFileCmd)

	catFileCmd.Flags().BoolVarP(&catFilePrettyFlag, "pretty", "p", false, "Pretty-print the object content")
	catFileCmd.Flags().BoolVarP(&catFileTypeFlag, "type", "t", false, "Print the object type")
	catFileCmd.Flags().BoolVarP(&catFileSizeFlag, "size", "s", false, "Print the object size")
	catFileCmd.MarkFlagsMutuallyExclusive("pretty", "type", "size")
	catFileCmd.MarkFlagsOneRequired("pretty", "type", "size")
}

// runCatFile prints the requested view of one object.
func runCatFile(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	objectType, content, err := store.Read(args[0])
	if err != nil {
		return fmt.Errorf("failed to read object: %w", err)
	}

	out := cmd.OutOrStdout()
	switch {
	case catFileTypeFlag:
		fmt.Fprintln(out, objectType)
	case catFileSizeFlag:
		fmt.Fprintln(out, len(content))
	case catFilePrettyFlag:
		if objectType != objects.TreeObjectType {
			_, err := out.Write(content)
			return err
		}
		tree, err := objects.ParseTree(content)
		if err != nil {
			return fmt.Errorf("failed to parse tree %s: %w", args[0], err)
		}
		printTree(cmd, tree, false)
	default:
		return errors.New("one of -p, -t or -s is required")
	}

	return nil
}
