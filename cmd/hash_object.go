package cmd

import (
	"fmt"

	"github.com/KostasZigo/gogit-sync/internal/objects"
	"github.com/KostasZigo/gogit-sync/internal/repository"
	"github.com/spf13/cobra"
)

var hashObjectCmd = &cobra.Command{
	Use:   "hash-object <filepath>",
	Short: "Compute object hash and optionally create and store a blob from a file",
	Long: `Compute the object hash (SHA-1 hash) for a file's content.
Optionally write the resulting object's blob into the objects folder.

Examples:
  # Compute hash without storing
  gogit hash-object myfile.txt

  # Compute hash and store in .gogit/objects
  gogit hash-object -w myfile.txt`,
	SilenceUsage: true,
	Args:         exactArgs(1, "filepath"),
	RunE:         runHashObject,
}

var writeFlag bool

func init() {
	rootCmd.AddCommand(hashObjectCmd)

	// Add flag using Cobra's flag system
	hashObjectCmd.Flags().BoolVarP(&writeFlag, "write", "w", false, "Write the object into the objects folder")
}

// exactArgs validates command receives exactly n positional arguments.
// enables usage printing in case of error
func exactArgs(n int, name string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			cmd.SilenceUsage = false
			return fmt.Errorf("%s command requires exactly %d argument (%s), received %d", cmd.Name(), n, name, len(args))
		}
		return nil
	}
}

// runHashObject computes hash and optionally stores blob object.
func runHashObject(cmd *cobra.Command, args []string) error {
	// Create blob from file's contents
	blob, err := objects.NewBlobFromFile(args[0])
	if err != nil {
		return err
	}

	// Print hash to stdout
	fmt.Fprintln(cmd.OutOrStdout(), blob.Hash())

	if writeFlag {
		store, err := openStore()
		if err != nil {
			return err
		}

		if err := store.Store(blob); err != nil {
			return fmt.Errorf("failed to store object: %w", err)
		}
	}

	return nil
}

// openStore opens the object store of the repository containing the working directory.
func openStore() (*objects.ObjectStore, error) {
	repoPath, err := repository.FindRoot(".")
	if err != nil {
		return nil, err
	}
	return objects.NewObjectStore(repository.ObjectsDir(repoPath)), nil
}
