package cmd

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/KostasZigo/gogit-sync/internal/clone"
	"github.com/KostasZigo/gogit-sync/internal/transport"
	"github.com/spf13/cobra"
)

var cloneCmd = &cobra.Command{
	Use:   "clone <url> [directory]",
	Short: "Clone a repository over the smart HTTP protocol",
	Long: `Fetch a remote repository into a new directory and check out its HEAD.

Only whole objects are supported: a remote that sends delta-compressed
objects makes the clone fail.

Examples:
  gogit clone https://example.com/project.git
  gogit clone https://example.com/project.git work --ref main --ref v1.0`,
	SilenceUsage: true,
	Args:         rangeArgs(1, 2),
	RunE:         runClone,
}

var cloneRefs []string

func init() {
	rootCmd.AddCommand(cloneCmd)

	cloneCmd.Flags().StringArrayVar(&cloneRefs, "ref", nil, "Ref to fetch, e.g. main or refs/tags/v1.0 (repeatable, default HEAD)")
}

// rangeArgs validates command receives between minimum and maximum positional arguments.
func rangeArgs(minimum, maximum int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < minimum || len(args) > maximum {
			cmd.SilenceUsage = false
			return fmt.Errorf("%s command accepts between %d and %d arg(s), received %d", cmd.Name(), minimum, maximum, len(args))
		}
		return nil
	}
}

func runClone(cmd *cobra.Command, args []string) error {
	repoURL := args[0]
	dir := ""
	if len(args) > 1 {
		dir = args[1]
	} else {
		var err error
		if dir, err = directoryFromURL(repoURL); err != nil {
			return err
		}
	}

	httpTransport := transport.NewHTTPTransport(
		transport.WithTimeout(remoteTimeout()),
		transport.WithUserAgent(remoteUserAgent()),
	)

	cmd.Printf("Cloning into '%s'...\n", dir)

	progress := func(ingested, total int) {
		fmt.Fprintf(cmd.ErrOrStderr(), "\rReceiving objects: %d/%d", ingested, total)
		if ingested == total {
			fmt.Fprintln(cmd.ErrOrStderr(), ", done.")
		}
	}

	result, err := clone.NewCloner(httpTransport).Clone(cmd.Context(), clone.Options{
		URL:      repoURL,
		Dir:      dir,
		Refs:     cloneRefs,
		Agent:    httpTransport.UserAgent(),
		Progress: progress,
	})
	if err != nil {
		return fmt.Errorf("failed to clone %s: %w", repoURL, err)
	}

	cmd.Printf("Checked out branch '%s' at %s (%d objects)\n", result.Branch, result.HeadID, result.Objects)
	return nil
}

// directoryFromURL derives the default clone directory: the last path
// segment with any ".git" suffix removed.
func directoryFromURL(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid repository url %q: %w", rawURL, err)
	}

	name := strings.TrimSuffix(path.Base(strings.TrimSuffix(parsed.Path, "/")), ".git")
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("cannot derive a directory name from %q", rawURL)
	}
	return name, nil
}
