package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/wordex/internal/query"
)

func newLookupCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "lookup <word> [path]",
		Short: "Find documents containing a word",
		Long: `Look a word up in a published index.

The word is normalized the same way indexing normalized it, so case
does not matter. Matches print one document per line with the number
of occurrences.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			word := args[0]
			path := "."
			if len(args) > 1 {
				path = args[1]
			}
			return runLookup(cmd, word, path, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Index directory (default: <path>/.wordex)")

	return cmd
}

func runLookup(cmd *cobra.Command, word, path, output string) error {
	outDir, err := resolveOutputDir(path, output)
	if err != nil {
		return err
	}

	e, err := query.NewEngine(outDir)
	if err != nil {
		return err
	}
	defer e.Close()

	matches, err := e.Lookup(word)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(matches) == 0 {
		fmt.Fprintf(out, "%s: no matches\n", strings.ToLower(strings.TrimSpace(word)))
		return nil
	}

	fmt.Fprintf(out, "%s: %d documents\n", strings.ToLower(strings.TrimSpace(word)), len(matches))
	for _, m := range matches {
		fmt.Fprintf(out, "  %s (%d occurrences)\n", m.Path, len(m.Positions))
	}
	return nil
}

// resolveOutputDir locates the index directory for a corpus path.
func resolveOutputDir(path, output string) (string, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	if output != "" {
		if filepath.IsAbs(output) {
			return output, nil
		}
		return filepath.Join(root, output), nil
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return "", err
	}
	outDir := cfg.Output.Dir
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(root, outDir)
	}
	if _, err := os.Stat(outDir); err != nil {
		return "", fmt.Errorf("index directory %s: %w", outDir, err)
	}
	return outDir, nil
}
