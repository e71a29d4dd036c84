package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"unicode/utf8"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/nestly/internal/agg"
)

var (
	aggColumns  []string
	aggManifest string
	aggDelim    string
)

var aggCmd = &cobra.Command{
	Use:   "agg [root]",
	Short: "Tabulate control values across a built tree",
	Long: `Tabulate control values across a built tree.

Each --column is either a top-level key ("number"), a JSONPath
("$.opts.lr"), or a named JSONPath ("lr=$.opts.lr"). With --manifest the
rows come from the build manifest instead of walking root.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(aggColumns) == 0 {
			return errors.New("at least one --column is required")
		}
		cols, err := agg.ParseColumns(aggColumns)
		if err != nil {
			return err
		}
		delim, err := parseDelim(aggDelim)
		if err != nil {
			return err
		}

		var rows []agg.Row
		switch {
		case aggManifest != "":
			rows, err = agg.FromManifest(aggManifest, cols)
		case len(args) == 1:
			root, absErr := filepath.Abs(args[0])
			if absErr != nil {
				return absErr
			}
			rows, err = agg.Collect(osfs.New("/"), root, settings.ControlName, cols)
		default:
			return errors.New("either a root directory or --manifest is required")
		}
		if err != nil {
			return err
		}
		return agg.WriteTable(cmd.OutOrStdout(), cols, rows, delim)
	},
}

func parseDelim(s string) (rune, error) {
	switch s {
	case "tab", `\t`:
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || r == utf8.RuneError {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	return r, nil
}

func init() {
	aggCmd.Flags().StringArrayVarP(&aggColumns, "column", "c", nil, "Column to extract (repeatable)")
	aggCmd.Flags().StringVar(&aggManifest, "manifest", "", "Read rows from a build manifest")
	aggCmd.Flags().StringVar(&aggDelim, "delim", ",", "Field delimiter (a character, or \"tab\")")
	rootCmd.AddCommand(aggCmd)
}
