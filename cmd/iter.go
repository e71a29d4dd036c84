package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/nestly/internal/nest"
)

var (
	iterPrefix string
	iterJSON   bool
)

type iterLine struct {
	Path    string          `json:"path"`
	Control *nest.Namespace `json:"control"`
}

var iterCmd = &cobra.Command{
	Use:   "iter [sweep]",
	Short: "Print every combination without touching the filesystem",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := loadNest(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		enc := json.NewEncoder(out)
		for c, err := range n.Iter(iterPrefix) {
			if err != nil {
				return err
			}
			if iterJSON {
				if err := enc.Encode(iterLine{Path: c.Path, Control: c.Namespace}); err != nil {
					return err
				}
				continue
			}
			control, err := json.Marshal(c.Namespace)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\t%s\n", c.Path, control)
		}
		return nil
	},
}

func init() {
	iterCmd.Flags().StringVar(&iterPrefix, "prefix", "", "Prefix every path with this directory")
	iterCmd.Flags().BoolVar(&iterJSON, "json", false, "Print JSON lines")
	rootCmd.AddCommand(iterCmd)
}
