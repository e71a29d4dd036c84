package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentic-research/nestly/internal/build"
	"github.com/agentic-research/nestly/internal/manifest"
)

var buildManifest string

var buildCmd = &cobra.Command{
	Use:   "build [sweep] [root]",
	Short: "Create one directory with a control file per combination",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := loadNest(args[0])
		if err != nil {
			return err
		}
		root, err := filepath.Abs(args[1])
		if err != nil {
			return err
		}

		opts := []build.Option{
			build.WithControlName(settings.ControlName),
			build.WithIndent(settings.Indent),
			build.WithLogger(logger),
		}
		var rec *manifest.Writer
		if buildManifest != "" {
			if rec, err = manifest.Create(buildManifest); err != nil {
				return err
			}
			opts = append(opts, build.WithRecorder(rec))
		}

		start := time.Now()
		res, buildErr := build.New(n, osfs.New("/"), opts...).Build(root)
		if rec != nil {
			if buildErr != nil {
				if err := rec.Abort(); err != nil {
					logger.Warn("failed to discard manifest", zap.String("manifest", buildManifest), zap.Error(err))
				}
			} else if err := rec.Close(); err != nil {
				buildErr = fmt.Errorf("close manifest: %w", err)
			}
		}
		if buildErr != nil {
			return buildErr
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Built %d combinations under %s in %v.\n",
			res.Combinations, root, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildManifest, "manifest", "", "Also record the build in this SQLite database")
	rootCmd.AddCommand(buildCmd)
}
