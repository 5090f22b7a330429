/*
Copyright © 2023 Zak Reynolds <zak.reynolds@zakjr.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"zr3/muse/internal/pipeline"
	"zr3/muse/internal/selection"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "extract personas, pick one and write a story for every image",
	Example: `  muse run --input-texts ./input-texts --input-images ./input-images
  muse run --input-texts ./texts --input-images ./pics --persona 2 --cache reuse
  muse run --input-texts ./texts --input-images ./pics --combine`,
	Args: cobra.NoArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		bindFlags(cmd, "input-texts", "input-images", "persona", "combine", "cache")
	},
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("input-texts", "", "directory of .txt writing samples")
	cmd.Flags().String("input-images", "", "directory of .jpg, .jpeg and .png images")
	cmd.Flags().String("persona", "", "persona number or name, skips the menu")
	cmd.Flags().Bool("combine", false, "write one story from all images instead of one per image")
	cmd.Flags().String("cache", "", "cached descriptions: ask, reuse or regenerate")
}

// flagKeys maps run flags to their config keys.
var flagKeys = map[string]string{
	"input-texts":  "input-texts",
	"input-images": "input-images",
	"persona":      "persona",
	"combine":      "combine",
	"cache":        "selection.cache",
}

// bindFlags binds the named flags of the command being run. Binding late
// lets several commands declare the same flag.
func bindFlags(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if f := cmd.Flags().Lookup(name); f != nil {
			viper.BindPFlag(flagKeys[name], f)
		}
	}
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireInputs(); err != nil {
		return err
	}

	rep, err := newRunner(cfg).Run(cmd.Context())
	printReport(cmd.OutOrStdout(), os.Stderr, rep, cfg.Quiet)
	if err != nil {
		return err
	}
	if len(rep.Stories) == 0 {
		return errNoStories
	}
	return nil
}

// printReport lists story paths on out and everything that went wrong on
// errOut. Quiet keeps only the story paths.
func printReport(out, errOut io.Writer, rep *pipeline.Report, quiet bool) {
	if rep == nil {
		return
	}
	if !quiet {
		for _, img := range rep.Images {
			note := img.Source.String()
			if img.Stale && img.Source != selection.SourceRegenerated {
				note += ", image changed since it was cached"
			}
			fmt.Fprintf(out, "%s: %s\n", img.ImageID, note)
		}
		if len(rep.Stories) > 0 {
			okColor.Fprintf(out, "\n%d stories by %s\n", len(rep.Stories), rep.Chosen.Name)
		}
	}
	for _, path := range rep.Stories {
		fmt.Fprintln(out, path)
	}

	if !quiet {
		for _, w := range rep.Warnings() {
			warnColor.Fprintf(errOut, "warning [%s] %s: %v\n", w.State, w.Item, w.Err)
		}
	}
	skipped := rep.Skipped()
	if len(skipped) == 0 {
		return
	}
	skipColor.Fprintf(errOut, "\nskipped %d item(s):\n", len(skipped))
	for _, s := range skipped {
		fmt.Fprintf(errOut, "  [%s] %s (%s): %v\n", s.State, s.Item, s.Kind, s.Err)
	}
}
