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
	"os"

	"github.com/spf13/cobra"

	"zr3/muse/internal/persona"
)

var storyPersonaFile string

// storyCmd represents the story command
var storyCmd = &cobra.Command{
	Use:   "story --persona <file.yaml> <image>...",
	Short: "write stories from a saved persona without extracting again",
	Long: `story skips the writing samples and uses a persona file saved by an
earlier run (see "muse persona"). Each image is described through the cache
as usual.`,
	Example: `  muse story --persona personas/sample1.yaml input-images/pic1.jpg
  muse story --persona personas/sample1.yaml --combine input-images/*.jpg`,
	Args: cobra.MinimumNArgs(1),
	PreRun: func(cmd *cobra.Command, args []string) {
		bindFlags(cmd, "combine", "cache")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := persona.Load(storyPersonaFile)
		if err != nil {
			return err
		}
		if !cfg.Quiet {
			okColor.Fprintln(cmd.OutOrStdout(), "writing as "+p.Name+"!")
		}

		rep, err := newRunner(cfg).Generate(cmd.Context(), p, args)
		printReport(cmd.OutOrStdout(), os.Stderr, rep, cfg.Quiet)
		if err != nil {
			return err
		}
		if len(rep.Stories) == 0 {
			return errNoStories
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(storyCmd)

	storyCmd.Flags().StringVar(&storyPersonaFile, "persona", "", "persona yaml written by an earlier run")
	storyCmd.MarkFlagRequired("persona")
	storyCmd.Flags().Bool("combine", false, "write one story from all images")
	storyCmd.Flags().String("cache", "", "cached descriptions: ask, reuse or regenerate")
}
