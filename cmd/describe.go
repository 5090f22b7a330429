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

	"github.com/spf13/cobra"

	"zr3/muse/internal/selection"
)

// describeCmd represents the describe command
var describeCmd = &cobra.Command{
	Use:   "describe <image>",
	Short: "print the description muse would use for one image",
	Long: `describe runs the cache lookup for a single image: a cached description
is offered for reuse, otherwise the image is analyzed and the result cached.`,
	Args: cobra.ExactArgs(1),
	PreRun: func(cmd *cobra.Command, args []string) {
		bindFlags(cmd, "cache")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		res, err := newRunner(cfg).Describe(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, w := range res.Warnings {
			warnColor.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", w)
		}

		if cfg.Quiet {
			fmt.Fprintln(cmd.OutOrStdout(), res.Description)
			return nil
		}
		note := res.Source.String()
		if res.Stale && res.Source != selection.SourceRegenerated {
			note += ", image changed since it was cached"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", res.ImageID, note)
		fmt.Fprintln(cmd.OutOrStdout(), "╰─ "+res.Description)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().String("cache", "", "cached description: ask, reuse or regenerate")
}
