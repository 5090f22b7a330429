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

	"zr3/muse/internal/story"
)

// peepCmd represents the peep command
var peepCmd = &cobra.Command{
	Use:     "peep",
	Short:   "print the path of the newest story",
	Example: `  cat "$(muse peep)"`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		latest, err := story.Latest(cfg.Paths.Stories)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), latest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(peepCmd)
}
