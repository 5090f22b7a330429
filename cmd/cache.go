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
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"zr3/muse/internal/apperr"
	"zr3/muse/internal/cache"
	"zr3/muse/internal/selection"
)

var cacheYes bool

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "inspect or remove cached image descriptions",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "list cached descriptions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		entries, errs := store.List()
		for _, err := range errs {
			checkError(err, "skipping unreadable cache entry", false)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "IMAGE\tSOURCE\tMODEL\tAGE")
		now := time.Now()
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ImageID, dash(e.Source), dash(e.Model), e.Age(now).Round(time.Minute))
		}
		return w.Flush()
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show <image-id>",
	Short: "print one cached description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		e, err := store.Get(args[0])
		if err != nil {
			return err
		}
		if e == nil {
			return apperr.Errorf(apperr.Validation, "show cache entry", args[0], "not cached")
		}
		meta := "# " + e.ImageID + "\n\n" + e.CreatedAt.Local().Format("2006-01-02--15-04-05-MST")
		if e.Model != "" {
			meta += "\nmodel " + e.Model
		}
		if e.Source != "" {
			meta += "\nsource " + e.Source
		}
		fmt.Fprintln(cmd.OutOrStdout(), meta+div("description")+e.Description)
		return nil
	},
}

var cacheRmCmd = &cobra.Command{
	Use:   "rm <image-id>",
	Short: "delete a cached description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if !cacheYes {
			fmt.Fprintf(cmd.OutOrStdout(), "delete the cached description of [%s]?", args[0])
			if !confirmWithUser(cmd.Context(), os.Stdin, cmd.OutOrStdout()) {
				return nil
			}
		}
		return store.Delete(args[0])
	},
}

func openStore() (*cache.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cache.NewStore(cfg.Paths.Cache), nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// confirmWithUser asks until it gets y or n. End of input or a cancelled
// context counts as no.
func confirmWithUser(ctx context.Context, in io.Reader, out io.Writer) bool {
	reader := selection.NewLineReader(in)
	for {
		fmt.Fprint(out, "\n≫ ")
		userPrompt, err := reader.ReadLine(ctx)
		userPrompt = strings.TrimSpace(userPrompt)
		if userPrompt == "quit" || userPrompt == "exit" || userPrompt == "n" || userPrompt == "N" {
			return false
		} else if userPrompt == "y" || userPrompt == "Y" {
			return true
		} else if err != nil {
			fmt.Fprintln(out)
			return false
		} else {
			fmt.Fprintln(out, "please enter 'y' or 'n'")
		}
	}
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd, cacheShowCmd, cacheRmCmd)

	cacheRmCmd.Flags().BoolVarP(&cacheYes, "yes", "y", false, "delete without asking")
}
