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
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"zr3/muse/internal/apperr"
	"zr3/muse/internal/persona"
)

// personaCmd represents the persona command
var personaCmd = &cobra.Command{
	Args:  cobra.MaximumNArgs(1),
	Use:   "persona [name]",
	Short: "list saved personas, or print one",
	Long: `Without a name, persona lists the personas saved under paths.personas.
With a name (the persona's name or its file stem) it prints that persona.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		files, err := persona.ListFiles(cfg.Paths.Personas)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, file := range files {
			p, err := persona.Load(file)
			if err != nil {
				checkError(err, "could not read persona "+file, false)
				continue
			}
			if len(args) == 0 {
				fmt.Fprintf(out, "%s: %s\n", persona.Stem(file), p.Name)
				continue
			}
			if strings.EqualFold(p.Name, args[0]) || persona.Stem(file) == args[0] {
				data, err := os.ReadFile(file)
				if err != nil {
					return apperr.New(apperr.IO, "show persona", file, err)
				}
				fmt.Fprint(out, "# "+p.Name+div(file)+string(data))
				return nil
			}
		}
		if len(args) > 0 {
			return apperr.Errorf(apperr.Validation, "show persona", args[0], "no saved persona with that name")
		}
		return nil
	},
}

// personasCmd represents the personas command
var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "extract and save a persona from every writing sample",
	Args:  cobra.NoArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		bindFlags(cmd, "input-texts")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.InputTexts == "" {
			return apperr.Errorf(apperr.Configuration, "validate flags", "", "required flag(s) --input-texts not set")
		}
		rep, err := newRunner(cfg).ExtractPersonas(cmd.Context())
		if rep != nil {
			for _, name := range rep.PersonaOrder {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", name, filepath.Base(rep.Personas[name].SourceSample))
			}
			if len(rep.PersonaFiles) > 0 {
				okColor.Fprintf(cmd.OutOrStdout(), "saved %d persona(s) to %s\n", len(rep.PersonaFiles), cfg.Paths.Personas)
			}
		}
		printReport(cmd.OutOrStdout(), os.Stderr, rep, true)
		return err
	},
}

func init() {
	rootCmd.AddCommand(personaCmd)
	rootCmd.AddCommand(personasCmd)
	personasCmd.Flags().String("input-texts", "", "directory of .txt writing samples")
}
