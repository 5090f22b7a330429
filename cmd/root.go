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
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"zr3/muse/internal/config"
	"zr3/muse/internal/pipeline"
)

var cfgFile string

var errNoStories = errors.New("no story could be generated")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "muse",
	Short: "write short stories about your photos in a voice learned from your writing",
	Long: `muse reads writing samples, extracts a persona from each one, lets you
pick a persona, describes every image (reusing cached descriptions when you
want to) and writes a story per image in the chosen voice.

  muse --input-texts ./input-texts --input-images ./input-images

Running muse with no flags prints this help.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PreRun: func(cmd *cobra.Command, args []string) {
		bindFlags(cmd, "input-texts", "input-images", "persona", "combine", "cache")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("input-texts") == "" && viper.GetString("input-images") == "" {
			return cmd.Help()
		}
		return runBatch(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	go func() {
		// first Ctrl-C cancels the run, a second one gets the default handler
		<-ctx.Done()
		stop()
	}()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil && !errors.Is(err, errNoStories) {
		color.New(color.FgRed).Fprintln(os.Stderr, "muse: "+err.Error())
	}
	os.Exit(exitCode(err))
}

// exitCode maps a command error to the process status: 2 when there was
// nothing to work with, 3 when there was input but no story came out.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, pipeline.ErrNoPersonas), errors.Is(err, pipeline.ErrNoImages):
		return 2
	case errors.Is(err, errNoStories):
		return 3
	}
	return 1
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/muse/config.yml)")

	rootCmd.PersistentFlags().Bool("quiet", false, "hide the CLI ux and only print story paths")
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	rootCmd.PersistentFlags().Bool("verbose", false, "log every state change and cache decision")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	rootCmd.PersistentFlags().String("provider", "", "model provider: openai or stub")
	viper.BindPFlag("llm.provider", rootCmd.PersistentFlags().Lookup("provider"))

	addRunFlags(rootCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// a missing .env is normal
	_ = godotenv.Load()

	v := viper.GetViper()
	config.SetDefaults(v)
	config.BindEnv(v)

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		checkError(err, "muse looks for its configuration in the home directory, and no home dir was found.", false)
		viper.AddConfigPath(home + "/.config/muse/")
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	setupLogging(os.Stderr)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			log.Debug("no config file found, using defaults")
			return
		}
		checkError(err, "could not load config file", true)
	}
	log.WithField("file", viper.ConfigFileUsed()).Debug("config loaded")
}

func setupLogging(w io.Writer) {
	log.SetHandler(cli.New(w))
	switch {
	case viper.GetBool("verbose"):
		log.SetLevel(log.DebugLevel)
	case viper.GetBool("quiet"):
		log.SetLevel(log.WarnLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	// flags are read after initConfig ran
	setupLogging(os.Stderr)
	return cfg, nil
}

func div(title string) string {
	return "\n\n## " + title + "\n\n"
}

func checkError(err error, message string, isFatal bool) {
	if err == nil {
		return
	}
	if isFatal {
		log.WithError(err).Fatal(message)
	}
	log.WithError(err).Warn(message)
}
