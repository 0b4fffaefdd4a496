package cmd

import (
	"os"

	"github.com/pyneda/htin/internal/config"
	"github.com/pyneda/htin/lib"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string
var debugLogging bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "htin",
	Short: "HTML injection scanner",
	Long: `htin submits marker tagged HTML payloads through the query parameters and form fields of a
single page and reports every response that reflects them without sanitization.

Only scan applications you are explicitly authorized to test.`,
	Version:       config.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(exitError)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or /etc/htin/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "Use debug level logging")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			if err := config.LoadConfigFile(cfgFile); err != nil {
				return err
			}
		}
		setupLogging(cmd)
		return nil
	}
}

func setupLogging(cmd *cobra.Command) {
	level := lib.ParseLogLevel(viper.GetString("logging.console.level"))
	if verbose, err := cmd.Flags().GetBool("verbose"); err == nil && verbose && level > zerolog.InfoLevel {
		level = zerolog.InfoLevel
	}
	if debugLogging {
		level = zerolog.DebugLevel
	}
	noColor, _ := cmd.Flags().GetBool("no-color")

	if viper.GetBool("logging.file.enabled") {
		if err := lib.ZeroConsoleAndFileLog(level, noColor, viper.GetString("logging.file.path")); err == nil {
			return
		}
	}
	lib.ZeroConsoleLog(level, noColor)
}
