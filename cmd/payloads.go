package cmd

import (
	"fmt"

	"github.com/pyneda/htin/lib"
	"github.com/pyneda/htin/pkg/payloads"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var payloadLevels []string
var payloadsFormat string
var payloadsOutput string

var payloadsCmd = &cobra.Command{
	Use:   "payloads",
	Short: "List the payload templates used by scans",
	Long:  `Lists the built-in payload templates, plus the ones from the configured payloads file, grouped by level.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := lib.ParseFormatType(payloadsFormat)
		if err != nil {
			return err
		}
		levels := payloads.AllLevels
		if len(payloadLevels) > 0 {
			levels, err = payloads.ParseLevelsStrict(payloadLevels)
			if err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("payloads") {
			file, _ := cmd.Flags().GetString("payloads")
			viper.Set("payloads.file", file)
		}
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}
		entries := catalog.ForLevels(levels)
		if payloadsOutput != "" {
			if err := lib.FormatOutputToFile(entries, format, payloadsOutput); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d payload templates written to %s\n", len(entries), payloadsOutput)
			return nil
		}
		formatted, err := lib.FormatOutput(entries, format)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(payloadsCmd)
	payloadsCmd.Flags().StringSliceVarP(&payloadLevels, "levels", "l", nil, "Only list these levels")
	payloadsCmd.Flags().StringVar(&payloadsFormat, "format", "table", "Output format: text, pretty, json, yaml or table")
	payloadsCmd.Flags().StringVarP(&payloadsOutput, "output", "o", "", "Write the listing to this file instead of stdout")
	payloadsCmd.Flags().String("payloads", "", "YAML file with additional payload templates")
}
