package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/perimetra/ztcore/pkg/config"
)

// configurationShowCmd represents the configuration show command
var configurationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	Long: `Show the effective configuration with the source of each attribute
(default, file, or environment).

Example:
  ztcorectl configuration show
  ztcorectl configuration show --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		output, _ := cmd.Flags().GetString("output")
		switch output {
		case "json":
			text, err := cfg.FormatJSON()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to format configuration: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(text)
		default:
			fmt.Print(cfg.FormatText())
		}
	},
}

func init() {
	configurationCmd.AddCommand(configurationShowCmd)
	configurationShowCmd.Flags().StringP("output", "o", "text", "output format (text or json)")
}
