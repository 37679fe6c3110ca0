package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ztcorectl",
	Short: "Zero-trust access decision engine",
	Long: `ztcorectl manages the ztcore server: a continuous, risk-adaptive
access-control decision engine. Every access attempt is evaluated against
the entity's current trust posture, the request's risk, and the policy
table; granted access is re-verified on a fixed cadence.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
