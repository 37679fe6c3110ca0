package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/perimetra/ztcore/pkg/policy"
)

// policyValidateCmd represents the policy validate command
var policyValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a policy file",
	Long: `Validate a YAML policy file without loading it into a server.

Every policy in the file is checked for a name, at least one action, and
known action/condition types and operators. The server rejects a file that
fails these checks, so validate before deploying.

Example:
  ztcorectl policy validate policies.yml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		filename := args[0]

		store := policy.NewStore()
		n, err := store.LoadFile(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Policy file is invalid: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Policy file is valid: %d policies\n", n)

		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			output, _ := json.MarshalIndent(store.List(), "", "  ")
			fmt.Println(string(output))
		}
	},
}

func init() {
	policyCmd.AddCommand(policyValidateCmd)
	policyValidateCmd.Flags().BoolP("verbose", "v", false, "print the parsed policies")
}
