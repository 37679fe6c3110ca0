package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// sessionKeyCmd represents the session-key command
var sessionKeyCmd = &cobra.Command{
	Use:   "session-key",
	Short: "Manage the session signing key",
	Long:  `Manage the HMAC key used to verify session tokens.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'session-key' requires a subcommand (generate)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

// sessionKeyGenerateCmd represents the session-key generate command
var sessionKeyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a random session signing key",
	Long: `Generate a random 256-bit key for session token verification.

Export the output as ZTCORE_SESSION_KEY for the server and the token
issuer.

Example:
  ztcorectl session-key generate > session_key
  export ZTCORE_SESSION_KEY=$(cat session_key)`,
	Run: func(cmd *cobra.Command, args []string) {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate key: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(base64.StdEncoding.EncodeToString(key))
	},
}

func init() {
	rootCmd.AddCommand(sessionKeyCmd)
	sessionKeyCmd.AddCommand(sessionKeyGenerateCmd)
}
