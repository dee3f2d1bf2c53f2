package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tokensage",
	Short: "Crypto chat assistant with confidence-based query routing",
	Long: `Tokensage answers crypto questions by routing each query to the
agent best suited for it: live market data lookups, LLM-backed analysis,
or swap intent parsing. A shared context window carries the conversation
across agents, so a follow-up like "why did it drop?" knows which token
you were just looking at.

With no arguments, launches the interactive chat TUI.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; real environment variables win either way.
		_ = godotenv.Load()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&chatResume, "resume", false, "Restore the most recent session's context")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
