package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/tokensage/tokensage/internal/config"
	"github.com/tokensage/tokensage/internal/tui"
)

var chatResume bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat interface",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatResume, "resume", false, "Restore the most recent session's context")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a, err := buildApp(cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if chatResume {
		n, err := a.resume(cfg)
		if err != nil {
			log.Printf("[tokensage] resume failed: %v", err)
		} else if n > 0 {
			fmt.Fprintf(os.Stderr, "Restored %d interactions from the previous session.\n", n)
		}
	}

	return tui.Run(a.orch)
}
