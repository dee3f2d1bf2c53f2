package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tokensage/tokensage/internal/config"
	"github.com/tokensage/tokensage/pkg/models"
)

var categoryColors = map[models.Category]*color.Color{
	models.CategoryMarket:    color.New(color.FgGreen, color.Bold),
	models.CategoryAnalysis:  color.New(color.FgBlue, color.Bold),
	models.CategorySwap:      color.New(color.FgYellow, color.Bold),
	models.CategoryComposite: color.New(color.FgMagenta, color.Bold),
}

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Ask a single question and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		a, err := buildApp(cfg, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		query := strings.Join(args, " ")
		result := a.orch.HandleQuery(cmd.Context(), query)

		label := string(result.Type)
		if c, ok := categoryColors[result.Type]; ok {
			label = c.Sprint(label)
		}
		if !result.OK() {
			fmt.Printf("%s %s\n", label, color.RedString("(error)"))
			fmt.Println(result.Response)
			return fmt.Errorf("query failed")
		}

		fmt.Printf("%s\n%s\n", label, result.Response)
		return nil
	},
}
