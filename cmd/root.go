package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/scrape-playground/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "scrape-playground",
	Short: "Compare third-party scraping APIs side by side",
	Long:  "Sends a URL to Scrapfly, Firecrawl, or Jina Reader and returns the page as Markdown plus a rendered HTML preview.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
