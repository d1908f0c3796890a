package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/scrape-playground/internal/model"
)

var (
	scrapeProvider string
	scrapeOpts     []string
	scrapeOutput   string
	scrapePreview  string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [url]",
	Short: "Scrape one URL through a provider and print the result",
	Example: `  scrape-playground scrape https://example.com --provider firecrawl --opt format=html
  scrape-playground scrape --preview notes.md --output html`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("scrape"); err != nil {
			return err
		}
		svc, err := initService(cfg)
		if err != nil {
			return err
		}

		var result *model.ScrapeResult
		if scrapePreview != "" {
			raw, err := readInput(cmd.InOrStdin(), scrapePreview)
			if err != nil {
				return err
			}
			result, err = svc.Preview(raw)
			if err != nil {
				return err
			}
		} else {
			opts, err := parseOpts(scrapeOpts)
			if err != nil {
				return err
			}
			var url string
			if len(args) > 0 {
				url = args[0]
			}
			result, err = svc.Scrape(cmd.Context(), model.ScrapeRequest{
				URL:      url,
				Provider: scrapeProvider,
				Options:  opts,
			})
			if err != nil {
				return err
			}
		}

		return writeResult(cmd.OutOrStdout(), result, scrapeOutput)
	},
}

// parseOpts turns repeated key=value flags into an option bag. Values stay
// strings; the provider schema coerces them.
func parseOpts(pairs []string) (model.Options, error) {
	opts := make(model.Options, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, eris.Errorf("invalid --opt %q, want key=value", pair)
		}
		opts[key] = value
	}
	return opts, nil
}

// readInput reads path, or stdin when path is "-".
func readInput(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", eris.Wrapf(err, "read %s", path)
	}
	return string(data), nil
}

func writeResult(w io.Writer, result *model.ScrapeResult, output string) error {
	switch output {
	case "raw":
		_, err := fmt.Fprintln(w, result.Raw)
		return err
	case "html":
		_, err := fmt.Fprintln(w, result.HTML)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return eris.Errorf("unknown output %q, want raw, html, or json", output)
}

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeProvider, "provider", "p", "scrapfly", "provider to scrape with")
	scrapeCmd.Flags().StringArrayVarP(&scrapeOpts, "opt", "o", nil, "provider option as key=value (repeatable)")
	scrapeCmd.Flags().StringVar(&scrapeOutput, "output", "raw", "output: raw, html, or json")
	scrapeCmd.Flags().StringVar(&scrapePreview, "preview", "", "render Markdown from a file (or - for stdin) instead of scraping")
	rootCmd.AddCommand(scrapeCmd)
}
