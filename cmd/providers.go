package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/scrape-playground/internal/model"
	"github.com/sells-group/scrape-playground/internal/scrape"
)

var providersFormat string

// providerDoc is one provider's entry in the schema listing.
type providerDoc struct {
	Name    string       `json:"name" yaml:"name"`
	Options model.Schema `json:"options" yaml:"options"`
}

var providersCmd = &cobra.Command{
	Use:   "providers [name]",
	Short: "List enabled providers and their option schemas",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initService(cfg)
		if err != nil {
			return err
		}
		docs, err := providerDocs(svc.Registry(), args)
		if err != nil {
			return err
		}
		return writeDocs(cmd.OutOrStdout(), docs, providersFormat)
	},
}

func providerDocs(reg *scrape.Registry, only []string) ([]providerDoc, error) {
	names := reg.Names()
	if len(only) > 0 {
		names = only
	}
	docs := make([]providerDoc, 0, len(names))
	for _, name := range names {
		schema, err := reg.SchemaFor(name)
		if err != nil {
			return nil, eris.Wrapf(err, "provider %q", name)
		}
		docs = append(docs, providerDoc{Name: name, Options: schema})
	}
	return docs, nil
}

func writeDocs(w io.Writer, docs []providerDoc, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(docs); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}
	return eris.Errorf("unknown format %q, want yaml or json", format)
}

func init() {
	providersCmd.Flags().StringVar(&providersFormat, "format", "yaml", "output format: yaml or json")
	rootCmd.AddCommand(providersCmd)
}
