package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"assetgrip/internal/config"
	"assetgrip/internal/source"
)

// SeedOptions configures catalog generation
type SeedOptions struct {
	Count  int
	Format string
}

// NewSeedCommand writes a generated catalog to a SQLite or YAML file.
func NewSeedCommand(root *RootOptions) *cobra.Command {
	opts := &SeedOptions{}

	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Write a generated asset catalog",
		Long:  "Write a generated asset catalog. The format follows the file extension (.db, .sqlite, .yaml, .yml) unless --format is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			format, err := seedFormat(path, opts.Format)
			if err != nil {
				return err
			}
			if opts.Count <= 0 {
				return fmt.Errorf("count must be positive: %d", opts.Count)
			}

			assets := source.GenerateCatalog(opts.Count)
			switch format {
			case config.SourceYAML:
				if err := source.WriteYAML(path, assets); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d assets to %s\n", len(assets), path)

			case config.SourceSQLite:
				db, err := source.OpenSQLite(path)
				if err != nil {
					return err
				}
				defer db.Close()
				n, err := db.Seed(cmd.Context(), assets)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "inserted %d of %d assets into %s\n", n, len(assets), path)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Count, "count", "n", 500, "number of assets")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "yaml or sqlite")

	return cmd
}

func seedFormat(path, format string) (string, error) {
	if format != "" {
		switch format {
		case config.SourceYAML, config.SourceSQLite:
			return format, nil
		}
		return "", fmt.Errorf("unknown seed format %q", format)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return config.SourceYAML, nil
	case ".db", ".sqlite", ".sqlite3":
		return config.SourceSQLite, nil
	}
	return "", fmt.Errorf("cannot infer format from %q, use --format", path)
}
