package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"legalchat/internal/catalog"
)

type catalogOptions struct {
	path string
	full bool
}

func newCatalogCommand() *cobra.Command {
	opts := &catalogOptions{}
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the reference catalog the server would be seeded with",
		Long: `Print the reference legal texts loaded at startup.

The built-in catalog is used unless --path or REFERENCE_CATALOG_PATH names a YAML file.

Example:
  legalchat catalog
  legalchat catalog --path ./catalog.yaml --full`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printCatalog(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.path, "path", os.Getenv("REFERENCE_CATALOG_PATH"), "catalog YAML file (default: built-in)")
	cmd.Flags().BoolVar(&opts.full, "full", false, "print the full text of every entry")
	return cmd
}

func printCatalog(cmd *cobra.Command, opts *catalogOptions) error {
	refs, err := catalog.Load(opts.path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if opts.full {
		for _, r := range refs {
			fmt.Fprintf(out, "%d. %s\n%s\n\n", r.ID, r.Title, r.Content)
		}
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCHARS")
	for _, r := range refs {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", r.ID, r.Title, utf8.RuneCountInString(r.Content))
	}
	return tw.Flush()
}
