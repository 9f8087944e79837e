package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/koustreak/pgmeta/internal/catalog"
)

func newSnapshotCmd(root *rootOptions) *cobra.Command {
	var (
		out      string
		included []string
		excluded []string
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Dump the database catalog as a JSON metadata snapshot",
		Long: `Dump the catalog so generation can be repeated offline with
"pgmeta generate --snapshot".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := root.load()
			if err != nil {
				return err
			}
			ctx := log.WithContext(cmd.Context())

			collector, closeDB, err := connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			meta, err := collector.Collect(ctx, catalog.Filter{Included: included, Excluded: excluded})
			if err != nil {
				return err
			}
			if out == "" {
				return catalog.Encode(cmd.OutOrStdout(), meta)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := catalog.Encode(f, meta); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringSliceVar(&included, "included-schemas", nil, "schemas to include")
	cmd.Flags().StringSliceVar(&excluded, "excluded-schemas", nil, "schemas to exclude")
	return cmd
}
