package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/koustreak/pgmeta/internal/catalog"
	"github.com/koustreak/pgmeta/internal/service"
	"github.com/koustreak/pgmeta/internal/typegen"
)

// outputFiles names the file each target is written to by "generate all".
var outputFiles = map[string]string{
	"typescript": "database.ts",
	"dart":       "database.dart",
	"go":         "database.go",
}

type generateOptions struct {
	snapshot         string
	out              string
	goPackage        string
	included         []string
	excluded         []string
	detectOneToOne   bool
	postgrestVersion string
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate <typescript|dart|go|all>",
		Short: "Generate bindings for one target or all of them",
		Long: `Generate bindings from a live database or from a metadata snapshot.

Examples:
  pgmeta generate typescript --db-url postgres://localhost/app > database.ts
  pgmeta generate dart --snapshot meta.json --out lib/database.dart
  pgmeta generate all --snapshot meta.json --out ./gen`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, root, opts, args[0])
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.snapshot, "snapshot", "", "read metadata from a JSON snapshot instead of the database")
	f.StringVarP(&opts.out, "out", "o", "", "output file, or directory for \"all\" (default stdout, or . for \"all\")")
	f.StringVar(&opts.goPackage, "go-package", "", "package name of generated Go code")
	f.StringSliceVar(&opts.included, "included-schemas", nil, "schemas to include")
	f.StringSliceVar(&opts.excluded, "excluded-schemas", nil, "schemas to exclude")
	f.BoolVar(&opts.detectOneToOne, "detect-one-to-one-relationships", false, "report whether each relationship is one-to-one")
	f.StringVar(&opts.postgrestVersion, "postgrest-version", "", "PostgREST version recorded in the output")
	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions, target string) error {
	cfg, log, err := root.load()
	if err != nil {
		return err
	}
	ctx := log.WithContext(cmd.Context())

	genOpts := cfg.Generator
	f := cmd.Flags()
	if f.Changed("included-schemas") {
		genOpts.IncludedSchemas = opts.included
	}
	if f.Changed("excluded-schemas") {
		genOpts.ExcludedSchemas = opts.excluded
	}
	if f.Changed("detect-one-to-one-relationships") {
		genOpts.DetectOneToOneRelationships = opts.detectOneToOne
	}
	if f.Changed("postgrest-version") {
		genOpts.PostgrestVersion = opts.postgrestVersion
	}

	var collector catalog.Collector
	if opts.snapshot != "" {
		meta, err := catalog.ReadFile(opts.snapshot)
		if err != nil {
			return err
		}
		collector = catalog.NewStaticCollector(meta)
	} else {
		c, closeDB, err := connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeDB()
		collector = c
	}
	svc := service.New(collector, nil, service.DefaultTargets(opts.goPackage)...)

	if target == "all" {
		return generateAll(ctx, svc, genOpts, opts.out, cmd.ErrOrStderr())
	}
	out, err := svc.Generate(ctx, target, genOpts)
	if err != nil {
		return err
	}
	if opts.out == "" {
		_, err = io.WriteString(cmd.OutOrStdout(), out.Output)
		return err
	}
	return writeFile(opts.out, out.Output)
}

func generateAll(ctx context.Context, svc *service.Service, opts typegen.Options, dir string, status io.Writer) error {
	if dir == "" {
		dir = "."
	}
	outs, err := svc.GenerateAll(ctx, opts)
	if err != nil {
		return err
	}
	for _, o := range outs {
		name, ok := outputFiles[o.Target]
		if !ok {
			name = "database." + o.Target
		}
		path := filepath.Join(dir, name)
		if err := writeFile(path, o.Output); err != nil {
			return err
		}
		fmt.Fprintf(status, "wrote %s (%d bytes)\n", path, len(o.Output))
	}
	return nil
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
