package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	contentblocks "github.com/goliatone/go-content-blocks"
	"github.com/goliatone/go-content-blocks/internal/catalog"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	catalogDir string
	verbose    bool
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "contentblocks",
		Short:         "Inspect and render content block catalogs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.catalogDir, "catalog", "", "Directory holding .hcl block type definitions")
	root.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "Log through go-logger to stderr")

	root.AddCommand(
		newValidateCommand(flags),
		newShowcaseCommand(flags),
		newRenderCommand(flags),
	)
	return root
}

func newValidateCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load a catalog and list the block types it defines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.catalogDir == "" {
				return fmt.Errorf("--catalog is required")
			}
			loaded, err := catalog.NewLoader().LoadDir(cmd.Context(), flags.catalogDir)
			if err != nil {
				return err
			}
			for _, input := range loaded.Registry().List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d fields\n", input.Keyname, len(input.Fields))
			}
			return nil
		},
	}
}

func newShowcaseCommand(flags *rootFlags) *cobra.Command {
	var container string
	var seed int64
	cmd := &cobra.Command{
		Use:   "showcase",
		Short: "Print the showcase render tree of a catalog as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := contentblocks.DefaultConfig()
			cfg.Showcase.Seed = seed
			module, err := openModule(cmd.Context(), cfg, flags)
			if err != nil {
				return err
			}
			defer module.Close()

			tree, err := module.Showcase(cmd.Context(), contentblocks.ShowcaseContainer(container))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), tree)
		},
	}
	cmd.Flags().StringVar(&container, "container", "", "Only keep the grouping with this key")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Seed of the placeholder text generator")
	return cmd
}

func newRenderCommand(flags *rootFlags) *cobra.Command {
	var contentPath string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Attach the instances of a content file and print the hydrated tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			if contentPath == "" {
				return fmt.Errorf("--content is required")
			}
			content, err := readContentFile(contentPath)
			if err != nil {
				return err
			}
			module, err := openModule(cmd.Context(), contentblocks.DefaultConfig(), flags)
			if err != nil {
				return err
			}
			defer module.Close()

			if err := content.attach(cmd.Context(), module.Blocks()); err != nil {
				return err
			}
			tree, err := module.Render(cmd.Context(), content.host(), args...)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), tree)
		},
	}
	cmd.Flags().StringVar(&contentPath, "content", "", "JSON file describing a host and its instances")
	return cmd
}

func openModule(ctx context.Context, cfg contentblocks.Config, flags *rootFlags) (*contentblocks.Module, error) {
	if flags.catalogDir == "" {
		return nil, fmt.Errorf("--catalog is required")
	}
	if flags.verbose {
		cfg.Logging.Provider = "gologger"
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "console"
	}
	module, err := contentblocks.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap module: %w", err)
	}
	if err := module.SyncCatalog(ctx, flags.catalogDir); err != nil {
		module.Close()
		return nil, fmt.Errorf("sync catalog: %w", err)
	}
	return module, nil
}

func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
