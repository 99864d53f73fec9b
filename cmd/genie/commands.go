package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sellusgenie-backend/internal/models"
	"sellusgenie-backend/internal/widgets"
)

func widgetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "widgets",
		Short: "List the widget catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printCatalog(cmd.OutOrStdout(), widgets.DefaultRegistry())
		},
	}
}

func printCatalog(out io.Writer, registry *widgets.Registry) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tVERSION\tNAME\tCATEGORY")
	for _, def := range registry.List() {
		cfg := def.Config()
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", cfg.Type, cfg.Version, cfg.Name, cfg.Category)
	}
	return w.Flush()
}

func renderCmd() *cobra.Command {
	var (
		storeID string
		slug    string
		name    string
		system  string
		preview string
	)

	command := &cobra.Command{
		Use:   "render",
		Short: "Render a page to its JSON tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			selector := models.PageSelector{Slug: slug, Name: name, SystemPageType: models.SystemPageType(system)}
			if preview == "" {
				if storeID == "" {
					return errors.New("--store is required unless --preview is given")
				}
			}

			application, closeFn, err := openApplication(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			storefront := application.Storefront()
			if preview != "" {
				tree, err := storefront.PreviewPage(cmd.Context(), preview)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), tree)
			}

			tree, err := storefront.RenderPage(cmd.Context(), storeID, selector)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tree)
		},
	}

	command.Flags().StringVarP(&storeID, "store", "s", "", "store id")
	command.Flags().StringVar(&slug, "slug", "", "content page slug")
	command.Flags().StringVar(&name, "name", "", "page name")
	command.Flags().StringVar(&system, "system", "", "system page role (header or footer)")
	command.Flags().StringVar(&preview, "preview", "", "page id to render in preview mode")
	return command
}

func upgradeWidgetsCmd() *cobra.Command {
	var (
		storeID string
		all     bool
	)

	command := &cobra.Command{
		Use:   "upgrade-widgets",
		Short: "Migrate stored widgets to their current versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (storeID == "") == !all {
				return errors.New("pass either --store or --all")
			}

			application, closeFn, err := openApplication(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			maintenance := application.Maintenance()
			if all {
				report, err := maintenance.UpgradeAllStores(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			}

			report, err := maintenance.UpgradeWidgets(cmd.Context(), storeID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}

	command.Flags().StringVarP(&storeID, "store", "s", "", "store id")
	command.Flags().BoolVar(&all, "all", false, "upgrade every store")
	return command
}

func tokenizeCmd() *cobra.Command {
	var (
		storeID string
		dryRun  bool
	)

	command := &cobra.Command{
		Use:   "tokenize",
		Short: "Replace literal store values in page content with tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			if storeID == "" {
				return errors.New("--store is required")
			}

			application, closeFn, err := openApplication(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			report, err := application.Maintenance().TokenizeLiterals(cmd.Context(), storeID, dryRun)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}

	command.Flags().StringVarP(&storeID, "store", "s", "", "store id")
	command.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without saving them")
	return command
}

func printJSON(out io.Writer, value interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
