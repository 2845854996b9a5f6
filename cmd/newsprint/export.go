package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pevans/newsprint/export"
	"github.com/pevans/newsprint/fetcher"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		sessionID string
		selection string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export articles as a zip of print-ready HTML documents",
		Long: `Export fetches each selected article and writes a zip holding one
print-ready HTML document per article. Articles that cannot be fetched get
a text file describing the failure instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			session, err := resolveSession(store, sessionID)
			if err != nil {
				return err
			}

			records, err := store.ListRecords(session.SessionID)
			if err != nil {
				return err
			}

			selected, err := selectRecords(records, selection)
			if err != nil {
				return err
			}

			pages := fetcher.NewHTTPFetcher(a.cfg.Fetch.Content(), a.logger)
			defer pages.Close()

			bundle := export.NewExporter(pages, a.cfg.Export, a.logger).Export(cmd.Context(), selected)

			if output == "" {
				output = export.BundleFilename(time.Now())
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := bundle.WriteZip(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d articles (%d failed) to %s\n",
				bundle.Len(), bundle.Failures(), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session to export (default newest)")
	cmd.Flags().StringVar(&selection, "select", "", "1-based positions to export, e.g. 1,3,5-7 (default all)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default articles_pdfs_YYYYMMDD.zip)")

	return cmd
}
