package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pevans/newsprint/articles"
)

func newCSVCmd(a *app) *cobra.Command {
	var (
		sessionID string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Write the articles of a session as CSV",
		Args:  cobra.NoArgs,
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

			if output == "-" {
				return articles.WriteCSV(cmd.OutOrStdout(), records)
			}
			if output == "" {
				output = articles.CSVFilename(time.Now())
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := articles.WriteCSV(f, records); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d articles to %s\n", len(records), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session to write (default newest)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default articles_YYYYMMDD.csv)")

	return cmd
}
