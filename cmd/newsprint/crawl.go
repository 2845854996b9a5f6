package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pevans/newsprint/articles"
	"github.com/pevans/newsprint/crawler"
	"github.com/pevans/newsprint/fetcher"
	"github.com/pevans/newsprint/listing"
)

func newCrawlCmd(a *app) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "crawl [base-url]",
		Short: "Crawl a listing and store the articles found",
		Long: `Crawl walks the listing at base-url (or the configured base_url) page by
page and stores every article found as a new session. With --session the
records of an existing session are replaced instead. Nothing is stored
when the crawl fails.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			baseURL := a.cfg.BaseURL
			var session *articles.Session
			if sessionID != "" {
				session, err = resolveSession(store, sessionID)
				if err != nil {
					return err
				}
				baseURL = session.BaseURL
			}
			if len(args) > 0 {
				baseURL = args[0]
			}

			pages := fetcher.NewHTTPFetcher(a.cfg.Fetch.Listing(), a.logger)
			defer pages.Close()
			probe := fetcher.NewHTTPFetcher(a.cfg.Fetch.Probe(), a.logger)
			defer probe.Close()

			c := crawler.New(pages, probe, listing.NewLocator(a.logger), a.cfg.Crawl, a.logger)

			records, err := c.Crawl(cmd.Context(), baseURL)
			if err != nil {
				return err
			}

			if session != nil {
				if err := store.ReplaceRecords(session.SessionID, records); err != nil {
					return err
				}
			} else {
				session, err = store.SaveCrawl(baseURL, records)
				if err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Crawled %d articles into session %s\n", len(records), session.SessionID)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "replace the records of this session")

	return cmd
}
