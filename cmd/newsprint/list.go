package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List crawl sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			sessions, err := store.ListSessions()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No sessions yet. Run 'newsprint crawl' first.")
				return nil
			}

			// Print table header
			fmt.Fprintf(out, "%-36s %-8s %-16s %s\n", "ID", "ARTICLES", "UPDATED", "BASE URL")
			fmt.Fprintln(out, "----------------------------------------------------------------------------------------------------")

			for _, s := range sessions {
				fmt.Fprintf(out, "%-36s %-8d %-16s %s\n",
					s.SessionID.String(),
					s.ArticleCount,
					s.UpdatedAt.Local().Format("2006-01-02 15:04"),
					truncate(s.BaseURL, 60),
				)
			}
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the articles of a session",
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

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No articles in this session.")
				return nil
			}

			fmt.Fprintf(out, "Session %s (%d articles)\n\n", session.SessionID, len(records))
			fmt.Fprintf(out, "%-4s %-10s %s\n", "#", "DATE", "TITLE")
			for i, r := range records {
				fmt.Fprintf(out, "%-4d %-10s %s\n", i+1, r.DateOrUnknown(), truncate(r.Title, 60))
				fmt.Fprintf(out, "     %s\n", r.Link)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "session to list (default newest)")

	return cmd
}
