package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pevans/newsprint/articles"
	"github.com/pevans/newsprint/config"
	"github.com/pevans/newsprint/logging"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	dsn        string
	debug      bool

	cfg    *config.FileConfig
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "newsprint",
		Short: "Crawl article listings and export printable articles",
		Long: `newsprint walks a paginated article listing, stores the articles it finds,
and exports them as CSV or as a zip of print-ready HTML documents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.newsprint/config.yaml)")
	root.PersistentFlags().StringVar(&a.dsn, "dsn", "", "path to the article database (overrides config and NEWSPRINT_DSN)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newCrawlCmd(a),
		newSessionsCmd(a),
		newListCmd(a),
		newCSVCmd(a),
		newExportCmd(a),
	)

	return root
}

// init loads configuration and builds the logger.
func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.dsn != "" {
		cfg.Storage.DSN = a.dsn
	}
	if a.debug {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) openStore() (*articles.Store, error) {
	store, err := articles.NewStore(a.cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open article store: %w", err)
	}
	return store, nil
}

// resolveSession returns the session named by id, or the newest session when
// id is empty.
func resolveSession(store *articles.Store, id string) (*articles.Session, error) {
	if id == "" {
		session, err := store.LatestSession()
		if errors.Is(err, articles.ErrSessionNotFound) {
			return nil, articles.ErrNoArticles
		}
		return session, err
	}

	sessionID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID: %w", err)
	}
	return store.GetSession(sessionID)
}
