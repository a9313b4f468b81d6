package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relgraph/internal/server"
	"github.com/matzehuels/relgraph/pkg/config"
	"github.com/matzehuels/relgraph/pkg/observability"
	"github.com/matzehuels/relgraph/pkg/session"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr        string
		store       string
		backend     string
		maxSessions int
		sessionTTL  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline over HTTP",
		Long: `Serve the pipeline over HTTP.

Uploaded documents become sessions that can be laid out, edited record by
record, exported and downloaded as updated.xml. Sessions live in memory by
default; --store file keeps them on disk and --store mongo in MongoDB (set
server.mongo_uri in the config file).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Server.Addr = addr
			}
			if flags.Changed("store") {
				cfg.Server.Store = store
			}
			if flags.Changed("cache") {
				cfg.Cache.Backend = backend
			}
			if flags.Changed("max-sessions") {
				cfg.Server.MaxSessions = maxSessions
			}
			if flags.Changed("session-ttl") {
				cfg.Server.SessionTTL = config.Duration(sessionTTL)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			c.Config = cfg
			return c.runServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&store, "store", "", "session store: memory, file, mongo")
	cmd.Flags().StringVar(&backend, "cache", "", "cache backend: file, redis, none")
	cmd.Flags().IntVar(&maxSessions, "max-sessions", 0, "maximum number of live sessions")
	cmd.Flags().DurationVar(&sessionTTL, "session-ttl", 0, "idle time after which a session expires")

	return cmd
}

func (c *CLI) runServe(ctx context.Context) error {
	store, err := c.newSessionStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			c.Logger.Warn("close session store", "err", err)
		}
	}()

	runner := c.newRunner(ctx, false)
	defer runner.Close()

	observability.NewLogHooks(c.Logger).Register()

	cfg := c.Config.Server
	printSuccess("Serving on %s", cfg.Addr)
	printDetail("store: %s · cache: %s · ttl: %s", cfg.Store, c.Config.Cache.Backend, cfg.SessionTTL.Std())

	srv := server.New(store, runner, c.pipelineOptions(), c.Logger)
	return srv.Run(ctx, cfg.Addr, server.DefaultCleanupInterval)
}

func (c *CLI) newSessionStore(ctx context.Context) (session.Store, error) {
	cfg := c.Config.Server
	switch cfg.Store {
	case config.StoreFile:
		dir, err := c.Config.SessionDir()
		if err != nil {
			return nil, fmt.Errorf("session dir: %w", err)
		}
		return session.NewFileStore(dir, cfg.SessionTTL.Std())
	case config.StoreMongo:
		return session.NewMongoStore(ctx, session.MongoConfig{
			URI:         cfg.MongoURI,
			Database:    cfg.MongoDatabase,
			MaxSessions: cfg.MaxSessions,
			TTL:         cfg.SessionTTL.Std(),
		})
	}
	return session.NewMemoryStore(cfg.MaxSessions, cfg.SessionTTL.Std()), nil
}
