package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/unitbalance/internal/admin"
	balancecmd "github.com/udisondev/unitbalance/internal/admin/commands"
	"github.com/udisondev/unitbalance/internal/audit"
	"github.com/udisondev/unitbalance/internal/config"
	"github.com/udisondev/unitbalance/internal/db"
	"github.com/udisondev/unitbalance/internal/engine"
	"github.com/udisondev/unitbalance/internal/host"
	"github.com/udisondev/unitbalance/internal/metrics"
	"github.com/udisondev/unitbalance/internal/overridesync"
	"github.com/udisondev/unitbalance/internal/scheduler"
)

func (c *CLI) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation host with live balance overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noConsole, _ := cmd.Flags().GetBool("no-console")
			var in io.Reader = os.Stdin
			if noConsole {
				in = nil
			}
			return c.serve(cmd.Context(), in)
		},
	}
	cmd.Flags().Bool("no-console", false, "Do not read operator commands from stdin")
	return cmd
}

// server is everything serve wires together.
type server struct {
	sim     *host.Sim
	queue   *scheduler.Queue
	engine  *engine.Engine
	handler *admin.Handler
	metrics *metrics.Metrics
	closers []func()
}

func (s *server) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func (c *CLI) serve(ctx context.Context, console io.Reader) error {
	srv, err := c.build(ctx)
	if err != nil {
		return err
	}
	defer srv.close()

	tick := c.cfg.TickInterval
	if tick <= 0 {
		tick = config.DefaultServer().TickInterval
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := srv.queue.Start(gctx, tick)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if srv.metrics != nil {
		hs := &http.Server{
			Addr:              c.cfg.Metrics.Address,
			Handler:           metricsMux(srv.metrics),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			slog.Info("starting metrics server", "address", hs.Addr)
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return hs.Shutdown(shutdownCtx)
		})
	}

	if err := srv.queue.Submit(gctx, func() { srv.engine.OnGameStarted(gctx) }); err != nil {
		return err
	}

	// The reader blocks on stdin, so it stays outside the group.
	if console != nil {
		go c.readConsole(gctx, console, srv)
	}

	slog.Info("unitbalance started", "document", c.cfg.Document, "tick", tick)
	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	slog.Info("unitbalance stopped")
	return nil
}

func (c *CLI) build(ctx context.Context) (*server, error) {
	cat, err := c.catalog()
	if err != nil {
		return nil, err
	}
	hostCfg := cat.Config()
	hostCfg.MaxMessageBytes = c.cfg.Sync.MaxMessageBytes
	srv := &server{
		sim:   host.NewSim(hostCfg),
		queue: scheduler.NewQueue(time.Now),
	}

	docs := c.documents()
	created, err := docs.EnsureDefault()
	if err != nil {
		return nil, fmt.Errorf("preparing balance document: %w", err)
	}
	if created {
		slog.Info("created blank balance document", "path", docs.ActivePath())
	}

	if c.cfg.Metrics.Enabled {
		srv.metrics = metrics.New()
	}

	recorders := audit.Multi{}
	if c.cfg.AuditLog != "" {
		recorders = append(recorders, audit.NewFileLog(c.cfg.AuditLog))
	}
	var history engine.HistoryRecorder
	if c.cfg.Database.Enabled {
		dsn := c.cfg.Database.DSN()
		database, err := db.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		srv.closers = append(srv.closers, database.Close)
		slog.Info("database connected")

		version, err := db.RunMigrations(ctx, dsn)
		if err != nil {
			srv.close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("balance schema ready", "version", version)
		recorders = append(recorders, database.Audit())
		history = database.Generations()
	}

	syncer := overridesync.NewSyncer(srv.sim.Overrides(), srv.sim.Transport(), srv.queue, srv.metrics, nil)
	srv.engine = engine.New(engine.Deps{
		Registry:   srv.sim,
		Capability: srv.sim.Capability(),
		Document:   docs,
		Syncer:     syncer,
		Observers:  srv.sim,
		Scheduler:  srv.queue,
		Metrics:    srv.metrics,
		History:    history,
		Options: engine.Options{
			SyncInitialDelay: c.cfg.Sync.InitialDelay,
			ObserverSpacing:  c.cfg.Sync.ObserverSpacing,
			GameStartGrace:   c.cfg.Sync.GameStartDelay,
			DumpPath:         filepath.Join(filepath.Dir(docs.ActivePath()), engine.DefaultDumpFile),
		},
	})

	eng := srv.engine
	srv.sim.SetSendHook(func(p *host.Player) { eng.SendTo(ctx, p) })
	srv.sim.OnJoin(func(p *host.Player) { eng.OnObserverJoined(ctx, p) })
	srv.sim.SetDispenseGate(eng.AllowDispense)
	srv.sim.OnTierChanged(func(team string, oldTier, newTier int) { eng.OnTeamTierChanged(team, oldTier, newTier) })

	srv.handler = admin.NewHandler(nil)
	balancecmd.RegisterAll(srv.handler, eng, docs, recorders, time.Now)
	registerHostCommands(srv.handler, srv.sim, eng)
	return srv, nil
}

func (c *CLI) catalog() (*host.Catalog, error) {
	if c.cfg.Catalog == "" {
		return host.DefaultCatalog()
	}
	cat, err := host.LoadCatalogFile(c.cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return cat, nil
}

func metricsMux(m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return mux
}

// readConsole submits every stdin line to the host loop as a console command.
func (c *CLI) readConsole(ctx context.Context, in io.Reader, srv *server) {
	op := admin.NewOperator(consoleOperator, 0, admin.LevelAdmin, func(s string) { c.printf("%s\n", s) })
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		if err := srv.queue.Submit(ctx, func() { srv.handler.Handle(ctx, op, line) }); err != nil {
			return
		}
	}
	if err := sc.Err(); err != nil {
		slog.Warn("console closed", "err", err)
	}
}
