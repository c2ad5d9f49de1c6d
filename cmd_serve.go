package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"eventx/config"
	"eventx/db"
	"eventx/handlers"
	"eventx/metrics"
	"eventx/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the JSON API until SIGINT or SIGTERM, then drain in-flight requests
and close the database.

Examples:
  eventx serve
  eventx serve --addr :9090 --seed
  eventx serve --db-driver postgres --dsn "postgres://eventx@localhost/eventx?sslmode=disable"`,
	RunE: runServe,
}

var (
	serveAddr     string
	serveDriver   string
	serveDSN      string
	serveSeed     bool
	serveHashCost int
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "Load the sample catalog when the events table is empty")
	serveCmd.Flags().IntVar(&serveHashCost, "bcrypt-cost", 0, "bcrypt cost for new passwords (0 = library default)")
	addDatabaseFlags(serveCmd, &serveDriver, &serveDSN)
}

func addDatabaseFlags(cmd *cobra.Command, driver, dsn *string) {
	cmd.Flags().StringVar(driver, "db-driver", "sqlite", "Database driver (sqlite|postgres|mysql)")
	cmd.Flags().StringVar(dsn, "dsn", "", "Database DSN")
}

// databaseConfig applies --db-driver and --dsn on top of the loaded config.
func databaseConfig(cmd *cobra.Command, driver, dsn string) (config.DatabaseConfig, error) {
	dc := cfg.Database
	if cmd.Flags().Changed("db-driver") {
		dc.Driver = driver
	}
	if cmd.Flags().Changed("dsn") {
		dc.DSN = dsn
	}
	probe := *cfg
	probe.Database = dc
	if err := probe.Validate(); err != nil {
		return dc, err
	}
	return dc, nil
}

// openDatabase connects and makes sure the schema exists.
func openDatabase(dc config.DatabaseConfig) (*db.DB, error) {
	store, err := db.NewDB(dc)
	if err != nil {
		return nil, err
	}

	// Important: We use a short timeout for schema init to avoid pulling down the server on boot
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.InitSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	slog.Info("database schema initialized", "driver", dc.Driver)
	return store, nil
}

func seedCatalog(ctx context.Context, store *db.DB) error {
	events, err := db.SeedEvents()
	if err != nil {
		return err
	}
	n, err := store.Seed(ctx, events)
	if err != nil {
		return err
	}
	if n == 0 {
		slog.Info("events table not empty, skipping seed")
	} else {
		slog.Info("seeded events", "count", n)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	dc, err := databaseConfig(cmd, serveDriver, serveDSN)
	if err != nil {
		return err
	}
	sc := cfg.Server
	if cmd.Flags().Changed("addr") {
		sc.Addr = serveAddr
	}

	store, err := openDatabase(dc)
	if err != nil {
		return err
	}

	if serveSeed || dc.Seed {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := seedCatalog(ctx, store)
		cancel()
		if err != nil {
			store.Close()
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	h := &handlers.Handlers{Store: store, Metrics: m, HashCost: serveHashCost}
	srv := server.New(sc, h, m)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case <-quit:
	case serveErr = <-errCh:
		if serveErr != nil {
			slog.Error("server error", "error", serveErr)
		}
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), sc.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// Close DB connection last
	if err := store.Close(); err != nil {
		slog.Error("failed to close db", "error", err)
	}

	slog.Info("server exited cleanly")
	return serveErr
}
