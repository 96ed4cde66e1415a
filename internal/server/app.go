// Package server wires configuration, storage and services together and
// runs the gRPC and webhook endpoints until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/feedbox/internal/logging"
	"github.com/dmitrijs2005/feedbox/internal/server/config"
	"github.com/dmitrijs2005/feedbox/internal/server/forms"
	"github.com/dmitrijs2005/feedbox/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/feedbox/internal/server/services"
	"github.com/dmitrijs2005/feedbox/internal/server/webhook"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/feedbox/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	grpc    *gs.GRPCServer
	webhook *webhook.Server
}

// NewApp opens the database, applies migrations and builds the servers.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	links := forms.Links{FormURLTemplate: c.FormURLTemplate, QRCodeURLTemplate: c.QRCodeURLTemplate}
	provisioner := forms.NewProvisioner(c.FormProviderEndpoint, c.FormProviderAPIKey, c.FormProviderTimeout, links)

	submissions := services.NewSubmissionService(db, m)
	svc := gs.Services{
		Users:       services.NewUserService(db, m, c),
		Boxes:       services.NewBoxService(db, m, provisioner, links),
		Submissions: submissions,
		Dashboard:   services.NewDashboardService(db, m, links),
		Exports:     services.NewExportService(db, m, c, links),
	}

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		grpc:    gs.NewGRPCServer(c.EndpointAddrGRPC, logger, svc, c.SecretKey),
		webhook: webhook.NewServer(c.EndpointAddrWebhook, c.WebhookSecret, logger, submissions),
	}, nil
}

// Run blocks until SIGINT/SIGTERM or until either server fails.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.grpc.Run(ctx) })
	g.Go(func() error { return app.webhook.Run(ctx) })

	err := g.Wait()

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(context.Background(), "failed to close database", "error", cerr)
	}
	app.logger.Info(context.Background(), "App stopped")
	return err
}
