// Package server wires the coordinator together: registry, dispatcher,
// audit client and the TCP listener, and runs it until a signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/peerdir/internal/audit"
	"github.com/dmitrijs2005/peerdir/internal/dispatcher"
	"github.com/dmitrijs2005/peerdir/internal/logging"
	"github.com/dmitrijs2005/peerdir/internal/registry"
	"github.com/dmitrijs2005/peerdir/internal/server/config"
	"github.com/dmitrijs2005/peerdir/internal/server/tcp"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	registry   *registry.Registry
	dispatcher *dispatcher.Dispatcher
	auditor    *audit.Client
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(c.LogLevel))
	return newApp(c, logger)
}

func newApp(c *config.Config, logger logging.Logger) (*App, error) {
	app := &App{config: c, logger: logger}

	var sink dispatcher.AuditSink = dispatcher.NopSink{}
	if c.AuditAddr != "" {
		client, err := audit.NewClient(c.AuditAddr, c.AuditSecret)
		if err != nil {
			return nil, fmt.Errorf("audit client init error: %w", err)
		}
		app.auditor = client
		sink = client
	}

	app.registry = registry.New(registry.Options{
		MaxUsers:        c.MaxUsers,
		MaxFilesPerUser: c.MaxFilesPerUser,
	})
	app.dispatcher = dispatcher.New(app.registry, sink, logger, dispatcher.Options{
		AuditTimeout: c.AuditTimeout,
		ReplyLimit:   c.MaxReplyBytes,
	})

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// waits for in-flight requests and pending audit calls.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	app.logger.Info(ctx, "Starting coordinator...",
		"address", app.config.Address(),
		"audit", app.config.AuditAddr,
		"max_workers", app.config.MaxWorkers,
	)

	srv := tcp.NewServer(app.config.Address(), app.dispatcher, app.logger, tcp.Options{
		MaxWorkers:   app.config.MaxWorkers,
		ReadTimeout:  app.config.ReadTimeout,
		WriteTimeout: app.config.WriteTimeout,
	})

	err := srv.Run(ctx)

	app.dispatcher.Wait()
	if app.auditor != nil {
		if cerr := app.auditor.Close(); cerr != nil {
			app.logger.Warn(ctx, "closing audit client", "error", cerr)
		}
	}

	if err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}
	app.logger.Info(ctx, "Coordinator stopped", "users", app.registry.Len())
	return nil
}
