package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/peerdir/internal/audit/config"
	"github.com/dmitrijs2005/peerdir/internal/audit/records"
	"github.com/dmitrijs2005/peerdir/internal/logging"
)

// App runs the audit service binary.
type App struct {
	config *config.Config
	logger logging.Logger
	repo   records.Repository
	db     *sql.DB
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(c.LogLevel))

	app := &App{config: c, logger: logger}

	switch c.Repository {
	case config.RepositoryPostgres:
		db, err := records.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db = db
		app.repo = records.NewPostgresRepository(db)
	case config.RepositoryS3:
		client, err := records.NewS3Client(ctx, records.S3Options{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		app.repo = records.NewS3Repository(client, c.S3Bucket)
	default:
		app.repo = records.NewMemoryRepository()
	}

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

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	app.logger.Info(ctx, "Starting app...", "repository", app.config.Repository)

	s := NewServer(app.config.EndpointAddrGRPC, app.logger, app.repo, app.config.SecretKey)
	err := s.Run(ctx)

	if app.db != nil {
		if cerr := app.db.Close(); cerr != nil {
			app.logger.Warn(ctx, "closing database", "error", cerr)
		}
	}

	if err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}
	return nil
}
