package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/tuparking/tuparking/internal/client/api"
	"github.com/tuparking/tuparking/internal/client/config"
	"github.com/tuparking/tuparking/internal/client/repositories/reservations"
	"github.com/tuparking/tuparking/internal/client/repositories/transactions"
	"github.com/tuparking/tuparking/internal/client/services"
	"github.com/tuparking/tuparking/internal/client/session"
	"github.com/tuparking/tuparking/internal/client/storage"
	"github.com/tuparking/tuparking/internal/logging"

	_ "modernc.org/sqlite"
)

// App owns the wired-up client: configuration, API client, session manager,
// and the parking and wallet orchestrators.
type App struct {
	config  *config.Config
	client  api.Client
	session *session.Manager
	parking services.ParkingService
	wallet  services.WalletService
	db      *sql.DB
	reader  *bufio.Reader
	log     logging.Logger
}

func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	db, err := storage.InitDatabase(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "initializing database failed", "err", err)
		return nil, err
	}

	var store storage.Store
	if cfg.StoreFilePath != "" {
		store = storage.Open(nil, cfg.StoreFilePath)
	} else {
		store = storage.Open(db, "")
	}

	client := api.NewHTTPClient(cfg.APIBaseURL, cfg.RequestTimeout, log)
	sess := session.NewManager(client, store, log)

	guard := services.NewSequencer()
	parking := services.NewParkingService(client, sess, reservations.NewSQLiteRepository(db), guard, log)
	wallet := services.NewWalletService(client, sess, transactions.NewSQLiteRepository(db), guard, log)

	return &App{
		config:  cfg,
		client:  client,
		session: sess,
		parking: parking,
		wallet:  wallet,
		db:      db,
		reader:  bufio.NewReader(os.Stdin),
		log:     log,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().Status == session.StatusAuthenticated
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		_ = a.client.Close()
		_ = a.db.Close()
	}()
	a.Root(ctx)
}
