// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "cardvault/internal/api"
	"cardvault/internal/api/handler"
	"cardvault/internal/config"
	"cardvault/internal/gateway"
	"cardvault/internal/repository"
	"cardvault/internal/repository/postgres"
	"cardvault/internal/service"
	"cardvault/internal/util"
	"cardvault/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	CardRepository repository.CardRepository

	// External collaborators
	GatewayClient *gateway.Client
	WalletClient  *gateway.WalletClient

	// Services
	CardService    service.CardService
	PaymentService service.PaymentService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger()
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	// 4. Initialize Repositories
	app.CardRepository = postgres.NewCardRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize external gateway clients
	app.GatewayClient = gateway.NewClient(app.Config.Gateway.BaseURL, app.Config.Gateway.APIKey, app.Logger)
	app.WalletClient = gateway.NewWalletClient(app.Config.Wallet.BaseURL, app.Logger)
	app.Logger.Info("Gateway clients initialized.")

	// 6. Initialize Services
	app.CardService = service.NewCardService(
		app.DB, // DBTxBeginner
		app.DB, // DBExecutor
		app.CardRepository,
		app.GatewayClient,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
		app.Logger,
	)
	app.PaymentService = service.NewPaymentService(app.CardService, app.GatewayClient, app.Logger)
	app.Logger.Info("Services initialized.")

	// 7. Initialize HTTP Handlers and Router
	cardHandler := handler.NewCardHandler(app.CardService, app.Logger)
	paymentHandler := handler.NewPaymentHandler(app.PaymentService, app.WalletClient, app.Logger)
	app.HTTPHandler = router.NewRouter(cardHandler, paymentHandler, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
