package main

import (
	"context"
	"fmt"
	"net/http"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"mesada/internal/access"
	"mesada/internal/domain/child"
	"mesada/internal/domain/goal"
	"mesada/internal/domain/identity"
	"mesada/internal/domain/medal"
	"mesada/internal/domain/notification"
	"mesada/internal/domain/profile"
	"mesada/internal/domain/tip"
	"mesada/internal/domain/transaction"
	"mesada/internal/infrastructure/authprovider"
	"mesada/internal/infrastructure/firebase"
	"mesada/internal/infrastructure/gcs"
	"mesada/internal/infrastructure/postgres"
	"mesada/internal/infrastructure/postgres/listener"
	httphandlers "mesada/internal/interfaces/http"
	"mesada/internal/session"
	"mesada/internal/shared/auth"
	"mesada/internal/shared/config"
	"mesada/internal/shared/messages"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB       *postgres.DB
	Sessions *session.Store
	AuthRepo *postgres.AuthRepository

	// Handlers
	AuthHandler         *httphandlers.AuthHandler
	ProfileHandler      *httphandlers.ProfileHandler
	DashboardHandler    *httphandlers.DashboardHandler
	TransactionHandler  *httphandlers.TransactionHandler
	GoalHandler         *httphandlers.GoalHandler
	DependentHandler    *httphandlers.DependentHandler
	MedalHandler        *httphandlers.MedalHandler
	NotificationHandler *httphandlers.NotificationHandler
	TipHandler          *httphandlers.TipHandler

	MedalListener *listener.MedalListener

	storage *storage.Client
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Dependencies, error) {
	texts, err := messages.Load(cfg.Messages.File)
	if err != nil {
		return nil, err
	}

	connStr := cfg.Database.ConnectionString()
	db, err := postgres.New(connStr)
	if err != nil {
		return nil, err
	}
	log.Info().Str("host", cfg.Database.Host).Msg("connected to database")

	deps := &Dependencies{DB: db}

	// Repositories
	profileRepo := postgres.NewProfileRepository(db)
	childRepo := postgres.NewChildRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	goalRepo := postgres.NewGoalRepository(db)
	medalRepo := postgres.NewMedalRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	accountRepo := postgres.NewAccountRepository(db)
	deps.AuthRepo = postgres.NewAuthRepository(db)

	// Identity and sessions
	jwt := auth.NewJWT(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	provider := authprovider.New(deps.AuthRepo, jwt, cfg.JWT.RefreshTokenTTL)

	deps.Sessions = session.NewStore(provider, profileRepo, access.Readers{
		Children:     childRepo,
		Transactions: transactionRepo,
		Goals:        goalRepo,
		Medals:       medalRepo,
	}, log)
	gateway := identity.NewGateway(provider, profileRepo, deps.Sessions, log)

	// Notifications
	var messenger notification.Messenger
	if cfg.Firebase.CredentialsFile != "" {
		fcm, err := firebase.NewClient(ctx, cfg.Firebase.CredentialsFile, notificationRepo.DeactivateToken, log)
		if err != nil {
			deps.Close()
			return nil, err
		}
		messenger = fcm
	} else {
		log.Warn().Msg("FIREBASE_CREDENTIALS_FILE not set, push notifications disabled")
	}
	notificationService := notification.NewService(notificationRepo, messenger, log)

	// Receipts
	var receipts transaction.ReceiptStore
	if cfg.Storage.ReceiptsBucket != "" {
		deps.storage, err = storage.NewClient(ctx)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		receipts = gcs.NewReceiptStore(deps.storage, cfg.Storage.ReceiptsBucket, cfg.Storage.PublicURLPrefix)
	}

	// Domain services
	profileService := profile.NewService(profileRepo)
	transactionService := transaction.NewService(transactionRepo, receipts)
	childService := child.NewService(childRepo, provider, accountRepo, deps.Sessions, cfg.Accounts.DependentDefaultPassword, log)
	goalService := goal.NewService(goalRepo, childRepo, notificationService, texts, log)
	medalService := medal.NewService(medalRepo, childRepo, notificationService, texts, log)
	tipClient := tip.NewClient(cfg.Tips.FunctionURL, cfg.Tips.MaxTransactions, &http.Client{
		Timeout:   cfg.Tips.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}, log)

	deps.MedalListener = listener.NewMedalListener(connStr, notificationService, texts, log)

	// Handlers
	deps.AuthHandler = httphandlers.NewAuthHandler(gateway)
	deps.ProfileHandler = httphandlers.NewProfileHandler(profileService, deps.Sessions)
	deps.DashboardHandler = httphandlers.NewDashboardHandler()
	deps.TransactionHandler = httphandlers.NewTransactionHandler(transactionService)
	deps.GoalHandler = httphandlers.NewGoalHandler(goalService)
	deps.DependentHandler = httphandlers.NewDependentHandler(childService)
	deps.MedalHandler = httphandlers.NewMedalHandler(medalService)
	deps.NotificationHandler = httphandlers.NewNotificationHandler(notificationService)
	deps.TipHandler = httphandlers.NewTipHandler(tipClient)

	return deps, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.storage != nil {
		d.storage.Close()
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
