package main

import (
	"context"
	"log"

	"github.com/jdgtl/project-october/internal/domain/drop"
	"github.com/jdgtl/project-october/internal/domain/notification"
	"github.com/jdgtl/project-october/internal/domain/plaidsync"
	"github.com/jdgtl/project-october/internal/infrastructure/crypto"
	"github.com/jdgtl/project-october/internal/infrastructure/firebase"
	"github.com/jdgtl/project-october/internal/infrastructure/plaid"
	"github.com/jdgtl/project-october/internal/infrastructure/postgres"
	httphandlers "github.com/jdgtl/project-october/internal/interfaces/http"
	"github.com/jdgtl/project-october/internal/shared/auth"
	"github.com/jdgtl/project-october/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	AuthHandler         *httphandlers.AuthHandler
	UserHandler         *httphandlers.UserHandler
	AccountHandler      *httphandlers.AccountHandler
	TransactionHandler  *httphandlers.TransactionHandler
	PlaidHandler        *httphandlers.PlaidHandler
	DropHandler         *httphandlers.DropHandler
	FollowHandler       *httphandlers.FollowHandler
	PhotoHandler        *httphandlers.PhotoHandler
	NotificationHandler *httphandlers.NotificationHandler

	// Auth
	JWT *auth.JWT

	// Sync services (for the scheduler)
	SyncService *plaidsync.TransactionSyncService

	// Repositories (for the scheduler job provider)
	ItemRepo *postgres.ItemRepository
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		return nil, err
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	itemRepo := postgres.NewItemRepository(db, encryptor)
	accountRepo := postgres.NewAccountRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	dropRepo := postgres.NewDropRepository(db)
	followRepo := postgres.NewFollowRepository(db)
	photoRepo := postgres.NewPhotoRepository(db)
	deviceTokenRepo := postgres.NewDeviceTokenRepository(db)

	// Plaid client and sync services
	plaidClient := plaid.NewClient(cfg.Plaid.ClientID, cfg.Plaid.Secret, cfg.Plaid.Environment, cfg.Plaid.AppName)
	syncService := plaidsync.NewTransactionSyncService(plaidClient, itemRepo, accountRepo, transactionRepo)
	backfillService := plaidsync.NewBackfillService(plaidClient, itemRepo, transactionRepo, cfg.Plaid.BackfillStartDate)
	itemService := plaidsync.NewItemService(plaidClient, itemRepo, accountRepo, transactionRepo, dropRepo)

	// Push messaging (optional)
	var messenger notification.Messenger
	if cfg.Firebase.CredentialsFile != "" {
		fcmClient, err := firebase.NewClient(ctx, cfg.Firebase.CredentialsFile, deviceTokenRepo.DeactivateToken)
		if err != nil {
			log.Printf("Warning: Failed to initialize Firebase messaging: %v", err)
		} else {
			messenger = fcmClient
			log.Println("Firebase messaging initialized")
		}
	} else {
		log.Println("Firebase messaging disabled (no credentials file)")
	}

	notificationService := notification.NewService(deviceTokenRepo, followRepo, userRepo, messenger)
	dropService := drop.NewService(dropRepo, transactionRepo, notificationService)

	// Auth
	jwt := auth.NewJWT(cfg.JWT.Secret)

	// Handlers
	authHandler := httphandlers.NewAuthHandler(userRepo, jwt)
	userHandler := httphandlers.NewUserHandler(userRepo, followRepo)
	accountHandler := httphandlers.NewAccountHandler(accountRepo)
	transactionHandler := httphandlers.NewTransactionHandler(transactionRepo, accountRepo, backfillService)
	plaidHandler := httphandlers.NewPlaidHandler(plaidClient, itemRepo, itemService, syncService)
	dropHandler := httphandlers.NewDropHandler(dropService, dropRepo)
	followHandler := httphandlers.NewFollowHandler(followRepo, userRepo)
	photoHandler := httphandlers.NewPhotoHandler(photoRepo, transactionRepo)
	notificationHandler := httphandlers.NewNotificationHandler(notificationService)

	return &Dependencies{
		DB:                  db,
		AuthHandler:         authHandler,
		UserHandler:         userHandler,
		AccountHandler:      accountHandler,
		TransactionHandler:  transactionHandler,
		PlaidHandler:        plaidHandler,
		DropHandler:         dropHandler,
		FollowHandler:       followHandler,
		PhotoHandler:        photoHandler,
		NotificationHandler: notificationHandler,
		JWT:                 jwt,
		SyncService:         syncService,
		ItemRepo:            itemRepo,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
