package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jdgtl/project-october/internal/domain/plaidsync"
	"github.com/jdgtl/project-october/internal/infrastructure/crypto"
	"github.com/jdgtl/project-october/internal/infrastructure/plaid"
	"github.com/jdgtl/project-october/internal/infrastructure/postgres"
	"github.com/jdgtl/project-october/internal/shared/config"
)

const usage = `October Admin CLI - Management commands for the October API

Usage:
  admin <command> [options]

Commands:
  sync       Run a transaction sync pass for stored bank connections
  backfill   Backfill personal-finance categories for a user's transactions

Examples:
  # Sync one item
  admin sync --item-id=<plaid-item-id> --user-id=<user-id>

  # Sync every stored item
  admin sync --all

  # Sync with a custom timeout
  admin sync --all --timeout=15m

  # Backfill categories for a user
  admin backfill --user-id=<user-id>
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "sync":
		runSync(os.Args[2:])
	case "backfill":
		runBackfill(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage)
		os.Exit(1)
	}
}

type services struct {
	db       *postgres.DB
	itemRepo *postgres.ItemRepository
	sync     *plaidsync.TransactionSyncService
	backfill *plaidsync.BackfillService
}

func initServices() (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		db.Close()
		return nil, err
	}

	itemRepo := postgres.NewItemRepository(db, encryptor)
	accountRepo := postgres.NewAccountRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	plaidClient := plaid.NewClient(cfg.Plaid.ClientID, cfg.Plaid.Secret, cfg.Plaid.Environment, cfg.Plaid.AppName)

	return &services{
		db:       db,
		itemRepo: itemRepo,
		sync:     plaidsync.NewTransactionSyncService(plaidClient, itemRepo, accountRepo, transactionRepo),
		backfill: plaidsync.NewBackfillService(plaidClient, itemRepo, transactionRepo, cfg.Plaid.BackfillStartDate),
	}, nil
}

func runSync(args []string) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	itemID := fs.String("item-id", "", "Plaid item ID to sync")
	userID := fs.String("user-id", "", "Owner of the item (required with --item-id)")
	allItems := fs.Bool("all", false, "Sync every stored item")
	timeoutStr := fs.String("timeout", "30m", "Timeout for the operation (e.g., 5m, 1h)")
	fs.Parse(args)

	if !*allItems && (*itemID == "" || *userID == "") {
		fmt.Println("Either --all or both --item-id and --user-id are required")
		fs.Usage()
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout: %v", err)
	}

	svcs, err := initServices()
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer svcs.db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if *allItems {
		items, err := svcs.itemRepo.ListAll(ctx)
		if err != nil {
			log.Fatalf("Failed to list items: %v", err)
		}
		log.Printf("Syncing %d items", len(items))

		var failed []string
		for _, it := range items {
			if err := syncOne(ctx, svcs, it.UserID, it.PlaidItemID); err != nil {
				failed = append(failed, it.PlaidItemID)
			}
		}
		if len(failed) > 0 {
			log.Fatalf("Sync failed for %d items: %s", len(failed), strings.Join(failed, ", "))
		}
		log.Println("All items synced")
		return
	}

	if err := syncOne(ctx, svcs, *userID, *itemID); err != nil {
		os.Exit(1)
	}
}

func syncOne(ctx context.Context, svcs *services, userID, plaidItemID string) error {
	result, err := svcs.sync.SyncItemTransactions(ctx, userID, plaidItemID)
	if err != nil {
		log.Printf("Sync failed for item %s: %v", plaidItemID, err)
		return err
	}
	log.Printf("Item %s: added=%d modified=%d removed=%d synced=%d rejected=%d",
		plaidItemID, result.Added, result.Modified, result.Removed, result.TotalSynced, len(result.Rejected))
	return nil
}

func runBackfill(args []string) {
	fs := flag.NewFlagSet("backfill", flag.ExitOnError)
	userID := fs.String("user-id", "", "User whose transactions to backfill")
	timeoutStr := fs.String("timeout", "30m", "Timeout for the operation (e.g., 5m, 1h)")
	fs.Parse(args)

	if *userID == "" {
		fmt.Println("--user-id is required")
		fs.Usage()
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout: %v", err)
	}

	svcs, err := initServices()
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer svcs.db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := svcs.backfill.BackfillCategories(ctx, *userID)
	if err != nil {
		log.Fatalf("Backfill failed: %v", err)
	}

	log.Printf("Backfill complete: %d/%d transactions updated", result.Updated, result.TotalCandidates)
}
