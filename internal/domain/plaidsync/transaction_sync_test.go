package plaidsync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jdgtl/project-october/internal/domain/account"
	"github.com/jdgtl/project-october/internal/domain/item"
	"github.com/jdgtl/project-october/internal/domain/transaction"
	"github.com/jdgtl/project-october/internal/infrastructure/plaid"
)

const (
	testUserID      = "user-1"
	testPlaidItemID = "item-plaid-1"
	testItemID      = "item-local-1"
)

func stringPtr(s string) *string { return &s }

func testItem(cursor *string) *item.Item {
	return &item.Item{
		ID:                 testItemID,
		UserID:             testUserID,
		PlaidItemID:        testPlaidItemID,
		AccessToken:        "access-token",
		TransactionsCursor: cursor,
	}
}

func testAccounts() []*account.Account {
	return []*account.Account{
		{ID: "local_acc_1", UserID: testUserID, ItemID: testItemID, PlaidAccountID: "a1", Name: "Checking"},
	}
}

func newTestService(client *MockPlaidClient, itemRepo *MockItemRepo, accountRepo *MockAccountRepo, txRepo *MockTransactionRepo) *TransactionSyncService {
	svc := NewTransactionSyncService(client, itemRepo, accountRepo, txRepo)
	svc.now = func() time.Time { return time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestSyncItemTransactions_SinglePage(t *testing.T) {
	ctx := context.Background()

	itemRepo := &MockItemRepo{
		GetByPlaidItemIDFunc: func(ctx context.Context, userID, plaidItemID string) (*item.Item, error) {
			return testItem(nil), nil
		},
	}
	accountRepo := &MockAccountRepo{
		ListByItemIDFunc: func(ctx context.Context, itemID string) ([]*account.Account, error) {
			return testAccounts(), nil
		},
	}

	var gotUpserts []transaction.UpsertParams
	var gotCursor string
	txRepo := &MockTransactionRepo{
		UpsertBatchFunc: func(ctx context.Context, params []transaction.UpsertParams) error {
			gotUpserts = params
			return nil
		},
	}
	itemRepo.UpdateCursorFunc = func(ctx context.Context, id string, cursor string) error {
		if id != testItemID {
			t.Errorf("UpdateCursor item id = %q, want %q", id, testItemID)
		}
		gotCursor = cursor
		return nil
	}

	var syncedCursor *string
	client := &MockPlaidClient{
		SyncTransactionsFunc: func(ctx context.Context, accessToken, cursor string) (*plaid.SyncPage, error) {
			c := cursor
			syncedCursor = &c
			return &plaid.SyncPage{
				Added: []plaid.Transaction{{
					TransactionID: "t1",
					AccountID:     "a1",
					Amount:        decimal.RequireFromString("-12.5"),
					DateString:    "2025-09-28",
					Name:          "Store",
				}},
				NextCursor: "c1",
				HasMore:    false,
			}, nil
		},
	}

	svc := newTestService(client, itemRepo, accountRepo, txRepo)
	result, err := svc.SyncItemTransactions(ctx, testUserID, testPlaidItemID)
	if err != nil {
		t.Fatalf("SyncItemTransactions() failed: %v", err)
	}

	// First sync passes no cursor
	if syncedCursor == nil || *syncedCursor != "" {
		t.Errorf("first sync cursor = %v, want empty", syncedCursor)
	}
	if result.Added != 1 || result.Modified != 0 || result.Removed != 0 || result.TotalSynced != 1 {
		t.Errorf("result = %+v, want added=1 modified=0 removed=0 total=1", result)
	}
	if result.Stage != StageCursor {
		t.Errorf("result.Stage = %q, want %q", result.Stage, StageCursor)
	}
	if gotCursor != "c1" {
		t.Errorf("persisted cursor = %q, want %q", gotCursor, "c1")
	}

	if len(gotUpserts) != 1 {
		t.Fatalf("upsert batch size = %d, want 1", len(gotUpserts))
	}
	up := gotUpserts[0]
	if up.PlaidTransactionID != "t1" {
		t.Errorf("PlaidTransactionID = %q, want t1", up.PlaidTransactionID)
	}
	if up.AccountID != "local_acc_1" {
		t.Errorf("AccountID = %q, want local_acc_1", up.AccountID)
	}
	if !up.Amount.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("Amount = %s, want 12.5 (absolute value)", up.Amount)
	}
	if up.MerchantName == nil || *up.MerchantName != "Store" {
		t.Errorf("MerchantName = %v, want Store (name fallback)", up.MerchantName)
	}
}

func TestSyncItemTransactions_MultiPageAccumulation(t *testing.T) {
	ctx := context.Background()

	itemRepo := &MockItemRepo{
		GetByPlaidItemIDFunc: func(ctx context.Context, userID, plaidItemID string) (*item.Item, error) {
			return testItem(stringPtr("c0")), nil
		},
	}
	accountRepo := &MockAccountRepo{
		ListByItemIDFunc: func(ctx context.Context, itemID string) ([]*account.Account, error) {
			return testAccounts(), nil
		},
	}

	var upsertCalls int
	var batchSize int
	txRepo := &MockTransactionRepo{
		UpsertBatchFunc: func(ctx context.Context, params []transaction.UpsertParams) error {
			upsertCalls++
			batchSize = len(params)
			return nil
		},
	}
	var gotCursor string
	itemRepo.UpdateCursorFunc = func(ctx context.Context, id string, cursor string) error {
		gotCursor = cursor
		return nil
	}

	var requestedCursors []string
	client := &MockPlaidClient{
		SyncTransactionsFunc: func(ctx context.Context, accessToken, cursor string) (*plaid.SyncPage, error) {
			requestedCursors = append(requestedCursors, cursor)
			switch cursor {
			case "c0":
				return &plaid.SyncPage{
					Added: []plaid.Transaction{
						{TransactionID: "t1", AccountID: "a1", Amount: decimal.NewFromInt(10), DateString: "2025-09-01"},
					},
					NextCursor: "c1",
					HasMore:    true,
				}, nil
			case "c1":
				return &plaid.SyncPage{
					Added: []plaid.Transaction{
						{TransactionID: "t2", AccountID: "a1", Amount: decimal.NewFromInt(20), DateString: "2025-09-02"},
					},
					Modified: []plaid.Transaction{
						{TransactionID: "t1", AccountID: "a1", Amount: decimal.NewFromInt(11), DateString: "2025-09-01"},
					},
					NextCursor: "c2",
					HasMore:    false,
				}, nil
			default:
				t.Fatalf("unexpected cursor %q", cursor)
				return nil, nil
			}
		},
	}

	svc := newTestService(client, itemRepo, accountRepo, txRepo)
	result, err := svc.SyncItemTransactions(ctx, testUserID, testPlaidItemID)
	if err != nil {
		t.Fatalf("SyncItemTransactions() failed: %v", err)
	}

	if len(requestedCursors) != 2 || requestedCursors[0] != "c0" || requestedCursors[1] != "c1" {
		t.Errorf("requested cursors = %v, want [c0 c1]", requestedCursors)
	}
	// Records from both pages go into one batch
	if upsertCalls != 1 {
		t.Errorf("upsert calls = %d, want 1", upsertCalls)
	}
	if batchSize != 3 {
		t.Errorf("batch size = %d, want 3", batchSize)
	}
	// Final cursor is the last page's, not an intermediate one
	if gotCursor != "c2" {
		t.Errorf("persisted cursor = %q, want c2", gotCursor)
	}
	if result.Added != 2 || result.Modified != 1 || result.TotalSynced != 3 {
		t.Errorf("result = %+v, want added=2 modified=1 total=3", result)
	}
}

func TestSyncItemTransactions_OnlyAddedRecordsResurrect(t *testing.T) {
	ctx := context.Background()

	itemRepo := &MockItemRepo{
		GetByPlaidItemIDFunc: func(ctx context.Context, userID, plaidItemID string) (*item.Item, error) {
			return testItem(nil), nil
		},
	}
	accountRepo := &MockAccountRepo{
		ListByItemIDFunc: func(ctx context.Context, itemID string) ([]*account.Account, error) {
			return testAccounts(), nil
		},
	}

	var gotUpserts []transaction.UpsertParams
	txRepo := &MockTransactionRepo{
		UpsertBatchFunc: func(ctx context.Context, params []transaction.UpsertParams) error {
			gotUpserts = params
			return nil
		},
	}

	client := &MockPlaidClient{
		SyncTransactionsFunc: func(ctx context.Context, accessToken, cursor string) (*plaid.SyncPage, error) {
			return &plaid.SyncPage{
				Added: []plaid.Transaction{{
					TransactionID: "t-new",
					AccountID:     "a1",
					Amount:        decimal.RequireFromString("5"),
					DateString:    "2025-09-28",
					Name:          "Cafe",
				}},
				Modified: []plaid.Transaction{{
					TransactionID: "t-old",
					AccountID:     "a1",
					Amount:        decimal.RequireFromString("7"),
					DateString:    "2025-09-20",
					Name:          "Market",
				}},
				NextCursor: "c1",
			}, nil
		},
	}

	svc := newTestService(client, itemRepo, accountRepo, txRepo)
	if _, err := svc.SyncItemTransactions(ctx, testUserID, testPlaidItemID); err != nil {
		t.Fatalf("SyncItemTransactions() failed: %v", err)
	}

	if len(gotUpserts) != 2 {
		t.Fatalf("upsert batch size = %d, want 2", len(gotUpserts))
	}
	// An added record may bring an archived row back; a modified one
	// must not.
	for _, up := range gotUpserts {
		switch up.PlaidTransactionID {
		case "t-new":
			if !up.Resurrect {
				t.Error("added record should carry Resurrect")
			}
		case "t-old":
			if up.Resurrect {
				t.Error("modified record must not carry Resurrect")
			}
		default:
			t.Errorf("unexpected upsert %q", up.PlaidTransactionID)
		}
	}
}

func TestSyncItemTransactions_UpstreamFailureKeepsCursor(t *testing.T) {
	ctx := context.Background()

	itemRepo := &MockItemRepo{
		GetByPlaidItemIDFunc: func(ctx context.Context, userID, plaidItemID string) (*item.Item, error) {
			return testItem(stringPtr("c0")), nil
		},
		UpdateCursorFunc: func(ctx context.Context, id string, cursor string) error {
			t.Error("UpdateCursor must not be called when a page fetch fails")
			return nil
		},
	}
	accountRepo := &MockAccountRepo{
		ListByItemIDFunc: func(ctx context.Context, itemID string) ([]*account.Account, error) {
			return testAccounts(), nil
		},
	}
	txRepo := &MockTransactionRepo{
		UpsertBatchFunc: func(ctx context.Context, params []transaction.UpsertParams) error {
			t.Error("UpsertBatch must not be called when a page fetch fails")
			return nil
		},
	}

	pages := 0
	client := &MockPlaidClient{
		SyncTransactionsFunc: func(ctx context.Context, accessToken, cursor string) (*plaid.SyncPage, error) {
			pages++
			if pages == 2 {
				return nil, errors.New("upstream unavailable")
			}
			return &plaid.SyncPage{
				Added:      []plaid.Transaction{{TransactionID: "t1", AccountID: "a1", Amount: decimal.NewFromInt(5), DateString: "2025-09-01"}},
				NextCursor: "c1",
				HasMore:    true,
			}, nil
		},
	}

	svc := newTestService(client, itemRepo, accountRepo, txRepo)
	result, err := svc.SyncItemTransactions(ctx, testUserID, testPlaidItemID)

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("error = %v, want *UpstreamError", err)
	}
	if result.Stage != StageNone {
		t.Errorf("result.Stage = %q, want empty (nothing applied)", result.Stage)
	}
}

func TestSyncItemTransactions_PersistenceFailureStages(t *testing.T) {
	page := &plaid.SyncPage{
		Added:      []plaid.Transaction{{TransactionID: "t1", AccountID: "a1", Amount: decimal.NewFromInt(5), DateString: "2025-09-01"}},
		Removed:    []plaid.RemovedTransaction{{TransactionID: "t0"}},
		NextCursor: "c1",
		HasMore:    false,
	}

	tests := []struct {
		name      string
		failOp    string
		wantStage Stage
	}{
		{name: "Upsert Fails", failOp: "upsert", wantStage: StageFetched},
		{name: "Soft Delete Fails", failOp: "soft_delete", wantStage: StageUpserted},
		{name: "Cursor Update Fails", failOp: "cursor", wantStage: StageSoftDelete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			boom := errors.New("db down")

			itemRepo := &MockItemRepo{
				GetByPlaidItemIDFunc: func(ctx context.Context, userID, plaidItemID string) (*item.Item, error) {
					return testItem(nil), nil
				},
				UpdateCursorFunc: func(ctx context.Context, id string, cursor string) error {
					if tt.failOp == "cursor" {
						return boom
					}
					return nil
				},
			}
			accountRepo := &MockAccountRepo{
				ListByItemIDFunc: func(ctx context.Context, itemID string) ([]*account.Account, error) {
					return testAccounts(), nil
				},
			}
			txRepo := &MockTransactionRepo{
				UpsertBatchFunc: func(ctx context.Context, params []transaction.UpsertParams) error {
					if tt.failOp == "upsert" {
						return boom
					}
					return nil
				},
				SoftDeleteByPlaidIDsFunc: func(ctx context.Context, userID string, plaidIDs []string, deletedAt time.Time) error {
					if tt.failOp == "soft_delete" {
						return boom
					}
					return nil
				},
			}
			client := &MockPlaidClient{
				SyncTransactionsFunc: func(ctx context.Context, accessToken, cursor string) (*plaid.SyncPage, error) {
					return page, nil
				},
			}

			svc := newTestService(client, itemRepo, accountRepo, txRepo)
			result, err := svc.SyncItemTransactions(context.Background(), testUserID, testPlaidItemID)

			var persistErr *PersistenceError
			if !errors.As(err, &persistErr) {
				t.Fatalf("error = %v, want *PersistenceError", err)
			}
			if persistErr.Op != tt.failOp {
				t.Errorf("PersistenceError.Op = %q, want %q", persistErr.Op, tt.failOp)
			}
			if result.Stage != tt.wantStage {
				t.Errorf("result.Stage = %q, want %q", result.Stage, tt.wantStage)
			}
		})
	}
}

func TestSyncItemTransactions_SoftDeleteUsesPlaidIDs(t *testing.T) {
	ctx := context.Background()

	itemRepo := &MockItemRepo{
		GetByPlaidItemIDFunc: func(ctx context.Context, userID, plaidItemID string) (*item.Item, error) {
			return testItem(stringPtr("c0")), nil
		},
	}
	accountRepo := &MockAccountRepo{
		ListByItemIDFunc: func(ctx context.Context, itemID string) ([]*account.Account, error) {
			return testAccounts(), nil
		},
	}

	var gotIDs []string
	var gotUser string
	txRepo := &MockTransactionRepo{
		SoftDeleteByPlaidIDsFunc: func(ctx context.Context, userID string, plaidIDs []string, deletedAt time.Time) error {
			gotUser = userID
			gotIDs = plaidIDs
			return nil
		},
	}
	client := &MockPlaidClient{
		SyncTransactionsFunc: func(ctx context.Context, accessToken, cursor string) (*plaid.SyncPage, error) {
			return &plaid.SyncPage{
				Removed:    []plaid.RemovedTransaction{{TransactionID: "t9"}, {TransactionID: "t10"}},
				NextCursor: "c1",
			}, nil
		},
	}

	svc := newTestService(client, itemRepo, accountRepo, txRepo)
	result, err := svc.SyncItemTransactions(ctx, testUserID, testPlaidItemID)
	if err != nil {
		t.Fatalf("SyncItemTransactions() failed: %v", err)
	}

	if gotUser != testUserID {
		t.Errorf("soft delete user = %q, want %q", gotUser, testUserID)
	}
	if len(gotIDs) != 2 || gotIDs[0] != "t9" || gotIDs[1] != "t10" {
		t.Errorf("soft deleted ids = %v, want [t9 t10]", gotIDs)
	}
	if result.Removed != 2 {
		t.Errorf("result.Removed = %d, want 2", result.Removed)
	}
}

func TestSyncItemTransactions_RejectsUnresolvableAccount(t *testing.T) {
	ctx := context.Background()

	itemRepo := &MockItemRepo{
		GetByPlaidItemIDFunc: func(ctx context.Context, userID, plaidItemID string) (*item.Item, error) {
			return testItem(nil), nil
		},
	}
	accountRepo := &MockAccountRepo{
		ListByItemIDFunc: func(ctx context.Context, itemID string) ([]*account.Account, error) {
			return testAccounts(), nil
		},
	}

	var batchSize int
	txRepo := &MockTransactionRepo{
		UpsertBatchFunc: func(ctx context.Context, params []transaction.UpsertParams) error {
			batchSize = len(params)
			return nil
		},
	}
	client := &MockPlaidClient{
		SyncTransactionsFunc: func(ctx context.Context, accessToken, cursor string) (*plaid.SyncPage, error) {
			return &plaid.SyncPage{
				Added: []plaid.Transaction{
					{TransactionID: "t1", AccountID: "a1", Amount: decimal.NewFromInt(1), DateString: "2025-09-01"},
					{TransactionID: "t2", AccountID: "unknown-account", Amount: decimal.NewFromInt(2), DateString: "2025-09-01"},
				},
				NextCursor: "c1",
			}, nil
		},
	}

	svc := newTestService(client, itemRepo, accountRepo, txRepo)
	result, err := svc.SyncItemTransactions(ctx, testUserID, testPlaidItemID)
	if err != nil {
		t.Fatalf("SyncItemTransactions() failed: %v", err)
	}

	if batchSize != 1 {
		t.Errorf("upsert batch size = %d, want 1 (rejected record excluded)", batchSize)
	}
	if len(result.Rejected) != 1 {
		t.Fatalf("rejected = %d, want 1", len(result.Rejected))
	}
	if result.Rejected[0].PlaidTransactionID != "t2" {
		t.Errorf("rejected id = %q, want t2", result.Rejected[0].PlaidTransactionID)
	}
	if result.TotalSynced != 1 {
		t.Errorf("TotalSynced = %d, want 1", result.TotalSynced)
	}
}

func TestSyncItemTransactions_ItemNotFound(t *testing.T) {
	itemRepo := &MockItemRepo{} // default: ErrItemNotFound
	svc := newTestService(&MockPlaidClient{}, itemRepo, &MockAccountRepo{}, &MockTransactionRepo{})

	_, err := svc.SyncItemTransactions(context.Background(), testUserID, "missing-item")
	if !errors.Is(err, item.ErrItemNotFound) {
		t.Errorf("error = %v, want ErrItemNotFound", err)
	}
}

func TestSyncItemTransactions_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	itemRepo := &MockItemRepo{
		GetByPlaidItemIDFunc: func(ctx context.Context, userID, plaidItemID string) (*item.Item, error) {
			return testItem(nil), nil
		},
		UpdateCursorFunc: func(ctx context.Context, id string, cursor string) error {
			t.Error("UpdateCursor must not be called after cancellation")
			return nil
		},
	}
	accountRepo := &MockAccountRepo{
		ListByItemIDFunc: func(ctx context.Context, itemID string) ([]*account.Account, error) {
			return testAccounts(), nil
		},
	}
	txRepo := &MockTransactionRepo{
		UpsertBatchFunc: func(ctx context.Context, params []transaction.UpsertParams) error {
			t.Error("UpsertBatch must not be called after cancellation")
			return nil
		},
	}
	client := &MockPlaidClient{
		SyncTransactionsFunc: func(ctx context.Context, accessToken, cursor string) (*plaid.SyncPage, error) {
			// Cancel after the first page; the loop must stop before page 2
			cancel()
			return &plaid.SyncPage{NextCursor: "c1", HasMore: true}, nil
		},
	}

	svc := newTestService(client, itemRepo, accountRepo, txRepo)
	_, err := svc.SyncItemTransactions(ctx, testUserID, testPlaidItemID)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestSyncItemTransactions_ConcurrentInvocationsExcluded(t *testing.T) {
	ctx := context.Background()

	firstStarted := make(chan struct{})
	release := make(chan struct{})

	itemRepo := &MockItemRepo{
		GetByPlaidItemIDFunc: func(ctx context.Context, userID, plaidItemID string) (*item.Item, error) {
			return testItem(nil), nil
		},
	}
	accountRepo := &MockAccountRepo{
		ListByItemIDFunc: func(ctx context.Context, itemID string) ([]*account.Account, error) {
			return testAccounts(), nil
		},
	}
	var started sync.Once
	client := &MockPlaidClient{
		SyncTransactionsFunc: func(ctx context.Context, accessToken, cursor string) (*plaid.SyncPage, error) {
			started.Do(func() { close(firstStarted) })
			<-release
			return &plaid.SyncPage{NextCursor: "c1"}, nil
		},
	}

	svc := newTestService(client, itemRepo, accountRepo, &MockTransactionRepo{})

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = svc.SyncItemTransactions(ctx, testUserID, testPlaidItemID)
	}()

	<-firstStarted
	_, secondErr := svc.SyncItemTransactions(ctx, testUserID, testPlaidItemID)
	close(release)
	wg.Wait()

	if firstErr != nil {
		t.Errorf("first invocation failed: %v", firstErr)
	}
	if !errors.Is(secondErr, ErrSyncInProgress) {
		t.Errorf("second invocation error = %v, want ErrSyncInProgress", secondErr)
	}

	// Lock must be released afterwards
	if _, err := svc.SyncItemTransactions(ctx, testUserID, testPlaidItemID); err != nil {
		t.Errorf("sync after release failed: %v", err)
	}
}
