package http

import (
	"context"
	"time"

	"github.com/jdgtl/project-october/internal/domain/account"
	"github.com/jdgtl/project-october/internal/domain/drop"
	"github.com/jdgtl/project-october/internal/domain/follow"
	"github.com/jdgtl/project-october/internal/domain/item"
	"github.com/jdgtl/project-october/internal/domain/transaction"
	"github.com/jdgtl/project-october/internal/domain/user"
	"github.com/jdgtl/project-october/internal/infrastructure/plaid"
)

// MockUserRepo implements user.Repository for testing
type MockUserRepo struct {
	CreateFunc        func(ctx context.Context, params user.CreateParams) (*user.User, error)
	GetByIDFunc       func(ctx context.Context, id string) (*user.User, error)
	GetByEmailFunc    func(ctx context.Context, email string) (*user.User, error)
	GetByUsernameFunc func(ctx context.Context, username string) (*user.User, error)
	UpdateProfileFunc func(ctx context.Context, id string, params user.UpdateProfileParams) (*user.User, error)
}

func (m *MockUserRepo) Create(ctx context.Context, params user.CreateParams) (*user.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, user.ErrUserNotFound
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, user.ErrUserNotFound
}

func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, user.ErrUserNotFound
}

func (m *MockUserRepo) UpdateProfile(ctx context.Context, id string, params user.UpdateProfileParams) (*user.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, id, params)
	}
	return nil, nil
}

// MockAccountRepo implements account.Repository for testing
type MockAccountRepo struct {
	CreateBatchFunc        func(ctx context.Context, params []account.CreateParams) ([]*account.Account, error)
	GetByIDFunc            func(ctx context.Context, id string) (*account.Account, error)
	ListByUserIDFunc       func(ctx context.Context, userID string) ([]*account.Account, error)
	ListByItemIDFunc       func(ctx context.Context, itemID string) ([]*account.Account, error)
	SoftDeleteByItemIDFunc func(ctx context.Context, itemID string, deletedAt time.Time) ([]string, error)
}

func (m *MockAccountRepo) CreateBatch(ctx context.Context, params []account.CreateParams) ([]*account.Account, error) {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockAccountRepo) GetByID(ctx context.Context, id string) (*account.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, account.ErrAccountNotFound
}

func (m *MockAccountRepo) ListByUserID(ctx context.Context, userID string) ([]*account.Account, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockAccountRepo) ListByItemID(ctx context.Context, itemID string) ([]*account.Account, error) {
	if m.ListByItemIDFunc != nil {
		return m.ListByItemIDFunc(ctx, itemID)
	}
	return nil, nil
}

func (m *MockAccountRepo) SoftDeleteByItemID(ctx context.Context, itemID string, deletedAt time.Time) ([]string, error) {
	if m.SoftDeleteByItemIDFunc != nil {
		return m.SoftDeleteByItemIDFunc(ctx, itemID, deletedAt)
	}
	return nil, nil
}

// MockTransactionRepo implements transaction.Repository for testing
type MockTransactionRepo struct {
	GetByIDFunc               func(ctx context.Context, id string) (*transaction.Transaction, error)
	ListByUserIDFunc          func(ctx context.Context, userID string, limit, offset int) ([]*transaction.Transaction, error)
	ListByAccountIDFunc       func(ctx context.Context, accountID string, limit, offset int) ([]*transaction.Transaction, error)
	CountByUserIDFunc         func(ctx context.Context, userID string) (int64, error)
	UpsertBatchFunc           func(ctx context.Context, params []transaction.UpsertParams) error
	SoftDeleteByPlaidIDsFunc  func(ctx context.Context, userID string, plaidIDs []string, deletedAt time.Time) error
	SoftDeleteByAccountsFunc  func(ctx context.Context, accountIDs []string, deletedAt time.Time) error
	ListMissingEnrichmentFunc func(ctx context.Context, userID string) ([]*transaction.Transaction, error)
	UpdateEnrichmentFunc      func(ctx context.Context, id string, e transaction.Enrichment) error
	DeleteByAccountIDsFunc    func(ctx context.Context, accountIDs []string) ([]string, error)
}

func (m *MockTransactionRepo) GetByID(ctx context.Context, id string) (*transaction.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, transaction.ErrTransactionNotFound
}

func (m *MockTransactionRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*transaction.Transaction, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID, limit, offset)
	}
	return nil, nil
}

func (m *MockTransactionRepo) ListByAccountID(ctx context.Context, accountID string, limit, offset int) ([]*transaction.Transaction, error) {
	if m.ListByAccountIDFunc != nil {
		return m.ListByAccountIDFunc(ctx, accountID, limit, offset)
	}
	return nil, nil
}

func (m *MockTransactionRepo) CountByUserID(ctx context.Context, userID string) (int64, error) {
	if m.CountByUserIDFunc != nil {
		return m.CountByUserIDFunc(ctx, userID)
	}
	return 0, nil
}

func (m *MockTransactionRepo) UpsertBatch(ctx context.Context, params []transaction.UpsertParams) error {
	if m.UpsertBatchFunc != nil {
		return m.UpsertBatchFunc(ctx, params)
	}
	return nil
}

func (m *MockTransactionRepo) SoftDeleteByPlaidIDs(ctx context.Context, userID string, plaidIDs []string, deletedAt time.Time) error {
	if m.SoftDeleteByPlaidIDsFunc != nil {
		return m.SoftDeleteByPlaidIDsFunc(ctx, userID, plaidIDs, deletedAt)
	}
	return nil
}

func (m *MockTransactionRepo) SoftDeleteByAccountIDs(ctx context.Context, accountIDs []string, deletedAt time.Time) error {
	if m.SoftDeleteByAccountsFunc != nil {
		return m.SoftDeleteByAccountsFunc(ctx, accountIDs, deletedAt)
	}
	return nil
}

func (m *MockTransactionRepo) ListMissingEnrichment(ctx context.Context, userID string) ([]*transaction.Transaction, error) {
	if m.ListMissingEnrichmentFunc != nil {
		return m.ListMissingEnrichmentFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockTransactionRepo) UpdateEnrichment(ctx context.Context, id string, e transaction.Enrichment) error {
	if m.UpdateEnrichmentFunc != nil {
		return m.UpdateEnrichmentFunc(ctx, id, e)
	}
	return nil
}

func (m *MockTransactionRepo) DeleteByAccountIDs(ctx context.Context, accountIDs []string) ([]string, error) {
	if m.DeleteByAccountIDsFunc != nil {
		return m.DeleteByAccountIDsFunc(ctx, accountIDs)
	}
	return nil, nil
}

// MockItemRepo implements item.Repository for testing
type MockItemRepo struct {
	CreateFunc           func(ctx context.Context, params item.CreateParams) (*item.Item, error)
	GetByIDFunc          func(ctx context.Context, id string) (*item.Item, error)
	GetByPlaidItemIDFunc func(ctx context.Context, userID, plaidItemID string) (*item.Item, error)
	ListByUserIDFunc     func(ctx context.Context, userID string) ([]*item.Item, error)
	ListAllFunc          func(ctx context.Context) ([]*item.Item, error)
	UpdateCursorFunc     func(ctx context.Context, id string, cursor string) error
	DeleteFunc           func(ctx context.Context, id string) error
}

func (m *MockItemRepo) Create(ctx context.Context, params item.CreateParams) (*item.Item, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockItemRepo) GetByID(ctx context.Context, id string) (*item.Item, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, item.ErrItemNotFound
}

func (m *MockItemRepo) GetByPlaidItemID(ctx context.Context, userID, plaidItemID string) (*item.Item, error) {
	if m.GetByPlaidItemIDFunc != nil {
		return m.GetByPlaidItemIDFunc(ctx, userID, plaidItemID)
	}
	return nil, item.ErrItemNotFound
}

func (m *MockItemRepo) ListByUserID(ctx context.Context, userID string) ([]*item.Item, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockItemRepo) ListAll(ctx context.Context) ([]*item.Item, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, nil
}

func (m *MockItemRepo) UpdateCursor(ctx context.Context, id string, cursor string) error {
	if m.UpdateCursorFunc != nil {
		return m.UpdateCursorFunc(ctx, id, cursor)
	}
	return nil
}

func (m *MockItemRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockPlaidClient implements plaid.ClientInterface for testing
type MockPlaidClient struct {
	CreateLinkTokenFunc     func(ctx context.Context, clientUserID string) (string, error)
	ExchangePublicTokenFunc func(ctx context.Context, publicToken string) (*plaid.ExchangeResult, error)
	SyncTransactionsFunc    func(ctx context.Context, accessToken, cursor string) (*plaid.SyncPage, error)
	GetTransactionsFunc     func(ctx context.Context, accessToken, startDate, endDate string) ([]plaid.Transaction, error)
	RemoveItemFunc          func(ctx context.Context, accessToken string) error
}

func (m *MockPlaidClient) CreateLinkToken(ctx context.Context, clientUserID string) (string, error) {
	if m.CreateLinkTokenFunc != nil {
		return m.CreateLinkTokenFunc(ctx, clientUserID)
	}
	return "", nil
}

func (m *MockPlaidClient) ExchangePublicToken(ctx context.Context, publicToken string) (*plaid.ExchangeResult, error) {
	if m.ExchangePublicTokenFunc != nil {
		return m.ExchangePublicTokenFunc(ctx, publicToken)
	}
	return nil, nil
}

func (m *MockPlaidClient) SyncTransactions(ctx context.Context, accessToken, cursor string) (*plaid.SyncPage, error) {
	if m.SyncTransactionsFunc != nil {
		return m.SyncTransactionsFunc(ctx, accessToken, cursor)
	}
	return &plaid.SyncPage{}, nil
}

func (m *MockPlaidClient) GetTransactions(ctx context.Context, accessToken, startDate, endDate string) ([]plaid.Transaction, error) {
	if m.GetTransactionsFunc != nil {
		return m.GetTransactionsFunc(ctx, accessToken, startDate, endDate)
	}
	return nil, nil
}

func (m *MockPlaidClient) RemoveItem(ctx context.Context, accessToken string) error {
	if m.RemoveItemFunc != nil {
		return m.RemoveItemFunc(ctx, accessToken)
	}
	return nil
}

// MockDropRepo implements drop.Repository for testing
type MockDropRepo struct {
	CreateFunc                 func(ctx context.Context, params drop.CreateParams) (*drop.Drop, error)
	GetByIDFunc                func(ctx context.Context, id string) (*drop.Drop, error)
	ListByUserIDFunc           func(ctx context.Context, userID string, limit, offset int) ([]*drop.Drop, error)
	DeleteFunc                 func(ctx context.Context, id string) error
	DeleteByTransactionIDsFunc func(ctx context.Context, transactionIDs []string) error
	LinkPhotosFunc             func(ctx context.Context, dropID string, photoIDs []string) error
	ListFeedFunc               func(ctx context.Context, viewerID string, limit, offset int) ([]*drop.FeedEntry, error)
}

func (m *MockDropRepo) Create(ctx context.Context, params drop.CreateParams) (*drop.Drop, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockDropRepo) GetByID(ctx context.Context, id string) (*drop.Drop, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockDropRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*drop.Drop, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID, limit, offset)
	}
	return nil, nil
}

func (m *MockDropRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockDropRepo) DeleteByTransactionIDs(ctx context.Context, transactionIDs []string) error {
	if m.DeleteByTransactionIDsFunc != nil {
		return m.DeleteByTransactionIDsFunc(ctx, transactionIDs)
	}
	return nil
}

func (m *MockDropRepo) LinkPhotos(ctx context.Context, dropID string, photoIDs []string) error {
	if m.LinkPhotosFunc != nil {
		return m.LinkPhotosFunc(ctx, dropID, photoIDs)
	}
	return nil
}

func (m *MockDropRepo) ListFeed(ctx context.Context, viewerID string, limit, offset int) ([]*drop.FeedEntry, error) {
	if m.ListFeedFunc != nil {
		return m.ListFeedFunc(ctx, viewerID, limit, offset)
	}
	return nil, nil
}

// MockFollowRepo implements follow.Repository for testing
type MockFollowRepo struct {
	CreateFunc           func(ctx context.Context, followerID, followingID string) (*follow.Follow, error)
	DeleteFunc           func(ctx context.Context, followerID, followingID string) error
	ExistsFunc           func(ctx context.Context, followerID, followingID string) (bool, error)
	ListFollowerIDsFunc  func(ctx context.Context, userID string) ([]string, error)
	ListFollowingIDsFunc func(ctx context.Context, userID string) ([]string, error)
	CountsFunc           func(ctx context.Context, userID string) (*follow.Counts, error)
}

func (m *MockFollowRepo) Create(ctx context.Context, followerID, followingID string) (*follow.Follow, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, followerID, followingID)
	}
	return nil, nil
}

func (m *MockFollowRepo) Delete(ctx context.Context, followerID, followingID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, followerID, followingID)
	}
	return nil
}

func (m *MockFollowRepo) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, followerID, followingID)
	}
	return false, nil
}

func (m *MockFollowRepo) ListFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	if m.ListFollowerIDsFunc != nil {
		return m.ListFollowerIDsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockFollowRepo) ListFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	if m.ListFollowingIDsFunc != nil {
		return m.ListFollowingIDsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockFollowRepo) Counts(ctx context.Context, userID string) (*follow.Counts, error) {
	if m.CountsFunc != nil {
		return m.CountsFunc(ctx, userID)
	}
	return &follow.Counts{}, nil
}
