package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"loan-ledger/internal/pkg/ledger"
	storemodels "loan-ledger/internal/pkg/store/models"
)

type LoanRepositoryInterface interface {
	Insert(ctx context.Context, loan ledger.Loan) error
	GetByID(ctx context.Context, loanID string) (ledger.Loan, error)
	ListByParty(ctx context.Context, userID string) ([]ledger.Loan, error)
	ApplyTransition(ctx context.Context, transition ledger.Transition) error
	RemovePendingEffect(ctx context.Context, loanID, effectID string) error
	FindWithPendingEffects(ctx context.Context, limit int64) ([]ledger.Loan, error)
	NormalizeLegacyStatus(ctx context.Context) (int64, error)
}

type LoanStoreInterface interface {
	Create(ctx context.Context, document interface{}) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (storemodels.Loan, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]storemodels.Loan, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}) (*mongo.UpdateResult, error)
	EnsureIndexes(ctx context.Context, models ...mongo.IndexModel) error
}
