package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"loan-ledger/internal/pkg/ledger"
)

// TransactionRepositoryInterface appends derived transactions. Appending the
// same effect twice must succeed without creating a second record.
type TransactionRepositoryInterface interface {
	Append(ctx context.Context, effect ledger.Effect) (string, error)
}

type TransactionStoreInterface interface {
	Create(ctx context.Context, document interface{}) (*mongo.InsertOneResult, error)
}
