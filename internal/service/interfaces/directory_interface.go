package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	storemodels "loan-ledger/internal/pkg/store/models"
)

// UserDirectoryInterface resolves ids in one batch. Every requested id is
// present in the result; unknown ids map to a placeholder profile.
type UserDirectoryInterface interface {
	ResolveUsers(ctx context.Context, ids []string) (map[string]storemodels.User, error)
}

type FamilyDirectoryInterface interface {
	IsMember(ctx context.Context, familyID, userID string) (bool, error)
}

type UserStoreInterface interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]storemodels.User, error)
}

type FamilyMemberStoreInterface interface {
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
}
