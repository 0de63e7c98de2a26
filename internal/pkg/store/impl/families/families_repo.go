package families

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"loan-ledger/internal/pkg/consts"
	mongodb "loan-ledger/internal/pkg/db/mongo"
	"loan-ledger/internal/pkg/log_messages"
	"loan-ledger/internal/pkg/logger"
	"loan-ledger/internal/pkg/store/models"
	"loan-ledger/internal/pkg/store/repository"
	"loan-ledger/internal/service/interfaces"
)

// FamilyRepository answers membership questions. Memberships are owned elsewhere.
type FamilyRepository struct {
	repo interfaces.FamilyMemberStoreInterface
}

func NewFamiliesRepository(client *mongodb.MongoClient) *FamilyRepository {
	collection := client.Database.Collection(consts.FamilyMembersCollection)
	return &FamilyRepository{repo: repository.NewMongoRepository[models.FamilyMember](collection)}
}

func NewFamilyRepositoryWithInterface(repo interfaces.FamilyMemberStoreInterface) *FamilyRepository {
	return &FamilyRepository{repo: repo}
}

func (fr *FamilyRepository) IsMember(ctx context.Context, familyID, userID string) (bool, error) {
	count, err := fr.repo.CountDocuments(ctx, bson.M{"familyId": familyID, "userId": userID})
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorCheckingMembership, err,
			zap.String("family_id", familyID), zap.String("user_id", userID))
		return false, fmt.Errorf("%w: family membership: %v", consts.ErrorDependencyFailure, err)
	}
	return count > 0, nil
}
