package users

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

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

// UserRepository reads profiles from Mongo through an optional Redis cache.
type UserRepository struct {
	repo     interfaces.UserStoreInterface
	cache    interfaces.ProfileCacheInterface
	cacheTTL time.Duration
}

func NewUsersRepository(client *mongodb.MongoClient, cache interfaces.ProfileCacheInterface, cacheTTL time.Duration) *UserRepository {
	collection := client.Database.Collection(consts.UsersCollection)
	return NewUserRepositoryWithInterface(repository.NewMongoRepository[models.User](collection), cache, cacheTTL)
}

func NewUserRepositoryWithInterface(repo interfaces.UserStoreInterface, cache interfaces.ProfileCacheInterface, cacheTTL time.Duration) *UserRepository {
	return &UserRepository{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

func Placeholder(id string) models.User {
	return models.User{ID: id, FullName: consts.UnknownUserName}
}

func cacheKey(id string) string {
	return consts.UserCacheKeyPrefix + id
}

func (ur *UserRepository) ResolveUsers(ctx context.Context, ids []string) (map[string]models.User, error) {
	wanted := dedupe(ids)
	result := make(map[string]models.User, len(wanted))
	if len(wanted) == 0 {
		return result, nil
	}

	missing := ur.readCache(ctx, wanted, result)

	if len(missing) > 0 {
		found, err := ur.repo.Find(ctx, bson.M{"_id": bson.M{"$in": missing}})
		if err != nil {
			return nil, fmt.Errorf("%w: resolve users: %v", consts.ErrorDependencyFailure, err)
		}
		for _, u := range found {
			result[u.ID] = u
		}
		ur.writeCache(ctx, found)
	}

	for _, id := range wanted {
		if _, ok := result[id]; !ok {
			result[id] = Placeholder(id)
		}
	}
	return result, nil
}

// readCache fills result from Redis and returns the ids still unresolved.
func (ur *UserRepository) readCache(ctx context.Context, ids []string, result map[string]models.User) []string {
	if ur.cache == nil {
		return ids
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cacheKey(id)
	}
	values, err := ur.cache.MGet(ctx, keys...)
	if err != nil {
		logger.CtxWarn(ctx, log_messages.ErrorReadingUserCache, zap.Error(err))
		return ids
	}

	missing := make([]string, 0, len(ids))
	for i, id := range ids {
		if i >= len(values) || values[i] == nil {
			missing = append(missing, id)
			continue
		}
		var u models.User
		if err := json.Unmarshal(values[i], &u); err != nil {
			missing = append(missing, id)
			continue
		}
		result[id] = u
	}
	return missing
}

// writeCache stores freshly loaded profiles. Unknown users are not cached so
// a later registration shows up without waiting for the TTL.
func (ur *UserRepository) writeCache(ctx context.Context, found []models.User) {
	if ur.cache == nil || len(found) == 0 {
		return
	}
	entries := make(map[string][]byte, len(found))
	for _, u := range found {
		if data, err := json.Marshal(u); err == nil {
			entries[cacheKey(u.ID)] = data
		}
	}
	if err := ur.cache.SetMany(ctx, entries, ur.cacheTTL); err != nil {
		logger.CtxWarn(ctx, log_messages.ErrorWritingUserCache, zap.Int("profiles", len(entries)), zap.Error(err))
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
