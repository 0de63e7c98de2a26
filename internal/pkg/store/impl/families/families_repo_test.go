package families

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"loan-ledger/internal/pkg/consts"
)

type MockFamilyStore struct {
	mock.Mock
}

func (m *MockFamilyStore) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func TestIsMember(t *testing.T) {
	store := new(MockFamilyStore)
	repo := NewFamilyRepositoryWithInterface(store)
	ctx := context.Background()

	store.On("CountDocuments", mock.Anything, bson.M{"familyId": "F1", "userId": "U1"}).Return(int64(1), nil)
	store.On("CountDocuments", mock.Anything, bson.M{"familyId": "F1", "userId": "U7"}).Return(int64(0), nil)
	store.On("CountDocuments", mock.Anything, bson.M{"familyId": "F2", "userId": "U1"}).Return(int64(0), errors.New("down"))

	ok, err := repo.IsMember(ctx, "F1", "U1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IsMember(ctx, "F1", "U7")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.IsMember(ctx, "F2", "U1")
	assert.ErrorIs(t, err, consts.ErrorDependencyFailure)
}
