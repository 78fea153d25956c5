package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"restobill/internal/common"
	"restobill/internal/models"
)

func TestUserListFilter(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, bson.M{}, UserListFilter(models.UserFilter{Status: models.SubscriptionFilterAll}, now))
	assert.Equal(t, bson.M{"subscription_active": false}, UserListFilter(models.UserFilter{Status: models.SubscriptionFilterInactive}, now))
	assert.Equal(t, ActiveSubscriptionFilter(now), UserListFilter(models.UserFilter{Status: models.SubscriptionFilterActive}, now))

	combined := UserListFilter(models.UserFilter{Search: "a.b", Status: models.SubscriptionFilterExpired}, now)
	clauses, ok := combined["$and"].(bson.A)
	require.True(t, ok)
	require.Len(t, clauses, 2)

	search := clauses[0].(bson.M)["$or"].(bson.A)
	assert.Equal(t, bson.M{"username": bson.M{"$regex": `a\.b`, "$options": "i"}}, search[0])
	assert.Equal(t, bson.M{"subscription_expires_at": bson.M{"$lte": now}}, clauses[1])
}

func TestUserRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("GetByLogin decodes user without password in json", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		ns := mt.DB.Name() + "." + UsersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "id", Value: "u1"},
			{Key: "username", Value: "Spice"},
			{Key: "username_lower", Value: "spice"},
			{Key: "password_hash", Value: "$2a$hash"},
			{Key: "role", Value: "admin"},
			{Key: "organization_id", Value: "u1"},
			{Key: "subscription_active", Value: true},
		}))

		user, err := repo.GetByLogin(ctx, "spice")
		require.NoError(mt, err)
		assert.Equal(mt, "u1", user.OrganizationID)
		assert.Equal(mt, "$2a$hash", user.PasswordHash)
		assert.Nil(mt, user.ReferralCode)
	})

	mt.Run("Create duplicate username is conflict", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"}))

		err := repo.Create(ctx, &models.User{ID: "u2", Username: "spice", UsernameLower: "spice"})
		assert.True(mt, errors.Is(err, common.ErrConflict))
	})

	mt.Run("ExpireSubscriptions returns modified count", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}, bson.E{Key: "nModified", Value: 3}))

		n, err := repo.ExpireSubscriptions(ctx, time.Now())
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), n)
	})

	mt.Run("CountByOrganization", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		ns := mt.DB.Name() + "." + UsersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(5)}}))

		n, err := repo.CountByOrganization(ctx, "org1")
		require.NoError(mt, err)
		assert.Equal(mt, int64(5), n)
	})
}

func TestTableRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("Release only when order matches", func(mt *mtest.T) {
		repo := NewTableRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		released, err := repo.Release(ctx, "org1", "t1", "other-order")
		require.NoError(mt, err)
		assert.False(mt, released)
	})

	mt.Run("duplicate table number", func(mt *mtest.T) {
		repo := NewTableRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate"}))

		err := repo.Create(ctx, &models.Table{ID: "t1", OrganizationID: "org1", TableNumber: 4})
		assert.True(mt, errors.Is(err, common.ErrConflict))
		assert.Contains(mt, err.Error(), "table number already exists")
	})

	mt.Run("List sorted tables decode", func(mt *mtest.T) {
		repo := NewTableRepo(mt.DB)
		ns := mt.DB.Name() + "." + TablesCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "id", Value: "t1"}, {Key: "table_number", Value: 1}, {Key: "status", Value: "available"}, {Key: "current_order_id", Value: nil}},
			bson.D{{Key: "id", Value: "t2"}, {Key: "table_number", Value: 2}, {Key: "status", Value: "occupied"}, {Key: "current_order_id", Value: "o9"}},
		))

		tables, err := repo.List(ctx, "org1")
		require.NoError(mt, err)
		require.Len(mt, tables, 2)
		assert.Nil(mt, tables[0].CurrentOrderID)
		assert.Equal(mt, "o9", *tables[1].CurrentOrderID)
	})
}
