package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"restobill/internal/common"
	"restobill/internal/models"
)

func orderDoc(id, org, status string, createdAt time.Time, total float64) bson.D {
	return bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "id", Value: id},
		{Key: "organization_id", Value: org},
		{Key: "items", Value: bson.A{bson.D{{Key: "name", Value: "Paneer Tikka"}, {Key: "price", Value: 130.0}, {Key: "quantity", Value: 1}}}},
		{Key: "subtotal", Value: 130.0},
		{Key: "total", Value: total},
		{Key: "status", Value: status},
		{Key: "created_at", Value: primitive.NewDateTimeFromTime(createdAt)},
		{Key: "updated_at", Value: primitive.NewDateTimeFromTime(createdAt)},
	}
}

func TestActiveOrdersFilter(t *testing.T) {
	todayStart := time.Date(2024, 1, 14, 18, 30, 0, 0, time.UTC)

	allOpen := ActiveOrdersFilter("org1", models.ActiveOrdersAllOpen, todayStart)
	assert.Equal(t, "org1", allOpen["organization_id"])
	assert.Equal(t, bson.M{"$nin": models.TerminalOrderStatuses}, allOpen["status"])
	_, bounded := allOpen["created_at"]
	assert.False(t, bounded, "all_open must not bound by date")

	todayOnly := ActiveOrdersFilter("org1", models.ActiveOrdersTodayOnly, todayStart)
	assert.Equal(t, bson.M{"$gte": todayStart}, todayOnly["created_at"])
}

func TestTodayBillsFilter(t *testing.T) {
	todayStart := time.Date(2024, 1, 14, 18, 30, 0, 0, time.UTC)

	filter := TodayBillsFilter("org1", todayStart)
	assert.Equal(t, "org1", filter["organization_id"])
	assert.Equal(t, bson.M{"$in": []string{models.OrderStatusCompleted, models.OrderStatusPaid}}, filter["status"])
	assert.Equal(t, bson.M{"$gte": todayStart}, filter["created_at"])
}

func TestTodayBillsFilter_NormalizesToUTC(t *testing.T) {
	local := time.Date(2024, 1, 15, 0, 0, 0, 0, common.BusinessZone)
	filter := TodayBillsFilter("org1", local)

	bound := filter["created_at"].(bson.M)["$gte"].(time.Time)
	assert.Equal(t, time.UTC, bound.Location())
	assert.True(t, bound.Equal(local))
}

func TestOrderRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	created := time.Date(2024, 1, 15, 5, 0, 0, 0, time.UTC)

	mt.Run("ListActive decodes documents", func(mt *mtest.T) {
		repo := NewOrderRepo(mt.DB)
		ns := mt.DB.Name() + "." + OrdersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			orderDoc("o1", "org1", models.OrderStatusPending, created, 130),
			orderDoc("o2", "org1", models.OrderStatusPreparing, created.Add(-24*time.Hour), 130),
		))

		orders, err := repo.ListActive(ctx, "org1", models.ActiveOrdersAllOpen, created)
		require.NoError(mt, err)
		require.Len(mt, orders, 2)
		assert.Equal(mt, "o1", orders[0].ID)
		assert.Equal(mt, models.OrderStatusPreparing, orders[1].Status)
		assert.True(mt, orders[0].CreatedAt.Equal(created))
		assert.Equal(mt, "Paneer Tikka", orders[0].Items[0].Name)
	})

	mt.Run("ListTodayBills returns empty slice", func(mt *mtest.T) {
		repo := NewOrderRepo(mt.DB)
		ns := mt.DB.Name() + "." + OrdersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		orders, err := repo.ListTodayBills(ctx, "org1", created)
		require.NoError(mt, err)
		assert.NotNil(mt, orders)
		assert.Empty(mt, orders)
	})

	mt.Run("GetByID not found", func(mt *mtest.T) {
		repo := NewOrderRepo(mt.DB)
		ns := mt.DB.Name() + "." + OrdersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetByID(ctx, "org1", "missing")
		assert.True(mt, errors.Is(err, common.ErrNotFound))
		assert.EqualError(mt, err, "order not found")
	})

	mt.Run("Create succeeds", func(mt *mtest.T) {
		repo := NewOrderRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.Create(ctx, &models.Order{ID: "o1", OrganizationID: "org1", Status: models.OrderStatusPending, CreatedAt: created})
		assert.NoError(mt, err)
	})

	mt.Run("Create duplicate maps to conflict", func(mt *mtest.T) {
		repo := NewOrderRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))

		err := repo.Create(ctx, &models.Order{ID: "o1", OrganizationID: "org1"})
		assert.True(mt, errors.Is(err, common.ErrConflict))
	})

	mt.Run("UpdateStatus unmatched is not found", func(mt *mtest.T) {
		repo := NewOrderRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := repo.UpdateStatus(ctx, "org1", "o1", models.OrderStatusPreparing)
		assert.True(mt, errors.Is(err, common.ErrNotFound))
	})

	mt.Run("UpdateStatus matched", func(mt *mtest.T) {
		repo := NewOrderRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		assert.NoError(mt, repo.UpdateStatus(ctx, "org1", "o1", models.OrderStatusPreparing))
	})

	mt.Run("SumTodayRevenue", func(mt *mtest.T) {
		repo := NewOrderRepo(mt.DB)
		ns := mt.DB.Name() + "." + OrdersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: nil}, {Key: "revenue", Value: 264.5}},
		))

		revenue, err := repo.SumTodayRevenue(ctx, created)
		require.NoError(mt, err)
		assert.Equal(mt, 264.5, revenue)
	})

	mt.Run("SumTodayRevenue with no bills", func(mt *mtest.T) {
		repo := NewOrderRepo(mt.DB)
		ns := mt.DB.Name() + "." + OrdersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		revenue, err := repo.SumTodayRevenue(ctx, created)
		require.NoError(mt, err)
		assert.Zero(mt, revenue)
	})

	mt.Run("DeleteByOrganization reports count", func(mt *mtest.T) {
		repo := NewOrderRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 4}))

		n, err := repo.DeleteByOrganization(ctx, "org1")
		require.NoError(mt, err)
		assert.Equal(mt, int64(4), n)
	})

	mt.Run("query failure is wrapped", func(mt *mtest.T) {
		repo := NewOrderRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad query"}))

		_, err := repo.List(ctx, "org1", models.OrderFilter{Limit: 10})
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to list orders")
	})
}

func TestPaymentUpdate(t *testing.T) {
	at := time.Date(2024, 1, 15, 9, 0, 0, 0, common.BusinessZone)
	pipeline := PaymentUpdate(50, at)
	require.Len(t, pipeline, 3)

	received := pipeline[0][0].Value.(bson.M)["payment_received"].(bson.M)["$round"].(bson.A)
	add := received[0].(bson.M)["$add"].(bson.A)
	assert.Equal(t, 50.0, add[1])

	last := pipeline[2][0].Value.(bson.M)
	assert.Equal(t, at.UTC(), last["updated_at"])
	assert.Contains(t, last, "status")
	assert.Contains(t, last, "is_credit")

	reverted := PaymentUpdate(-50, at)[0][0].Value.(bson.M)["payment_received"].(bson.M)["$round"].(bson.A)
	assert.Equal(t, -50.0, reverted[0].(bson.M)["$add"].(bson.A)[1])
}

func TestOrderRepo_Payments(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	created := time.Date(2024, 1, 15, 5, 0, 0, 0, time.UTC)

	mt.Run("ApplyPayment returns the updated order", func(mt *mtest.T) {
		repo := NewOrderRepo(mt.DB)
		doc := append(orderDoc("o1", "org1", models.OrderStatusPaid, created, 130),
			bson.E{Key: "payment_received", Value: 130.0},
			bson.E{Key: "balance_amount", Value: 0.0},
			bson.E{Key: "is_credit", Value: false},
		)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doc}))

		order, err := repo.ApplyPayment(ctx, "org1", "o1", 80, created)
		require.NoError(mt, err)
		assert.Equal(mt, models.OrderStatusPaid, order.Status)
		assert.Equal(mt, 130.0, order.PaymentReceived)
		assert.Zero(mt, order.BalanceAmount)
	})

	mt.Run("ApplyPayment on a missing or cancelled order is not found", func(mt *mtest.T) {
		repo := NewOrderRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.ApplyPayment(ctx, "org1", "o1", 80, created)
		assert.True(mt, errors.Is(err, common.ErrNotFound))
	})

	mt.Run("ApplyPayment failure is wrapped", func(mt *mtest.T) {
		repo := NewOrderRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad update"}))

		_, err := repo.ApplyPayment(ctx, "org1", "o1", 80, created)
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to apply payment to order")
	})

	mt.Run("RevertPayment matched", func(mt *mtest.T) {
		repo := NewOrderRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		assert.NoError(mt, repo.RevertPayment(ctx, "org1", "o1", 80, created))
	})

	mt.Run("Update after a concurrent payment is a conflict", func(mt *mtest.T) {
		repo := NewOrderRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := repo.Update(ctx, &models.Order{ID: "o1", OrganizationID: "org1", Total: 150, PaymentReceived: 80, BalanceAmount: 70})
		assert.True(mt, errors.Is(err, common.ErrConflict))
	})

	mt.Run("Update matched", func(mt *mtest.T) {
		repo := NewOrderRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		assert.NoError(mt, repo.Update(ctx, &models.Order{ID: "o1", OrganizationID: "org1", Total: 150}))
	})
}
