package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"restobill/internal/models"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	List(ctx context.Context, orgID string, orderID *string) ([]*models.Payment, error)
	DeleteByOrganization(ctx context.Context, orgID string) (int64, error)
}

type paymentRepo struct {
	coll *mongo.Collection
}

func NewPaymentRepo(db *mongo.Database) PaymentRepository {
	return &paymentRepo{coll: db.Collection(PaymentsCollection)}
}

func (r *paymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	return insertOne(ctx, r.coll, payment, "payment")
}

func (r *paymentRepo) List(ctx context.Context, orgID string, orderID *string) ([]*models.Payment, error) {
	query := bson.M{"organization_id": orgID}
	if orderID != nil {
		query["order_id"] = *orderID
	}
	opts := options.Find().SetSort(newestFirst)
	return findAll[models.Payment](ctx, r.coll, query, opts, "payments")
}

func (r *paymentRepo) DeleteByOrganization(ctx context.Context, orgID string) (int64, error) {
	return deleteByOrganization(ctx, r.coll, orgID, "payments")
}
