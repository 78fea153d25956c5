package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"restobill/internal/common"
	"restobill/internal/models"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, orgID, id string) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, orgID, id, status string) error
	ApplyPayment(ctx context.Context, orgID, id string, amount float64, at time.Time) (*models.Order, error)
	RevertPayment(ctx context.Context, orgID, id string, amount float64, at time.Time) error
	Delete(ctx context.Context, orgID, id string) error
	List(ctx context.Context, orgID string, filter models.OrderFilter) ([]*models.Order, error)

	// Date-bounded queries
	ListActive(ctx context.Context, orgID string, policy models.ActiveOrdersPolicy, todayStart time.Time) ([]*models.Order, error)
	ListTodayBills(ctx context.Context, orgID string, todayStart time.Time) ([]*models.Order, error)

	// Cross-organization queries for the super-admin panel and maintenance jobs
	CountByOrganization(ctx context.Context, orgID string) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	SumTodayRevenue(ctx context.Context, todayStart time.Time) (float64, error)
	ListStaleActive(ctx context.Context, before time.Time) ([]*models.Order, error)
	DeleteByOrganization(ctx context.Context, orgID string) (int64, error)
}

type orderRepo struct {
	coll *mongo.Collection
}

func NewOrderRepo(db *mongo.Database) OrderRepository {
	return &orderRepo{coll: db.Collection(OrdersCollection)}
}

// ActiveOrdersFilter selects the non-terminal orders of one organization.
// Under ActiveOrdersTodayOnly it is also bounded to created_at >= todayStart.
func ActiveOrdersFilter(orgID string, policy models.ActiveOrdersPolicy, todayStart time.Time) bson.M {
	filter := bson.M{
		"organization_id": orgID,
		"status":          bson.M{"$nin": models.TerminalOrderStatuses},
	}
	if policy == models.ActiveOrdersTodayOnly {
		filter["created_at"] = bson.M{"$gte": todayStart.UTC()}
	}
	return filter
}

// TodayBillsFilter selects completed or paid orders created on or after todayStart
func TodayBillsFilter(orgID string, todayStart time.Time) bson.M {
	return bson.M{
		"organization_id": orgID,
		"status":          bson.M{"$in": models.BilledOrderStatuses},
		"created_at":      bson.M{"$gte": todayStart.UTC()},
	}
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}}

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	return insertOne(ctx, r.coll, order, "order")
}

func (r *orderRepo) GetByID(ctx context.Context, orgID, id string) (*models.Order, error) {
	return findOne[models.Order](ctx, r.coll, byOrgAndID(orgID, id), "order")
}

func (r *orderRepo) Update(ctx context.Context, order *models.Order) error {
	update := bson.M{"$set": bson.M{
		"table_id":       order.TableID,
		"table_number":   order.TableNumber,
		"customer_name":  order.CustomerName,
		"customer_phone": order.CustomerPhone,
		"items":          order.Items,
		"subtotal":       order.Subtotal,
		"tax_rate":       order.TaxRate,
		"tax":            order.Tax,
		"discount":       order.Discount,
		"total":          order.Total,
		"balance_amount": order.BalanceAmount,
		"is_credit":      order.IsCredit,
		"payment_method": order.PaymentMethod,
		"notes":          order.Notes,
		"updated_at":     order.UpdatedAt,
	}}
	// balance_amount was derived from this payment_received; a payment in
	// between must not be overwritten
	filter := byOrgAndID(order.OrganizationID, order.ID)
	filter["payment_received"] = order.PaymentReceived
	if order.PaymentReceived == 0 {
		filter["payment_received"] = bson.M{"$in": bson.A{0, nil}}
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.Conflict("order changed while it was being updated, retry")
	}
	return nil
}

// UpdateStatus is last-write-wins; concurrent writers are not serialized
func (r *orderRepo) UpdateStatus(ctx context.Context, orgID, id, status string) error {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}
	return updateOne(ctx, r.coll, byOrgAndID(orgID, id), update, "order")
}

// ApplyPayment adds amount to payment_received and derives balance_amount,
// is_credit and the completed/paid status from the stored document in one
// atomic update. Cancelled orders never match.
func (r *orderRepo) ApplyPayment(ctx context.Context, orgID, id string, amount float64, at time.Time) (*models.Order, error) {
	filter := byOrgAndID(orgID, id)
	filter["status"] = bson.M{"$ne": models.OrderStatusCancelled}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(withoutObjectID)

	var order models.Order
	err := r.coll.FindOneAndUpdate(ctx, filter, PaymentUpdate(amount, at), opts).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.NotFound("order")
		}
		return nil, fmt.Errorf("failed to apply payment to order: %w", err)
	}
	return &order, nil
}

// RevertPayment takes back an amount applied by ApplyPayment
func (r *orderRepo) RevertPayment(ctx context.Context, orgID, id string, amount float64, at time.Time) error {
	return updateOne(ctx, r.coll, byOrgAndID(orgID, id), PaymentUpdate(-amount, at), "order")
}

// PaymentUpdate is the pipeline update shared by ApplyPayment and RevertPayment
func PaymentUpdate(amount float64, at time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"payment_received": bson.M{"$round": bson.A{
				bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$payment_received", 0}}, amount}},
				2,
			}},
		}}},
		{{Key: "$set", Value: bson.M{
			"balance_amount": bson.M{"$max": bson.A{
				bson.M{"$round": bson.A{bson.M{"$subtract": bson.A{"$total", "$payment_received"}}, 2}},
				0,
			}},
		}}},
		{{Key: "$set", Value: bson.M{
			"is_credit": bson.M{"$and": bson.A{
				bson.M{"$gt": bson.A{"$balance_amount", 0}},
				bson.M{"$gt": bson.A{"$payment_received", 0}},
			}},
			"status": bson.M{"$switch": bson.M{
				"branches": bson.A{
					bson.M{
						"case": bson.M{"$and": bson.A{
							bson.M{"$eq": bson.A{"$status", models.OrderStatusCompleted}},
							bson.M{"$gt": bson.A{"$payment_received", 0}},
							bson.M{"$lte": bson.A{"$balance_amount", 0}},
						}},
						"then": models.OrderStatusPaid,
					},
					bson.M{
						"case": bson.M{"$and": bson.A{
							bson.M{"$eq": bson.A{"$status", models.OrderStatusPaid}},
							bson.M{"$gt": bson.A{"$balance_amount", 0}},
						}},
						"then": models.OrderStatusCompleted,
					},
				},
				"default": "$status",
			}},
			"updated_at": at.UTC(),
		}}},
	}
}

func (r *orderRepo) Delete(ctx context.Context, orgID, id string) error {
	return deleteOne(ctx, r.coll, byOrgAndID(orgID, id), "order")
}

func (r *orderRepo) List(ctx context.Context, orgID string, filter models.OrderFilter) ([]*models.Order, error) {
	query := bson.M{"organization_id": orgID}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	opts := options.Find().SetSort(newestFirst).SetSkip(int64(filter.Skip))
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	return findAll[models.Order](ctx, r.coll, query, opts, "orders")
}

func (r *orderRepo) ListActive(ctx context.Context, orgID string, policy models.ActiveOrdersPolicy, todayStart time.Time) ([]*models.Order, error) {
	opts := options.Find().SetSort(newestFirst)
	return findAll[models.Order](ctx, r.coll, ActiveOrdersFilter(orgID, policy, todayStart), opts, "active orders")
}

func (r *orderRepo) ListTodayBills(ctx context.Context, orgID string, todayStart time.Time) ([]*models.Order, error) {
	opts := options.Find().SetSort(newestFirst)
	return findAll[models.Order](ctx, r.coll, TodayBillsFilter(orgID, todayStart), opts, "today's bills")
}

func (r *orderRepo) CountByOrganization(ctx context.Context, orgID string) (int64, error) {
	return countByOrganization(ctx, r.coll, orgID, "orders")
}

func (r *orderRepo) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": since.UTC()}})
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return n, nil
}

func (r *orderRepo) SumTodayRevenue(ctx context.Context, todayStart time.Time) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":     bson.M{"$in": models.BilledOrderStatuses},
			"created_at": bson.M{"$gte": todayStart.UTC()},
		}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "revenue": bson.M{"$sum": "$total"}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate revenue: %w", err)
	}
	defer cursor.Close(ctx)

	var result struct {
		Revenue float64 `bson:"revenue"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, fmt.Errorf("failed to decode revenue: %w", err)
		}
	}
	return result.Revenue, cursor.Err()
}

// ListStaleActive returns non-terminal orders of every organization created before the given instant
func (r *orderRepo) ListStaleActive(ctx context.Context, before time.Time) ([]*models.Order, error) {
	filter := bson.M{
		"status":     bson.M{"$nin": models.TerminalOrderStatuses},
		"created_at": bson.M{"$lt": before.UTC()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "organization_id", Value: 1}, {Key: "created_at", Value: 1}})
	return findAll[models.Order](ctx, r.coll, filter, opts, "stale orders")
}

func (r *orderRepo) DeleteByOrganization(ctx context.Context, orgID string) (int64, error) {
	return deleteByOrganization(ctx, r.coll, orgID, "orders")
}
