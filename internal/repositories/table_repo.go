package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"restobill/internal/models"
)

type TableRepository interface {
	Create(ctx context.Context, table *models.Table) error
	GetByID(ctx context.Context, orgID, id string) (*models.Table, error)
	List(ctx context.Context, orgID string) ([]*models.Table, error)
	Update(ctx context.Context, table *models.Table) error
	Delete(ctx context.Context, orgID, id string) error
	Occupy(ctx context.Context, orgID, id, orderID string) error
	Release(ctx context.Context, orgID, id, orderID string) (bool, error)
	CountByOrganization(ctx context.Context, orgID string) (int64, error)
	DeleteByOrganization(ctx context.Context, orgID string) (int64, error)
}

type tableRepo struct {
	coll *mongo.Collection
}

func NewTableRepo(db *mongo.Database) TableRepository {
	return &tableRepo{coll: db.Collection(TablesCollection)}
}

func (r *tableRepo) Create(ctx context.Context, table *models.Table) error {
	return insertOne(ctx, r.coll, table, "table number")
}

func (r *tableRepo) GetByID(ctx context.Context, orgID, id string) (*models.Table, error) {
	return findOne[models.Table](ctx, r.coll, byOrgAndID(orgID, id), "table")
}

func (r *tableRepo) List(ctx context.Context, orgID string) ([]*models.Table, error) {
	opts := options.Find().SetSort(bson.D{{Key: "table_number", Value: 1}})
	return findAll[models.Table](ctx, r.coll, bson.M{"organization_id": orgID}, opts, "tables")
}

func (r *tableRepo) Update(ctx context.Context, table *models.Table) error {
	update := bson.M{"$set": bson.M{
		"table_number":     table.TableNumber,
		"capacity":         table.Capacity,
		"status":           table.Status,
		"current_order_id": table.CurrentOrderID,
		"updated_at":       table.UpdatedAt,
	}}
	return updateOne(ctx, r.coll, byOrgAndID(table.OrganizationID, table.ID), update, "table")
}

func (r *tableRepo) Delete(ctx context.Context, orgID, id string) error {
	return deleteOne(ctx, r.coll, byOrgAndID(orgID, id), "table")
}

func (r *tableRepo) Occupy(ctx context.Context, orgID, id, orderID string) error {
	update := bson.M{"$set": bson.M{
		"status":           models.TableStatusOccupied,
		"current_order_id": orderID,
		"updated_at":       time.Now().UTC(),
	}}
	return updateOne(ctx, r.coll, byOrgAndID(orgID, id), update, "table")
}

// Release frees the table only while it still points at orderID
func (r *tableRepo) Release(ctx context.Context, orgID, id, orderID string) (bool, error) {
	filter := byOrgAndID(orgID, id)
	filter["current_order_id"] = orderID
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"status":           models.TableStatusAvailable,
		"current_order_id": nil,
		"updated_at":       time.Now().UTC(),
	}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *tableRepo) CountByOrganization(ctx context.Context, orgID string) (int64, error) {
	return countByOrganization(ctx, r.coll, orgID, "tables")
}

func (r *tableRepo) DeleteByOrganization(ctx context.Context, orgID string) (int64, error) {
	return deleteByOrganization(ctx, r.coll, orgID, "tables")
}
