package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"restobill/internal/models"
)

type MenuRepository interface {
	Create(ctx context.Context, item *models.MenuItem) error
	GetByID(ctx context.Context, orgID, id string) (*models.MenuItem, error)
	List(ctx context.Context, orgID string, filter models.MenuFilter) ([]*models.MenuItem, error)
	Update(ctx context.Context, item *models.MenuItem) error
	SetImage(ctx context.Context, orgID, id, key, url string) error
	Delete(ctx context.Context, orgID, id string) error
	CountByOrganization(ctx context.Context, orgID string) (int64, error)
	DeleteByOrganization(ctx context.Context, orgID string) (int64, error)
}

type menuRepo struct {
	coll *mongo.Collection
}

func NewMenuRepo(db *mongo.Database) MenuRepository {
	return &menuRepo{coll: db.Collection(MenuItemsCollection)}
}

func (r *menuRepo) Create(ctx context.Context, item *models.MenuItem) error {
	return insertOne(ctx, r.coll, item, "menu item")
}

func (r *menuRepo) GetByID(ctx context.Context, orgID, id string) (*models.MenuItem, error) {
	return findOne[models.MenuItem](ctx, r.coll, byOrgAndID(orgID, id), "menu item")
}

func (r *menuRepo) List(ctx context.Context, orgID string, filter models.MenuFilter) ([]*models.MenuItem, error) {
	query := bson.M{"organization_id": orgID}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.AvailableOnly {
		query["is_available"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	return findAll[models.MenuItem](ctx, r.coll, query, opts, "menu items")
}

func (r *menuRepo) Update(ctx context.Context, item *models.MenuItem) error {
	update := bson.M{"$set": bson.M{
		"name":         item.Name,
		"category":     item.Category,
		"price":        item.Price,
		"description":  item.Description,
		"is_available": item.IsAvailable,
		"updated_at":   item.UpdatedAt,
	}}
	return updateOne(ctx, r.coll, byOrgAndID(item.OrganizationID, item.ID), update, "menu item")
}

func (r *menuRepo) SetImage(ctx context.Context, orgID, id, key, url string) error {
	update := bson.M{"$set": bson.M{"image_key": key, "image_url": url, "updated_at": time.Now().UTC()}}
	return updateOne(ctx, r.coll, byOrgAndID(orgID, id), update, "menu item")
}

func (r *menuRepo) Delete(ctx context.Context, orgID, id string) error {
	return deleteOne(ctx, r.coll, byOrgAndID(orgID, id), "menu item")
}

func (r *menuRepo) CountByOrganization(ctx context.Context, orgID string) (int64, error) {
	return countByOrganization(ctx, r.coll, orgID, "menu items")
}

func (r *menuRepo) DeleteByOrganization(ctx context.Context, orgID string) (int64, error) {
	return deleteByOrganization(ctx, r.coll, orgID, "menu items")
}
