package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"restobill/internal/common"
)

// Collection names
const (
	UsersCollection          = "users"
	OrdersCollection         = "orders"
	TablesCollection         = "tables"
	MenuItemsCollection      = "menu_items"
	PaymentsCollection       = "payments"
	SupportTicketsCollection = "support_tickets"
)

// projection that keeps Mongo's internal _id out of decoded documents
var withoutObjectID = bson.M{"_id": 0}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, resource string) (*T, error) {
	var doc T
	err := coll.FindOne(ctx, filter, options.FindOne().SetProjection(withoutObjectID)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.NotFound(resource)
		}
		return nil, fmt.Errorf("failed to get %s: %w", resource, err)
	}
	return &doc, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts *options.FindOptions, resource string) ([]*T, error) {
	if opts == nil {
		opts = options.Find()
	}
	opts.SetProjection(withoutObjectID)

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", resource, err)
	}
	defer cursor.Close(ctx)

	out := make([]*T, 0)
	for cursor.Next(ctx) {
		var doc T
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", resource, err)
		}
		out = append(out, &doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", resource, err)
	}
	return out, nil
}

func insertOne(ctx context.Context, coll *mongo.Collection, doc interface{}, resource string) error {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return common.Conflict("%s already exists", resource)
		}
		return fmt.Errorf("failed to create %s: %w", resource, err)
	}
	return nil
}

// updateOne applies update and reports a not-found error when nothing matched
func updateOne(ctx context.Context, coll *mongo.Collection, filter, update interface{}, resource string) error {
	res, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return common.Conflict("%s already exists", resource)
		}
		return fmt.Errorf("failed to update %s: %w", resource, err)
	}
	if res.MatchedCount == 0 {
		return common.NotFound(resource)
	}
	return nil
}

func deleteOne(ctx context.Context, coll *mongo.Collection, filter interface{}, resource string) error {
	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", resource, err)
	}
	if res.DeletedCount == 0 {
		return common.NotFound(resource)
	}
	return nil
}

func deleteByOrganization(ctx context.Context, coll *mongo.Collection, orgID, resource string) (int64, error) {
	res, err := coll.DeleteMany(ctx, bson.M{"organization_id": orgID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s for organization: %w", resource, err)
	}
	return res.DeletedCount, nil
}

func countByOrganization(ctx context.Context, coll *mongo.Collection, orgID, resource string) (int64, error) {
	n, err := coll.CountDocuments(ctx, bson.M{"organization_id": orgID})
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", resource, err)
	}
	return n, nil
}

func byOrgAndID(orgID, id string) bson.M {
	return bson.M{"organization_id": orgID, "id": id}
}
