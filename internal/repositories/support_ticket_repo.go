package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"restobill/internal/models"
)

type SupportTicketRepository interface {
	Create(ctx context.Context, ticket *models.SupportTicket) error
	GetByID(ctx context.Context, id string) (*models.SupportTicket, error)
	ListByOrganization(ctx context.Context, orgID string) ([]*models.SupportTicket, error)
	List(ctx context.Context, status string, skip, limit int) ([]*models.SupportTicket, int64, error)
	UpdateStatus(ctx context.Context, id, status string, response *string) error
	DeleteByOrganization(ctx context.Context, orgID string) (int64, error)
}

type supportTicketRepo struct {
	coll *mongo.Collection
}

func NewSupportTicketRepo(db *mongo.Database) SupportTicketRepository {
	return &supportTicketRepo{coll: db.Collection(SupportTicketsCollection)}
}

func (r *supportTicketRepo) Create(ctx context.Context, ticket *models.SupportTicket) error {
	return insertOne(ctx, r.coll, ticket, "support ticket")
}

func (r *supportTicketRepo) GetByID(ctx context.Context, id string) (*models.SupportTicket, error) {
	return findOne[models.SupportTicket](ctx, r.coll, bson.M{"id": id}, "support ticket")
}

func (r *supportTicketRepo) ListByOrganization(ctx context.Context, orgID string) ([]*models.SupportTicket, error) {
	opts := options.Find().SetSort(newestFirst)
	return findAll[models.SupportTicket](ctx, r.coll, bson.M{"organization_id": orgID}, opts, "support tickets")
}

func (r *supportTicketRepo) List(ctx context.Context, status string, skip, limit int) ([]*models.SupportTicket, int64, error) {
	query := bson.M{}
	if status != "" {
		query["status"] = status
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count support tickets: %w", err)
	}

	opts := options.Find().SetSort(newestFirst).SetSkip(int64(skip))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	tickets, err := findAll[models.SupportTicket](ctx, r.coll, query, opts, "support tickets")
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

func (r *supportTicketRepo) UpdateStatus(ctx context.Context, id, status string, response *string) error {
	set := bson.M{"status": status, "updated_at": time.Now().UTC()}
	if response != nil {
		set["admin_response"] = *response
	}
	return updateOne(ctx, r.coll, bson.M{"id": id}, bson.M{"$set": set}, "support ticket")
}

func (r *supportTicketRepo) DeleteByOrganization(ctx context.Context, orgID string) (int64, error) {
	return deleteByOrganization(ctx, r.coll, orgID, "support tickets")
}
