package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"restobill/internal/common"
	"restobill/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByLogin matches a lowercased username or email
	GetByLogin(ctx context.Context, identifierLower string) (*models.User, error)
	GetOrganizationAdmin(ctx context.Context, orgID string) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, usernameLower, emailLower string) (bool, error)
	ExistsByReferralCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, filter models.UserFilter, now time.Time) ([]*models.User, int64, error)
	ListByOrganization(ctx context.Context, orgID string) ([]*models.User, error)
	UpdateSubscription(ctx context.Context, id string, active bool, expiresAt *time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteByOrganization(ctx context.Context, orgID string) (int64, error)
	CountByOrganization(ctx context.Context, orgID string) (int64, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error)
}

type userRepo struct {
	coll *mongo.Collection
}

func NewUserRepo(db *mongo.Database) UserRepository {
	return &userRepo{coll: db.Collection(UsersCollection)}
}

// ActiveSubscriptionFilter matches users whose subscription is on and unexpired at now
func ActiveSubscriptionFilter(now time.Time) bson.M {
	return bson.M{
		"subscription_active": true,
		"$or": bson.A{
			bson.M{"subscription_expires_at": nil},
			bson.M{"subscription_expires_at": bson.M{"$gt": now.UTC()}},
		},
	}
}

// UserListFilter builds the super-admin user list query
func UserListFilter(filter models.UserFilter, now time.Time) bson.M {
	clauses := bson.A{}

	if filter.Search != "" {
		pattern := bson.M{"$regex": common.SearchPattern(filter.Search), "$options": "i"}
		clauses = append(clauses, bson.M{"$or": bson.A{
			bson.M{"username": pattern},
			bson.M{"email": pattern},
			bson.M{"organization_name": pattern},
		}})
	}

	switch filter.Status {
	case models.SubscriptionFilterActive:
		clauses = append(clauses, ActiveSubscriptionFilter(now))
	case models.SubscriptionFilterInactive:
		clauses = append(clauses, bson.M{"subscription_active": false})
	case models.SubscriptionFilterExpired:
		clauses = append(clauses, bson.M{"subscription_expires_at": bson.M{"$lte": now.UTC()}})
	}

	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0].(bson.M)
	default:
		return bson.M{"$and": clauses}
	}
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	return insertOne(ctx, r.coll, user, "user")
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return findOne[models.User](ctx, r.coll, bson.M{"id": id}, "user")
}

func (r *userRepo) GetByLogin(ctx context.Context, identifierLower string) (*models.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username_lower": identifierLower},
		bson.M{"email_lower": identifierLower},
	}}
	return findOne[models.User](ctx, r.coll, filter, "user")
}

func (r *userRepo) GetOrganizationAdmin(ctx context.Context, orgID string) (*models.User, error) {
	return findOne[models.User](ctx, r.coll, bson.M{"organization_id": orgID, "role": common.RoleAdmin}, "organization")
}

func (r *userRepo) ExistsByUsernameOrEmail(ctx context.Context, usernameLower, emailLower string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"username_lower": usernameLower},
		bson.M{"email_lower": emailLower},
	}}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check user uniqueness: %w", err)
	}
	return n > 0, nil
}

func (r *userRepo) ExistsByReferralCode(ctx context.Context, code string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"referral_code": code}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check referral code: %w", err)
	}
	return n > 0, nil
}

func (r *userRepo) List(ctx context.Context, filter models.UserFilter, now time.Time) ([]*models.User, int64, error) {
	query := UserListFilter(filter, now)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	opts := options.Find().SetSort(newestFirst).SetSkip(int64(filter.Skip))
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	users, err := findAll[models.User](ctx, r.coll, query, opts, "users")
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepo) ListByOrganization(ctx context.Context, orgID string) ([]*models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return findAll[models.User](ctx, r.coll, bson.M{"organization_id": orgID}, opts, "users")
}

func (r *userRepo) UpdateSubscription(ctx context.Context, id string, active bool, expiresAt *time.Time) error {
	set := bson.M{"subscription_active": active, "updated_at": time.Now().UTC()}
	if expiresAt != nil {
		set["subscription_expires_at"] = expiresAt.UTC()
	}
	return updateOne(ctx, r.coll, bson.M{"id": id}, bson.M{"$set": set}, "user")
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.coll, bson.M{"id": id}, "user")
}

func (r *userRepo) DeleteByOrganization(ctx context.Context, orgID string) (int64, error) {
	return deleteByOrganization(ctx, r.coll, orgID, "users")
}

func (r *userRepo) CountByOrganization(ctx context.Context, orgID string) (int64, error) {
	return countByOrganization(ctx, r.coll, orgID, "users")
}

func (r *userRepo) Count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// ExpireSubscriptions switches off subscriptions whose expiry has passed
func (r *userRepo) ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"subscription_active": true, "subscription_expires_at": bson.M{"$lt": now.UTC()}},
		bson.M{"$set": bson.M{"subscription_active": false, "updated_at": now.UTC()}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to expire subscriptions: %w", err)
	}
	return res.ModifiedCount, nil
}
