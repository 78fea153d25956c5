package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"restobill/internal/caching"
	"restobill/internal/common"
	"restobill/internal/models"
	"restobill/internal/repositories"
)

// SuperAdminService backs the platform operator panel
type SuperAdminService interface {
	Login(ctx context.Context, username, password string) (*TokenResponse, error)
	Dashboard(ctx context.Context) (*models.Dashboard, error)
	ListUsers(ctx context.Context, filter models.UserFilter) (*models.UserList, error)
	GetUser(ctx context.Context, id string) (*models.UserDetail, error)
	UpdateSubscription(ctx context.Context, id string, req *UpdateSubscriptionRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id string) (*models.OrganizationDeletion, error)
	OrganizationActiveOrders(ctx context.Context, orgID string, policy models.ActiveOrdersPolicy) (*models.OrderDiagnostics, error)
	OrganizationTodayBills(ctx context.Context, orgID string) (*models.OrderDiagnostics, error)
	ExpireSubscriptions(ctx context.Context) (int64, error)
}

type UpdateSubscriptionRequest struct {
	Active    bool       `json:"subscription_active"`
	ExpiresAt *time.Time `json:"subscription_expires_at"`
	// ExtendDays moves the expiry forward from now when ExpiresAt is not given
	ExtendDays int `json:"extend_days"`
}

// SuperAdminCredentials are the operator login configured for the deployment
type SuperAdminCredentials struct {
	Username string
	Password string
}

// SuperAdminRepos groups the stores the panel reads and cascades over
type SuperAdminRepos struct {
	Users    repositories.UserRepository
	Orders   repositories.OrderRepository
	Tables   repositories.TableRepository
	Menu     repositories.MenuRepository
	Payments repositories.PaymentRepository
	Tickets  repositories.SupportTicketRepository
}

const superAdminSubject = "super_admin"

type superAdminService struct {
	repos  SuperAdminRepos
	orders OrderService
	auth   AuthService
	audit  AuditLogsService
	cache  *caching.Aside
	ttl    time.Duration
	creds  SuperAdminCredentials
	logger *logrus.Entry
	now    func() time.Time
}

func NewSuperAdminService(
	repos SuperAdminRepos,
	orders OrderService,
	auth AuthService,
	audit AuditLogsService,
	cache *caching.Aside,
	ttl time.Duration,
	creds SuperAdminCredentials,
	logger *logrus.Logger,
) SuperAdminService {
	return &superAdminService{
		repos:  repos,
		orders: orders,
		auth:   auth,
		audit:  audit,
		cache:  cache,
		ttl:    ttl,
		creds:  creds,
		logger: logger.WithField("component", "super_admin_service"),
		now:    time.Now,
	}
}

func (s *superAdminService) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	if s.creds.Username == "" || s.creds.Password == "" {
		return nil, common.Forbidden("super admin login is not configured")
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.creds.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.creds.Password)) == 1
	if !userOK || !passOK {
		return nil, fmt.Errorf("invalid credentials: %w", common.ErrUnauthorized)
	}
	return s.auth.IssueToken(superAdminSubject, "", common.RoleSuperAdmin)
}

func (s *superAdminService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	now := s.now()
	date := common.BusinessDate(now)

	var dashboard models.Dashboard
	_, err := s.cache.Load(ctx, caching.SuperAdminDashboardKey(date), s.ttl, &dashboard, func(ctx context.Context) (interface{}, error) {
		return s.buildDashboard(ctx, now)
	})
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (s *superAdminService) buildDashboard(ctx context.Context, now time.Time) (*models.Dashboard, error) {
	todayStart := common.TodayStartUTC(now)

	totalUsers, err := s.repos.Users.Count(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	organizations, err := s.repos.Users.Count(ctx, bson.M{"role": common.RoleAdmin})
	if err != nil {
		return nil, err
	}
	activeFilter := repositories.ActiveSubscriptionFilter(now)
	activeFilter["role"] = common.RoleAdmin
	activeSubs, err := s.repos.Users.Count(ctx, activeFilter)
	if err != nil {
		return nil, err
	}
	ordersToday, err := s.repos.Orders.CountCreatedSince(ctx, todayStart)
	if err != nil {
		return nil, err
	}
	revenue, err := s.repos.Orders.SumTodayRevenue(ctx, todayStart)
	if err != nil {
		return nil, err
	}

	return &models.Dashboard{
		BusinessDate:        common.BusinessDate(now),
		TotalUsers:          totalUsers,
		TotalOrganizations:  organizations,
		ActiveSubscriptions: activeSubs,
		OrdersToday:         ordersToday,
		RevenueToday:        common.RoundMoney(revenue),
		GeneratedAt:         now.UTC(),
	}, nil
}

func (s *superAdminService) ListUsers(ctx context.Context, filter models.UserFilter) (*models.UserList, error) {
	switch filter.Status {
	case "":
		filter.Status = models.SubscriptionFilterAll
	case models.SubscriptionFilterAll, models.SubscriptionFilterActive, models.SubscriptionFilterInactive, models.SubscriptionFilterExpired:
	default:
		return nil, common.NewValidationError("status", "status must be one of: active, inactive, expired, all")
	}
	skip, limit, err := common.ValidatePaginationParams(filter.Skip, filter.Limit)
	if err != nil {
		return nil, err
	}
	filter.Skip, filter.Limit = skip, limit

	var list models.UserList
	key := caching.SuperAdminUsersKey(skip, limit, filter.Search, filter.Status)
	_, err = s.cache.Load(ctx, key, s.ttl, &list, func(ctx context.Context) (interface{}, error) {
		users, total, err := s.repos.Users.List(ctx, filter, s.now())
		if err != nil {
			return nil, err
		}
		return &models.UserList{Users: users, Total: total, Skip: skip, Limit: limit}, nil
	})
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *superAdminService) GetUser(ctx context.Context, id string) (*models.UserDetail, error) {
	user, err := s.repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stats, err := s.organizationStats(ctx, user.OrganizationID)
	if err != nil {
		return nil, err
	}
	return &models.UserDetail{User: user, Stats: stats}, nil
}

func (s *superAdminService) organizationStats(ctx context.Context, orgID string) (*models.OrganizationStats, error) {
	stats := &models.OrganizationStats{OrganizationID: orgID}
	var err error
	if stats.Orders, err = s.repos.Orders.CountByOrganization(ctx, orgID); err != nil {
		return nil, err
	}
	if stats.Tables, err = s.repos.Tables.CountByOrganization(ctx, orgID); err != nil {
		return nil, err
	}
	if stats.MenuItems, err = s.repos.Menu.CountByOrganization(ctx, orgID); err != nil {
		return nil, err
	}
	users, err := s.repos.Users.CountByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	// the admin is counted among the organization's users
	if users > 0 {
		stats.Staff = users - 1
	}
	return stats, nil
}

func (s *superAdminService) UpdateSubscription(ctx context.Context, id string, req *UpdateSubscriptionRequest) (*models.User, error) {
	if req.ExtendDays < 0 {
		return nil, common.NewValidationError("extend_days", "extend_days cannot be negative")
	}
	expiresAt := req.ExpiresAt
	if expiresAt == nil && req.ExtendDays > 0 {
		t := s.now().UTC().AddDate(0, 0, req.ExtendDays)
		expiresAt = &t
	}

	if err := s.repos.Users.UpdateSubscription(ctx, id, req.Active, expiresAt); err != nil {
		return nil, err
	}
	s.cache.InvalidatePrefix(ctx, caching.SuperAdminPrefix)
	return s.repos.Users.GetByID(ctx, id)
}

// DeleteUser removes a staff account, or an admin together with everything
// their organization owns.
func (s *superAdminService) DeleteUser(ctx context.Context, id string) (*models.OrganizationDeletion, error) {
	user, err := s.repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := &models.OrganizationDeletion{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Deleted:        map[string]int64{},
	}

	if user.Role != common.RoleAdmin {
		if err := s.repos.Users.Delete(ctx, id); err != nil {
			return nil, err
		}
		result.Deleted["users"] = 1
		s.cache.InvalidatePrefix(ctx, caching.SuperAdminPrefix)
		return result, nil
	}

	orgID := user.OrganizationID
	steps := []struct {
		name string
		fn   func(context.Context, string) (int64, error)
	}{
		{"orders", s.repos.Orders.DeleteByOrganization},
		{"tables", s.repos.Tables.DeleteByOrganization},
		{"menu_items", s.repos.Menu.DeleteByOrganization},
		{"payments", s.repos.Payments.DeleteByOrganization},
		{"support_tickets", s.repos.Tickets.DeleteByOrganization},
		{"users", s.repos.Users.DeleteByOrganization},
	}
	for _, step := range steps {
		n, err := step.fn(ctx, orgID)
		if err != nil {
			return nil, fmt.Errorf("failed to delete %s of organization %s: %w", step.name, orgID, err)
		}
		result.Deleted[step.name] = n
	}

	if err := s.audit.PurgeOrganization(ctx, orgID); err != nil {
		s.logger.WithError(err).WithField("organization_id", orgID).Warn("failed to purge audit trail")
	}
	s.cache.InvalidatePrefix(ctx, caching.OrgPrefix(orgID), caching.SuperAdminPrefix)
	s.logger.WithFields(logrus.Fields{"organization_id": orgID, "deleted": result.Deleted}).Info("organization deleted")
	return result, nil
}

func (s *superAdminService) diagnostics(orgID string) *models.OrderDiagnostics {
	now := s.now()
	return &models.OrderDiagnostics{
		OrganizationID:    orgID,
		Now:               now.UTC(),
		TodayStartUTC:     common.TodayStartUTC(now),
		YesterdayStartUTC: common.YesterdayStartUTC(now),
	}
}

func (s *superAdminService) OrganizationActiveOrders(ctx context.Context, orgID string, policy models.ActiveOrdersPolicy) (*models.OrderDiagnostics, error) {
	active, err := s.orders.ListActiveOrders(ctx, orgID, policy)
	if err != nil {
		return nil, err
	}
	diag := s.diagnostics(orgID)
	diag.ActiveOrders = active
	return diag, nil
}

func (s *superAdminService) OrganizationTodayBills(ctx context.Context, orgID string) (*models.OrderDiagnostics, error) {
	bills, err := s.orders.ListTodayBills(ctx, orgID)
	if err != nil {
		return nil, err
	}
	diag := s.diagnostics(orgID)
	diag.TodayBills = bills
	return diag, nil
}

func (s *superAdminService) ExpireSubscriptions(ctx context.Context) (int64, error) {
	n, err := s.repos.Users.ExpireSubscriptions(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.cache.InvalidatePrefix(ctx, caching.SuperAdminPrefix)
	}
	return n, nil
}
