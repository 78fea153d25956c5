package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"restobill/internal/caching"
	"restobill/internal/common"
	"restobill/internal/models"
	"restobill/internal/repositories"
)

type UserService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResult, error)
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	CreateStaff(ctx context.Context, adminID string, req *CreateStaffRequest) (*models.User, error)
	ListStaff(ctx context.Context, orgID string) ([]*models.User, error)
	DeleteStaff(ctx context.Context, orgID, staffID string) error
}

type RegisterRequest struct {
	Username         string  `json:"username"`
	Email            string  `json:"email"`
	Password         string  `json:"password"`
	OrganizationName string  `json:"organization_name"`
	Phone            *string `json:"phone"`
}

type LoginRequest struct {
	// Identifier is a username or an email address
	Identifier string `json:"username"`
	Password   string `json:"password"`
}

type CreateStaffRequest struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone"`
}

type AuthResult struct {
	User  *models.User   `json:"user"`
	Token *TokenResponse `json:"token"`
}

const (
	minPasswordLength    = 6
	referralCodeLength   = 8
	referralCodeAttempts = 5
)

type userService struct {
	userRepo  repositories.UserRepository
	auth      AuthService
	cache     *caching.Aside
	trialDays int
	logger    *logrus.Entry
	now       func() time.Time
}

func NewUserService(userRepo repositories.UserRepository, auth AuthService, cache *caching.Aside, trialDays int, logger *logrus.Logger) UserService {
	return &userService{
		userRepo:  userRepo,
		auth:      auth,
		cache:     cache,
		trialDays: trialDays,
		logger:    logger.WithField("component", "user_service"),
		now:       time.Now,
	}
}

func validateCredentials(username, email, password string) error {
	if err := common.ValidateRequiredString(username, "username"); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		return common.NewValidationError("email", "email is not valid")
	}
	if len(password) < minPasswordLength {
		return common.NewValidationError("password", "password must be at least %d characters", minPasswordLength)
	}
	return nil
}

func (s *userService) ensureUnique(ctx context.Context, usernameLower, emailLower string) error {
	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, usernameLower, emailLower)
	if err != nil {
		return fmt.Errorf("failed to check user uniqueness: %w", err)
	}
	if exists {
		return common.Conflict("username or email already registered")
	}
	return nil
}

func (s *userService) newReferralCode(ctx context.Context) (*string, error) {
	for i := 0; i < referralCodeAttempts; i++ {
		code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:referralCodeLength])
		exists, err := s.userRepo.ExistsByReferralCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to check referral code: %w", err)
		}
		if !exists {
			return &code, nil
		}
	}
	return nil, fmt.Errorf("failed to generate a unique referral code")
}

func (s *userService) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	if err := validateCredentials(req.Username, req.Email, req.Password); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(req.OrganizationName, "organization_name"); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if err := s.ensureUnique(ctx, strings.ToLower(username), strings.ToLower(email)); err != nil {
		return nil, err
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	referral, err := s.newReferralCode(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	expires := now.AddDate(0, 0, s.trialDays)
	id := uuid.NewString()
	user := &models.User{
		ID:                    id,
		Username:              username,
		UsernameLower:         strings.ToLower(username),
		Email:                 email,
		EmailLower:            strings.ToLower(email),
		PasswordHash:          hash,
		Role:                  common.RoleAdmin,
		OrganizationID:        id,
		OrganizationName:      strings.TrimSpace(req.OrganizationName),
		Phone:                 req.Phone,
		ReferralCode:          referral,
		SubscriptionActive:    true,
		SubscriptionExpiresAt: &expires,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.WithField("organization_id", id).Info("organization registered")
	s.cache.InvalidatePrefix(ctx, caching.SuperAdminPrefix)

	token, err := s.auth.IssueToken(user.ID, user.OrganizationID, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *userService) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	identifier := strings.ToLower(strings.TrimSpace(req.Identifier))
	if identifier == "" || req.Password == "" {
		return nil, common.NewValidationError("username", "username and password are required")
	}

	user, err := s.userRepo.GetByLogin(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", common.ErrUnauthorized)
		}
		return nil, err
	}
	if !s.auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, fmt.Errorf("invalid credentials: %w", common.ErrUnauthorized)
	}

	// Staff inherit the subscription of their organization's admin
	owner := user
	if user.Role != common.RoleAdmin {
		owner, err = s.userRepo.GetOrganizationAdmin(ctx, user.OrganizationID)
		if err != nil {
			return nil, err
		}
	}
	if !owner.SubscriptionValid(s.now()) {
		return nil, common.Forbidden("subscription is inactive or expired")
	}

	token, err := s.auth.IssueToken(user.ID, user.OrganizationID, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *userService) CreateStaff(ctx context.Context, adminID string, req *CreateStaffRequest) (*models.User, error) {
	admin, err := s.userRepo.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin.Role != common.RoleAdmin {
		return nil, common.Forbidden("only admins can create staff")
	}
	if err := validateCredentials(req.Username, req.Email, req.Password); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if err := s.ensureUnique(ctx, strings.ToLower(username), strings.ToLower(email)); err != nil {
		return nil, err
	}
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	staff := &models.User{
		ID:                 uuid.NewString(),
		Username:           username,
		UsernameLower:      strings.ToLower(username),
		Email:              email,
		EmailLower:         strings.ToLower(email),
		PasswordHash:       hash,
		Role:               common.RoleStaff,
		OrganizationID:     admin.OrganizationID,
		OrganizationName:   admin.OrganizationName,
		Phone:              req.Phone,
		SubscriptionActive: admin.SubscriptionActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.userRepo.Create(ctx, staff); err != nil {
		return nil, err
	}
	s.cache.InvalidatePrefix(ctx, caching.SuperAdminPrefix)
	return staff, nil
}

func (s *userService) ListStaff(ctx context.Context, orgID string) ([]*models.User, error) {
	users, err := s.userRepo.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	staff := make([]*models.User, 0, len(users))
	for _, u := range users {
		if u.Role == common.RoleStaff {
			staff = append(staff, u)
		}
	}
	return staff, nil
}

func (s *userService) DeleteStaff(ctx context.Context, orgID, staffID string) error {
	user, err := s.userRepo.GetByID(ctx, staffID)
	if err != nil {
		return err
	}
	if user.OrganizationID != orgID {
		return common.NotFound("user")
	}
	if user.Role != common.RoleStaff {
		return common.Forbidden("only staff accounts can be removed here")
	}
	if err := s.userRepo.Delete(ctx, staffID); err != nil {
		return err
	}
	// user listings and dashboard counts in the operator panel
	s.cache.InvalidatePrefix(ctx, caching.SuperAdminPrefix)
	return nil
}
