package services

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"restobill/internal/caching"
	"restobill/internal/common"
	"restobill/internal/models"
	"restobill/internal/repositories"
)

type MenuService interface {
	CreateMenuItem(ctx context.Context, orgID string, req *CreateMenuItemRequest) (*models.MenuItem, error)
	GetMenuItem(ctx context.Context, orgID, id string) (*models.MenuItem, error)
	ListMenu(ctx context.Context, orgID string, filter models.MenuFilter) ([]*models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, orgID, id string, req *UpdateMenuItemRequest) (*models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, orgID, id string) error
	UploadImage(ctx context.Context, orgID, id string, reader io.Reader, size int64, contentType string) (*models.MenuItem, error)
}

type CreateMenuItemRequest struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Description *string `json:"description"`
	IsAvailable *bool   `json:"is_available"`
}

type UpdateMenuItemRequest struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
	IsAvailable *bool    `json:"is_available"`
}

const maxMenuImageBytes = 5 << 20

type menuService struct {
	menuRepo repositories.MenuRepository
	cache    *caching.Aside
	ttl      time.Duration
	images   MenuImageStore
	logger   *logrus.Entry
}

// NewMenuService builds the menu service. images may be nil when object storage is not configured.
func NewMenuService(menuRepo repositories.MenuRepository, cache *caching.Aside, ttl time.Duration, images MenuImageStore, logger *logrus.Logger) MenuService {
	return &menuService{
		menuRepo: menuRepo,
		cache:    cache,
		ttl:      ttl,
		images:   images,
		logger:   logger.WithField("component", "menu_service"),
	}
}

func (s *menuService) CreateMenuItem(ctx context.Context, orgID string, req *CreateMenuItemRequest) (*models.MenuItem, error) {
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(req.Category, "category"); err != nil {
		return nil, err
	}
	if req.Price < 0 {
		return nil, common.NewValidationError("price", "price cannot be negative")
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	now := time.Now().UTC()
	item := &models.MenuItem{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		Name:           strings.TrimSpace(req.Name),
		Category:       strings.TrimSpace(req.Category),
		Price:          common.RoundMoney(req.Price),
		Description:    req.Description,
		IsAvailable:    available,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.menuRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	s.cache.InvalidatePrefix(ctx, caching.OrgMenuPrefix(orgID))
	return item, nil
}

func (s *menuService) GetMenuItem(ctx context.Context, orgID, id string) (*models.MenuItem, error) {
	return s.menuRepo.GetByID(ctx, orgID, id)
}

// ListMenu caches the whole category and narrows to available items in memory
func (s *menuService) ListMenu(ctx context.Context, orgID string, filter models.MenuFilter) ([]*models.MenuItem, error) {
	var items []*models.MenuItem
	_, err := s.cache.Load(ctx, caching.MenuKey(orgID, filter.Category), s.ttl, &items, func(ctx context.Context) (interface{}, error) {
		return s.menuRepo.List(ctx, orgID, models.MenuFilter{Category: filter.Category})
	})
	if err != nil {
		return nil, err
	}
	if !filter.AvailableOnly {
		return items, nil
	}
	available := make([]*models.MenuItem, 0, len(items))
	for _, item := range items {
		if item.IsAvailable {
			available = append(available, item)
		}
	}
	return available, nil
}

func (s *menuService) UpdateMenuItem(ctx context.Context, orgID, id string, req *UpdateMenuItemRequest) (*models.MenuItem, error) {
	item, err := s.menuRepo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := common.ValidateRequiredString(*req.Name, "name"); err != nil {
			return nil, err
		}
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		if err := common.ValidateRequiredString(*req.Category, "category"); err != nil {
			return nil, err
		}
		item.Category = strings.TrimSpace(*req.Category)
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, common.NewValidationError("price", "price cannot be negative")
		}
		item.Price = common.RoundMoney(*req.Price)
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.menuRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	s.cache.InvalidatePrefix(ctx, caching.OrgMenuPrefix(orgID))
	return item, nil
}

func (s *menuService) DeleteMenuItem(ctx context.Context, orgID, id string) error {
	item, err := s.menuRepo.GetByID(ctx, orgID, id)
	if err != nil {
		return err
	}
	if err := s.menuRepo.Delete(ctx, orgID, id); err != nil {
		return err
	}
	if item.ImageKey != nil && s.images != nil {
		if err := s.images.Remove(ctx, *item.ImageKey); err != nil {
			s.logger.WithError(err).WithField("object", *item.ImageKey).Warn("failed to delete menu image")
		}
	}
	s.cache.InvalidatePrefix(ctx, caching.OrgMenuPrefix(orgID))
	return nil
}

func (s *menuService) UploadImage(ctx context.Context, orgID, id string, reader io.Reader, size int64, contentType string) (*models.MenuItem, error) {
	if s.images == nil {
		return nil, common.NewValidationError("image", "image storage is not configured")
	}
	if _, ok := MenuImageExtension(contentType); !ok {
		return nil, common.NewValidationError("image", "image must be jpeg, png or webp")
	}
	if size <= 0 || size > maxMenuImageBytes {
		return nil, common.NewValidationError("image", "image must be between 1 byte and 5 MB")
	}

	item, err := s.menuRepo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	key, err := s.images.Put(ctx, orgID, id, reader, size, contentType)
	if err != nil {
		return nil, err
	}
	url, err := s.images.SignedURL(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.menuRepo.SetImage(ctx, orgID, id, key, url); err != nil {
		return nil, err
	}

	item.ImageKey = &key
	item.ImageURL = &url
	s.cache.InvalidatePrefix(ctx, caching.OrgMenuPrefix(orgID))
	return item, nil
}
