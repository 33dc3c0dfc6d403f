package repository

import (
	"context"
	"errors"

	"nestaway/internal/cache"
	"nestaway/internal/models"

	"gorm.io/gorm"
)

// PropertyRepository defines persistence operations for listings.
type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) error
	GetByID(ctx context.Context, id string) (*models.Property, error)
	List(ctx context.Context, filter PropertyFilter) ([]models.Property, int64, error)
	ListByHost(ctx context.Context, hostID string) ([]models.Property, error)
}

type propertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository returns a gorm backed PropertyRepository.
func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

func withListingJoins(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Host").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Reviews.User")
}

func (r *propertyRepository) Create(ctx context.Context, property *models.Property) error {
	if err := r.db.WithContext(ctx).Create(property).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *propertyRepository) GetByID(ctx context.Context, id string) (*models.Property, error) {
	var property models.Property
	err := cache.Aside(ctx, cache.PropertyKey(id), &property, cache.PropertyTTL, func() error {
		err := readDB(r.db).WithContext(ctx).
			Scopes(withListingJoins).
			Where("id = ?", id).
			First(&property).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundMessage("Property not found")
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func applyPropertyFilter(q *gorm.DB, f PropertyFilter) *gorm.DB {
	q = q.Where("is_available = ?", true)
	if f.Search != "" {
		p := containsPattern(f.Search)
		q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(location) LIKE ? ESCAPE '\')`, p, p, p)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.PriceMin != nil {
		q = q.Where("price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		q = q.Where("price <= ?", *f.PriceMax)
	}
	if f.MinBeds > 0 {
		q = q.Where("beds >= ?", f.MinBeds)
	}
	if f.RoomType != "" {
		q = q.Where("room_type = ?", f.RoomType)
	}
	if f.MinGuests > 0 {
		q = q.Where("max_guests >= ?", f.MinGuests)
	}
	return q
}

func propertyOrder(sort string) string {
	switch sort {
	case SortPriceAsc:
		return "price ASC, created_at DESC"
	case SortPriceDesc:
		return "price DESC, created_at DESC"
	case SortRating:
		return "rating DESC, created_at DESC"
	default:
		return "created_at DESC"
	}
}

func (r *propertyRepository) List(ctx context.Context, f PropertyFilter) ([]models.Property, int64, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	base := applyPropertyFilter(readDB(r.db).WithContext(ctx).Model(&models.Property{}), f)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	properties := []models.Property{}
	if total == 0 {
		return properties, 0, nil
	}
	err := base.Session(&gorm.Session{}).
		Scopes(withListingJoins).
		Order(propertyOrder(f.Sort)).
		Offset(f.Offset()).
		Limit(f.Limit).
		Find(&properties).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return properties, total, nil
}

func (r *propertyRepository) ListByHost(ctx context.Context, hostID string) ([]models.Property, error) {
	properties := []models.Property{}
	err := readDB(r.db).WithContext(ctx).
		Scopes(withListingJoins).
		Where("host_id = ?", hostID).
		Order("created_at DESC").
		Find(&properties).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return properties, nil
}
