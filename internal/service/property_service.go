package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"nestaway/internal/cache"
	"nestaway/internal/middleware"
	"nestaway/internal/models"
	"nestaway/internal/notifications"
	"nestaway/internal/observability"
	"nestaway/internal/repository"
	"nestaway/internal/storage"
	"nestaway/internal/validation"
)

const MsgPropertyCreated = "Property created successfully"

// CreatePropertyInput is a coerced listing submission.
type CreatePropertyInput struct {
	HostID string
	Fields validation.ListingFields
	Images []ImageUpload
}

// PropertyPage is one page of a listing search.
type PropertyPage struct {
	Properties  []models.Property `json:"properties"`
	Total       int64             `json:"total"`
	TotalPages  int               `json:"totalPages"`
	CurrentPage int               `json:"currentPage"`
}

// PropertyService creates and searches listings.
type PropertyService struct {
	properties repository.PropertyRepository
	users      repository.UserRepository
	store      storage.ObjectStorage
	images     *ImageService
	pages      *cache.ListingCache
	events     notifications.Publisher
	prefix     string
	now        func() time.Time
}

// PropertyServiceDeps groups the collaborators of PropertyService. Pages and
// Events are optional.
type PropertyServiceDeps struct {
	Properties repository.PropertyRepository
	Users      repository.UserRepository
	Storage    storage.ObjectStorage
	Images     *ImageService
	Pages      *cache.ListingCache
	Events     notifications.Publisher
	KeyPrefix  string
}

func NewPropertyService(d PropertyServiceDeps) *PropertyService {
	images := d.Images
	if images == nil {
		images = NewImageService(nil)
	}
	return &PropertyService{
		properties: d.Properties,
		users:      d.Users,
		store:      d.Storage,
		images:     images,
		pages:      d.Pages,
		events:     d.Events,
		prefix:     d.KeyPrefix,
		now:        time.Now,
	}
}

// Create validates the whole submission and the host before anything is
// uploaded, then stores the images and persists the listing.
func (s *PropertyService) Create(ctx context.Context, in CreatePropertyInput) (property *models.Property, err error) {
	span, ctx := observability.NewSpan(ctx, "properties.create")
	defer func() {
		span.SetError(err)
		span.End()
	}()

	if in.HostID == "" {
		return nil, models.NewUnauthorizedError("Not authenticated")
	}
	if missing := validation.ValidateListing(in.Fields); missing != nil {
		return nil, models.NewMissingFieldsError(missing)
	}
	switch {
	case len(in.Images) == 0:
		return nil, &models.AppError{
			Code:    models.CodeValidation,
			Message: "At least one image is required",
			Fields:  map[string]string{"images": "required"},
		}
	case len(in.Images) > models.MaxListingImages:
		return nil, models.NewValidationError(fmt.Sprintf("Too many files. Maximum is %d images", models.MaxListingImages))
	}
	for _, img := range in.Images {
		if err := s.images.Check(img); err != nil {
			return nil, err
		}
	}

	host, err := s.users.GetByID(ctx, in.HostID)
	if err != nil {
		return nil, err
	}
	if !host.Verified {
		return nil, models.NewUnverifiedError("Please verify your email to list a property")
	}

	processed := make([]ProcessedImage, 0, len(in.Images))
	for _, img := range in.Images {
		out, err := s.images.Normalize(img)
		if err != nil {
			return nil, err
		}
		processed = append(processed, out)
	}

	stored := make([]models.PropertyImage, 0, len(processed))
	for _, img := range processed {
		obj, err := s.store.Put(ctx, storage.NewObjectKey(s.prefix, s.now()), img.ContentType, img.Data)
		if err != nil {
			// Objects stored so far are left in place.
			middleware.Logger.ErrorContext(ctx, "listing image upload failed",
				slog.Int("uploaded", len(stored)),
				slog.Int("total", len(processed)),
				slog.String("error", err.Error()),
			)
			return nil, models.NewUpstreamError("Failed to upload images", err)
		}
		stored = append(stored, models.PropertyImage{URL: obj.URL, StorageID: obj.ID})
	}

	f := in.Fields
	property = &models.Property{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Price:       f.Price,
		Location:    strings.TrimSpace(f.Location),
		Address:     f.Address,
		Category:    f.Category,
		RoomType:    f.RoomType,
		Beds:        f.Beds,
		Bedrooms:    f.Bedrooms,
		Bathrooms:   f.Bathrooms,
		MaxGuests:   f.MaxGuests,
		Amenities:   validation.NormalizeAmenities(f.Amenities),
		Images:      stored,
		HostID:      host.ID,
		IsAvailable: true,
	}
	if err := s.properties.Create(ctx, property); err != nil {
		return nil, err
	}
	property.HostInfo = host.Summary()

	observability.ListingsCreated.Inc()
	if s.pages != nil {
		s.pages.Invalidate(ctx)
	}
	if s.events != nil {
		if err := s.events.PublishListingCreated(ctx, property); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish listing event",
				slog.String("property_id", property.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return property, nil
}

// List returns one page of available listings matching f.
func (s *PropertyService) List(ctx context.Context, f repository.PropertyFilter) (*PropertyPage, error) {
	f = normalizeFilter(f)

	var cacheKey string
	if s.pages != nil {
		raw, err := json.Marshal(f)
		if err == nil {
			cacheKey = string(raw)
			var page PropertyPage
			if s.pages.Get(ctx, cacheKey, &page) {
				return &page, nil
			}
		}
	}

	items, total, err := s.properties.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Property{}
	}

	page := &PropertyPage{
		Properties:  items,
		Total:       total,
		TotalPages:  int((total + int64(f.Limit) - 1) / int64(f.Limit)),
		CurrentPage: f.Page,
	}
	if cacheKey != "" {
		s.pages.Set(ctx, cacheKey, page)
	}
	return page, nil
}

func normalizeFilter(f repository.PropertyFilter) repository.PropertyFilter {
	f.Search = strings.TrimSpace(f.Search)
	if f.Page < 1 {
		f.Page = 1
	}
	switch {
	case f.Limit < 1:
		f.Limit = repository.DefaultPageSize
	case f.Limit > repository.MaxPageSize:
		f.Limit = repository.MaxPageSize
	}
	if !repository.IsValidSort(f.Sort) {
		f.Sort = repository.SortNewest
	}
	return f
}

func (s *PropertyService) GetByID(ctx context.Context, id string) (*models.Property, error) {
	if strings.TrimSpace(id) == "" {
		return nil, models.NewNotFoundMessage("Property not found")
	}
	return s.properties.GetByID(ctx, id)
}

// ListByHost returns every listing owned by hostID, newest first.
func (s *PropertyService) ListByHost(ctx context.Context, hostID string) ([]models.Property, error) {
	if hostID == "" {
		return nil, models.NewUnauthorizedError("Not authenticated")
	}
	return s.properties.ListByHost(ctx, hostID)
}
