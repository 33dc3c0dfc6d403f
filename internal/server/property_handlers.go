package server

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"nestaway/internal/middleware"
	"nestaway/internal/models"
	"nestaway/internal/repository"
	"nestaway/internal/service"
	"nestaway/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ListProperties handles GET /api/properties
// @Summary Search available listings
// @Tags properties
// @Produce json
// @Param search query string false "Case-insensitive match on title, description or location"
// @Param category query string false "Category"
// @Param priceMin query number false "Minimum nightly price"
// @Param priceMax query number false "Maximum nightly price"
// @Param beds query int false "Minimum beds"
// @Param roomType query string false "Room type"
// @Param guests query int false "Minimum guest capacity"
// @Param sort query string false "newest, price_asc, price_desc or rating"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(12)
// @Success 200 {object} service.PropertyPage
// @Failure 500 {object} models.ErrorResponse
// @Router /properties [get]
func (s *Server) ListProperties(c *fiber.Ctx) error {
	f := repository.PropertyFilter{
		Search:    c.Query("search"),
		Category:  c.Query("category"),
		PriceMin:  queryFloat(c, "priceMin"),
		PriceMax:  queryFloat(c, "priceMax"),
		MinBeds:   c.QueryInt("beds", 0),
		RoomType:  c.Query("roomType"),
		MinGuests: c.QueryInt("guests", 0),
		Sort:      c.Query("sort"),
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", 0),
	}

	page, err := s.propertyService.List(c.UserContext(), f)
	if err != nil {
		return respond(c, resourceStatus(err), err)
	}
	return c.JSON(page)
}

// GetProperty handles GET /api/properties/:id
// @Summary Get a listing
// @Tags properties
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} models.Property
// @Failure 404 {object} models.ErrorResponse
// @Router /properties/{id} [get]
func (s *Server) GetProperty(c *fiber.Ctx) error {
	p, err := s.propertyService.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respond(c, resourceStatus(err), err)
	}
	return c.JSON(p)
}

// MyProperties handles GET /api/properties/user/my-properties
// @Summary Listings of the current host
// @Tags properties
// @Produce json
// @Success 200 {array} models.Property
// @Failure 401 {object} models.ErrorResponse
// @Router /properties/user/my-properties [get]
func (s *Server) MyProperties(c *fiber.Ctx) error {
	userID, _ := middleware.CurrentUserID(c)
	props, err := s.propertyService.ListByHost(c.UserContext(), userID)
	if err != nil {
		return respond(c, resourceStatus(err), err)
	}
	return c.JSON(props)
}

// CreateProperty handles POST /api/properties
// @Summary Create a listing
// @Description Multipart form with listing fields and 1 to 10 "images" files.
// @Tags properties
// @Accept mpfd
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param price formData number true "Nightly price"
// @Param location formData string true "Location"
// @Param category formData string true "Category"
// @Param roomType formData string true "Room type"
// @Param address formData string false "JSON encoded address"
// @Param amenities formData string false "JSON encoded array of amenities"
// @Param images formData file true "Listing photos"
// @Success 201 {object} object{msg=string,property=models.Property}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /properties [post]
func (s *Server) CreateProperty(c *fiber.Ctx) error {
	userID, _ := middleware.CurrentUserID(c)

	form, err := c.MultipartForm()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid form data"))
	}

	uploads, err := readUploads(form.File["images"])
	if err != nil {
		return respond(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}

	p, err := s.propertyService.Create(c.UserContext(), service.CreatePropertyInput{
		HostID: userID,
		Fields: listingFields(form.Value),
		Images: uploads,
	})
	if err != nil {
		return respond(c, resourceStatus(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"msg":      service.MsgPropertyCreated,
		"property": p,
	})
}

// listingFields coerces multipart values. Count fields fall back to 1 when
// absent or unparsable, and malformed address or amenities JSON is ignored.
func listingFields(v map[string][]string) validation.ListingFields {
	get := func(k string) string {
		if vals := v[k]; len(vals) > 0 {
			return strings.TrimSpace(vals[0])
		}
		return ""
	}

	f := validation.ListingFields{
		Title:       get("title"),
		Description: get("description"),
		Location:    get("location"),
		Category:    get("category"),
		RoomType:    get("roomType"),
		Beds:        atoiOr(get("beds"), 1),
		Bedrooms:    atoiOr(get("bedrooms"), 1),
		MaxGuests:   atoiOr(get("maxGuests"), 1),
		Bathrooms:   1,
	}
	if price, err := strconv.ParseFloat(get("price"), 64); err == nil {
		f.Price = price
	}
	if baths, err := strconv.ParseFloat(get("bathrooms"), 64); err == nil && baths != 0 {
		f.Bathrooms = baths
	}
	if raw := get("address"); raw != "" {
		_ = json.Unmarshal([]byte(raw), &f.Address)
	}

	amenities := v["amenities"]
	if len(amenities) == 1 && strings.HasPrefix(strings.TrimSpace(amenities[0]), "[") {
		var parsed []string
		if err := json.Unmarshal([]byte(amenities[0]), &parsed); err == nil {
			amenities = parsed
		} else {
			amenities = nil
		}
	}
	f.Amenities = amenities
	return f
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n == 0 {
		return fallback
	}
	return n
}

func queryFloat(c *fiber.Ctx, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func readUploads(files []*multipart.FileHeader) ([]service.ImageUpload, error) {
	out := make([]service.ImageUpload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		out = append(out, service.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     content,
		})
	}
	return out, nil
}
