package validation

import (
	"math"
	"strings"

	"nestaway/internal/models"
)

// ListingFields is the coerced form input of a new listing.
type ListingFields struct {
	Title       string
	Description string
	Price       float64
	Location    string
	Address     models.Address
	Category    string
	RoomType    string
	Beds        int
	Bedrooms    int
	Bathrooms   float64
	MaxGuests   int
	Amenities   []string
}

// ValidateListing returns a field -> reason map for every invalid field, or nil.
func ValidateListing(f ListingFields) map[string]string {
	missing := map[string]string{}

	if strings.TrimSpace(f.Title) == "" {
		missing["title"] = "required"
	}
	if strings.TrimSpace(f.Description) == "" {
		missing["description"] = "required"
	}
	if !(f.Price > 0) || math.IsInf(f.Price, 0) {
		missing["price"] = "must be greater than 0"
	}
	if strings.TrimSpace(f.Location) == "" {
		missing["location"] = "required"
	}
	switch {
	case f.Category == "":
		missing["category"] = "required"
	case !models.IsValidCategory(f.Category):
		missing["category"] = "must be one of " + strings.Join(models.Categories, ", ")
	}
	switch {
	case f.RoomType == "":
		missing["roomType"] = "required"
	case !models.IsValidRoomType(f.RoomType):
		missing["roomType"] = "must be one of " + strings.Join(models.RoomTypes, ", ")
	}
	if f.Bedrooms < 1 {
		missing["bedrooms"] = "must be at least 1"
	}
	if f.Beds < 1 {
		missing["beds"] = "must be at least 1"
	}
	if f.Bathrooms < 0.5 || math.Mod(f.Bathrooms*2, 1) != 0 {
		missing["bathrooms"] = "must be at least 0.5 in half steps"
	}
	if f.MaxGuests < 1 {
		missing["maxGuests"] = "must be at least 1"
	}

	if len(missing) == 0 {
		return nil
	}
	return missing
}

// NormalizeAmenities drops blank tags and exact duplicates. Tags are stored
// as submitted.
func NormalizeAmenities(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, a := range in {
		if strings.TrimSpace(a) == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
