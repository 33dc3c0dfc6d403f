package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validListing() ListingFields {
	return ListingFields{
		Title:       "Seaside cottage",
		Description: "Steps from the sand",
		Price:       150,
		Location:    "Malibu, CA",
		Category:    "beach",
		RoomType:    "entire-home",
		Beds:        2,
		Bedrooms:    1,
		Bathrooms:   1.5,
		MaxGuests:   4,
	}
}

func TestValidateListing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(f *ListingFields)
		missing []string
	}{
		{"valid", func(f *ListingFields) {}, nil},
		{"missing title", func(f *ListingFields) { f.Title = " " }, []string{"title"}},
		{"zero price", func(f *ListingFields) { f.Price = 0 }, []string{"price"}},
		{"negative price", func(f *ListingFields) { f.Price = -5 }, []string{"price"}},
		{"unknown category", func(f *ListingFields) { f.Category = "castles" }, []string{"category"}},
		{"unknown room type", func(f *ListingFields) { f.RoomType = "suite" }, []string{"roomType"}},
		{"quarter bathroom", func(f *ListingFields) { f.Bathrooms = 1.25 }, []string{"bathrooms"}},
		{"no bathrooms", func(f *ListingFields) { f.Bathrooms = 0 }, []string{"bathrooms"}},
		{"half bathroom ok", func(f *ListingFields) { f.Bathrooms = 0.5 }, nil},
		{"zero beds and bedrooms", func(f *ListingFields) { f.Beds = 0; f.Bedrooms = 0 }, []string{"beds", "bedrooms"}},
		{"zero guests", func(f *ListingFields) { f.MaxGuests = 0 }, []string{"maxGuests"}},
		{
			"core fields missing",
			func(f *ListingFields) { *f = ListingFields{Beds: 1, Bedrooms: 1, Bathrooms: 1, MaxGuests: 1} },
			[]string{"title", "description", "price", "location", "category", "roomType"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validListing()
			tt.mutate(&f)
			got := ValidateListing(f)
			if tt.missing == nil {
				assert.Nil(t, got)
				return
			}
			assert.Len(t, got, len(tt.missing))
			for _, field := range tt.missing {
				assert.Contains(t, got, field)
			}
		})
	}
}

func TestNormalizeAmenities(t *testing.T) {
	t.Parallel()

	got := NormalizeAmenities([]string{"WiFi", "Hot Tub", "", "   ", "wifi", "WiFi"})
	assert.Equal(t, []string{"WiFi", "Hot Tub", "wifi"}, got)
	assert.Empty(t, NormalizeAmenities(nil))
}
