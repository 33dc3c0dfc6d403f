package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"nestaway/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newListing(hostID, title string, price float64, created time.Time) *models.Property {
	return &models.Property{
		Title:       title,
		Description: "A lovely place to stay",
		Price:       price,
		Location:    "Malibu, CA",
		Category:    "beach",
		RoomType:    "entire-home",
		Beds:        2,
		Bedrooms:    1,
		Bathrooms:   1,
		MaxGuests:   4,
		HostID:      hostID,
		IsAvailable: true,
		CreatedAt:   created,
		Images: []models.PropertyImage{
			{URL: "https://cdn.example.com/a.jpg", StorageID: "a"},
			{URL: "https://cdn.example.com/b.jpg", StorageID: "b"},
		},
	}
}

func seedListings(t *testing.T, db *gorm.DB) (*models.User, PropertyRepository) {
	t.Helper()
	users := NewUserRepository(db)
	host := createUser(t, users, "host@example.com", true)
	repo := NewPropertyRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	listings := []*models.Property{
		newListing(host.ID, "Oceanfront Villa", 450, base),
		newListing(host.ID, "Cozy Cabin", 120, base.Add(time.Hour)),
		newListing(host.ID, "Downtown Loft 100%", 200, base.Add(2*time.Hour)),
	}
	listings[1].Category = "cabins"
	listings[1].Location = "Aspen, CO"
	listings[1].Beds = 1
	listings[1].MaxGuests = 2
	listings[1].Rating = 4.9
	listings[2].RoomType = "private-room"
	listings[2].Description = "Near the OCEAN drive"
	for _, p := range listings {
		require.NoError(t, repo.Create(ctx, p))
	}

	hidden := newListing(host.ID, "Unavailable Oceanfront", 300, base.Add(3*time.Hour))
	require.NoError(t, repo.Create(ctx, hidden))
	require.NoError(t, db.Model(&models.Property{}).Where("id = ?", hidden.ID).Update("is_available", false).Error)
	return host, repo
}

func titles(ps []models.Property) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Title
	}
	return out
}

func floatPtr(f float64) *float64 { return &f }

func TestPropertyRepository_List(t *testing.T) {
	db := setupTestDB(t)
	_, repo := seedListings(t, db)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter PropertyFilter
		want   []string
	}{
		{"newest first, available only", PropertyFilter{}, []string{"Downtown Loft 100%", "Cozy Cabin", "Oceanfront Villa"}},
		{"search is case-insensitive across fields", PropertyFilter{Search: "ocean"}, []string{"Downtown Loft 100%", "Oceanfront Villa"}},
		{"search treats wildcards literally", PropertyFilter{Search: "100%"}, []string{"Downtown Loft 100%"}},
		{"category", PropertyFilter{Category: "cabins"}, []string{"Cozy Cabin"}},
		{"inclusive price range", PropertyFilter{PriceMin: floatPtr(120), PriceMax: floatPtr(200)}, []string{"Downtown Loft 100%", "Cozy Cabin"}},
		{"min beds", PropertyFilter{MinBeds: 2}, []string{"Downtown Loft 100%", "Oceanfront Villa"}},
		{"room type", PropertyFilter{RoomType: "private-room"}, []string{"Downtown Loft 100%"}},
		{"min guests", PropertyFilter{MinGuests: 3}, []string{"Downtown Loft 100%", "Oceanfront Villa"}},
		{"price ascending", PropertyFilter{Sort: SortPriceAsc}, []string{"Cozy Cabin", "Downtown Loft 100%", "Oceanfront Villa"}},
		{"rating", PropertyFilter{Sort: SortRating}, []string{"Cozy Cabin", "Downtown Loft 100%", "Oceanfront Villa"}},
		{"no match", PropertyFilter{Category: "skiing"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
			assert.Equal(t, int64(len(tt.want)), total)
		})
	}
}

func TestPropertyRepository_ListPaginates(t *testing.T) {
	db := setupTestDB(t)
	_, repo := seedListings(t, db)

	got, total, err := repo.List(context.Background(), PropertyFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"Oceanfront Villa"}, titles(got))
	require.NotNil(t, got[0].HostInfo)
	assert.Equal(t, "Test", got[0].HostInfo.FirstName)
}

func TestPropertyRepository_GetByID(t *testing.T) {
	db := setupTestDB(t)
	host, repo := seedListings(t, db)
	ctx := context.Background()

	listed, _, err := repo.List(ctx, PropertyFilter{Category: "cabins"})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	guest := createUser(t, NewUserRepository(db), "guest@example.com", true)
	require.NoError(t, db.Create(&models.Review{PropertyID: listed[0].ID, UserID: guest.ID, Rating: 5, Comment: "Great"}).Error)

	got, err := repo.GetByID(ctx, listed[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got.HostInfo)
	assert.Equal(t, host.ID, got.HostInfo.ID)
	require.Len(t, got.Images, 2)
	assert.Equal(t, "a", got.Images[0].StorageID)
	require.Len(t, got.Reviews, 1)
	require.NotNil(t, got.Reviews[0].Reviewer)
	assert.Equal(t, guest.ID, got.Reviews[0].Reviewer.ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.Equal(t, "Property not found", err.Error())
}

func TestPropertyRepository_ListByHost(t *testing.T) {
	db := setupTestDB(t)
	host, repo := seedListings(t, db)
	ctx := context.Background()

	mine, err := repo.ListByHost(ctx, host.ID)
	require.NoError(t, err)
	// Hosts see their unavailable listings too.
	assert.Len(t, mine, 4)
	assert.Equal(t, "Unavailable Oceanfront", mine[0].Title)

	none, err := repo.ListByHost(ctx, "someone-else")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
