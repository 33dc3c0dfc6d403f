// Package seed provides helpers to create demo data for development and
// testing. They go through the repositories, so they work against every
// supported store.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"nestaway/internal/models"
	"nestaway/internal/repository"
	"nestaway/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

// FactoryOptions tune generated data.
type FactoryOptions struct {
	// SkipBcrypt stores a cheap hash in fast dev runs. Seeded accounts cannot log in.
	SkipBcrypt bool
	// DryRun builds entities without persisting them.
	DryRun bool
	// MaxDays spreads listing creation times over the last MaxDays days.
	MaxDays int
	// Seed makes generated content reproducible when non-zero.
	Seed int64
}

// Factory builds users and listings and persists them through the repositories.
type Factory struct {
	users      repository.UserRepository
	properties repository.PropertyRepository
	opts       FactoryOptions
	faker      *gofakeit.Faker
	rng        *rand.Rand
	password   string
}

// NewFactory creates a Factory over the given repositories.
func NewFactory(users repository.UserRepository, properties repository.PropertyRepository, opts FactoryOptions) (*Factory, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	//nolint:gosec // demo data
	rng := rand.New(rand.NewSource(seed))
	f := &Factory{
		users:      users,
		properties: properties,
		opts:       opts,
		faker:      gofakeit.New(seed),
		rng:        rng,
	}

	if opts.SkipBcrypt {
		f.password = "unhashed:" + DemoPassword
		return f, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}
	f.password = string(hash)
	return f, nil
}

// BuildUser returns an unsaved verified account.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	u := &models.User{
		FirstName: f.faker.FirstName(),
		LastName:  f.faker.LastName(),
		Password:  f.password,
		Verified:  true,
	}
	u.Email = fmt.Sprintf("%s.%s.%d@example.com", u.FirstName, u.LastName, f.faker.Number(100, 99999))
	for _, o := range overrides {
		o(u)
	}
	return u
}

// CreateUser builds and stores an account.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	u := f.BuildUser(overrides...)
	if f.opts.DryRun {
		u.Prepare()
		return u, nil
	}
	if err := f.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// BuildListing returns an unsaved available listing owned by host. The
// result always passes listing validation.
func (f *Factory) BuildListing(host *models.User, overrides ...func(*models.Property)) *models.Property {
	city := f.faker.City()
	category := models.Categories[f.rng.Intn(len(models.Categories))]
	roomType := models.RoomTypes[f.rng.Intn(len(models.RoomTypes))]
	bedrooms := 1 + f.rng.Intn(5)

	p := &models.Property{
		Title:       fmt.Sprintf("%s %s in %s", f.faker.AdjectiveDescriptive(), category, city),
		Description: f.faker.Paragraph(1, 3, 12, " "),
		Price:       float64(40 + f.rng.Intn(560)),
		Location:    fmt.Sprintf("%s, %s", city, f.faker.StateAbr()),
		Address: models.Address{
			Street:  f.faker.Street(),
			City:    city,
			State:   f.faker.State(),
			Country: f.faker.Country(),
			ZipCode: f.faker.Zip(),
		},
		Category:    category,
		RoomType:    roomType,
		Bedrooms:    bedrooms,
		Beds:        bedrooms + f.rng.Intn(3),
		Bathrooms:   float64(1+f.rng.Intn(6)) / 2,
		MaxGuests:   bedrooms*2 + f.rng.Intn(3),
		Amenities:   f.amenities(),
		HostID:      host.ID,
		IsAvailable: true,
		CreatedAt:   f.createdAt(),
	}
	if p.Bathrooms < 0.5 {
		p.Bathrooms = 0.5
	}

	for i := range 1 + f.rng.Intn(4) {
		id := f.faker.UUID()
		p.Images = append(p.Images, models.PropertyImage{
			URL:       fmt.Sprintf("https://picsum.photos/seed/%s/1200/800", id),
			StorageID: fmt.Sprintf("seed/%s-%d", id, i),
		})
	}

	for _, o := range overrides {
		o(p)
	}
	return p
}

// AddReviews attaches n reviews from reviewers and sets the average rating.
func (f *Factory) AddReviews(p *models.Property, reviewers []*models.User, n int) {
	if len(reviewers) == 0 || n <= 0 {
		return
	}
	total := 0
	for range n {
		r := reviewers[f.rng.Intn(len(reviewers))]
		rating := 3 + f.rng.Intn(3)
		total += rating
		p.Reviews = append(p.Reviews, models.Review{
			UserID:    r.ID,
			Rating:    rating,
			Comment:   f.faker.Sentence(10),
			CreatedAt: p.CreatedAt.Add(time.Duration(1+f.rng.Intn(72)) * time.Hour),
		})
	}
	p.Rating = float64(total) / float64(n)
}

// CreateListing builds and stores a listing.
func (f *Factory) CreateListing(ctx context.Context, host *models.User, overrides ...func(*models.Property)) (*models.Property, error) {
	p := f.BuildListing(host, overrides...)
	if missing := validation.ValidateListing(listingFields(p)); missing != nil {
		return nil, fmt.Errorf("generated listing is invalid: %v", missing)
	}
	if f.opts.DryRun {
		p.Prepare()
		return p, nil
	}
	if err := f.properties.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (f *Factory) amenities() []string {
	n := 2 + f.rng.Intn(6)
	picked := f.rng.Perm(len(models.KnownAmenities))[:n]
	out := make([]string, 0, n)
	for _, i := range picked {
		out = append(out, models.KnownAmenities[i])
	}
	return out
}

func (f *Factory) createdAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays*24*60)) * time.Minute
	return time.Now().UTC().Add(-back)
}

func listingFields(p *models.Property) validation.ListingFields {
	return validation.ListingFields{
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Location:    p.Location,
		Address:     p.Address,
		Category:    p.Category,
		RoomType:    p.RoomType,
		Beds:        p.Beds,
		Bedrooms:    p.Bedrooms,
		Bathrooms:   p.Bathrooms,
		MaxGuests:   p.MaxGuests,
		Amenities:   p.Amenities,
	}
}
