package seed

import (
	"context"
	"fmt"
	"log/slog"

	"nestaway/internal/middleware"
	"nestaway/internal/models"
	"nestaway/internal/repository"

	"gorm.io/gorm"
)

// DemoEmail is the fixed verified account created by every seed run.
const DemoEmail = "demo@nestaway.dev"

// Options configure a seed run.
type Options struct {
	NumHosts       int
	NumListings    int
	NumGuests      int
	ReviewsPerStay int
	FactoryOptions FactoryOptions
}

// Result counts what a seed run created.
type Result struct {
	Users    int
	Listings int
	Reviews  int
}

// DefaultOptions is a small but browsable catalogue.
func DefaultOptions() Options {
	return Options{NumHosts: 5, NumListings: 40, NumGuests: 10, ReviewsPerStay: 3}
}

// Seed creates the demo account, hosts, guests and listings. The demo account
// is reused when it already exists, so repeated runs only add listings.
func Seed(ctx context.Context, users repository.UserRepository, properties repository.PropertyRepository, opts Options) (*Result, error) {
	f, err := NewFactory(users, properties, opts.FactoryOptions)
	if err != nil {
		return nil, err
	}
	res := &Result{}

	demo, err := users.GetByEmail(ctx, DemoEmail)
	if err != nil {
		return nil, fmt.Errorf("lookup demo user: %w", err)
	}
	if demo == nil {
		demo, err = f.CreateUser(ctx, func(u *models.User) {
			u.FirstName, u.LastName, u.Email = "Demo", "Host", DemoEmail
		})
		if err != nil {
			return nil, fmt.Errorf("create demo user: %w", err)
		}
		res.Users++
	}

	hosts := []*models.User{demo}
	for range opts.NumHosts {
		u, err := f.CreateUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("create host: %w", err)
		}
		hosts = append(hosts, u)
		res.Users++
	}

	guests := make([]*models.User, 0, opts.NumGuests)
	for range opts.NumGuests {
		u, err := f.CreateUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("create guest: %w", err)
		}
		guests = append(guests, u)
		res.Users++
	}

	for i := range opts.NumListings {
		host := hosts[i%len(hosts)]
		p, err := f.CreateListing(ctx, host, func(p *models.Property) {
			f.AddReviews(p, guests, opts.ReviewsPerStay)
		})
		if err != nil {
			return nil, fmt.Errorf("create listing %d: %w", i, err)
		}
		res.Listings++
		res.Reviews += len(p.Reviews)
	}

	middleware.Logger.Info("seed completed",
		slog.Int("users", res.Users),
		slog.Int("listings", res.Listings),
		slog.Int("reviews", res.Reviews),
		slog.Bool("dry_run", opts.FactoryOptions.DryRun),
	)
	return res, nil
}

// Clean removes every listing and account from a relational store.
func Clean(ctx context.Context, db *gorm.DB) error {
	middleware.Logger.Warn("clearing existing data")
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"reviews", "property_images", "properties", "users"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}
