// Command main fills the configured store with demo hosts and listings.
package main

import (
	"context"
	"flag"
	"log"

	"nestaway/internal/bootstrap"
	"nestaway/internal/config"
	"nestaway/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	hosts := flag.Int("hosts", defaults.NumHosts, "Number of hosts to create")
	listings := flag.Int("listings", defaults.NumListings, "Number of listings to create")
	guests := flag.Int("guests", defaults.NumGuests, "Number of reviewing guests to create")
	reviews := flag.Int("reviews", defaults.ReviewsPerStay, "Reviews per listing")
	shouldClean := flag.Bool("clean", false, "Delete existing users and listings first (relational stores only)")
	fast := flag.Bool("fast", false, "Skip bcrypt; seeded accounts cannot log in")
	dryRun := flag.Bool("dry-run", false, "Generate without writing")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("refusing to seed a production environment")
	}

	ctx := context.Background()
	rt, err := bootstrap.InitStores(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer func() { _ = rt.Close(context.Background()) }()

	if *shouldClean && !*dryRun {
		if rt.DB == nil {
			log.Fatal("-clean is only supported for postgres and sqlite")
		}
		if err := seed.Clean(ctx, rt.DB); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	res, err := seed.Seed(ctx, rt.Users, rt.Properties, seed.Options{
		NumHosts:       *hosts,
		NumListings:    *listings,
		NumGuests:      *guests,
		ReviewsPerStay: *reviews,
		FactoryOptions: seed.FactoryOptions{SkipBcrypt: *fast, DryRun: *dryRun},
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users, %d listings and %d reviews", res.Users, res.Listings, res.Reviews)
	if !*fast {
		log.Printf("Log in as %s with password %s", seed.DemoEmail, seed.DemoPassword)
	}
}
