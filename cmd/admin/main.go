// Package main provides account maintenance utilities for NestAway operators.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"syscall"

	"nestaway/internal/bootstrap"
	"nestaway/internal/config"
	"nestaway/internal/models"
	"nestaway/internal/repository"
	"nestaway/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin verify-user <email>          - Mark an account as verified")
	fmt.Println("  go run ./cmd/admin create-host <email> <first> <last> - Create a verified host (prompts for password)")
	fmt.Println("  go run ./cmd/admin list-unverified [limit]      - List accounts still awaiting verification")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitStores(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer func() { _ = rt.Close(context.Background()) }()

	switch os.Args[1] {
	case "verify-user":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		err = verifyUser(ctx, rt.Users, os.Args[2])

	case "create-host":
		if len(os.Args) < 5 {
			usage()
			os.Exit(1)
		}
		err = createHost(ctx, rt.Users, os.Args[2], os.Args[3], os.Args[4])

	case "list-unverified":
		limit := 50
		if len(os.Args) > 2 {
			if limit, err = strconv.Atoi(os.Args[2]); err != nil {
				log.Fatalf("invalid limit %q", os.Args[2])
			}
		}
		err = listUnverified(ctx, rt.Users, limit)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func verifyUser(ctx context.Context, users repository.UserRepository, email string) error {
	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("no account for %s", models.NormalizeEmail(email))
	}
	if user.Verified {
		fmt.Printf("%s is already verified\n", user.Email)
		return nil
	}
	if err := users.MarkVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("verify user: %w", err)
	}
	fmt.Printf("Verified %s (ID: %s)\n", user.Email, user.ID)
	return nil
}

func createHost(ctx context.Context, users repository.UserRepository, email, first, last string) error {
	email = models.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return err
	}
	for field, v := range map[string]string{"firstName": first, "lastName": last} {
		if err := validation.ValidateName(field, v); err != nil {
			return err
		}
	}

	fmt.Print("Password: ")
	//nolint:unconvert // syscall.Stdin is not an int on every platform
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimSpace(string(raw))
	if err := validation.ValidatePassword(password); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		FirstName: strings.TrimSpace(first),
		LastName:  strings.TrimSpace(last),
		Email:     email,
		Password:  string(hash),
		Verified:  true,
	}
	if err := users.Create(ctx, user); err != nil {
		return fmt.Errorf("create host: %w", err)
	}
	fmt.Printf("Created verified host %s (ID: %s)\n", user.Email, user.ID)
	return nil
}

func listUnverified(ctx context.Context, users repository.UserRepository, limit int) error {
	pending, err := users.ListUnverified(ctx, limit)
	if err != nil {
		return fmt.Errorf("list unverified: %w", err)
	}
	if len(pending) == 0 {
		fmt.Println("No accounts awaiting verification")
		return nil
	}

	fmt.Println("\nAccounts awaiting verification:")
	fmt.Println("─────────────────────────────────────")
	for _, u := range pending {
		fmt.Printf("ID: %s | %s %s | %s | signed up %s\n",
			u.ID, u.FirstName, u.LastName, u.Email, u.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Println("─────────────────────────────────────")
	return nil
}
