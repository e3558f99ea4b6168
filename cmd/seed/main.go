package main

import (
	"context"
	"errors"
	"log"

	"shokolad-be/internal/config"
	"shokolad-be/internal/db"
	"shokolad-be/internal/user"
)

// Seeds the initial admin account. Safe to run repeatedly.
func main() {
	cfg := config.LoadConfig()

	database := db.InitDB(cfg)
	defer database.Close()

	repo := user.NewRepository(database)
	ctx := context.Background()

	const adminEmail = "admin@example.com"

	if _, err := repo.FindByEmail(ctx, adminEmail); err == nil {
		log.Printf("admin account %s already exists, nothing to do", adminEmail)
		return
	} else if !errors.Is(err, user.ErrUserNotFound) {
		log.Fatalf("failed to check admin account: %v", err)
	}

	hash, err := user.HashPassword("admin123")
	if err != nil {
		log.Fatalf("failed to hash admin password: %v", err)
	}

	role := user.RoleAdmin
	u, err := repo.Insert(ctx, user.CreateParams{
		Name:     "Administrator",
		Email:    adminEmail,
		Password: hash,
		Role:     &role,
	})
	if err != nil {
		log.Fatalf("failed to seed admin account: %v", err)
	}

	log.Printf("✅ seeded admin account %s (id %s)", u.Email, u.ID)
}
