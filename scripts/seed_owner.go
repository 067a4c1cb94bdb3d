package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/khoaphan/careerframe/pkg/auth"
)

func main() {
	fmt.Println("adding owner into database...")

	err := godotenv.Load()
	if err != nil {
		log.Println("warning: .env file not found, use system environment variables.")
	}

	DSN := os.Getenv("DB_DSN")
	OWNER_EMAIL := os.Getenv("OWNER_EMAIL")
	OWNER_PASSWORD := os.Getenv("OWNER_PASSWORD")
	OWNER_SLUG := os.Getenv("OWNER_SLUG")
	if OWNER_SLUG == "" {
		OWNER_SLUG = "owner"
	}

	hash, err := auth.HashPassword(OWNER_PASSWORD)
	if err != nil {
		log.Fatalf("cannot hash password: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), DSN)
	if err != nil {
		log.Fatalf("cannot connect DB: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()
	ownerID := uuid.New()

	userQuery := `
		INSERT INTO users (id, email, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET password_hash = $3
		RETURNING id
	`
	err = pool.QueryRow(ctx, userQuery, ownerID, OWNER_EMAIL, hash).Scan(&ownerID)
	if err != nil {
		log.Fatalf("cannot add user: %v", err)
	}

	profileID := uuid.New()
	profileQuery := `
		INSERT INTO profiles (id, owner_id, slug)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id) DO UPDATE SET slug = $3, updated_at = NOW()
		RETURNING id
	`
	err = pool.QueryRow(ctx, profileQuery, profileID, ownerID, OWNER_SLUG).Scan(&profileID)
	if err != nil {
		log.Fatalf("cannot add profile: %v", err)
	}

	sectionQuery := `
		INSERT INTO profile_sections (id, profile_id, section_type, section_order)
		VALUES ($1, $2, 'hero', 0)
		ON CONFLICT (profile_id, section_type) DO NOTHING
	`
	_, err = pool.Exec(ctx, sectionQuery, uuid.New(), profileID)
	if err != nil {
		log.Fatalf("cannot add hero section: %v", err)
	}

	fmt.Printf("added or updated owner '%s' with profile '%s' successfully!\n", OWNER_EMAIL, OWNER_SLUG)
}
