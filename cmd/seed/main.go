package main

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/mosamir/blogging-api/config"
	"github.com/mosamir/blogging-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Ensure base roles exist
	var adminRoleID, userRoleID string
	if err := db.QueryRow(`
		INSERT INTO roles (name) VALUES ('admin')
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`).Scan(&adminRoleID); err != nil {
		log.Fatalf("failed to upsert admin role: %v", err)
	}
	if err := db.QueryRow(`
		INSERT INTO roles (name) VALUES ('user')
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`).Scan(&userRoleID); err != nil {
		log.Fatalf("failed to upsert user role: %v", err)
	}
	fmt.Printf("roles ensured: admin=%s user=%s\n", adminRoleID, userRoleID)

	username := "demo"
	email := "demo@example.com"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (id, username, email, password_hash, email_verified, display_name)
		VALUES ($1, $2, $3, $4, TRUE, $5)
		ON CONFLICT (email) DO UPDATE SET username = EXCLUDED.username
		RETURNING id
	`, uuid.NewString(), username, email, hash, "Demo User").Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s username=%s password=%s\n", id, username, password)

	if _, err := db.Exec(`
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role_id) DO NOTHING
	`, id, adminRoleID); err != nil {
		log.Fatalf("failed to assign admin role: %v", err)
	}
	fmt.Println("assigned admin role to seeded user")
}
