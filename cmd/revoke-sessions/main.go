package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dimitrije/gatekeeper/internal/config"
	"github.com/dimitrije/gatekeeper/internal/database"
	"github.com/dimitrije/gatekeeper/internal/models"
	"github.com/dimitrije/gatekeeper/internal/services"
	"github.com/google/uuid"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Println("Usage: revoke-sessions <email>")
		os.Exit(1)
	}

	email := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	rows, err := db.Pool.Query(ctx, `
		UPDATE users SET status = $1, updated_at = NOW()
		WHERE email = $2
		RETURNING id
	`, models.UserStatusInactive, email)
	if err != nil {
		log.Fatalf("Failed to update user: %v", err)
	}

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			log.Fatalf("Failed to read user id: %v", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		log.Fatalf("Failed to update user: %v", err)
	}

	if len(ids) == 0 {
		log.Fatalf("No user found with email: %s", email)
	}

	tokens := services.NewTokenService(db)
	for _, id := range ids {
		if err := tokens.RevokeAllUserTokens(ctx, id); err != nil {
			log.Fatalf("Failed to revoke sessions of %s: %v", id, err)
		}
	}

	fmt.Printf("Revoked all sessions of %s (%d account(s))\n", email, len(ids))
}
