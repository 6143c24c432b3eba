package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/vendora-app/vendora/config"
	"github.com/vendora-app/vendora/pkg/helpers"
)

type seedUser struct {
	email string
	name  string
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	ids := make([]string, 0, 2)
	for _, u := range []seedUser{{"owner@vendora.local", "Demo Owner"}, {"partner@vendora.local", "Demo Partner"}} {
		var id string
		err = db.QueryRow(`
			INSERT INTO users (email, password_hash, name)
			VALUES ($1, $2, $3)
			ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, updated_at = now()
			RETURNING id
		`, u.email, hash, u.name).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", u.email, err)
		}
		ids = append(ids, id)
		fmt.Printf("seeded user: id=%s email=%s password=%s\n", id, u.email, password)
	}
	owner, partner := ids[0], ids[1]

	// One shared purchase, only if the owner has none yet
	var existing int
	if err := db.QueryRow(`SELECT count(*) FROM purchases WHERE user_id = $1`, owner).Scan(&existing); err != nil {
		log.Fatalf("failed to count purchases: %v", err)
	}
	if existing > 0 {
		fmt.Println("purchases already seeded")
		return
	}

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("begin: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	var purchaseID string
	if err := tx.QueryRow(`
		INSERT INTO purchases (user_id, name, description, total_amount, owner_invest, partner_invest, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'COMPRADO')
		RETURNING id
	`, owner, "Vintage camera lot", "Three film cameras from an estate sale", 1000.0, 600.0, 400.0).Scan(&purchaseID); err != nil {
		log.Fatalf("failed to seed purchase: %v", err)
	}
	if _, err := tx.Exec(`INSERT INTO purchase_participants (purchase_id, user_id) VALUES ($1, $2)`, purchaseID, partner); err != nil {
		log.Fatalf("failed to link participant: %v", err)
	}
	if err := tx.Commit(); err != nil {
		log.Fatalf("commit: %v", err)
	}
	fmt.Printf("seeded purchase: id=%s shared with %s\n", purchaseID, partner)
}
