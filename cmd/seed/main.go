// seed inserts the default security settings for local development.
// Idempotent: existing rows for a key are left untouched.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"hr-admin-platform/backend/internal/config"
	"hr-admin-platform/backend/internal/db"
	settingsdomain "hr-admin-platform/backend/internal/settings/domain"
	settingsrepo "hr-admin-platform/backend/internal/settings/repository"
)

var defaults = []struct {
	key      string
	value    string
	category string
}{
	{settingsdomain.KeySessionTimeout, "1800", "session"},
	{settingsdomain.KeySessionConcurrentLimit, "5", "session"},
	{"password_min_length", "12", "authentication"},
	{"mfa_required", "false", "authentication"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	repo := settingsrepo.NewPostgresRepository(conn)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, d := range defaults {
		err := repo.Insert(ctx, &settingsdomain.SecuritySetting{
			ID:        uuid.New().String(),
			Key:       d.key,
			Raw:       d.value,
			Category:  d.category,
			UpdatedAt: now,
		})
		if err != nil {
			log.Fatalf("seed %s: %v", d.key, err)
		}
	}

	log.Println("Seed completed successfully.")
}
