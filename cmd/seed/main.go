package main

import (
	"context"
	"log"
	"os"

	"postlogin/internal/database"
	"postlogin/internal/domain"
	"postlogin/internal/repository"
)

// Seeds the channel settings the post-login service resolves business
// units from.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "postlogin.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(&domain.ChannelSetting{}); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	channels := []domain.ChannelSetting{
		{ID: "1", PostLoginBU: "SME"},
		{ID: "2", PostLoginBU: "RETAIL"},
		{ID: "sme", PostLoginBU: "SME"},
		{ID: "retail", PostLoginBU: "RETAIL"},
	}

	repo := repository.NewChannelRepository(db)
	ctx := context.Background()
	for i := range channels {
		if err := repo.Upsert(ctx, &channels[i]); err != nil {
			log.Fatalf("seed channel %s failed: %v", channels[i].ID, err)
		}
	}

	log.Printf("seeded %d channel settings", len(channels))
}
