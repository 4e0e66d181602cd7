package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"docstudio/internal/config"
	"docstudio/internal/domain/model"
	"docstudio/internal/domain/ports/repository"
	pg "docstudio/internal/infra/db/postgres"
)

// Seeds a demo user with an active starter subscription and one sample
// document, for local development against a fresh database.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	subRepo := pg.NewSubscriptionRepo(pool)
	docRepo := pg.NewDocumentRepo(pool)

	demoUser := "00000000-0000-0000-0000-000000000001"

	if _, err := subRepo.FindActiveByUser(ctx, repository.NoTX, demoUser); err == nil {
		fmt.Println("demo user already seeded. No changes.")
		return
	}

	sub, err := model.NewActiveSubscription(uuid.NewString(), demoUser, model.PlanStarter)
	if err != nil {
		log.Fatalf("build subscription: %v", err)
	}
	if err := subRepo.Upsert(ctx, repository.NoTX, sub); err != nil {
		log.Fatalf("seed subscription: %v", err)
	}
	fmt.Printf("seeded: starter subscription for user %s\n", demoUser)

	doc, err := model.NewDocument(uuid.NewString(), demoUser, "Getting Started", "A seeded sample document")
	if err != nil {
		log.Fatalf("build document: %v", err)
	}
	doc.ReplaceSections([]model.Section{
		{ID: uuid.NewString(), Title: "Welcome", Body: "This document was seeded for local development.", Position: 0},
		{ID: uuid.NewString(), Title: "Next steps", Body: "Generate a real document through the API.", Position: 1},
	})
	doc.GenerationCount = 1
	if err := docRepo.Save(ctx, repository.NoTX, doc); err != nil {
		log.Fatalf("seed document: %v", err)
	}
	fmt.Printf("seeded: document %q (id=%s)\n", doc.Title, doc.ID)

	fmt.Println("Seeding complete.")
}
