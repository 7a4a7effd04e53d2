// Seeds the ledger with a demo catalog: one organizer, one event and
// its three ticket tiers. Intended for development and load testing.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/prestiqx/ticket-ledger/internal/domain"
	"github.com/prestiqx/ticket-ledger/internal/repository"
	"github.com/prestiqx/ticket-ledger/pkg/config"
	"github.com/prestiqx/ticket-ledger/pkg/database"
	"github.com/prestiqx/ticket-ledger/pkg/logger"
)

const (
	seedAdmin     = "0x00000000000000000000000000000000000000a1"
	seedOrganizer = "0x1afc8c45f4c0c0478f62c289a1b7b378f79bc766"
)

func main() {
	publish := flag.Bool("publish", false, "publish the seeded event after creating it")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(&logger.Config{Level: "info", ServiceName: "ticket-ledger-seed", Development: true}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: 5,
		MinConns: 1,
	})
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	organizerRepo := repository.NewPostgresOrganizerRepository(db.Pool())
	eventRepo := repository.NewPostgresEventRepository(db.Pool())

	if err := organizerRepo.Authorize(ctx, &domain.Organizer{
		Address:      seedOrganizer,
		AuthorizedBy: seedAdmin,
	}); err != nil {
		log.Fatalf("Failed to authorize organizer: %v", err)
	}
	fmt.Printf("Organizer authorized: %s\n", seedOrganizer)

	event := &domain.Event{
		Organizer:   seedOrganizer,
		Name:        "Royal Gala Evening",
		Description: "An exclusive black-tie gala with live orchestra and royal banquet.",
		Venue:       "Grand Palace Hall",
		StartTime:   time.Now().AddDate(0, 2, 0).Truncate(time.Hour),
		Status:      domain.EventStatusDraft,
	}
	if err := eventRepo.Create(ctx, event); err != nil {
		log.Fatalf("Failed to create event: %v", err)
	}
	fmt.Printf("Event created: #%d %s\n", event.ID, event.Name)

	tiers := []*domain.TicketTier{
		{
			Name:      "Royal Standard",
			PriceWei:  domain.MustParseWei("300000000000000000"),
			MaxSupply: 100,
			Rarity:    domain.RarityCommon,
			Perks:     []string{"Gala entry", "Welcome drink"},
		},
		{
			Name:      "Imperial VIP",
			PriceWei:  domain.MustParseWei("500000000000000000"),
			MaxSupply: 50,
			Rarity:    domain.RarityRare,
			Perks:     []string{"Front section seating", "Champagne reception", "Meet the orchestra"},
		},
		{
			Name:      "Crown Royalty",
			PriceWei:  domain.MustParseWei("1000000000000000000"),
			MaxSupply: 20,
			Rarity:    domain.RarityLegendary,
			Perks:     []string{"Royal box seating", "Private banquet table", "Commemorative medallion"},
		},
	}

	for _, tier := range tiers {
		if err := eventRepo.AddTier(ctx, event.ID, tier); err != nil {
			log.Fatalf("Failed to add tier %s: %v", tier.Name, err)
		}
		fmt.Printf("Tier added: %s (%s wei, supply %d)\n", tier.Name, tier.PriceWei.String(), tier.MaxSupply)
	}

	if *publish {
		if err := eventRepo.TransitionStatus(ctx, event.ID, domain.EventStatusDraft, domain.EventStatusPublished); err != nil {
			log.Fatalf("Failed to publish event: %v", err)
		}
		fmt.Printf("Event #%d published\n", event.ID)
	}

	fmt.Println("Seed complete")
}
