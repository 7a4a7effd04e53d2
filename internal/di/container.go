package di

import (
	"github.com/prestiqx/ticket-ledger/internal/handler"
	"github.com/prestiqx/ticket-ledger/internal/repository"
	"github.com/prestiqx/ticket-ledger/internal/service"
	"github.com/prestiqx/ticket-ledger/pkg/database"
	"github.com/prestiqx/ticket-ledger/pkg/redis"
)

// Container holds all dependencies for the ticket ledger
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	EventRepo     repository.EventRepository
	TicketRepo    repository.TicketRepository
	OrganizerRepo repository.OrganizerRepository
	Allocations   repository.AllocationStore

	// Publishers
	LedgerPublisher service.LedgerPublisher

	// Services
	OrganizerService service.OrganizerService
	RegistryService  service.RegistryService
	PurchaseService  service.PurchaseService

	// Handlers
	HealthHandler    *handler.HealthHandler
	OrganizerHandler *handler.OrganizerHandler
	EventHandler     *handler.EventHandler
	PurchaseHandler  *handler.PurchaseHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB              *database.PostgresDB
	Redis           *redis.Client
	EventRepo       repository.EventRepository
	TicketRepo      repository.TicketRepository
	OrganizerRepo   repository.OrganizerRepository
	Allocations     repository.AllocationStore
	LedgerPublisher service.LedgerPublisher
	TransferClient  service.TransferClient
	FeeRecipient    string
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:              cfg.DB,
		Redis:           cfg.Redis,
		EventRepo:       cfg.EventRepo,
		TicketRepo:      cfg.TicketRepo,
		OrganizerRepo:   cfg.OrganizerRepo,
		Allocations:     cfg.Allocations,
		LedgerPublisher: cfg.LedgerPublisher,
	}

	if c.LedgerPublisher == nil {
		c.LedgerPublisher = service.NewNoOpLedgerPublisher()
	}

	transfers := cfg.TransferClient
	if transfers == nil {
		transfers = service.NewNoopTransferClient()
	}

	tierSyncer := service.NewTierSyncer(c.EventRepo, c.Allocations)

	// Services
	c.OrganizerService = service.NewOrganizerService(c.OrganizerRepo)
	c.RegistryService = service.NewRegistryService(c.EventRepo, c.OrganizerRepo, c.Allocations, c.LedgerPublisher)
	c.PurchaseService = service.NewPurchaseService(
		c.EventRepo,
		c.TicketRepo,
		c.Allocations,
		tierSyncer,
		transfers,
		c.LedgerPublisher,
		cfg.FeeRecipient,
	)

	// Handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.OrganizerHandler = handler.NewOrganizerHandler(c.OrganizerService)
	c.EventHandler = handler.NewEventHandler(c.RegistryService)
	c.PurchaseHandler = handler.NewPurchaseHandler(c.PurchaseService)

	return c
}
