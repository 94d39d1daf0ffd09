package main

import (
	"log"

	"mietwerk/internal/domain/matchrule"
	"mietwerk/internal/infrastructure/postgres"
	httphandlers "mietwerk/internal/interfaces/http"
	"mietwerk/internal/shared/auth"
	"mietwerk/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	MatchHandler       *httphandlers.MatchHandler
	RuleHandler        *httphandlers.RuleHandler
	TransactionHandler *httphandlers.TransactionHandler

	// Auth
	JWT *auth.JWT

	// Services and repositories (for the scheduler job provider)
	MatchService *matchrule.Service
	RuleRepo     *postgres.TransactionRuleRepository
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	// Connect to database
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	// Run pending migrations
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize repositories
	transactionRepo := postgres.NewBankTransactionRepository(db)
	ruleRepo := postgres.NewTransactionRuleRepository(db)

	// Initialize domain services
	matchService := matchrule.NewService(ruleRepo, transactionRepo)

	// Initialize auth components
	jwt := auth.NewJWT(cfg.JWT.Secret)

	// Initialize handlers
	matchHandler := httphandlers.NewMatchHandler(matchService)
	ruleHandler := httphandlers.NewRuleHandler(matchService)
	transactionHandler := httphandlers.NewTransactionHandler(transactionRepo, matchService)

	return &Dependencies{
		DB:                 db,
		MatchHandler:       matchHandler,
		RuleHandler:        ruleHandler,
		TransactionHandler: transactionHandler,
		JWT:                jwt,
		MatchService:       matchService,
		RuleRepo:           ruleRepo,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
