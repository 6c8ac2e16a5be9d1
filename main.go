package main

import (
	"database/sql"
	"net/http"
	"os"

	"revenue-ledger/internal/audit"
	"revenue-ledger/internal/config"
	"revenue-ledger/internal/publisher"
	"revenue-ledger/internal/repository"
	"revenue-ledger/internal/server"
	"revenue-ledger/internal/service"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
)

func main() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)

	if err := godotenv.Load(); err != nil {
		log.Warn("Could not load .env file.")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithField("error", err).Fatal("Could not load configuration")
	}

	policy, err := cfg.Policy()
	if err != nil {
		log.WithField("error", err).Fatal("Invalid split policy configuration")
	}
	log.WithField("policy", policy.String()).Info("Authoritative split policy constructed")

	declared, err := cfg.DeclaredPolicies()
	if err != nil {
		log.WithField("error", err).Fatal("Invalid declared split configuration")
	}

	log.Info("Starting database migration...")
	m, err := migrate.New("file://db/migrations", cfg.DB.URL)
	if err != nil {
		log.WithField("error", err).Fatal("Could not create migrate instance")
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.WithField("error", err).Fatal("Could not apply migration")
	}
	log.Info("Database migration finished successfully.")

	db, err := sql.Open("postgres", cfg.DB.URL)
	if err != nil {
		log.WithField("error", err).Fatal("Could not connect to the database")
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.DB.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		log.WithField("error", err).Fatal("Could not ping the database")
	}
	log.Info("Successfully connected to the PostgreSQL database.")

	// Create event publisher (optional)
	var events service.EventPublisher
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := publisher.NewKafkaPublisher(cfg.Kafka.BootstrapServers, cfg.Kafka.Topic)
		if err != nil {
			log.WithField("error", err).Fatal("Could not create Kafka publisher")
		}
		defer kafkaPublisher.Close()
		events = kafkaPublisher
	}

	// Create repository
	ledgerRepository := repository.NewPostgresLedgerRepository(db)

	// Create services
	ledgerService := service.NewLedgerService(ledgerRepository, policy, events)
	auditService := service.NewAuditService(ledgerRepository, audit.NewEngine(policy), declared, events)

	// Create server
	srv := server.NewServer(ledgerService, auditService, db)

	// Setup Echo
	e := echo.New()

	// Health check
	e.GET("/health", srv.HealthCheck)

	api := e.Group("/api")

	transactions := api.Group("/transactions")
	transactions.POST("", srv.RecordTransaction)
	transactions.GET("", srv.ListTransactions)
	transactions.GET("/:id", srv.GetTransaction)

	api.GET("/ledger/pending", srv.PendingPayouts)
	api.GET("/policy", srv.GetPolicy)
	api.POST("/audit", srv.RunAudit)

	log.WithField("port", cfg.Port).Info("Revenue ledger service is starting with Echo")

	if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
		log.WithField("error", err).Fatal("Echo server failed to start")
	}
}
