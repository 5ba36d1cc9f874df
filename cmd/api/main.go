package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"warehouse-inventory-api/internal/config"
	"warehouse-inventory-api/internal/coord"
	"warehouse-inventory-api/internal/handler"
	"warehouse-inventory-api/internal/queue"
	"warehouse-inventory-api/internal/repository"
	"warehouse-inventory-api/internal/router"
	"warehouse-inventory-api/internal/service"

	_ "github.com/go-sql-driver/mysql"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting warehouse inventory API...")

	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	backends := handler.Backends{}

	// Event store
	var eventRepo repository.EventRepository
	var sqlStore repository.ReferenceRepository // set when the event store can also hold references
	switch cfg.EventStore.NormalizedType() {
	case "mongodb":
		mongoRepo, err := repository.NewMongoDBEventRepository(
			cfg.EventStore.MongoURI,
			cfg.EventStore.MongoDatabase,
			cfg.EventStore.MongoCollection,
		)
		if err != nil {
			log.Fatalf("Failed to initialize MongoDB: %v", err)
		}
		defer mongoRepo.Close()
		eventRepo = mongoRepo
		backends.EventStore = "mongodb"
		log.Println("MongoDB event store initialized")
	case "postgres":
		pgStore, err := repository.NewPostgresStore(cfg.EventStore.PostgresDSN())
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL: %v", err)
		}
		defer pgStore.Close()
		eventRepo = pgStore
		sqlStore = pgStore
		backends.EventStore = "postgres"
		log.Println("PostgreSQL event store initialized")
	default: // sqlite
		sqliteStore, err := repository.NewSQLiteStore(cfg.EventStore.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		defer sqliteStore.Close()
		eventRepo = sqliteStore
		sqlStore = sqliteStore
		backends.EventStore = "sqlite"
		log.Println("SQLite event store initialized")
	}

	// Reference store
	var refRepo repository.ReferenceRepository
	switch {
	case cfg.ReferenceStore.Type == "mysql":
		mysqlDB, err := sql.Open("mysql", cfg.ReferenceStore.MySQLDSN())
		if err != nil {
			log.Fatalf("Failed to open MySQL: %v", err)
		}
		mysqlDB.SetMaxOpenConns(10)
		mysqlDB.SetMaxIdleConns(5)
		mysqlDB.SetConnMaxLifetime(5 * time.Minute)

		if err := mysqlDB.Ping(); err != nil {
			log.Fatalf("Failed to ping MySQL: %v", err)
		}
		mysqlRepo := repository.NewMySQLReferenceRepository(mysqlDB)
		if err := mysqlRepo.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Failed to prepare MySQL schema: %v", err)
		}
		defer mysqlRepo.Close()
		refRepo = mysqlRepo
		backends.ReferenceStore = "mysql"
		log.Println("MySQL reference store initialized")
	case sqlStore != nil:
		refRepo = sqlStore
		backends.ReferenceStore = backends.EventStore
	default:
		// MongoDB holds events only; references go to a local SQLite file.
		refStore, err := repository.NewSQLiteStore(cfg.ReferenceStore.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite reference store: %v", err)
		}
		defer refStore.Close()
		refRepo = refStore
		backends.ReferenceStore = "sqlite"
	}

	// Coordination: Redis when configured, otherwise in-process
	var locker coord.Locker
	var sequencer coord.Sequencer
	var redisCoord *coord.RedisCoordinator
	if cfg.Redis.Enabled() {
		rc, err := coord.NewRedisCoordinator(coord.RedisConfig{
			Addr:      cfg.Redis.Address(),
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			LockTTL:   cfg.Redis.LockTTL,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		if err != nil {
			log.Printf("Warning: Redis connection failed, using in-process coordination: %v", err)
		} else {
			redisCoord = rc
			defer redisCoord.Close()
			locker, sequencer = rc, rc
			backends.Coordinator = "redis"
		}
	}
	if locker == nil {
		locker = coord.NewMemoryLocker()
		sequencer = coord.NewMemorySequencer(0)
		backends.Coordinator = "memory"
	}

	// Event publishing
	var publisher queue.Publisher = queue.NoopPublisher{}
	backends.Publisher = "none"
	if cfg.Queue.Enabled {
		amqpPub, err := queue.NewAMQPPublisher(queue.Config{
			URL:         cfg.Queue.URL,
			Queue:       cfg.Queue.Name,
			DialTimeout: cfg.Queue.DialTimeout,
		})
		if err != nil {
			log.Printf("Warning: RabbitMQ connection failed, events will not be published: %v", err)
		} else {
			defer amqpPub.Close()
			publisher = amqpPub
			backends.Publisher = "rabbitmq"
		}
	}

	// Services
	inventoryService := service.NewInventoryService(eventRepo, refRepo, locker, sequencer, publisher)
	inventoryService.SetLockTimeout(cfg.Refresh.LockTimeout)

	bootCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	if err := inventoryService.Bootstrap(bootCtx); err != nil {
		cancel()
		log.Fatalf("Failed to bootstrap inventory: %v", err)
	}
	cancel()

	refresher := service.NewRefreshScheduler(inventoryService, service.RefreshConfig{
		Interval:     cfg.Refresh.Interval,
		RebuildEvery: cfg.Refresh.RebuildEvery,
	})
	refresher.Start()

	// Readiness checks
	checks := []handler.ReadinessCheck{
		{Name: "event_store", Check: func(ctx context.Context) error {
			_, err := eventRepo.MaxSeq(ctx)
			return err
		}},
		{Name: "projection", Check: func(ctx context.Context) error {
			if !inventoryService.Ready() {
				return fmt.Errorf("not built")
			}
			return nil
		}},
	}
	if redisCoord != nil {
		checks = append(checks, handler.ReadinessCheck{Name: "redis", Check: redisCoord.Ping})
	}

	// Handlers
	r := router.New(router.Config{
		Handler:          handler.New(cfg.App.Name, cfg.App.Version, checks...),
		InventoryHandler: handler.NewInventoryHandler(inventoryService),
		ReferenceHandler: handler.NewReferenceHandler(inventoryService),
		AdminHandler:     handler.NewAdminHandler(inventoryService, backends),
		AllowedOrigins:   cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	refresher.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
