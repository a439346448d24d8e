package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/tasknest/core/internal/adapters/repository"
	"github.com/tasknest/core/internal/application/services"
	"github.com/tasknest/core/internal/infrastructure/config"
	"github.com/tasknest/core/internal/infrastructure/database"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/infrastructure/server"
	"github.com/tasknest/core/internal/ports"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the TaskNest API server",
		Long:  "Start the TaskNest API server with all configured routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage database migrations (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration("up")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration("down")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Run: func(cmd *cobra.Command, args []string) {
			showMigrationVersion()
		},
	})

	return migrateCmd
}

// NewSeedCommand creates the seed command
func NewSeedCommand() *cobra.Command {
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with demo users, groups and tasks",
		Run: func(cmd *cobra.Command, args []string) {
			users, _ := cmd.Flags().GetInt("users")
			runSeed(users)
		},
	}

	seedCmd.Flags().Int("users", 10, "Number of demo users to create")

	return seedCmd
}

// NewCleanupCommand creates the cleanup command
func NewCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired refresh tokens",
		Long:  "Remove refresh tokens past their expiry. Intended to run periodically, e.g. from cron.",
		Run: func(cmd *cobra.Command, args []string) {
			runCleanup()
		},
	}
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print TaskNest version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("TaskNest Core v1.0.0")
		},
	}
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	db, err := database.New(cfg.Database)
	if err != nil {
		appLogger.Fatalw("Failed to connect to database", "error", err)
	}
	defer db.Close()

	// Redis is optional: the suggestion cache degrades to disabled when it is
	// unreachable at startup.
	var rdb *redis.Client
	if cfg.Suggestion.CacheTTL > 0 {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			appLogger.Warnw("Redis unreachable, suggestion cache disabled", "error", err)
			rdb.Close()
			rdb = nil
		}
		cancel()
	}

	srv, err := server.New(cfg, db, rdb, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize server", "error", err)
	}

	appLogger.Infow("Starting TaskNest API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"suggestion_engine", cfg.Suggestion.Engine,
	)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			appLogger.Errorw("Server shutdown failed", "error", err)
		}
	}()

	if err := srv.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		appLogger.Fatalw("Server stopped", "error", err)
	}
}

func newMigrator() (*migrate.Migrate, *database.DB) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	driver, err := postgres.WithInstance(db.DB.DB, &postgres.Config{})
	if err != nil {
		log.Fatalf("Failed to create migration driver: %v", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		log.Fatalf("Failed to create migration instance: %v", err)
	}

	return m, db
}

func runMigration(direction string) {
	m, db := newMigrator()
	defer db.Close()

	var err error
	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("Migration failed: %v", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("No migrations to run")
	} else {
		fmt.Printf("Migration %s completed successfully\n", direction)
	}
}

func showMigrationVersion() {
	m, db := newMigrator()
	defer db.Close()

	version, dirty, err := m.Version()
	if err != nil {
		log.Fatalf("Failed to get migration version: %v", err)
	}

	fmt.Printf("Current migration version: %d\n", version)
	fmt.Printf("Dirty: %t\n", dirty)
}

func runCleanup() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db)
	authRepo := repository.NewAuthRepository(db)
	authService := services.NewAuthService(userRepo, authRepo, cfg.JWT, appLogger)

	if err := authService.CleanupExpiredTokens(context.Background()); err != nil {
		log.Fatalf("Cleanup failed: %v", err)
	}

	fmt.Println("Expired refresh tokens removed")
}

// seedTaskPool holds the demo tasks per category. Titles deliberately hit the
// priority keywords so the heuristic engine has something to chew on.
var seedTaskPool = map[string][]ports.CreateTaskRequest{
	"Work": {
		{Title: "Submit Project Alpha", Description: strPtr("Critical deadline approaching.")},
		{Title: "Review Bug Reports", Description: strPtr("Important for the next release.")},
		{Title: "Team Standup", Description: strPtr("Routine morning sync.")},
		{Title: "Email Client", Description: strPtr("Follow up on the invoice.")},
		{Title: "Finish Slide Deck", Description: strPtr("Urgent: Presentation at 3 PM.")},
	},
	"Learning": {
		{Title: "Finish Docker Course", Description: strPtr("Urgent certification goal.")},
		{Title: "Read Query Planner Docs", Description: strPtr("Learn about advanced joins.")},
		{Title: "Practice LeetCode", Description: strPtr("Keep algorithms sharp.")},
		{Title: "Submit Research Paper", Description: strPtr("Final deadline for submission.")},
		{Title: "Watch Go Tutorial", Description: strPtr("Improve backend skills.")},
	},
	"Fitness": {
		{Title: "Urgent Physio Session", Description: strPtr("Recovery for the injury.")},
		{Title: "Go for a Run", Description: strPtr("Target: 5km in 25 mins.")},
		{Title: "Gym - Chest Day", Description: strPtr("Focus on bench press.")},
		{Title: "Check Weight Progress", Description: strPtr("Weekly monitoring.")},
		{Title: "Buy Protein Powder", Description: strPtr("Supplements are running low.")},
	},
	"Personal": {
		{Title: "Pay Electricity Bill", Description: strPtr("Deadline is today!")},
		{Title: "Call Home", Description: strPtr("Check in with family.")},
		{Title: "Submit Tax Return", Description: strPtr("Important financial task.")},
		{Title: "Organize Room", Description: strPtr("Cleanup session.")},
		{Title: "Book Dental Exam", Description: strPtr("Routine checkup needed.")},
	},
	"Shopping": {
		{Title: "Buy Urgent Groceries", Description: strPtr("Milk and eggs are finished.")},
		{Title: "Order New Laptop", Description: strPtr("The current one is lagging.")},
		{Title: "Check Gift Deals", Description: strPtr("Buy something for Sarah's birthday.")},
		{Title: "Review Cart", Description: strPtr("Online checkout list.")},
		{Title: "Finish Shopping List", Description: strPtr("Write down items for the weekend.")},
	},
}

func strPtr(s string) *string {
	return &s
}

// runSeed creates demo users through the service layer so passwords get
// hashed and the default group invariant holds.
func runSeed(userCount int) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	authRepo := repository.NewAuthRepository(db)

	authService := services.NewAuthService(userRepo, authRepo, cfg.JWT, appLogger)
	groupService := services.NewGroupService(groupRepo, nil, appLogger)
	taskService := services.NewTaskService(taskRepo, groupRepo, nil, appLogger)

	categories := make([]string, 0, len(seedTaskPool))
	for cat := range seedTaskPool {
		categories = append(categories, cat)
	}

	ctx := context.Background()

	for i := 1; i <= userCount; i++ {
		username := fmt.Sprintf("DevUser%d", i)

		user, err := authService.Register(ctx, ports.RegisterRequest{
			Username: username,
			Email:    fmt.Sprintf("user%d@example.com", i),
			Password: "password123",
		})
		if err != nil {
			log.Printf("Skipping %s: %v", username, err)
			continue
		}

		// Each user gets 2 to 4 random categories
		rand.Shuffle(len(categories), func(a, b int) {
			categories[a], categories[b] = categories[b], categories[a]
		})
		picked := categories[:2+rand.Intn(3)]

		for _, cat := range picked {
			group, err := groupService.Create(ctx, user.ID, ports.CreateGroupRequest{Name: cat})
			if err != nil {
				log.Printf("Failed to create group %s for %s: %v", cat, username, err)
				continue
			}

			pool := seedTaskPool[cat]
			taskCount := 1 + rand.Intn(3)
			for _, idx := range rand.Perm(len(pool))[:taskCount] {
				req := pool[idx]
				req.GroupID = group.ID
				req.IsCompleted = rand.Intn(4) == 0

				if _, err := taskService.Create(ctx, user.ID, req); err != nil {
					log.Printf("Failed to create task %q for %s: %v", req.Title, username, err)
				}
			}
		}

		fmt.Printf("Seeded %s with %d categories\n", username, len(picked))
	}

	fmt.Println("Seeding completed")
}
