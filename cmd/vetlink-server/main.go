package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vetlink/vetlink/internal/config"
	"github.com/vetlink/vetlink/internal/domain/catalog"
	"github.com/vetlink/vetlink/internal/domain/clinic"
	"github.com/vetlink/vetlink/internal/domain/matching"
	"github.com/vetlink/vetlink/internal/domain/scheduling"
	"github.com/vetlink/vetlink/internal/domain/triage"
	"github.com/vetlink/vetlink/internal/platform/auth"
	"github.com/vetlink/vetlink/internal/platform/db"
	"github.com/vetlink/vetlink/internal/platform/lock"
	"github.com/vetlink/vetlink/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vetlink-server",
		Short: "VetLink clinic marketplace API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			ctx := context.Background()
			pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			ctx := context.Background()
			pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with demo data",
		RunE: func(cmd *cobra.Command, args []string) error {
			clinics, _ := cmd.Flags().GetInt("clinics")

			ctx := context.Background()
			pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			gofakeit.Seed(time.Now().UnixNano())

			if err := seedClinics(ctx, pool, clinics); err != nil {
				return fmt.Errorf("seed clinics: %w", err)
			}
			if err := seedServices(ctx, pool); err != nil {
				return fmt.Errorf("seed services: %w", err)
			}
			if err := seedSymptomRules(ctx, pool); err != nil {
				return fmt.Errorf("seed symptom rules: %w", err)
			}

			fmt.Println("Seed complete.")
			return nil
		},
	}
	cmd.Flags().Int("clinics", 25, "Number of clinics to create")
	return cmd
}

func connect(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
}

func seedClinics(ctx context.Context, pool *pgxpool.Pool, count int) error {
	specialtySets := [][]string{
		{clinic.SpecialtyGeneral},
		{clinic.SpecialtyGeneral, clinic.SpecialtyDermatology},
		{clinic.SpecialtyGeneral, clinic.SpecialtySurgery, clinic.SpecialtyDentistry},
		{clinic.SpecialtyEmergency, clinic.SpecialtySurgery, clinic.SpecialtyInternalMedicine},
		{clinic.SpecialtyGeneral, clinic.SpecialtyEmergency},
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		// Scatter clinics around a metro center so proximity scoring has
		// something to work with.
		lat := 40.7128 + gofakeit.Float64Range(-0.25, 0.25)
		lon := -74.0060 + gofakeit.Float64Range(-0.25, 0.25)
		specialties := specialtySets[gofakeit.Number(0, len(specialtySets)-1)]

		is24 := gofakeit.Number(0, 9) == 0
		opening, closing := "08:00", "18:00"
		emergency := is24 || gofakeit.Number(0, 4) == 0
		weekdays := []int32{1, 2, 3, 4, 5}
		if gofakeit.Bool() {
			weekdays = append(weekdays, 6)
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO clinic (id, name, address, contact_number, email, latitude, longitude,
				opening_time, closing_time, weekdays, is_24_hours,
				specialties, emergency_support, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, TRUE, now(), now())
		`, uuid.New(), gofakeit.Company()+" Veterinary Clinic", gofakeit.Street(),
			gofakeit.Numerify("##########"), gofakeit.Email(), lat, lon,
			opening, closing, weekdays, is24, specialties, emergency)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	fmt.Printf("Seeded %d clinics.\n", count)
	return nil
}

func seedServices(ctx context.Context, pool *pgxpool.Pool) error {
	services := []struct {
		name     string
		category string
		price    float64
		duration int
	}{
		{"vaccination", catalog.CategoryPreventive, 45, 15},
		{"deworming", catalog.CategoryPreventive, 30, 15},
		{"consultation", catalog.CategoryTreatment, 60, 30},
		{"grooming", catalog.CategoryHygiene, 55, 45},
		{"surgery", catalog.CategoryTreatment, 400, 120},
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, s := range services {
		_, err := tx.Exec(ctx, `
			INSERT INTO service (id, name, description, category, base_price, duration_minutes,
				is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, TRUE, now(), now())
		`, uuid.New(), s.name, gofakeit.Sentence(8), s.category, s.price, s.duration)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	fmt.Printf("Seeded %d services.\n", len(services))
	return nil
}

func seedSymptomRules(ctx context.Context, pool *pgxpool.Pool) error {
	rules := []*triage.Rule{
		{
			Symptom: "fever",
			Questions: []triage.Question{
				{Text: "What is the pet's temperature in Celsius?", Type: triage.QuestionNumber, Required: true},
				{Text: "Is the pet eating normally?", Type: triage.QuestionBoolean},
			},
			Conditions: []triage.Condition{
				{
					Criteria: []triage.Criterion{
						{Field: "temperature", Op: triage.OpGreaterThan, Value: 40.0},
						{Field: "eating", Op: triage.OpEquals, Value: false},
					},
					Diagnosis:          "Possible serious infection",
					Urgency:            matching.UrgencyEmergency,
					SuggestedSpecialty: clinic.SpecialtyEmergency,
					FollowUpAdvice:     "Seek immediate veterinary care.",
				},
				{
					Criteria: []triage.Criterion{
						{Field: "temperature", Op: triage.OpGreaterThan, Value: 39.2},
					},
					Diagnosis:          "Mild fever",
					Urgency:            matching.UrgencyUrgent,
					SuggestedSpecialty: clinic.SpecialtyGeneral,
					FollowUpAdvice:     "Monitor temperature and book a visit within a day.",
				},
			},
			IsActive: true,
		},
		{
			Symptom: "vomiting",
			Questions: []triage.Question{
				{Text: "How many times in the last 24 hours?", Type: triage.QuestionNumber, Required: true},
				{Text: "Is there blood in the vomit?", Type: triage.QuestionBoolean},
			},
			Conditions: []triage.Condition{
				{
					Criteria: []triage.Criterion{
						{Field: "blood", Op: triage.OpEquals, Value: true},
					},
					Diagnosis:          "Gastrointestinal bleeding suspected",
					Urgency:            matching.UrgencyEmergency,
					SuggestedSpecialty: clinic.SpecialtyInternalMedicine,
					FollowUpAdvice:     "Seek immediate veterinary care.",
				},
				{
					Criteria: []triage.Criterion{
						{Field: "frequency", Op: triage.OpGreaterThan, Value: 3.0},
					},
					Diagnosis:          "Persistent vomiting",
					Urgency:            matching.UrgencyUrgent,
					SuggestedSpecialty: clinic.SpecialtyGeneral,
					FollowUpAdvice:     "Withhold food, offer water, and book a visit within a day.",
				},
			},
			IsActive: true,
		},
		{
			Symptom: "limping",
			Questions: []triage.Question{
				{Text: "Can the pet bear weight on the limb?", Type: triage.QuestionBoolean, Required: true},
			},
			Conditions: []triage.Condition{
				{
					Criteria: []triage.Criterion{
						{Field: "bearing_weight", Op: triage.OpEquals, Value: false},
					},
					Diagnosis:          "Possible fracture or severe sprain",
					Urgency:            matching.UrgencyUrgent,
					SuggestedSpecialty: clinic.SpecialtySurgery,
					FollowUpAdvice:     "Restrict movement and book a visit within a day.",
				},
			},
			IsActive: true,
		},
	}

	repo := triage.NewRepoPG(pool)
	for _, r := range rules {
		if err := repo.Create(ctx, r); err != nil {
			return err
		}
	}

	fmt.Printf("Seeded %d symptom rules.\n", len(rules))
	return nil
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Redis booking lock. Without Redis the overlap re-check and the
	// unique index still guard bookings, so a missing REDIS_URL degrades
	// rather than fails.
	var locker lock.Locker = lock.NoopLocker{}
	if cfg.RedisURL != "" {
		redisClient, err := lock.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient, time.Duration(cfg.BookingLockTTLSec)*time.Second)
		logger.Info().Msg("connected to redis")
	} else {
		logger.Warn().Msg("REDIS_URL not set; distributed booking lock disabled")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			SigningKey: []byte(cfg.JWTSecret),
		}))
	}

	// Health check
	e.GET("/health", db.HealthHandler(pool))

	// API group with rate limiting
	apiV1 := e.Group("/api/v1")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// -- Register Domain Handlers --

	// Clinic domain
	clinicRepo := clinic.NewRepoPG(pool)
	clinicSvc := clinic.NewService(clinicRepo)
	clinic.NewHandler(clinicSvc).RegisterRoutes(apiV1)

	// Service catalog
	catalogRepo := catalog.NewRepoPG(pool)
	catalogSvc := catalog.NewCatalog(catalogRepo)
	catalog.NewHandler(catalogSvc).RegisterRoutes(apiV1)

	// Scheduling domain
	apptRepo := scheduling.NewRepoPG(pool)
	schedSvc := scheduling.NewService(apptRepo, clinicSvc, catalogSvc, locker)
	scheduling.NewHandler(schedSvc).RegisterRoutes(apiV1)

	// Matching engine
	matchSvc := matching.NewService(clinicSvc, schedSvc, cfg.MatchMaxCandidates, logger)
	matching.NewHandler(matchSvc).RegisterRoutes(apiV1)

	// Triage domain
	ruleRepo := triage.NewRepoPG(pool)
	triageSvc := triage.NewService(ruleRepo)
	triage.NewHandler(triageSvc, matchSvc).RegisterRoutes(apiV1)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
