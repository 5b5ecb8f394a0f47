package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rental-backend/internal/auth"
	"rental-backend/internal/cache"
	"rental-backend/internal/config"
	"rental-backend/internal/database"
	"rental-backend/internal/db"
	"rental-backend/internal/handlers"
	"rental-backend/internal/health"
	apihttp "rental-backend/internal/http"
	"rental-backend/internal/jobs"
	"rental-backend/internal/middleware"
	"rental-backend/internal/repositories"
	"rental-backend/internal/services"
	"rental-backend/internal/sms"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	// Redis is optional; stats fall back to the database when it is down
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (stats served from database)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	migrator := database.NewMigrator(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := migrator.RunMigrations(ctx); err != nil {
		cancel()
		log.Fatalf("Failed to run migrations: %v", err)
	}
	cancel()

	jwtManager := auth.NewJWTManager(cfg)

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	leaseRepo := repositories.NewLeaseRepository(pool)
	submissionRepo := repositories.NewSubmissionRepository(pool)
	recordRepo := repositories.NewPaymentRecordRepository(pool)
	reportRepo := repositories.NewReportRepository(pool)
	smsLogRepo := repositories.NewSMSLogRepository(pool)

	// SMS gateway
	var smsProvider sms.Provider
	if cfg.SMS.Enabled {
		smsProvider = sms.NewGatewayService(cfg.SMS.APIKey, cfg.SMS.Username, cfg.SMS.SenderID, cfg.SMS.Endpoint)
	} else {
		smsProvider = &sms.NoopService{}
	}
	smsProvider.SetLogRepository(smsLogRepo)

	// Object storage for archived reports
	archiveService, err := services.NewArchiveService(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize archive storage: %v", err)
	}

	// Services
	userService := services.NewUserService(userRepo, jwtManager)
	notificationService := services.NewNotificationService(smsProvider)
	verificationService := services.NewVerificationService(submissionRepo, notificationService)
	ledgerService := services.NewLedgerService(recordRepo, smsProvider)
	reportingService := services.NewReportingService(reportRepo, recordRepo, archiveService)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	submissionHandler := handlers.NewSubmissionHandler(verificationService, reportingService)
	recordHandler := handlers.NewPaymentRecordHandler(ledgerService)
	leaseHandler := handlers.NewLeaseHandler(leaseRepo)
	reportHandler := handlers.NewReportHandler(reportingService, archiveService)
	healthHandler := handlers.NewHealthHandler(health.NewHealthChecker(pool))

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	router := apihttp.NewRouter(
		authHandler,
		submissionHandler,
		recordHandler,
		leaseHandler,
		reportHandler,
		healthHandler,
		authMiddleware,
	)

	// Background jobs: daily overdue sweep, monthly rent generation
	scheduler := jobs.NewScheduler(ledgerService, reportingService)
	if cfg.Jobs.Enabled {
		if err := scheduler.Start(cfg); err != nil {
			log.Fatalf("Failed to start job scheduler: %v", err)
		}
		defer scheduler.Stop()
	}

	handler := middleware.PanicRecovery(
		middleware.MetricsMiddleware(
			middleware.RequestLogging(
				corsMiddleware(router))))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}
