// @title MedVault API
// @version 1.0
// @description Personal health records: insurance cards, record files, terminology lookup and OTP-gated sharing.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey ShareAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"medvault/internal/config"
	"medvault/internal/email/noop"
	"medvault/internal/email/ses"
	"medvault/internal/handler"
	"medvault/internal/logging"
	"medvault/internal/ocr"
	"medvault/internal/parser"
	_ "medvault/internal/parser/claude"
	"medvault/internal/port"
	"medvault/internal/repository/postgres"
	"medvault/internal/router"
	"medvault/internal/service"
	s3storage "medvault/internal/storage/s3"
	"medvault/internal/terminology"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.Setup(cfg.Log, cfg.Server.Environment)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	fileRepo := postgres.NewFileMetaRepo(db)
	scanRepo := postgres.NewCardScanRepo(db)
	shareRepo := postgres.NewShareRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	emailSender, err := newEmailSender(cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}

	// Card parsing
	ocrEngine, err := ocr.NewEngine(cfg.OCR)
	if err != nil {
		return fmt.Errorf("failed to initialize OCR engine: %w", err)
	}
	cardParser, err := parser.Build(&cfg.CardParser, parser.Deps{OCR: ocrEngine})
	if err != nil {
		return fmt.Errorf("failed to initialize card parser: %w", err)
	}

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWT)
	fileSvc := service.NewFileService(fileRepo, s3Client, &cfg.S3)
	cardSvc := service.NewCardService(scanRepo, fileSvc, cardParser)
	shareSvc := service.NewShareService(shareRepo, userRepo, scanRepo, fileSvc, emailSender, authSvc, cfg.Share)
	terminologySvc := terminology.NewDefaultService(cfg.Terminology)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	fileH := handler.NewFileHandler(fileSvc)
	cardH := handler.NewCardHandler(cardSvc)
	shareH := handler.NewShareHandler(shareSvc)
	terminologyH := handler.NewTerminologyHandler(terminologySvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(authSvc, cfg.CORS.AllowedOrigins, authH, fileH, cardH, shareH, terminologyH, healthH)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := service.NewScanQueueWorker(scanRepo, cardSvc, service.ScanQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		MaxRetries:   cfg.Queue.MaxRetries,
		Concurrency:  cfg.Queue.Concurrency,
		StaleAfter:   time.Duration(cfg.Queue.StaleAfterSecs) * time.Second,
	})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logging.API.WithField("addr", cfg.Server.Port).Info("server: listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stop()
		wg.Wait()
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.API.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	wg.Wait()
	logging.API.Info("server: stopped")
	return nil
}

func newEmailSender(cfg config.EmailConfig) (port.EmailSender, error) {
	switch cfg.Provider {
	case "ses":
		return ses.NewSESSender(cfg.Region, cfg.FromAddress, cfg.FromName, cfg.FrontendURL)
	case "", "noop":
		return noop.NewNoopSender(cfg.FrontendURL), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
