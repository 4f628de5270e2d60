package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"price-board/internal/auth"
	"price-board/internal/config"
	apphttp "price-board/internal/http"
	"price-board/internal/repository"
	"price-board/internal/repository/jsonfile"
	"price-board/internal/repository/sqlite"
	"price-board/internal/service"
	"price-board/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	userRepo := jsonfile.NewUserRepository(cfg.Users.File)
	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}

	priceRepo, closePrices, err := buildPriceRepository(cfg, logger)
	if err != nil {
		logger.Fatalf("setup prices: %v", err)
	}
	defer closePrices()
	if err := priceRepo.Init(ctx); err != nil {
		logger.Fatalf("init price repository: %v", err)
	}

	images, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.TokenTTL())
	if err != nil {
		logger.Fatalf("setup tokens: %v", err)
	}
	userService := service.NewUserService(userRepo, auth.NewPasswordHasher(cfg.Auth.BcryptCost), tokens)
	priceService := service.NewPriceService(priceRepo)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(userService, priceService, images, tokens, logger, apphttp.Options{
		ProtectAdmin:   cfg.Auth.ProtectAdmin,
		MaxUploadBytes: cfg.Images.MaxBytes,
	})
	handler.RegisterRoutes(router)

	if !cfg.Auth.ProtectAdmin {
		logger.Warn("user, price and image mutations are not authenticated")
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func buildPriceRepository(cfg config.Config, logger *logrus.Logger) (repository.PriceRepository, func(), error) {
	if cfg.Prices.Backend == "sqlite" {
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		logger.Infof("storing prices in sqlite database %s", cfg.Database.Path)
		return sqlite.NewPriceRepository(db), func() { _ = db.Close() }, nil
	}

	logger.Infof("storing prices in %s", cfg.Prices.Dir)
	return jsonfile.NewPriceRepository(cfg.Prices.Dir), func() {}, nil
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Images.Backend != "s3" {
		logger.Infof("storing images in %s", cfg.Images.Dir)
		local, err := storage.NewLocalService(cfg.Images.Dir)
		if err != nil {
			return nil, err
		}
		return local, nil
	}

	if cfg.Storage.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	svc, err := storage.NewS3Service(client, cfg.Storage.Bucket, cfg.Storage.KeyPrefix)
	if err != nil {
		return nil, err
	}
	return svc, nil
}
