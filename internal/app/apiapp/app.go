package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bidaclub/backend/internal/config"
	s3infra "github.com/bidaclub/backend/internal/infra/s3"
	"github.com/bidaclub/backend/internal/infra/vnpay"
	pgrepo "github.com/bidaclub/backend/internal/repo/postgres"
	redrepo "github.com/bidaclub/backend/internal/repo/redis"
	authsvc "github.com/bidaclub/backend/internal/services/auth"
	eventsvc "github.com/bidaclub/backend/internal/services/events"
	membershipsvc "github.com/bidaclub/backend/internal/services/memberships"
	paymentsvc "github.com/bidaclub/backend/internal/services/payments"
	ratesvc "github.com/bidaclub/backend/internal/services/rate"
	receiptsvc "github.com/bidaclub/backend/internal/services/receipts"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rateRepo := redrepo.NewRateRepo(redisClient)
	transactionRepo := pgrepo.NewPaymentTransactionRepo(pool)
	membershipRepo := pgrepo.NewMembershipRepo(pool)
	eventRepo := pgrepo.NewPaymentEventRepo(pool)

	gateway, err := vnpay.NewClient(vnpay.Config{
		TmnCode:    cfg.VNPay.TmnCode,
		HashSecret: cfg.VNPay.HashSecret,
		PaymentURL: cfg.VNPay.PaymentURL,
		ReturnURL:  cfg.VNPay.ReturnURL,
		Locale:     cfg.VNPay.Locale,
		OrderType:  cfg.VNPay.OrderType,
	})
	if err != nil {
		return nil, fmt.Errorf("create vnpay client: %w", err)
	}

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	membershipService := membershipsvc.NewService(membershipRepo, cfg.Payments.MembershipDuration)
	paymentService := paymentsvc.NewService(transactionRepo, gateway, membershipService, paymentsvc.Config{
		Currency:            cfg.Payments.Currency,
		PremiumPriceVND:     cfg.Payments.PremiumPriceVND,
		ClubPremiumPriceVND: cfg.Payments.ClubPremiumPriceVND,
		FrontendResultURL:   cfg.Frontend.ResultURL,
	}, log)
	paymentService.AttachLimiter(ratesvc.NewLimiter(
		rateRepo,
		cfg.Payments.CreatePerMinute,
		cfg.Payments.CreatePer10Sec,
	))
	paymentService.AttachEmitter(eventsvc.NewEmitter(eventRepo, log))
	paymentService.AttachReceipts(receiptsvc.NewService(s3Client, cfg.S3.Bucket))

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		PaymentService:    paymentService,
		MembershipService: membershipService,
		JWTManager:        jwtManager,
		Logger:            log,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
