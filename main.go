package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"apporbit/internal/config"
	"apporbit/internal/database"
	"apporbit/internal/identity"
	"apporbit/internal/logger"
	"apporbit/internal/middleware"
	"apporbit/internal/payment"
	"apporbit/internal/repository"
	"apporbit/internal/repository/memory"
	"apporbit/internal/routes"
	"apporbit/internal/services"
)

type stores struct {
	products services.ProductStore
	reports  services.ReportStore
	reviews  services.ReviewStore
	users    services.UserStore
	coupons  services.CouponStore
	tx       services.Transactor
	ping     func(ctx context.Context) error
	close    func(ctx context.Context) error
}

func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("using in-memory store, data is lost on restart")
		m := memory.NewStore()
		return &stores{
			products: m.Products,
			reports:  m.Reports,
			reviews:  m.Reviews,
			users:    m.Users,
			coupons:  m.Coupons,
			tx:       memory.Transactor{},
			ping:     func(context.Context) error { return nil },
			close:    func(context.Context) error { return nil },
		}, nil
	}

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}

	db := client.Database(cfg.DBName)
	log.Info("mongo connected", zap.String("db", db.Name()))

	for _, err := range database.EnsureIndexes(ctx, db, log) {
		log.Warn("index warning", zap.Error(err))
	}

	return &stores{
		products: repository.NewProductRepository(db, cfg.StoreTimeout),
		reports:  repository.NewReportRepository(db, cfg.StoreTimeout),
		reviews:  repository.NewReviewRepository(db, cfg.StoreTimeout),
		users:    repository.NewUserRepository(db, cfg.StoreTimeout),
		coupons:  repository.NewCouponRepository(db, cfg.StoreTimeout),
		tx:       repository.NewTransactor(client, cfg.MongoTxnEnabled),
		ping:     func(ctx context.Context) error { return database.Ping(ctx, client) },
		close:    client.Disconnect,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog := logger.Must(cfg.Env)
	defer func() { _ = zlog.Sync() }()
	zap.ReplaceGlobals(zlog)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("store unavailable", zap.Error(err))
	}

	var gateway services.Gateway
	if cfg.StripeSecretKey != "" {
		gateway = payment.NewStripeGateway(cfg.StripeSecretKey)
	} else {
		zlog.Warn("STRIPE_SECRET_KEY not set, payment intents are disabled")
	}

	coupons := services.NewCouponService(st.coupons, zlog)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx)

	router := routes.NewRouter(routes.Deps{
		Products:    services.NewProductService(st.products, st.reports, st.users, st.tx, zlog),
		Reports:     services.NewReportService(st.products, st.reports, st.tx, zlog),
		Reviews:     services.NewReviewService(st.reviews, zlog),
		Users:       services.NewUserService(st.users, zlog),
		Coupons:     coupons,
		Payment:     services.NewPaymentService(gateway, coupons, cfg.PaymentCurrency, zlog),
		Statistics:  services.NewStatisticsService(st.products, st.users, st.reviews),
		Verifier:    identity.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		RateLimiter: limiter,
		CORSOrigins: cfg.CORSOrigins,
		Ping:        st.ping,
		Logger:      zlog,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		zlog.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		zlog.Info("shutting down")
	case err := <-serverErr:
		if err != nil {
			zlog.Error("http server error", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}
	if err := st.close(shutdownCtx); err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
		zlog.Error("store disconnect failed", zap.Error(err))
	}
	zlog.Info("server stopped")
}
