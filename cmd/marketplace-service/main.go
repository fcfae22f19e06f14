package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SwiftSoko/SwiftSoko/internal/common/config"
	"github.com/SwiftSoko/SwiftSoko/internal/common/db"
	"github.com/SwiftSoko/SwiftSoko/internal/common/logger"
	"github.com/SwiftSoko/SwiftSoko/internal/common/middleware"
	"github.com/SwiftSoko/SwiftSoko/internal/common/server"
	"github.com/SwiftSoko/SwiftSoko/internal/common/tracing"
	"github.com/SwiftSoko/SwiftSoko/internal/delivery"
	"github.com/SwiftSoko/SwiftSoko/internal/driver"
	"github.com/SwiftSoko/SwiftSoko/internal/otp"
	"github.com/SwiftSoko/SwiftSoko/internal/payment"
	"github.com/SwiftSoko/SwiftSoko/internal/pricing"
	"github.com/SwiftSoko/SwiftSoko/internal/ride"
	"github.com/SwiftSoko/SwiftSoko/internal/user"
	"github.com/SwiftSoko/SwiftSoko/internal/vehicle"
	"github.com/SwiftSoko/SwiftSoko/internal/wallet"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
)

var (
	configPath  = flag.String("config", "configs/marketplace-service.json", "配置文件路径")
	consulKVKey = flag.String("consul-kv", "", "从 Consul KV 加载配置（设置后忽略 -config）")
	consulHost  = flag.String("consul-host", "127.0.0.1", "Consul 地址（配合 -consul-kv）")
	consulPort  = flag.Int("consul-port", 8500, "Consul 端口（配合 -consul-kv）")
)

func main() {
	flag.Parse()

	// 加载配置：本地文件或 Consul KV
	var (
		cfg *config.Config
		err error
	)
	if *consulKVKey != "" {
		cfg, err = config.LoadConfigFromConsulKV(*consulHost, *consulPort, *consulKVKey)
	} else {
		cfg, err = config.LoadConfig(*configPath)
	}
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 初始化日志
	log, err := logger.New(logger.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Path:    cfg.Log.Path,
		Backend: cfg.Log.Backend,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 初始化链路追踪
	tracer, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
		tracer = nil
	} else {
		defer closer.Close()
	}

	// MySQL
	gormDB, err := db.NewMySQL(
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.User, cfg.Database.Password, cfg.Database.Database,
		cfg.Database.MaxIdle, cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to connect to mysql: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&user.User{},
		&wallet.Wallet{}, &wallet.EscrowTransfer{},
		&payment.Transaction{},
		&delivery.Business{}, &delivery.Parcel{}, &delivery.Bid{},
		&ride.Ride{},
		&driver.Availability{}, &driver.Rating{},
		&vehicle.Color{}, &vehicle.Make{}, &vehicle.Type{}, &vehicle.Model{},
	); err != nil {
		log.Fatalf("auto migrate failed: %v", err)
	}

	// Redis（OTP 存储）
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	// 领域装配
	estimator, err := pricing.NewEstimator(cfg.Pricing, log)
	if err != nil {
		log.Fatalf("invalid pricing config: %v", err)
	}

	walletRepo := wallet.NewRepo(gormDB)
	walletSvc := wallet.NewService(gormDB, walletRepo, log)

	gateway := payment.NewPaystackClient(cfg.Gateway)
	paymentRepo := payment.NewRepo(gormDB)
	paymentSvc := payment.NewService(gormDB, paymentRepo, walletRepo, gateway, cfg.Gateway.Currency, log)

	deliveryRepo := delivery.NewRepo(gormDB)
	deliverySvc := delivery.NewService(gormDB, deliveryRepo, log)

	driverRepo := driver.NewRepo(gormDB)
	driverSvc := driver.NewService(driverRepo, log)

	rideRepo := ride.NewRepo(gormDB)
	rideSvc := ride.NewService(gormDB, rideRepo, estimator, driver.NewGuard(), log)

	otpStore := otp.NewStore(redisClient, otp.DefaultTTL)
	userRepo := user.NewRepo(gormDB)
	userSvc := user.NewService(userRepo, otpStore, otp.NewLogNotifier(log), cfg.Auth, log)

	vehicleRepo := vehicle.NewRepo(gormDB)

	// HTTP 路由
	httpSrv := server.NewHTTPServer(cfg, log)
	if tracer != nil {
		httpSrv.Engine.Use(tracing.HTTPMiddleware(tracer))
	}

	api := httpSrv.Engine.Group("/api/v1")

	// 公开面：注册/登录/webhook（OTP 按客户端 IP 限流）
	otpLimiter := middleware.NewKeyedLimiter(5, 1)
	userHandler := user.NewHandler(userSvc)
	paymentHandler := payment.NewHandler(paymentSvc)
	userHandler.RegisterPublicRoutes(api, middleware.RateLimitByClientIP(otpLimiter))
	paymentHandler.RegisterWebhook(api)

	// 业务面：JWT 认证
	authed := api.Group("", server.AuthMiddleware(cfg.Auth))
	userHandler.RegisterRoutes(authed)
	pricing.NewHandler(estimator).RegisterRoutes(authed)
	wallet.NewHandler(walletSvc).RegisterRoutes(authed)
	paymentHandler.RegisterRoutes(authed)
	delivery.NewHandler(deliverySvc).RegisterRoutes(authed)
	ride.NewHandler(rideSvc).RegisterRoutes(authed)
	driver.NewHandler(driverSvc).RegisterRoutes(authed)
	vehicle.NewHandler(vehicleRepo).RegisterRoutes(authed)

	// gRPC（health + consul 注册）
	grpcSrv, err := server.NewGRPCServer(cfg, log, func(s *grpc.Server) error {
		return nil
	})
	if err != nil {
		log.Fatalf("failed to init grpc server: %v", err)
	}

	errCh := make(chan error, 2)
	go func() { errCh <- httpSrv.Serve() }()
	go func() { errCh <- grpcSrv.Serve() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Infof("received signal %s, shutting down", sig)
	case err := <-errCh:
		if err != nil {
			log.Errorf("server exited with error: %v", err)
		}
	}

	httpSrv.Shutdown(10 * time.Second)
	grpcSrv.Stop(10 * time.Second)
	_ = redisClient.Close()
	log.Info("marketplace-service stopped")
}
