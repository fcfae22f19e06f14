package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/SwiftSoko/SwiftSoko/internal/common/config"
	"github.com/SwiftSoko/SwiftSoko/internal/common/discovery"
	"github.com/SwiftSoko/SwiftSoko/internal/common/logger"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// GRPCRegisterFunc 用于注册业务 gRPC 服务（预留；当前只有 health）。
type GRPCRegisterFunc func(s *grpc.Server) error

// GRPCServer 管理 gRPC listener 的生命周期。业务 API 走 HTTP（gin），
// gRPC 侧承载 health 服务，供 Consul 的 GRPC check 探活。
type GRPCServer struct {
	cfg      *config.Config
	log      logger.Logger
	srv      *grpc.Server
	lis      net.Listener
	registry *discovery.ServiceRegistry
}

// NewGRPCServer 初始化 listener + grpc server（含拦截器），注册 health/reflection，
// 并把服务注册到 Consul（失败不阻塞启动）。
func NewGRPCServer(cfg *config.Config, log logger.Logger, register GRPCRegisterFunc) (*GRPCServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg is nil")
	}
	if log == nil {
		return nil, fmt.Errorf("log is nil")
	}

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	// 统一的 Unary 拦截器链（按顺序执行）
	chain := UnaryChain(
		UnaryRecoveryInterceptor(log),            // 异常恢复，避免服务崩溃
		UnaryTracingInterceptor(cfg.Server.Name), // 链路追踪
		UnaryAccessLogInterceptor(log),           // 访问日志
	)

	s := grpc.NewServer(grpc.UnaryInterceptor(chain))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(s)

	if register != nil {
		if err := register(s); err != nil {
			return nil, fmt.Errorf("failed to register grpc services: %w", err)
		}
	}

	g := &GRPCServer{cfg: cfg, log: log, srv: s, lis: lis}

	// 注册到 Consul（gRPC check）
	if consulClient, err := discovery.NewConsulClient(cfg.Consul.Host, cfg.Consul.Port); err != nil {
		log.Warnf("failed to connect to Consul: %v", err)
	} else {
		serviceID := fmt.Sprintf("%s-%s", cfg.Server.Name, uuid.New().String())
		g.registry = discovery.NewServiceRegistry(
			consulClient,
			serviceID,
			cfg.Server.Name,
			cfg.Server.Host,
			cfg.Server.GRPCPort,
			[]string{"grpc"},
			discovery.CheckGRPC,
		)
		if err := g.registry.Register(); err != nil {
			log.Warnf("failed to register service to Consul: %v", err)
			g.registry = nil
		} else {
			log.Infof("Service registered to Consul: %s", serviceID)
		}
	}

	return g, nil
}

// Serve 阻塞运行，直到 Stop 被调用或 listener 出错。
func (g *GRPCServer) Serve() error {
	g.log.Infof("%s grpc listening on %s:%d", g.cfg.Server.Name, g.cfg.Server.Host, g.cfg.Server.GRPCPort)
	return g.srv.Serve(g.lis)
}

// Stop 优雅关闭：先从 Consul 注销，再等待在途请求完成（超时则强停）。
func (g *GRPCServer) Stop(timeout time.Duration) {
	if g.registry != nil {
		if err := g.registry.Deregister(); err != nil {
			g.log.Warnf("failed to deregister service from Consul: %v", err)
		}
	}

	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		g.srv.GracefulStop()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
		g.log.Warn("grpc shutdown timeout, forcing stop...")
		g.srv.Stop()
	case <-stopped:
		g.log.Info("grpc server stopped gracefully")
	}
}
