package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/SwiftSoko/SwiftSoko/internal/common/config"
	"github.com/SwiftSoko/SwiftSoko/internal/common/logger"
	"github.com/gin-gonic/gin"
)

// HTTPServer 业务 API 的 HTTP 入口（gin）。
type HTTPServer struct {
	cfg    *config.Config
	log    logger.Logger
	Engine *gin.Engine
	srv    *http.Server
}

// NewHTTPServer 创建 gin engine：recovery + 访问日志中间件，/healthz 探活。
// 业务路由由各 domain 包的 RegisterRoutes 挂载。
func NewHTTPServer(cfg *config.Config, log logger.Logger) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), AccessLogMiddleware(log))

	engine.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return &HTTPServer{
		cfg:    cfg,
		log:    log,
		Engine: engine,
		srv: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Serve 阻塞运行，直到 Shutdown 被调用。
func (h *HTTPServer) Serve() error {
	h.log.Infof("%s http listening on %s", h.cfg.Server.Name, h.srv.Addr)
	if err := h.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown 优雅关闭 HTTP 服务。
func (h *HTTPServer) Shutdown(timeout time.Duration) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := h.srv.Shutdown(ctx); err != nil {
		h.log.Warnf("http shutdown: %v", err)
	} else {
		h.log.Info("http server stopped gracefully")
	}
}

// AccessLogMiddleware 记录每个 HTTP 请求的耗时/状态码。
func AccessLogMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}
		fields := map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
			"cost":   time.Since(start).String(),
		}
		if len(c.Errors) > 0 {
			fields["error"] = c.Errors.String()
			log.WithFields(fields).Warn("http request failed")
		} else {
			log.WithFields(fields).Info("http request ok")
		}
	}
}
