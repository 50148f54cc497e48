// Package http 提供预测服务的 HTTP 前端
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server HTTP服务器
type Server struct {
	server *http.Server
	config ServerConfig
	logger *zap.Logger
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port           int
	Timeout        time.Duration
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// DefaultServerConfig 默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           8080,
		Timeout:        30 * time.Second,
		AllowedOrigins: []string{"*"},
		MaxBodyBytes:   1 << 20,
	}
}

// NewServer 创建HTTP服务器，predictor 由调用方加载并持有
func NewServer(config ServerConfig, predictor Predictor, logger *zap.Logger) *Server {
	mux := http.NewServeMux()
	NewHandlers(predictor, logger, config).Register(mux)

	chain := Chain(
		RecoveryMiddleware(logger),            // 1. 恢复中间件（最先执行，捕获panic）
		LoggerMiddleware(logger),              // 2. 日志中间件
		SecurityHeadersMiddleware,             // 3. 安全头中间件
		CORSMiddleware(config.AllowedOrigins), // 4. CORS中间件
		RequestSizeMiddleware(config.MaxBodyBytes),
	)

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			Handler:      chain(mux),
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
			IdleTimeout:  120 * time.Second,
		},
		config: config,
		logger: logger,
	}
}

// Start 启动服务器，阻塞直到服务器关闭
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop 停止服务器
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}

// Handler 返回带中间件的根处理器
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
