// Package grpc gRPC服务端
//
// 库存服务对外只通过HTTP提供业务接口,gRPC端口只注册标准健康检查(grpc.health.v1.Health),
// 供Kubernetes/负载均衡探活。
package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName 健康检查中的服务名
const ServiceName = "duka.inventory.v1.Inventory"

// Server gRPC服务器
type Server struct {
	srv    *grpc.Server
	health *health.Server
	log    zerolog.Logger
}

// NewServer 创建gRPC服务器并注册健康检查
// 初始状态为NOT_SERVING,Serve之后调用SetServing切换
func NewServer(log zerolog.Logger) *Server {
	srv := grpc.NewServer(
		grpc.MaxRecvMsgSize(4*1024*1024),
		grpc.MaxSendMsgSize(4*1024*1024),
	)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	// 注册反射服务(用于grpcurl调试)
	reflection.Register(srv)

	return &Server{srv: srv, health: hs, log: log.With().Str("component", "grpc").Logger()}
}

// Serve 在listener上提供服务,阻塞直到Stop
func (s *Server) Serve(lis net.Listener) error {
	s.log.Info().Str("addr", lis.Addr().String()).Msg("gRPC服务启动")
	return s.srv.Serve(lis)
}

// ListenAndServe 监听端口并提供服务
func (s *Server) ListenAndServe(port int) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("监听端口失败: %w", err)
	}
	return s.Serve(lis)
}

// SetServing 切换为SERVING
func (s *Server) SetServing() {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
}

// Shutdown 先把健康状态置为NOT_SERVING,再优雅停止
// ctx到期后强制停止
func (s *Server) Shutdown(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.srv.Stop()
	}
	s.log.Info().Msg("gRPC服务已停止")
}

// Check 进程内查询健康状态
func (s *Server) Check(ctx context.Context) (healthpb.HealthCheckResponse_ServingStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.Status, nil
}
