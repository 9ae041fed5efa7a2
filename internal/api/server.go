// Package api hosts the stockperf network listeners: the JSON API over HTTP
// and the chart service over gRPC, plus the scheduled data set reload.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"stockperf/internal/config"
	"stockperf/internal/httpapi"
)

// Server is the main API server that hosts HTTP and gRPC endpoints.
type Server struct {
	cfg    *config.Config
	charts *httpapi.ChartServer
	log    *slog.Logger

	httpSrv *http.Server
	grpcSrv *grpc.Server
	cron    *cron.Cron
}

// NewServer creates a new Server configured from the given Config, serving
// charts from the given chart server.
func NewServer(cfg *config.Config, charts *httpapi.ChartServer, log *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		charts: charts,
		log:    log,
	}

	s.httpSrv = &http.Server{
		Addr:              s.HTTPAddr(),
		Handler:           charts.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Server.GRPCPort > 0 {
		s.grpcSrv = grpc.NewServer(grpc.UnaryInterceptor(loggingInterceptor(log)))
		RegisterChartService(s.grpcSrv, NewChartService(charts))
	}
	return s
}

// HTTPAddr returns the HTTP listen address.
func (s *Server) HTTPAddr() string {
	return net.JoinHostPort(s.cfg.Server.Host, fmt.Sprint(s.cfg.Server.Port))
}

// GRPCAddr returns the gRPC listen address, or "" when gRPC is disabled.
func (s *Server) GRPCAddr() string {
	if s.cfg.Server.GRPCPort <= 0 {
		return ""
	}
	return net.JoinHostPort(s.cfg.Server.Host, fmt.Sprint(s.cfg.Server.GRPCPort))
}

// ListenAndServe starts the HTTP and gRPC listeners and the reload schedule,
// and blocks until the context is cancelled or a fatal error occurs.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lis net.Listener
	if s.grpcSrv != nil {
		var err error
		if lis, err = net.Listen("tcp", s.GRPCAddr()); err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
	}

	if err := s.startReloader(ctx); err != nil {
		if lis != nil {
			lis.Close()
		}
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("http server starting", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if lis != nil {
		g.Go(func() error {
			s.log.Info("grpc server starting", "addr", lis.Addr().String())
			if err := s.grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown performs a graceful shutdown of the HTTP and gRPC servers.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	if s.grpcSrv != nil {
		s.grpcSrv.GracefulStop()
	}
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	s.log.Info("servers stopped")
	return nil
}

// startReloader schedules periodic data set reloads when a cron expression
// is configured.
func (s *Server) startReloader(ctx context.Context) error {
	schedule := s.cfg.Server.ReloadSchedule
	if schedule == "" {
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, err := s.charts.Reload(ctx); err != nil {
			s.log.Error("scheduled reload failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reload schedule %q: %w", schedule, err)
	}
	c.Start()
	s.cron = c
	s.log.Info("reload scheduled", "schedule", schedule)
	return nil
}
