package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/louisbranch/traitorops/internal/platform/timeouts"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthService is the gRPC health service name reported for the runtime.
const HealthService = "traitorops.traitor.Runtime"

// Server exposes gRPC health for a running session.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
}

// NewServer listens on addr and registers the health service, initially
// NOT_SERVING.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(HealthService, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	return &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// SetServing flips the reported health of the runtime.
func (s *Server) SetServing(serving bool) {
	if s == nil || s.health == nil {
		return
	}
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(HealthService, status)
}

// Serve runs the gRPC server until ctx is canceled.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("traitor health server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.gracefulStop()
		err := <-serveErr
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}

func (s *Server) gracefulStop() {
	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(timeouts.Shutdown):
		log.Printf("graceful stop exceeded %s, forcing", timeouts.Shutdown)
		s.grpcServer.Stop()
	}
}

// CheckHealth probes the runtime health service at addr and reports whether
// it is SERVING.
func CheckHealth(ctx context.Context, addr string) (bool, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return false, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, timeouts.HealthCheck)
	defer cancel()
	resp, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: HealthService})
	if err != nil {
		return false, fmt.Errorf("health check %s: %w", addr, err)
	}
	return resp.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING, nil
}

// WaitForServing polls addr until the runtime reports SERVING or ctx ends,
// backing off from 50ms up to one second between probes.
func WaitForServing(ctx context.Context, addr string, logf func(string, ...any)) error {
	backoff := 50 * time.Millisecond
	for {
		serving, err := CheckHealth(ctx, addr)
		if err == nil && serving {
			return nil
		}
		if logf != nil {
			if err != nil {
				logf("waiting for traitor runtime at %s: %v", addr, err)
			} else {
				logf("waiting for traitor runtime at %s: NOT_SERVING", addr)
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for traitor runtime at %s: %w", addr, ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, time.Second)
	}
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

// RunOptions configures Run.
type RunOptions struct {
	// Addr is the health listen address; empty disables the server.
	Addr     string
	Interval time.Duration
	MaxTicks int
	// Locale renders assignment lookup errors.
	Locale string
	// OnServerReady is called with the bound address once listening.
	OnServerReady func(addr string)
}

// Run drives rt to completion while serving health. The server reports
// SERVING while the runtime ticks and stops once the runtime returns.
func Run(ctx context.Context, rt *Runtime, opts RunOptions) error {
	if rt == nil {
		return errors.New("runtime is required")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var srv *Server
	if opts.Addr != "" {
		var err error
		srv, err = NewServer(opts.Addr)
		if err != nil {
			return err
		}
		srv.RegisterRuntime(rt, opts.Locale)
		if opts.OnServerReady != nil {
			opts.OnServerReady(srv.Addr())
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if srv != nil {
		g.Go(func() error {
			return srv.Serve(gctx)
		})
	}
	g.Go(func() error {
		defer cancel()
		srv.SetServing(true)
		err := rt.Run(gctx, opts.Interval, opts.MaxTicks)
		srv.SetServing(false)
		return err
	})
	return g.Wait()
}
