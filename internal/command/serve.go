package command

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"partsCatalog/internal/auth"
	grpcserver "partsCatalog/internal/grpc"
	"partsCatalog/internal/httpapi"
	"partsCatalog/internal/observability"
)

// Server timeouts.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 15 * time.Second
	idleTimeout       = 60 * time.Second

	healthRefreshInterval = 15 * time.Second
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "serve the REST API and, when configured, the gRPC health listener",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			rt, err := fromContext(cmd.Context())
			if err != nil {
				return err
			}
			d, err := openDB(rt.cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := d.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			tokens, err := auth.NewTokenService(rt.cfg.Auth.JWTSecret, rt.cfg.Auth.TokenTTL)
			if err != nil {
				return err
			}
			deps := httpapi.NewDeps(d, tokens, auth.NewHasher(rt.cfg.Auth.BcryptCost), rt.log)
			api := httpapi.New(deps)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			grp, ctx := errgroup.WithContext(ctx)
			if err := serveHTTP(ctx, grp, rt, api.Handler()); err != nil {
				return err
			}
			if err := serveGRPC(ctx, grp, rt, tokens, deps.Health); err != nil {
				// Stop the HTTP server before the database closes.
				cancel()
				return errors.Join(err, grp.Wait())
			}
			return grp.Wait()
		},
	}
}

func listen(ctx context.Context, addr string) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(ctx, "tcp", addr)
}

// serveHTTP starts the REST API and registers its graceful shutdown for when
// ctx is canceled.
func serveHTTP(ctx context.Context, grp *errgroup.Group, rt *runtime, handler http.Handler) error {
	lis, err := listen(ctx, rt.cfg.HTTP.Address)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
	rt.log.WithField("address", lis.Addr().String()).Info("starting HTTP server")

	grp.Go(func() error {
		err := srv.Serve(lis)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	grp.Go(func() error {
		<-ctx.Done()
		rt.log.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rt.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return nil
}

// serveGRPC starts the gRPC health listener when an address is configured and
// keeps its status fresh by re-running the readiness check.
func serveGRPC(ctx context.Context, grp *errgroup.Group, rt *runtime, tokens *auth.TokenService, health *observability.HealthChecker) error {
	addr := rt.cfg.GRPC.Address
	if addr == "" {
		return nil
	}
	srv := grpcserver.New(tokens, health, rt.log.WithField("component", "grpc"))
	shutdown, bound, err := grpcserver.StartGRPC(addr, srv)
	if err != nil {
		return err
	}
	rt.log.WithField("address", bound.String()).Info("starting gRPC server")

	grp.Go(func() error {
		<-ctx.Done()
		rt.log.Info("shutting down gRPC server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rt.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return shutdown(shutdownCtx)
	})
	grp.Go(func() error {
		refreshHealth(ctx, health, rt.log)
		return nil
	})
	return nil
}

func refreshHealth(ctx context.Context, health *observability.HealthChecker, log logrus.FieldLogger) {
	ticker := time.NewTicker(healthRefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if st := health.Check(checkCtx); st.Status != observability.StatusHealthy {
				log.WithField("dependencies", st.Dependencies).Warn("readiness check failed")
			}
			cancel()
		}
	}
}
