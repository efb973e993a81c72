package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	_ "time/tzdata" // store timezone must resolve in minimal images

	"apple-sales-reservations/cmd/bootstrap"
	"apple-sales-reservations/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func init() {
	// Never expose debug output because of a missing setting
	gin.SetMode(gin.ReleaseMode)

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}
}

func newServer(engine *gin.Engine, cfg config.Config) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
}

// startServer binds the port during OnStart so a taken port fails startup instead of a goroutine.
func startServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, srv *http.Server, cfg config.Config, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			gin.EnableJsonDecoderDisallowUnknownFields()
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("starting reservations server", "address", srv.Addr, "mode", gin.Mode())
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", "error", err)
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("draining in-flight requests", "timeout", cfg.Server.ShutdownTimeout)
			ctx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	})
}

func main() {
	app := fx.New(
		bootstrap.Module,
		fx.Provide(
			func() *gin.Engine {
				return gin.New()
			},
			newServer,
		),
		fx.Invoke(
			startServer,
		),
	)

	if err := app.Start(context.Background()); err != nil {
		slog.Error("failed to start application", "error", err)
		os.Exit(1)
	}

	sig := <-app.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	if err := app.Stop(stopCtx); err != nil {
		slog.Error("failed to stop application", "error", err)
	}
	cancel()

	slog.Info("application stopped", "exit_code", sig.ExitCode)
	os.Exit(sig.ExitCode)
}
